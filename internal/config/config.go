// Package config loads assetgen configuration from defaults, an optional
// assetgen.yaml file, ASSETGEN_* environment variables and command flags.
package config

import (
	"image"
	"runtime"

	"github.com/jmylchreest/assetgen/internal/analysis"
	"github.com/jmylchreest/assetgen/internal/extract"
)

// Config represents the complete assetgen configuration.
type Config struct {
	Assets   AssetsConfig   `yaml:"assets" mapstructure:"assets"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
}

// AssetsConfig locates the input tree.
type AssetsConfig struct {
	Root      string   `yaml:"root" mapstructure:"root"`           // contains one directory per server
	Servers   []string `yaml:"servers" mapstructure:"servers"`     // generated key order
	Reference string   `yaml:"reference" mapstructure:"reference"` // server others fall back to
}

// OutputConfig locates the generated listings.
type OutputConfig struct {
	Root   string `yaml:"root" mapstructure:"root"`     // listings go to <root>/<module>/<file>
	File   string `yaml:"file" mapstructure:"file"`     // listing filename
	Header string `yaml:"header" mapstructure:"header"` // empty means the built-in header
}

// AnalysisConfig tunes the pixel analysis.
type AnalysisConfig struct {
	Threshold  int              `yaml:"threshold" mapstructure:"threshold"`
	Resolution ResolutionConfig `yaml:"resolution" mapstructure:"resolution"`
}

// ResolutionConfig is the expected crop size. 0x0 disables the check.
type ResolutionConfig struct {
	Width  int `yaml:"width" mapstructure:"width"`
	Height int `yaml:"height" mapstructure:"height"`
}

// BatchConfig controls module discovery and parallelism.
type BatchConfig struct {
	Workers int      `yaml:"workers" mapstructure:"workers"` // 0 means runtime.NumCPU()
	Include []string `yaml:"include" mapstructure:"include"` // module globs, empty means all
	Exclude []string `yaml:"exclude" mapstructure:"exclude"` // module globs
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	servers := extract.DefaultServers()
	return &Config{
		Assets: AssetsConfig{
			Root:      "./assets",
			Servers:   servers.Names,
			Reference: servers.Reference,
		},
		Output: OutputConfig{
			Root: "./module",
			File: "assets.py",
		},
		Analysis: AnalysisConfig{
			Threshold: 0,
			Resolution: ResolutionConfig{
				Width:  analysis.DefaultResolution.X,
				Height: analysis.DefaultResolution.Y,
			},
		},
		Batch: BatchConfig{
			Workers: 0,
			Include: []string{},
			Exclude: []string{},
		},
	}
}

// Servers returns the configured server set.
func (c *Config) Servers() extract.Servers {
	return extract.Servers{
		Names:     c.Assets.Servers,
		Reference: c.Assets.Reference,
	}
}

// Analyzer returns a pixel analyzer for the analysis settings.
func (c *Config) Analyzer() *analysis.Analyzer {
	return &analysis.Analyzer{
		Threshold:  uint8(c.Analysis.Threshold), // #nosec G115 - Validate bounds threshold to 0-255
		Resolution: image.Pt(c.Analysis.Resolution.Width, c.Analysis.Resolution.Height),
	}
}

// Workers returns the effective worker count.
func (c *Config) Workers() int {
	if c.Batch.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Batch.Workers
}
