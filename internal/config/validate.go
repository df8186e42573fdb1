package config

import (
	"errors"
	"fmt"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidAssets indicates an unusable asset root or server list
	ErrInvalidAssets = errors.New("invalid assets configuration")

	// ErrInvalidOutput indicates an unusable output location
	ErrInvalidOutput = errors.New("invalid output configuration")

	// ErrInvalidAnalysis indicates out of range analysis settings
	ErrInvalidAnalysis = errors.New("invalid analysis configuration")

	// ErrInvalidBatch indicates invalid worker or pattern settings
	ErrInvalidBatch = errors.New("invalid batch configuration")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Assets.Root == "" {
		errs = append(errs, fmt.Errorf("%w: assets.root is empty", ErrInvalidAssets))
	}
	if err := cfg.Servers().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidAssets, err))
	}

	if cfg.Output.Root == "" {
		errs = append(errs, fmt.Errorf("%w: output.root is empty", ErrInvalidOutput))
	}
	if cfg.Output.File == "" {
		errs = append(errs, fmt.Errorf("%w: output.file is empty", ErrInvalidOutput))
	}

	if cfg.Analysis.Threshold < 0 || cfg.Analysis.Threshold > 255 {
		errs = append(errs, fmt.Errorf("%w: threshold must be 0-255, got %d", ErrInvalidAnalysis, cfg.Analysis.Threshold))
	}
	res := cfg.Analysis.Resolution
	if res.Width < 0 || res.Height < 0 || (res.Width == 0) != (res.Height == 0) {
		errs = append(errs, fmt.Errorf("%w: resolution %dx%d", ErrInvalidAnalysis, res.Width, res.Height))
	}

	if cfg.Batch.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidBatch, cfg.Batch.Workers))
	}
	for _, pattern := range append(append([]string{}, cfg.Batch.Include...), cfg.Batch.Exclude...) {
		if _, err := glob.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("%w: pattern %q: %w", ErrInvalidBatch, pattern, err))
		}
	}

	return errors.Join(errs...)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return Validate(c)
}
