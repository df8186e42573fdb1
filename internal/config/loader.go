package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ASSETGEN_ASSETS_ROOT.
const EnvPrefix = "ASSETGEN"

// Loader loads configuration.
// Priority: flags → environment variables → config file → defaults.
type Loader struct {
	v          *viper.Viper
	dir        string
	configFile string
}

// NewLoader creates a loader that searches dir for assetgen.yaml.
func NewLoader(dir string) *Loader {
	return &Loader{
		v:   viper.New(),
		dir: dir,
	}
}

// SetConfigFile uses an explicit config file instead of searching. The file
// must exist.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// BindFlag binds a configuration key to a command flag. The flag only wins
// when it was set explicitly.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind for %s", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load loads and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	v := l.v

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("assetgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(l.dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys() {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing searched-for file is fine; an explicit one must exist.
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ConfigFileUsed returns the config file read by Load, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func keys() []string {
	return []string{
		"assets.root",
		"assets.servers",
		"assets.reference",
		"output.root",
		"output.file",
		"output.header",
		"analysis.threshold",
		"analysis.resolution.width",
		"analysis.resolution.height",
		"batch.workers",
		"batch.include",
		"batch.exclude",
	}
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("assets.root", defaults.Assets.Root)
	v.SetDefault("assets.servers", defaults.Assets.Servers)
	v.SetDefault("assets.reference", defaults.Assets.Reference)

	v.SetDefault("output.root", defaults.Output.Root)
	v.SetDefault("output.file", defaults.Output.File)
	v.SetDefault("output.header", defaults.Output.Header)

	v.SetDefault("analysis.threshold", defaults.Analysis.Threshold)
	v.SetDefault("analysis.resolution.width", defaults.Analysis.Resolution.Width)
	v.SetDefault("analysis.resolution.height", defaults.Analysis.Resolution.Height)

	v.SetDefault("batch.workers", defaults.Batch.Workers)
	v.SetDefault("batch.include", defaults.Batch.Include)
	v.SetDefault("batch.exclude", defaults.Batch.Exclude)
}
