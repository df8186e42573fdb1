// Package cli provides the command-line interface for assetgen.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/assetgen/internal/config"
	"github.com/jmylchreest/assetgen/internal/extract"
	"github.com/jmylchreest/assetgen/internal/generate"
	"github.com/jmylchreest/assetgen/internal/version"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbose    bool
	quiet      bool
	configFile string
}

// NewRootCmd builds the assetgen command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "assetgen",
		Short: "Generate asset listings from screenshot crops",
		Long: `assetgen scans a tree of per-server screenshot crops and generates one
asset listing per module.

Every crop is a full-resolution screenshot with everything but a single UI
element masked to black. The bounding box and mean colour of the element are
measured on every server and written as Button and Template declarations.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default: ./assetgen.yaml)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newExtractCmd(opts))
	rootCmd.AddCommand(newInspectCmd(opts))
	rootCmd.AddCommand(newClassifyCmd(opts))

	return rootCmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// level maps the verbosity flags to a log level.
func (o *globalOptions) level() hclog.Level {
	switch {
	case o.quiet:
		return hclog.Error
	case o.verbose:
		return hclog.Debug
	default:
		return hclog.Info
	}
}

// newLogger creates the command logger writing to the command's stderr.
func (o *globalOptions) newLogger(cmd *cobra.Command) hclog.Logger {
	out := cmd.ErrOrStderr()
	colour := hclog.ColorOff
	if isTerminal(out) {
		colour = hclog.AutoColor
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "assetgen",
		Output: out,
		Level:  o.level(),
		Color:  colour,
	})
}

// progressWriter returns where progress bars go, or nil when they should not
// be shown.
func (o *globalOptions) progressWriter(cmd *cobra.Command) io.Writer {
	out := cmd.ErrOrStderr()
	if o.quiet || o.verbose || !isTerminal(out) {
		return nil
	}
	return out
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors fit in int
}

// bindings maps configuration keys to the command flags that override them.
var bindings = map[string]string{
	"assets.root":   "assets",
	"output.root":   "output",
	"batch.workers": "workers",
	"batch.include": "include",
	"batch.exclude": "exclude",
}

// loadConfig loads configuration, letting any bound flag present on cmd
// override the file and environment.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader := config.NewLoader(".")
	if o.configFile != "" {
		loader.SetConfigFile(o.configFile)
	}
	for key, name := range bindings {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := loader.BindFlag(key, flag); err != nil {
				return nil, err
			}
		}
	}
	return loader.Load()
}

// newGenerator wires the pipeline for cfg.
func newGenerator(cfg *config.Config, logger hclog.Logger) *generate.Generator {
	servers := cfg.Servers()
	return generate.New(generate.Options{
		Root:    cfg.Assets.Root,
		Servers: servers,
		Extractor: extract.New(extract.Options{
			Root:     cfg.Assets.Root,
			Servers:  servers,
			Analyzer: cfg.Analyzer(),
			Logger:   logger.Named("extract"),
		}),
		Logger: logger.Named("generate"),
		Header: cfg.Output.Header,
	})
}
