package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/assetgen/internal/security"
)

type extractOptions struct {
	assets     string
	outputFile string
}

func newExtractCmd(global *globalOptions) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <module>",
		Short: "Print the asset listing of a single module",
		Long: `Extract a single module and print its asset listing.

The listing is written to stdout unless --output-file names a file. Nothing under
the configured output root is touched.

Examples:
  # Show what the combat listing would contain
  assetgen extract combat

  # Write it somewhere else
  assetgen extract combat --output-file /tmp/combat_assets.py`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.assets, "assets", "", "asset root directory (default: ./assets)")
	cmd.Flags().StringVarP(&opts.outputFile, "output-file", "f", "", "write the listing to this file instead of stdout")

	return cmd
}

func runExtract(cmd *cobra.Command, global *globalOptions, opts *extractOptions, module string) error {
	if err := security.ValidateModuleName(module); err != nil {
		return err
	}

	cfg, err := global.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := global.newLogger(cmd)

	generator := newGenerator(cfg, logger)
	listing, err := generator.Generate(module)
	if err != nil {
		return fmt.Errorf("module %s: %w", module, err)
	}
	data := generator.Render(listing)

	if opts.outputFile == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if dir := filepath.Dir(opts.outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - generated sources need standard permissions
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(opts.outputFile, data, 0o644); err != nil { // #nosec G306 - generated sources need standard read permissions
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logger.Info("listing written", "module", module, "path", opts.outputFile, "assets", listing.Count())
	return nil
}
