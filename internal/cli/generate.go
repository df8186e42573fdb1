package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/assetgen/internal/batch"
)

type generateOptions struct {
	assets  string
	output  string
	workers int
	include []string
	exclude []string
	dryRun  bool
	strict  bool
}

func newGenerateCmd(global *globalOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate asset listings for every module",
		Long: `Generate an asset listing for every module found under the reference
server's asset directory.

Modules are processed in parallel. A module or asset that fails is reported and
skipped; the remaining listings are still written.

Examples:
  # Generate every module with the defaults (./assets -> ./module)
  assetgen generate

  # Only regenerate the combat modules, without writing anything
  assetgen generate --include 'combat*' --dry-run

  # Fail the run if any asset could not be extracted
  assetgen generate --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.assets, "assets", "", "asset root directory (default: ./assets)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output root directory (default: ./module)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "number of modules processed in parallel (default: number of CPUs)")
	cmd.Flags().StringSliceVar(&opts.include, "include", nil, "only generate modules matching these globs")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil, "skip modules matching these globs")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "extract and report without writing listings")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with an error if any module or asset failed")

	return cmd
}

func runGenerate(cmd *cobra.Command, global *globalOptions, opts *generateOptions) error {
	cfg, err := global.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := global.newLogger(cmd)

	orchestrator, err := batch.New(batch.Options{
		Root:       cfg.Assets.Root,
		Reference:  cfg.Assets.Reference,
		OutputRoot: cfg.Output.Root,
		OutputFile: cfg.Output.File,
		Workers:    cfg.Workers(),
		Include:    cfg.Batch.Include,
		Exclude:    cfg.Batch.Exclude,
		DryRun:     opts.dryRun,
		Generator:  newGenerator(cfg, logger),
		Logger:     logger.Named("batch"),
		Progress:   global.progressWriter(cmd),
	})
	if err != nil {
		return err
	}

	report, err := orchestrator.Run(cmd.Context())
	if err != nil {
		return err
	}

	if opts.dryRun && !global.quiet {
		if _, err := summaryTable(report).WriteTo(cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	if opts.strict {
		if err := report.Err(); err != nil {
			return fmt.Errorf("generation incomplete (%d failed modules, %d failed assets): %w",
				len(report.Failed()), report.AssetFailures(), err)
		}
	}
	return nil
}

// summaryTable lists the outcome of every module of a batch run.
func summaryTable(report *batch.Report) *Table {
	table := NewTable("Module", "Assets", "Failed", "Output")
	for _, m := range report.Modules {
		if m.Err != nil {
			table.AddRow(m.Module, "-", "module", m.Err.Error())
			continue
		}
		table.AddRow(m.Module,
			strconv.Itoa(m.Listing.Count()),
			strconv.Itoa(len(m.Listing.Failures)),
			m.Path)
	}
	return table
}
