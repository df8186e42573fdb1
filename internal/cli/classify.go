package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/assetgen/internal/asset"
	"github.com/jmylchreest/assetgen/internal/security"
)

type classifyOptions struct {
	assets string
	all    bool
}

func newClassifyCmd(global *globalOptions) *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify <module>",
		Short: "Show how every file of a module is classified",
		Long: `Classify every file of a module's reference directory as a base asset,
template, override or ignored file, with the reason ignored files are skipped.

Examples:
  # Show every file of the combat module
  assetgen classify combat --all

  # Only show files that take no part in generation
  assetgen classify combat`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.assets, "assets", "", "asset root directory (default: ./assets)")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "list every file, not only ignored ones")

	return cmd
}

func runClassify(cmd *cobra.Command, global *globalOptions, opts *classifyOptions, module string) error {
	if err := security.ValidateModuleName(module); err != nil {
		return err
	}

	cfg, err := global.loadConfig(cmd)
	if err != nil {
		return err
	}

	classified, err := newGenerator(cfg, global.newLogger(cmd)).Classify(module)
	if err != nil {
		return fmt.Errorf("module %s: %w", module, err)
	}

	table := classificationTable(classified, opts.all)
	if table.Len() == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No ignored files in %s\n", module)
		return nil
	}
	_, err = table.WriteTo(cmd.OutOrStdout())
	return err
}

func classificationTable(classified []asset.Classification, all bool) *Table {
	table := NewTable("File", "Kind", "Name", "Override", "Reason")
	for _, cl := range classified {
		if !all && cl.Kind != asset.FileIgnored {
			continue
		}
		table.AddRow(cl.File, cl.Kind.String(), cl.Name, string(cl.Override), cl.Reason)
	}
	return table
}
