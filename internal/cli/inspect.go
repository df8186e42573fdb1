package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/assetgen/internal/colour"
	"github.com/jmylchreest/assetgen/internal/extract"
	"github.com/jmylchreest/assetgen/internal/image"
)

func newInspectCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <image>",
		Short: "Show the measurements of a single crop",
		Long: `Inspect a single crop image and print what the extractor measures for it:
bounding box, mean colour, per-channel spread and resolution. Animated crops
list every frame together with its colour distance (CIEDE2000) from the first
frame.

Examples:
  assetgen inspect assets/cn/combat/BATTLE_PREPARATION.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, global, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, global *globalOptions, path string) error {
	if !image.IsImageFile(path) {
		return fmt.Errorf("unsupported image format: %s", path)
	}

	cfg, err := global.loadConfig(cmd)
	if err != nil {
		return err
	}
	analyzer := cfg.Analyzer()
	extractor := extract.New(extract.Options{
		Analyzer: analyzer,
		Logger:   global.newLogger(cmd).Named("inspect"),
	})

	src, err := image.NewFileLoader().Load(path)
	if err != nil {
		return err
	}
	m, err := extractor.Measure(src)
	if err != nil {
		return err
	}
	spread, err := analyzer.Spread(src.First(), m.Area)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:       %s\n", path)
	fmt.Fprintf(out, "Size:       %dx%d", m.Size.X, m.Size.Y)
	if !m.ResolutionOK {
		fmt.Fprintf(out, " (expected %dx%d)", analyzer.Resolution.X, analyzer.Resolution.Y)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Area:       %s\n", formatRect(m.Area.Min.X, m.Area.Min.Y, m.Area.Max.X, m.Area.Max.Y))
	fmt.Fprintf(out, "Colour:     %s %s\n", m.Colour.Tuple(), m.Colour.Hex())
	fmt.Fprintf(out, "Spread:     mean (%.2f, %.2f, %.2f) stddev (%.2f, %.2f, %.2f)\n",
		spread.Mean[0], spread.Mean[1], spread.Mean[2],
		spread.StdDev[0], spread.StdDev[1], spread.StdDev[2])
	fmt.Fprintf(out, "Frames:     %d\n", len(m.Frames))

	if src.Animated && len(m.Frames) > 1 {
		fmt.Fprintln(out)
		_, err := frameTable(m).WriteTo(out)
		return err
	}
	return writeConsistency(out, m)
}

// frameTable lists the measurement of every frame of an animated crop.
func frameTable(m extract.Measurement) *Table {
	inconsistent := make(map[int]bool, len(m.Inconsistent))
	for _, i := range m.Inconsistent {
		inconsistent[i] = true
	}

	table := NewTable("Frame", "Area", "Colour", "ΔE", "Consistent")
	for i, f := range m.Frames {
		consistent := "yes"
		if inconsistent[i] {
			consistent = "no"
		}
		table.AddRow(
			strconv.Itoa(i),
			formatRect(f.Area.Min.X, f.Area.Min.Y, f.Area.Max.X, f.Area.Max.Y),
			f.Colour.Tuple(),
			strconv.FormatFloat(colour.Distance(m.Colour, f.Colour), 'f', 2, 64),
			consistent,
		)
	}
	return table
}

func writeConsistency(w io.Writer, m extract.Measurement) error {
	if len(m.Inconsistent) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "Warning:    frames %v have a different area\n", m.Inconsistent)
	return err
}

func formatRect(left, top, right, bottom int) string {
	return fmt.Sprintf("(%d, %d, %d, %d)", left, top, right, bottom)
}
