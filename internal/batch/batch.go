// Package batch runs the module generator over every module of the asset
// tree in parallel and writes the generated listings.
//
// Each worker owns one module from classification to the final write. Output
// paths are disjoint per module, so workers share nothing but the progress
// bar. A failing module is recorded in the report and never stops its
// siblings.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-hclog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/assetgen/internal/generate"
	"github.com/jmylchreest/assetgen/internal/security"
)

// Options configures an Orchestrator.
type Options struct {
	// Root is the asset root; modules are discovered under Root/Reference.
	Root      string
	Reference string

	// OutputRoot and OutputFile place each listing at
	// OutputRoot/<module>/OutputFile.
	OutputRoot string
	OutputFile string

	// Workers bounds the number of modules processed at once. Values below
	// one mean one.
	Workers int

	// Include and Exclude are module name globs. An empty Include matches
	// every module.
	Include []string
	Exclude []string

	// DryRun renders listings without writing them.
	DryRun bool

	Generator *generate.Generator
	Logger    hclog.Logger

	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

// Orchestrator discovers modules and generates their listings.
type Orchestrator struct {
	opts    Options
	include []glob.Glob
	exclude []glob.Glob
	logger  hclog.Logger
}

// New creates an orchestrator, compiling the module filters.
func New(opts Options) (*Orchestrator, error) {
	if opts.Generator == nil {
		return nil, errors.New("batch: generator is required")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	o := &Orchestrator{opts: opts, logger: opts.Logger}
	if o.logger == nil {
		o.logger = hclog.NewNullLogger()
	}

	var err error
	if o.include, err = compile(opts.Include); err != nil {
		return nil, err
	}
	if o.exclude, err = compile(opts.Exclude); err != nil {
		return nil, err
	}
	return o, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid module pattern %q: %w", pattern, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Discover lists the module directories under the reference server root,
// sorted by name and filtered by the include and exclude patterns. It fails
// only when the reference root cannot be read.
func (o *Orchestrator) Discover() ([]string, error) {
	dir := filepath.Join(o.opts.Root, o.opts.Reference)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules in %s: %w", dir, err)
	}

	var modules []string
	for _, entry := range entries {
		name := entry.Name()
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !info.IsDir() {
			continue
		}
		if !o.selected(name) {
			o.logger.Debug("module filtered out", "module", name)
			continue
		}
		modules = append(modules, name)
	}
	sort.Strings(modules)
	return modules, nil
}

func (o *Orchestrator) selected(module string) bool {
	if len(o.include) > 0 && !matchAny(o.include, module) {
		return false
	}
	return !matchAny(o.exclude, module)
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// OutputPath returns where the listing of module is written.
func (o *Orchestrator) OutputPath(module string) string {
	return filepath.Join(o.opts.OutputRoot, module, o.opts.OutputFile)
}

// Run generates every discovered module. The returned error is non-nil only
// when discovery fails; module failures are reported in the Report.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	modules, err := o.Discover()
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		o.logger.Warn("no modules found", "root", filepath.Join(o.opts.Root, o.opts.Reference))
	}
	o.logger.Info("assets extract", "modules", len(modules), "workers", o.opts.Workers)

	bar := o.newProgressBar(len(modules))
	report := &Report{Modules: make([]ModuleReport, len(modules))}

	var g errgroup.Group
	g.SetLimit(o.opts.Workers)
	for i, module := range modules {
		g.Go(func() error {
			report.Modules[i] = o.process(ctx, module)
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	if bar != nil {
		_ = bar.Finish()
	}

	report.Elapsed = time.Since(start)
	for _, m := range report.Failed() {
		o.logger.Error("module failed", "module", m.Module, "error", m.Err)
	}
	o.logger.Info("batch complete",
		"modules", len(report.Modules),
		"failed", len(report.Failed()),
		"assets", report.Assets(),
		"asset_failures", report.AssetFailures(),
		"elapsed", report.Elapsed.Round(time.Millisecond))

	return report, nil
}

// process generates and writes one module.
func (o *Orchestrator) process(ctx context.Context, module string) ModuleReport {
	mr := ModuleReport{Module: module, Path: o.OutputPath(module)}
	fail := func(err error) ModuleReport {
		mr.Err = &ModuleError{Module: module, Err: err}
		return mr
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := security.ValidateModuleName(module); err != nil {
		return fail(err)
	}
	if err := security.ValidateFilePath(filepath.Join(module, o.opts.OutputFile), o.opts.OutputRoot); err != nil {
		return fail(err)
	}

	listing, err := o.opts.Generator.Generate(module)
	if err != nil {
		return fail(err)
	}
	mr.Listing = listing

	if o.opts.DryRun {
		return mr
	}

	if err := os.MkdirAll(filepath.Dir(mr.Path), 0o755); err != nil { // #nosec G301 - generated sources need standard permissions
		return fail(fmt.Errorf("failed to create output directory: %w", err))
	}
	if err := os.WriteFile(mr.Path, o.opts.Generator.Render(listing), 0o644); err != nil { // #nosec G306 - generated sources need standard read permissions
		return fail(fmt.Errorf("failed to write listing: %w", err))
	}
	mr.Written = true
	return mr
}

func (o *Orchestrator) newProgressBar(total int) *progressbar.ProgressBar {
	if o.opts.Progress == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(o.opts.Progress),
		progressbar.OptionSetDescription("Generating modules"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(o.opts.Progress)
		}),
	)
}
