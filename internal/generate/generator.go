// Package generate builds the asset listing of one module directory.
//
// The generator reads the reference server's module directory, classifies
// every file, extracts one descriptor per base or template asset and renders
// the result. Assets are processed one after another; a failing asset is
// recorded and skipped without affecting the rest of the module.
package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/assetgen/internal/asset"
	"github.com/jmylchreest/assetgen/internal/extract"
)

// Options configures a Generator.
type Options struct {
	// Root is the asset root containing one directory per server.
	Root string

	Servers    extract.Servers
	Classifier *asset.Classifier
	Extractor  *extract.Extractor
	Logger     hclog.Logger

	// Header overrides DefaultHeader when non-empty.
	Header string
}

// Generator generates module listings.
type Generator struct {
	root       string
	servers    extract.Servers
	classifier *asset.Classifier
	extractor  *extract.Extractor
	renderer   Renderer
	logger     hclog.Logger
}

// New creates a generator. A nil classifier uses the default rules and a nil
// extractor is built from Root and Servers.
func New(opts Options) *Generator {
	g := &Generator{
		root:       opts.Root,
		servers:    opts.Servers,
		classifier: opts.Classifier,
		extractor:  opts.Extractor,
		logger:     opts.Logger,
		renderer: Renderer{
			Header:  opts.Header,
			Servers: opts.Servers.Names,
		},
	}
	if g.logger == nil {
		g.logger = hclog.NewNullLogger()
	}
	if g.classifier == nil {
		g.classifier = asset.NewClassifier(asset.DefaultRules())
	}
	if g.extractor == nil {
		g.extractor = extract.New(extract.Options{
			Root:    opts.Root,
			Servers: opts.Servers,
			Logger:  g.logger.Named("extract"),
		})
	}
	if g.renderer.Header == "" {
		g.renderer.Header = DefaultHeader
	}
	return g
}

// AssetError records an asset whose extraction failed.
type AssetError struct {
	Module string
	Asset  string
	Err    error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Module, e.Asset, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// Listing is the generated content of one module.
type Listing struct {
	Module      string
	Descriptors []*asset.Descriptor

	// Failures holds one entry per asset that could not be extracted.
	Failures []*AssetError

	// Skipped holds files that take no part in generation.
	Skipped []asset.Classification

	Diagnostics []extract.Diagnostic
}

// Count returns the number of generated expressions.
func (l *Listing) Count() int {
	return len(l.Descriptors)
}

// ModuleDir returns the reference server directory of a module.
func (g *Generator) ModuleDir(module string) string {
	return filepath.Join(g.root, g.servers.Reference, module)
}

// Classify classifies every file directly inside the module's reference
// directory, in directory order. Symlinks are followed.
func (g *Generator) Classify(module string) ([]asset.Classification, error) {
	dir := g.ModuleDir(module)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read module directory: %w", err)
	}

	var out []asset.Classification
	for _, entry := range entries {
		// Skip entries we can't stat (broken symlinks, permission issues).
		info, err := os.Stat(filepath.Join(dir, entry.Name()))
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, g.classifier.Classify(entry.Name()))
	}
	return out, nil
}

// Generate builds the listing for module. It only fails when the module
// directory cannot be read; asset failures are collected in the listing.
func (g *Generator) Generate(module string) (*Listing, error) {
	logger := g.logger.With("module", module)

	classified, err := g.Classify(module)
	if err != nil {
		return nil, err
	}

	listing := &Listing{Module: module}
	kinds := make(map[string]asset.Kind)
	var overrides []asset.Classification

	for _, cl := range classified {
		switch cl.Kind {
		case asset.FileBase:
			kinds[cl.Name] = asset.KindButton
		case asset.FileTemplate:
			kinds[cl.Name] = asset.KindTemplate
		case asset.FileOverride:
			overrides = append(overrides, cl)
		default:
			logger.Debug("skipping file", "file", cl.File, "reason", cl.Reason)
			listing.Skipped = append(listing.Skipped, cl)
		}
	}

	for _, cl := range overrides {
		if kind, ok := kinds[cl.Name]; !ok || kind != asset.KindButton {
			cl.Kind = asset.FileIgnored
			cl.Reason = fmt.Sprintf("%s override has no base asset %s", cl.Override, cl.Name)
			logger.Warn("orphan override", "file", cl.File)
			listing.Skipped = append(listing.Skipped, cl)
		}
	}

	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var res *extract.Result
		var err error
		switch kinds[name] {
		case asset.KindTemplate:
			res, err = g.extractor.Template(module, name)
		default:
			res, err = g.extractor.Button(module, name)
		}
		if err != nil {
			logger.Error("asset extraction failed", "asset", name, "error", err)
			listing.Failures = append(listing.Failures, &AssetError{Module: module, Asset: name, Err: err})
			continue
		}
		listing.Descriptors = append(listing.Descriptors, res.Descriptor)
		listing.Diagnostics = append(listing.Diagnostics, res.Diagnostics...)
	}

	logger.Info("module generated", "assets", listing.Count(), "failures", len(listing.Failures))
	return listing, nil
}

// Render renders a listing with the configured header and server order.
func (g *Generator) Render(l *Listing) []byte {
	return g.renderer.Render(l)
}
