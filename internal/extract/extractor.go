// Package extract resolves the per-server descriptor of a single asset.
//
// For every server the extractor locates the asset's base image, measures its
// bounding box and mean colour, then applies the AREA, COLOR and BUTTON
// override images when present. Servers without their own image reuse the
// reference server's entry.
package extract

import (
	"fmt"
	stdimage "image"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/assetgen/internal/analysis"
	"github.com/jmylchreest/assetgen/internal/asset"
	"github.com/jmylchreest/assetgen/internal/colour"
	"github.com/jmylchreest/assetgen/internal/image"
)

// Options configures an Extractor.
type Options struct {
	// Root is the asset root containing one directory per server.
	Root string

	Servers  Servers
	Loader   image.Loader
	Analyzer *analysis.Analyzer
	Logger   hclog.Logger
}

// Extractor extracts descriptors for single assets. It holds no per-asset
// state and may be reused sequentially for every asset of a module.
type Extractor struct {
	root     string
	servers  Servers
	loader   image.Loader
	analyzer *analysis.Analyzer
	logger   hclog.Logger
}

// New creates an extractor. Nil collaborators are replaced by defaults.
func New(opts Options) *Extractor {
	e := &Extractor{
		root:     opts.Root,
		servers:  opts.Servers,
		loader:   opts.Loader,
		analyzer: opts.Analyzer,
		logger:   opts.Logger,
	}
	if e.loader == nil {
		e.loader = image.NewFileLoader()
	}
	if e.analyzer == nil {
		e.analyzer = analysis.NewAnalyzer()
	}
	if e.logger == nil {
		e.logger = hclog.NewNullLogger()
	}
	return e
}

// Result is an extracted descriptor with the diagnostics raised on the way.
type Result struct {
	Descriptor  *asset.Descriptor
	Diagnostics []Diagnostic
}

// Count returns the number of diagnostics of the given kind.
func (r *Result) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// FrameMeasurement is the measurement of a single frame.
type FrameMeasurement struct {
	Area   stdimage.Rectangle
	Colour colour.RGB
}

// Measurement is the measurement of one image file. For animated files Area
// and Colour come from the first frame.
type Measurement struct {
	Area   stdimage.Rectangle
	Colour colour.RGB
	Size   stdimage.Point

	Frames []FrameMeasurement

	// Inconsistent lists the indices of frames whose bounding box differs
	// from the first frame.
	Inconsistent []int

	// ResolutionOK is false when the image is not at the reference resolution.
	ResolutionOK bool
}

// Path returns the slash-separated path of an asset file, in the form written
// to generated listings.
func (e *Extractor) Path(server, module, file string) string {
	root := strings.TrimSuffix(filepath.ToSlash(e.root), "/")
	return strings.Join([]string{root, server, module, file}, "/")
}

// ResolveFile finds the file for an asset and optional override subkind on a
// server, trying the static format before the animated one.
func (e *Extractor) ResolveFile(server, module, name string, subkind asset.Override) (string, bool) {
	for _, ext := range image.SupportedImageExtensions() {
		file := name + ext
		if subkind != "" {
			file = name + "." + string(subkind) + ext
		}
		path := e.Path(server, module, file)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return e.Path(server, module, name+image.ExtStatic), false
}

// Button extracts a button descriptor for name in module.
func (e *Extractor) Button(module, name string) (*Result, error) {
	d := asset.NewButton(name)
	res := &Result{Descriptor: d}
	logger := e.logger.With("asset", name)

	for _, server := range e.servers.ProcessingOrder() {
		path, ok := e.ResolveFile(server, module, name, "")
		if !ok {
			if server == e.servers.Reference {
				return nil, &ConfigurationError{Asset: name, Module: module, Reference: server, Path: path}
			}
			d.Button.Entries[server] = d.Button.Entries[e.servers.Reference]
			e.report(logger, res, Diagnostic{
				Kind:    DiagnosticFallback,
				Asset:   name,
				Server:  server,
				Path:    path,
				Message: fmt.Sprintf("%s not found, using %s server assets", name, e.servers.Reference),
			})
			continue
		}

		entry, err := e.buttonEntry(logger, res, server, module, name, path)
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s for server %s: %w", name, server, err)
		}
		d.Button.Entries[server] = entry
	}

	return res, nil
}

// buttonEntry measures the base image of one server and applies overrides.
func (e *Extractor) buttonEntry(logger hclog.Logger, res *Result, server, module, name, path string) (asset.Entry, error) {
	base, err := e.measureFile(logger, res, server, name, path)
	if err != nil {
		return asset.Entry{}, err
	}

	entry := asset.Entry{
		Area:   base.Area,
		Colour: base.Colour,
		Button: base.Area,
		File:   path,
	}

	for _, o := range asset.Overrides() {
		overridePath, ok := e.ResolveFile(server, module, name, o)
		if !ok {
			continue
		}
		m, err := e.measureFile(logger, res, server, name, overridePath)
		if err != nil {
			return asset.Entry{}, fmt.Errorf("override %s: %w", o, err)
		}
		logger.Trace("applying override", "server", server, "override", o, "path", overridePath)

		switch o {
		case asset.OverrideArea:
			entry.Area = m.Area
		case asset.OverrideColour:
			entry.Colour = m.Colour
		case asset.OverrideButton:
			entry.Button = m.Area
		}
	}

	return entry, nil
}

// Template extracts a template descriptor for name in module. Only base files
// are consulted; they are measured for the debug log only.
func (e *Extractor) Template(module, name string) (*Result, error) {
	d := asset.NewTemplate(name)
	res := &Result{Descriptor: d}
	logger := e.logger.With("asset", name)

	for _, server := range e.servers.ProcessingOrder() {
		path, ok := e.ResolveFile(server, module, name, "")
		if !ok {
			if server == e.servers.Reference {
				return nil, &ConfigurationError{Asset: name, Module: module, Reference: server, Path: path}
			}
			d.Template.Files[server] = d.Template.Files[e.servers.Reference]
			e.report(logger, res, Diagnostic{
				Kind:    DiagnosticFallback,
				Asset:   name,
				Server:  server,
				Path:    path,
				Message: fmt.Sprintf("%s not found, using %s server assets", name, e.servers.Reference),
			})
			continue
		}

		src, err := e.loader.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s for server %s: %w", name, server, err)
		}
		first := src.First()
		area := e.analyzer.BoundingBox(first)
		mean, err := e.analyzer.MeanColour(first, area)
		if err != nil {
			return nil, fmt.Errorf("failed to measure %s: %w", path, err)
		}
		logger.Debug("template measured", "server", server, "area", area, "colour", mean.Tuple())

		d.Template.Files[server] = path
	}

	return res, nil
}

// Measure computes the bounding box and colour of every frame of src. Only
// the first frame's values are kept for the measurement itself; the colours
// of later frames are computed but not used.
func (e *Extractor) Measure(src *image.Source) (Measurement, error) {
	m := Measurement{
		Size:         src.First().Bounds().Size(),
		ResolutionOK: e.analyzer.CheckResolution(src.First()),
	}

	for i, frame := range src.Frames {
		area := e.analyzer.BoundingBox(frame)
		mean, err := e.analyzer.MeanColour(frame, area)
		if err != nil {
			return Measurement{}, fmt.Errorf("frame %d: %w", i, err)
		}
		m.Frames = append(m.Frames, FrameMeasurement{Area: area, Colour: mean})

		if i == 0 {
			m.Area, m.Colour = area, mean
			continue
		}
		if area != m.Area {
			m.Inconsistent = append(m.Inconsistent, i)
		}
	}

	return m, nil
}

// measureFile loads and measures one file, reporting its diagnostics.
func (e *Extractor) measureFile(logger hclog.Logger, res *Result, server, name, path string) (Measurement, error) {
	src, err := e.loader.Load(path)
	if err != nil {
		return Measurement{}, err
	}

	m, err := e.Measure(src)
	if err != nil {
		return Measurement{}, fmt.Errorf("failed to measure %s: %w", path, err)
	}

	if !m.ResolutionOK {
		e.report(logger, res, Diagnostic{
			Kind:    DiagnosticResolution,
			Asset:   name,
			Server:  server,
			Path:    path,
			Message: fmt.Sprintf("%s has wrong resolution: %dx%d", path, m.Size.X, m.Size.Y),
		})
	}
	if len(m.Inconsistent) > 0 {
		e.report(logger, res, Diagnostic{
			Kind:   DiagnosticConsistency,
			Asset:  name,
			Server: server,
			Path:   path,
			Message: fmt.Sprintf("%s has multiple different bbox (frames %v differ from %v), this will cause unexpected behaviour",
				path, m.Inconsistent, m.Area),
		})
	}

	return m, nil
}

func (e *Extractor) report(logger hclog.Logger, res *Result, d Diagnostic) {
	res.Diagnostics = append(res.Diagnostics, d)
	switch d.Kind {
	case DiagnosticFallback:
		logger.Debug(d.Message, "server", d.Server)
	default:
		logger.Warn(d.Message, "server", d.Server, "kind", d.Kind.String())
	}
}
