package batch

import (
	"context"
	stdimage "image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/assetgen/internal/analysis"
	"github.com/jmylchreest/assetgen/internal/assettest"
	"github.com/jmylchreest/assetgen/internal/extract"
	"github.com/jmylchreest/assetgen/internal/generate"
)

var green = color.NRGBA{R: 40, G: 200, B: 90, A: 255}

type fixture struct {
	root string
	out  string
}

func newFixture(t *testing.T, modules ...string) fixture {
	t.Helper()
	f := fixture{root: t.TempDir(), out: t.TempDir()}
	for i, module := range modules {
		rect := stdimage.Rect(i, i, i+4, i+4)
		assettest.WritePNG(t, filepath.Join(f.root, "cn", module, "OK.png"), assettest.Crop(32, 18, rect, green))
		assettest.WritePNG(t, filepath.Join(f.root, "en", module, "OK.png"), assettest.Crop(32, 18, rect.Add(stdimage.Pt(2, 0)), green))
	}
	return f
}

func (f fixture) orchestrator(t *testing.T, opts Options) *Orchestrator {
	t.Helper()
	servers := extract.Servers{Names: []string{"cn", "en"}, Reference: "cn"}
	opts.Root = f.root
	opts.Reference = servers.Reference
	opts.OutputRoot = f.out
	if opts.OutputFile == "" {
		opts.OutputFile = "assets.py"
	}
	if opts.Workers == 0 {
		opts.Workers = 4
	}
	opts.Generator = generate.New(generate.Options{
		Root:    f.root,
		Servers: servers,
		Extractor: extract.New(extract.Options{
			Root:     f.root,
			Servers:  servers,
			Analyzer: &analysis.Analyzer{Resolution: stdimage.Pt(32, 18)},
		}),
	})

	o, err := New(opts)
	require.NoError(t, err)
	return o
}

func TestDiscover(t *testing.T) {
	f := newFixture(t, "daily", "combat", "ui")
	// Stray files next to module directories are not modules.
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "cn", "README"), []byte("x"), 0o600))

	modules, err := f.orchestrator(t, Options{}).Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"combat", "daily", "ui"}, modules)
}

func TestDiscoverFilters(t *testing.T) {
	f := newFixture(t, "daily", "combat", "combat_ui", "ui")

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{name: "include", include: []string{"combat*"}, want: []string{"combat", "combat_ui"}},
		{name: "exclude", exclude: []string{"*ui"}, want: []string{"combat", "daily"}},
		{name: "both", include: []string{"combat*", "daily"}, exclude: []string{"combat_ui"}, want: []string{"combat", "daily"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := f.orchestrator(t, Options{Include: tt.include, Exclude: tt.exclude})
			modules, err := o.Discover()
			require.NoError(t, err)
			assert.Equal(t, tt.want, modules)
		})
	}
}

func TestDiscoverMissingReference(t *testing.T) {
	f := fixture{root: t.TempDir(), out: t.TempDir()}
	_, err := f.orchestrator(t, Options{}).Run(context.Background())
	assert.Error(t, err)
}

func TestNewRejectsBadPattern(t *testing.T) {
	_, err := New(Options{Generator: generate.New(generate.Options{}), Include: []string{"[abc"}})
	assert.Error(t, err)
}

func TestRunWritesListings(t *testing.T) {
	f := newFixture(t, "daily", "ui")
	o := f.orchestrator(t, Options{})

	report, err := o.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Err())
	require.Len(t, report.Modules, 2)
	assert.Equal(t, 2, report.Assets())

	for _, m := range report.Modules {
		assert.True(t, m.Written)
		data, err := os.ReadFile(filepath.Join(f.out, m.Module, "assets.py"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "OK = Button(")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFixture(t, "daily", "ui", "combat")
	o := f.orchestrator(t, Options{})

	_, err := o.Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(f.out, "ui", "assets.py"))
	require.NoError(t, err)

	_, err = o.Run(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(f.out, "ui", "assets.py"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunWorkerCountDoesNotChangeOutput(t *testing.T) {
	f := newFixture(t, "a", "b", "c", "d")

	outputs := make(map[int]string)
	for _, workers := range []int{1, 4} {
		o := f.orchestrator(t, Options{Workers: workers})
		_, err := o.Run(context.Background())
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(f.out, "c", "assets.py"))
		require.NoError(t, err)
		outputs[workers] = string(data)
	}
	assert.Equal(t, outputs[1], outputs[4])
}

func TestRunIsolatesModuleFailure(t *testing.T) {
	f := newFixture(t, "broken", "daily", "ui")
	// A regular file where the module's output directory should be.
	require.NoError(t, os.WriteFile(filepath.Join(f.out, "broken"), []byte("x"), 0o600))

	report, err := f.orchestrator(t, Options{}).Run(context.Background())
	require.NoError(t, err)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken", failed[0].Module)

	var me *ModuleError
	require.ErrorAs(t, report.Err(), &me)
	assert.Equal(t, "broken", me.Module)

	for _, module := range []string{"daily", "ui"} {
		_, err := os.Stat(filepath.Join(f.out, module, "assets.py"))
		assert.NoError(t, err, module)
	}
}

func TestRunReportsAssetFailures(t *testing.T) {
	f := newFixture(t, "ui")
	assettest.WriteCorrupt(t, filepath.Join(f.root, "cn", "ui", "BAD.png"))

	report, err := f.orchestrator(t, Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Failed())
	assert.Equal(t, 1, report.AssetFailures())
	assert.Error(t, report.Err())

	data, err := os.ReadFile(filepath.Join(f.out, "ui", "assets.py"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "BAD")
}

func TestRunDryRun(t *testing.T) {
	f := newFixture(t, "ui")

	report, err := f.orchestrator(t, Options{DryRun: true}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Modules, 1)
	assert.False(t, report.Modules[0].Written)
	assert.Equal(t, 1, report.Assets())

	_, err = os.Stat(filepath.Join(f.out, "ui"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t, "ui")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.orchestrator(t, Options{}).Run(ctx)
	require.NoError(t, err)
	require.Len(t, report.Failed(), 1)
	assert.ErrorIs(t, report.Err(), context.Canceled)
}
