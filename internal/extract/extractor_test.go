package extract

import (
	"bytes"
	"errors"
	stdimage "image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/assetgen/internal/analysis"
	"github.com/jmylchreest/assetgen/internal/asset"
	"github.com/jmylchreest/assetgen/internal/assettest"
	"github.com/jmylchreest/assetgen/internal/colour"
	"github.com/jmylchreest/assetgen/internal/image"
)

const (
	testW  = 128
	testH  = 72
	module = "combat"
)

var (
	blue  = color.NRGBA{R: 93, G: 142, B: 203, A: 255}
	red   = color.NRGBA{R: 220, G: 40, B: 40, A: 255}
	green = color.NRGBA{R: 30, G: 200, B: 60, A: 255}
)

type fixture struct {
	root string
	ex   *Extractor
	logs *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := filepath.Join(t.TempDir(), "assets")
	logs := &bytes.Buffer{}
	ex := New(Options{
		Root: root,
		Servers: Servers{
			Names:     []string{"cn", "en", "jp"},
			Reference: "cn",
		},
		Analyzer: &analysis.Analyzer{Resolution: stdimage.Pt(testW, testH)},
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "extract",
			Output: logs,
			Level:  hclog.Warn,
		}),
	})
	return &fixture{root: root, ex: ex, logs: logs}
}

func (f *fixture) png(t *testing.T, server, file string, rect stdimage.Rectangle, c color.NRGBA) {
	t.Helper()
	assettest.WritePNG(t, filepath.Join(f.root, server, module, file), assettest.Crop(testW, testH, rect, c))
}

func TestButtonStatic(t *testing.T) {
	f := newFixture(t)
	rect := stdimage.Rect(10, 20, 40, 30)
	f.png(t, "cn", "GET_MISSION.png", rect, blue)

	res, err := f.ex.Button(module, "GET_MISSION")
	require.NoError(t, err)

	d := res.Descriptor
	assert.Equal(t, "GET_MISSION", d.Name)
	assert.Equal(t, asset.KindButton, d.Kind)
	require.NotNil(t, d.Button)
	assert.Nil(t, d.Template)

	entry := d.Button.Entries["cn"]
	assert.Equal(t, rect, entry.Area)
	assert.Equal(t, rect, entry.Button)
	assert.Equal(t, colour.RGB{R: 93, G: 142, B: 203}, entry.Colour)
	assert.Equal(t, filepath.ToSlash(f.root)+"/cn/combat/GET_MISSION.png", entry.File)
}

func TestButtonServerFallback(t *testing.T) {
	f := newFixture(t)
	f.png(t, "cn", "X.png", stdimage.Rect(10, 10, 20, 20), blue)
	f.png(t, "en", "X.png", stdimage.Rect(30, 30, 50, 40), red)

	res, err := f.ex.Button(module, "X")
	require.NoError(t, err)

	entries := res.Descriptor.Button.Entries
	require.Len(t, entries, 3)
	assert.Equal(t, entries["cn"], entries["jp"], "jp falls back to the reference entry")
	assert.NotEqual(t, entries["cn"], entries["en"])
	assert.Equal(t, stdimage.Rect(30, 30, 50, 40), entries["en"].Area)

	assert.Equal(t, 1, res.Count(DiagnosticFallback))
	assert.Empty(t, f.logs.String(), "fallback is a debug-level notice")
}

func TestButtonOverridePrecedence(t *testing.T) {
	base := stdimage.Rect(10, 10, 60, 30)
	area := stdimage.Rect(0, 0, 100, 50)
	button := stdimage.Rect(20, 15, 30, 25)

	t.Run("button", func(t *testing.T) {
		f := newFixture(t)
		f.png(t, "cn", "BATTLE_STATUS_S.png", base, blue)
		f.png(t, "cn", "BATTLE_STATUS_S.BUTTON.png", button, red)

		res, err := f.ex.Button(module, "BATTLE_STATUS_S")
		require.NoError(t, err)

		entry := res.Descriptor.Button.Entries["cn"]
		assert.Equal(t, base, entry.Area)
		assert.Equal(t, button, entry.Button)
		assert.NotEqual(t, entry.Area, entry.Button)
		assert.Equal(t, colour.RGB{R: 93, G: 142, B: 203}, entry.Colour)
		assert.True(t, strings.HasSuffix(entry.File, "/BATTLE_STATUS_S.png"), "file is never an override path")
	})

	t.Run("area keeps original button", func(t *testing.T) {
		f := newFixture(t)
		f.png(t, "cn", "X.png", base, blue)
		f.png(t, "cn", "X.AREA.png", area, red)

		res, err := f.ex.Button(module, "X")
		require.NoError(t, err)

		entry := res.Descriptor.Button.Entries["cn"]
		assert.Equal(t, area, entry.Area)
		assert.Equal(t, base, entry.Button)
		assert.Equal(t, colour.RGB{R: 93, G: 142, B: 203}, entry.Colour, "colour is measured from the base image")
	})

	t.Run("colour", func(t *testing.T) {
		f := newFixture(t)
		f.png(t, "cn", "X.png", base, blue)
		f.png(t, "cn", "X.COLOR.png", area, green)

		res, err := f.ex.Button(module, "X")
		require.NoError(t, err)

		entry := res.Descriptor.Button.Entries["cn"]
		assert.Equal(t, base, entry.Area)
		assert.Equal(t, base, entry.Button)
		assert.Equal(t, colour.RGB{R: 30, G: 200, B: 60}, entry.Colour)
	})

	t.Run("all overrides", func(t *testing.T) {
		f := newFixture(t)
		f.png(t, "cn", "X.png", base, blue)
		f.png(t, "cn", "X.AREA.png", area, red)
		f.png(t, "cn", "X.COLOR.png", area, green)
		f.png(t, "cn", "X.BUTTON.png", button, red)

		res, err := f.ex.Button(module, "X")
		require.NoError(t, err)

		entry := res.Descriptor.Button.Entries["cn"]
		assert.Equal(t, area, entry.Area)
		assert.Equal(t, button, entry.Button)
		assert.Equal(t, colour.RGB{R: 30, G: 200, B: 60}, entry.Colour)
	})

	t.Run("overrides are per server", func(t *testing.T) {
		f := newFixture(t)
		f.png(t, "cn", "X.png", base, blue)
		f.png(t, "en", "X.png", base, blue)
		f.png(t, "en", "X.BUTTON.png", button, red)

		res, err := f.ex.Button(module, "X")
		require.NoError(t, err)

		entries := res.Descriptor.Button.Entries
		assert.Equal(t, base, entries["cn"].Button)
		assert.Equal(t, button, entries["en"].Button)
	})
}

func TestButtonAnimatedConsistency(t *testing.T) {
	f := newFixture(t)
	b := stdimage.Rect(10, 10, 30, 20)
	bPrime := stdimage.Rect(40, 40, 60, 50)

	frames := []*stdimage.NRGBA{
		assettest.Crop(testW, testH, b, blue),
		assettest.Crop(testW, testH, b, red),
		assettest.Crop(testW, testH, bPrime, blue),
	}
	assettest.WriteGIF(t, filepath.Join(f.root, "cn", module, "LOADING.gif"), frames)

	res, err := f.ex.Button(module, "LOADING")
	require.NoError(t, err)

	entry := res.Descriptor.Button.Entries["cn"]
	assert.Equal(t, b, entry.Area)
	assert.Equal(t, colour.RGB{R: 93, G: 142, B: 203}, entry.Colour, "only the first frame's colour is kept")
	assert.True(t, strings.HasSuffix(entry.File, "/LOADING.gif"))

	assert.Equal(t, 1, res.Count(DiagnosticConsistency))
	assert.Equal(t, 1, strings.Count(f.logs.String(), "[WARN]"))
	assert.Contains(t, f.logs.String(), "multiple different bbox")
}

func TestButtonAnimatedConsistent(t *testing.T) {
	f := newFixture(t)
	b := stdimage.Rect(10, 10, 30, 20)
	frames := []*stdimage.NRGBA{
		assettest.Crop(testW, testH, b, blue),
		assettest.Crop(testW, testH, b, red),
	}
	assettest.WriteGIF(t, filepath.Join(f.root, "cn", module, "LOADING.gif"), frames)

	res, err := f.ex.Button(module, "LOADING")
	require.NoError(t, err)
	assert.Zero(t, res.Count(DiagnosticConsistency))
}

func TestButtonPrefersStaticFormat(t *testing.T) {
	f := newFixture(t)
	f.png(t, "cn", "X.png", stdimage.Rect(1, 1, 5, 5), blue)
	assettest.WriteGIF(t, filepath.Join(f.root, "cn", module, "X.gif"),
		[]*stdimage.NRGBA{assettest.Crop(testW, testH, stdimage.Rect(50, 50, 60, 60), red)})

	res, err := f.ex.Button(module, "X")
	require.NoError(t, err)

	entry := res.Descriptor.Button.Entries["cn"]
	assert.Equal(t, stdimage.Rect(1, 1, 5, 5), entry.Area)
	assert.True(t, strings.HasSuffix(entry.File, "/X.png"))
}

func TestButtonMissingReference(t *testing.T) {
	f := newFixture(t)
	f.png(t, "en", "X.png", stdimage.Rect(1, 1, 5, 5), blue)

	_, err := f.ex.Button(module, "X")
	require.Error(t, err)

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "X", ce.Asset)
	assert.Equal(t, "cn", ce.Reference)
}

func TestButtonDecodeError(t *testing.T) {
	t.Run("base", func(t *testing.T) {
		f := newFixture(t)
		f.png(t, "cn", "X.png", stdimage.Rect(1, 1, 5, 5), blue)
		assettest.WriteCorrupt(t, filepath.Join(f.root, "en", module, "X.png"))

		_, err := f.ex.Button(module, "X")
		require.Error(t, err)
		assert.True(t, image.IsDecodeError(err))
		assert.Contains(t, err.Error(), "server en")
	})

	t.Run("override", func(t *testing.T) {
		f := newFixture(t)
		f.png(t, "cn", "X.png", stdimage.Rect(1, 1, 5, 5), blue)
		assettest.WriteCorrupt(t, filepath.Join(f.root, "cn", module, "X.AREA.png"))

		_, err := f.ex.Button(module, "X")
		require.Error(t, err)
		assert.True(t, image.IsDecodeError(err))
	})
}

func TestButtonResolutionWarning(t *testing.T) {
	f := newFixture(t)
	assettest.WritePNG(t, filepath.Join(f.root, "cn", module, "X.png"),
		assettest.Crop(64, 64, stdimage.Rect(1, 1, 5, 5), blue))

	res, err := f.ex.Button(module, "X")
	require.NoError(t, err)

	assert.Equal(t, stdimage.Rect(1, 1, 5, 5), res.Descriptor.Button.Entries["cn"].Area)
	assert.Equal(t, 1, res.Count(DiagnosticResolution))
	assert.Contains(t, f.logs.String(), "wrong resolution: 64x64")
}

func TestTemplate(t *testing.T) {
	f := newFixture(t)
	f.png(t, "cn", "TEMPLATE_AMBUSH.png", stdimage.Rect(1, 1, 5, 5), blue)
	f.png(t, "jp", "TEMPLATE_AMBUSH.png", stdimage.Rect(2, 2, 6, 6), blue)
	// Overrides are not consulted for templates.
	assettest.WriteCorrupt(t, filepath.Join(f.root, "cn", module, "TEMPLATE_AMBUSH.AREA.png"))

	res, err := f.ex.Template(module, "TEMPLATE_AMBUSH")
	require.NoError(t, err)

	d := res.Descriptor
	assert.Equal(t, asset.KindTemplate, d.Kind)
	assert.Nil(t, d.Button)
	require.NotNil(t, d.Template)

	files := d.Template.Files
	assert.Equal(t, files["cn"], files["en"])
	assert.True(t, strings.HasSuffix(files["jp"], "/jp/combat/TEMPLATE_AMBUSH.png"))
	assert.Equal(t, 1, res.Count(DiagnosticFallback))
}

func TestTemplateMissingReference(t *testing.T) {
	f := newFixture(t)
	_, err := f.ex.Template(module, "TEMPLATE_NONE")

	var ce *ConfigurationError
	assert.True(t, errors.As(err, &ce))
}

func TestPathKeepsRootPrefix(t *testing.T) {
	ex := New(Options{Root: "./assets/", Servers: DefaultServers()})
	assert.Equal(t, "./assets/cn/combat/X.png", ex.Path("cn", "combat", "X.png"))
}

func TestServers(t *testing.T) {
	s := Servers{Names: []string{"en", "cn", "jp"}, Reference: "cn"}
	require.NoError(t, s.Validate())
	assert.Equal(t, []string{"cn", "en", "jp"}, s.ProcessingOrder())

	assert.NoError(t, DefaultServers().Validate())
	assert.Error(t, Servers{Names: []string{"en"}, Reference: "cn"}.Validate())
	assert.Error(t, Servers{Names: []string{"cn", "cn"}, Reference: "cn"}.Validate())
	assert.Error(t, Servers{Reference: "cn"}.Validate())
}
