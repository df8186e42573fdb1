// Package assettest builds synthetic asset crops and writes them to disk for
// tests across the pipeline packages.
package assettest

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Black is the masked background of every crop.
var Black = color.NRGBA{A: 255}

// Canvas returns a w x h image filled with bg.
func Canvas(w, h int, bg color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	FillRect(img, img.Bounds(), bg)
	return img
}

// FillRect paints rect with c.
func FillRect(img *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// Crop returns a black w x h canvas with a single filled rectangle, the shape
// of a masked UI element capture.
func Crop(w, h int, rect image.Rectangle, c color.NRGBA) *image.NRGBA {
	img := Canvas(w, h, Black)
	FillRect(img, rect, c)
	return img
}

// WritePNG encodes img to path, creating parent directories.
func WritePNG(t testing.TB, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, img))
}

// WriteGIF encodes frames as an animated GIF at path. Frames must share one
// size and use at most 256 distinct opaque colours.
func WriteGIF(t testing.TB, path string, frames []*image.NRGBA) {
	t.Helper()
	require.NotEmpty(t, frames)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	var palette color.Palette
	index := make(map[color.NRGBA]uint8)
	for _, frame := range frames {
		b := frame.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := frame.NRGBAAt(x, y)
				c.A = 255
				if _, ok := index[c]; ok {
					continue
				}
				require.Less(t, len(palette), 256, "too many colours for a GIF palette")
				index[c] = uint8(len(palette))
				palette = append(palette, c)
			}
		}
	}

	anim := &gif.GIF{}
	for _, frame := range frames {
		b := frame.Bounds()
		p := image.NewPaletted(b, palette)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := frame.NRGBAAt(x, y)
				c.A = 255
				p.SetColorIndex(x, y, index[c])
			}
		}
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, 10)
		anim.Disposal = append(anim.Disposal, gif.DisposalNone)
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, gif.EncodeAll(f, anim))
}

// WriteCorrupt writes bytes at path that no image decoder accepts.
func WriteCorrupt(t testing.TB, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not an image at all"), 0o644))
}
