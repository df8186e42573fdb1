// Package analysis implements the pixel-level measurements behind an asset
// descriptor: the bounding box of a masked crop, the mean colour of a region
// and a resolution sanity check.
//
// Asset crops are full screenshots with everything except the element painted
// black, so "content" is any pixel whose brightest channel exceeds the
// configured threshold.
package analysis

import (
	"errors"
	"fmt"
	"image"

	"gonum.org/v1/gonum/stat"

	"github.com/jmylchreest/assetgen/internal/colour"
)

// ErrAreaOutOfBounds is returned when a sampling rectangle is empty or does not
// fit inside the image.
var ErrAreaOutOfBounds = errors.New("area outside image bounds")

// DefaultResolution is the screen size all asset coordinates are expressed in.
var DefaultResolution = image.Pt(1280, 720)

// Analyzer measures decoded frames. The zero value uses a threshold of 0 and
// does not check resolution; use NewAnalyzer for the defaults.
type Analyzer struct {
	// Threshold is the brightest-channel value at or below which a pixel is
	// treated as masked background. Default: 0.
	Threshold uint8

	// Resolution is the expected frame size. Default: 1280x720.
	Resolution image.Point
}

// NewAnalyzer creates an analyzer with default settings.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		Threshold:  0,
		Resolution: DefaultResolution,
	}
}

// BoundingBox returns the smallest rectangle enclosing every content pixel.
// The rectangle is half-open. If the frame has no content at all (uniform
// background, or any uniform colour), the full image bounds are returned.
func (a *Analyzer) BoundingBox(img *image.NRGBA) image.Rectangle {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X, b.Min.Y
	found := false

	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		row := img.Pix[off : off+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			if max(row[i], row[i+1], row[i+2]) <= a.Threshold {
				continue
			}
			x := b.Min.X + i/4
			found = true
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}

	if !found {
		return b
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// MeanColour calculates the mean colour of all pixels inside rect, rounding
// each channel half to even.
func (a *Analyzer) MeanColour(img *image.NRGBA, rect image.Rectangle) (colour.RGB, error) {
	if err := checkArea(img, rect); err != nil {
		return colour.RGB{}, err
	}

	var totalR, totalG, totalB uint64
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		off := img.PixOffset(rect.Min.X, y)
		row := img.Pix[off : off+rect.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			totalR += uint64(row[i])
			totalG += uint64(row[i+1])
			totalB += uint64(row[i+2])
		}
	}

	count := float64(rect.Dx() * rect.Dy())
	return colour.FromMean(
		float64(totalR)/count,
		float64(totalG)/count,
		float64(totalB)/count,
	), nil
}

// Stats holds per-channel statistics of a region, in R, G, B order.
type Stats struct {
	Mean   [3]float64
	StdDev [3]float64
}

// Spread computes the per-channel mean and standard deviation inside rect.
// A low deviation means the mean colour is a reliable fingerprint.
func (a *Analyzer) Spread(img *image.NRGBA, rect image.Rectangle) (Stats, error) {
	if err := checkArea(img, rect); err != nil {
		return Stats{}, err
	}

	n := rect.Dx() * rect.Dy()
	channels := [3][]float64{
		make([]float64, 0, n),
		make([]float64, 0, n),
		make([]float64, 0, n),
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		off := img.PixOffset(rect.Min.X, y)
		row := img.Pix[off : off+rect.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			for c := range channels {
				channels[c] = append(channels[c], float64(row[i+c]))
			}
		}
	}

	var s Stats
	for c, values := range channels {
		if len(values) == 1 {
			s.Mean[c] = values[0]
			continue
		}
		s.Mean[c], s.StdDev[c] = stat.MeanStdDev(values, nil)
	}
	return s, nil
}

// CheckResolution reports whether the frame matches the expected resolution.
// A zero Resolution disables the check.
func (a *Analyzer) CheckResolution(img *image.NRGBA) bool {
	if a.Resolution == (image.Point{}) {
		return true
	}
	return img.Bounds().Size() == a.Resolution
}

func checkArea(img *image.NRGBA, rect image.Rectangle) error {
	if rect.Empty() || !rect.In(img.Bounds()) {
		return fmt.Errorf("%w: %v not within %v", ErrAreaOutOfBounds, rect, img.Bounds())
	}
	return nil
}
