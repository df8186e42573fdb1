// Package image provides utilities for loading asset crops from disk.
//
// Every decoded frame is normalised to an *image.NRGBA anchored at the origin
// so that the analysis code only ever deals with one pixel layout. Animated
// GIFs are composited frame by frame onto a full-size canvas, honouring the
// disposal method of each frame, so frame N is what a viewer would show.
package image

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	_ "image/png" // Register PNG format
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/image/draw"
)

// Extensions accepted by the loader, in resolution order. Static images are
// tried before the animated format.
const (
	ExtStatic   = ".png"
	ExtAnimated = ".gif"
)

// SupportedImageExtensions returns the extensions the asset pipeline accepts.
func SupportedImageExtensions() []string {
	return []string{ExtStatic, ExtAnimated}
}

// IsImageFile checks if a file has a supported image extension. Extensions
// are matched exactly, so GOTO.PNG is not an asset file.
func IsImageFile(path string) bool {
	return slices.Contains(SupportedImageExtensions(), filepath.Ext(path))
}

// DecodeError reports an image that exists on disk but could not be decoded.
type DecodeError struct {
	Path   string
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("failed to decode image %s (format: %s): %v", e.Path, e.Format, e.Err)
	}
	return fmt.Sprintf("failed to decode image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err carries a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Source is a decoded asset file.
type Source struct {
	// Path is the file the frames were decoded from.
	Path string

	// Frames holds one entry for static images and every composited frame
	// for animated ones. Frames must be treated as read-only.
	Frames []*image.NRGBA

	// Animated is true when the file is in the animated container format,
	// even if it happens to carry a single frame.
	Animated bool
}

// First returns the first frame.
func (s *Source) First() *image.NRGBA {
	return s.Frames[0]
}

// Loader handles loading asset images.
type Loader interface {
	// Load decodes the image at path. Decode failures are returned as
	// *DecodeError; a missing file is returned as a wrapped fs.ErrNotExist.
	Load(path string) (*Source, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load loads an image from a file path.
func (l *FileLoader) Load(path string) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - asset paths come from the configured asset root
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	if filepath.Ext(path) == ExtAnimated {
		g, err := gif.DecodeAll(file)
		if err != nil {
			return nil, &DecodeError{Path: path, Format: "gif", Err: err}
		}
		if len(g.Image) == 0 {
			return nil, &DecodeError{Path: path, Format: "gif", Err: errors.New("no frames")}
		}
		return &Source{Path: path, Frames: compositeGIF(g), Animated: true}, nil
	}

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, &DecodeError{Path: path, Format: format, Err: err}
	}
	return &Source{Path: path, Frames: []*image.NRGBA{Normalise(img)}}, nil
}

// Normalise converts img to an origin-anchored NRGBA image. Images that are
// already in that layout are returned as-is.
func Normalise(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// compositeGIF renders every frame of g onto a logical-screen sized canvas.
func compositeGIF(g *gif.GIF) []*image.NRGBA {
	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		screen = g.Image[0].Bounds()
		for _, frame := range g.Image[1:] {
			screen = screen.Union(frame.Bounds())
		}
	}

	canvas := image.NewNRGBA(screen)
	frames := make([]*image.NRGBA, 0, len(g.Image))
	for i, frame := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var previous *image.NRGBA
		if disposal == gif.DisposalPrevious {
			previous = cloneNRGBA(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		frames = append(frames, Normalise(cloneNRGBA(canvas)))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}
	return frames
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
