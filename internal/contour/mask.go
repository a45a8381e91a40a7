// Package contour extracts the outer boundary of the silhouette in an image
// file as an ordered list of pixel coordinates.
//
// Images are binarised with a fixed grey threshold. The background polarity
// is decided from the corner pixels so that both dark-on-light and
// light-on-dark silhouettes come out as foreground.
package contour

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"cpdh-retrieval/pkg/geometry"
)

// DefaultThreshold is the grey level above which a pixel counts as bright.
const DefaultThreshold = 210

// ErrNoContour is returned when an image has no foreground pixels.
var ErrNoContour = errors.New("no contour found")

// Tracer returns the ordered outer boundary points of the shape in an image
// file. When the image holds several separate shapes their boundaries are
// concatenated.
type Tracer interface {
	Trace(path string) ([]geometry.PointInt, error)
}

// Open decodes an image file, applying any EXIF orientation.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Binarize converts img to grey and sets every pixel brighter than
// threshold to 255 and every other pixel to 0.
func Binarize(img image.Image, threshold uint8) *image.Gray {
	gray := imaging.Grayscale(img)
	if threshold == 255 {
		return image.NewGray(gray.Bounds())
	}
	return segment.Threshold(gray, threshold+1)
}

// BackgroundIsBlack reports whether a binary image has a dark background.
// It is dark when both ends of either diagonal are black.
func BackgroundIsBlack(bin *image.Gray) bool {
	b := bin.Bounds()
	if b.Empty() {
		return true
	}
	black := func(x, y int) bool { return bin.GrayAt(x, y).Y == 0 }
	tl, br := black(b.Min.X, b.Min.Y), black(b.Max.X-1, b.Max.Y-1)
	tr, bl := black(b.Max.X-1, b.Min.Y), black(b.Min.X, b.Max.Y-1)
	return (tl && br) || (tr && bl)
}

// Mask is a binary image with the silhouette set. Coordinates start at 0
// regardless of the source image bounds.
type Mask struct {
	W, H int
	Pix  []bool
}

// NewMask binarises img and normalises polarity so the silhouette is set.
func NewMask(img image.Image, threshold uint8) *Mask {
	bin := Binarize(img, threshold)
	b := bin.Bounds()
	fg := uint8(255)
	if !BackgroundIsBlack(bin) {
		fg = 0
	}

	m := &Mask{W: b.Dx(), H: b.Dy(), Pix: make([]bool, b.Dx()*b.Dy())}
	for y := 0; y < m.H; y++ {
		row := bin.Pix[y*bin.Stride : y*bin.Stride+m.W]
		for x, v := range row {
			m.Pix[y*m.W+x] = v == fg
		}
	}
	return m
}

// At reports whether (x, y) is set. Points outside the mask are not.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.Pix[y*m.W+x]
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}
