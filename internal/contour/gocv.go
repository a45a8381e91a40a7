//go:build gocv

package contour

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"cpdh-retrieval/pkg/geometry"
)

// GocvTracer traces silhouettes with OpenCV: grey conversion, binary
// threshold, polarity check and external contours without approximation.
type GocvTracer struct {
	threshold uint8
}

// NewGocvTracer creates an OpenCV backed tracer that binarises at threshold.
func NewGocvTracer(threshold uint8) *GocvTracer {
	return &GocvTracer{threshold: threshold}
}

// Trace implements Tracer. Images are decoded in Go so that formats OpenCV
// cannot read, such as GIF, are accepted.
func (t *GocvTracer) Trace(path string) ([]geometry.PointInt, error) {
	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	pts, err := t.TraceImage(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pts, nil
}

// TraceImage returns the concatenated external contours of img.
func (t *GocvTracer) TraceImage(img image.Image) ([]geometry.PointInt, error) {
	src := imageToMat(img)
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(gray, &bin, float32(t.threshold), 255, gocv.ThresholdBinary)

	if !matBackgroundIsBlack(bin) {
		inverted := gocv.NewMat()
		defer inverted.Close()
		gocv.BitwiseNot(bin, &inverted)
		bin = inverted
	}

	contours := gocv.FindContours(bin, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	var pts []geometry.PointInt
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		for j := 0; j < contour.Size(); j++ {
			p := contour.At(j)
			pts = append(pts, geometry.PointInt{X: p.X, Y: p.Y})
		}
	}
	if len(pts) == 0 {
		return nil, ErrNoContour
	}
	return pts, nil
}

func matBackgroundIsBlack(bin gocv.Mat) bool {
	rows, cols := bin.Rows(), bin.Cols()
	if rows == 0 || cols == 0 {
		return true
	}
	black := func(r, c int) bool { return bin.GetUCharAt(r, c) == 0 }
	tl, br := black(0, 0), black(rows-1, cols-1)
	tr, bl := black(0, cols-1), black(rows-1, 0)
	return (tl && br) || (tr && bl)
}

// imageToMat converts a Go image to a BGR Mat.
func imageToMat(img image.Image) gocv.Mat {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(bl>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat
}
