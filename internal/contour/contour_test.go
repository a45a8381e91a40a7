package contour

import (
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"cpdh-retrieval/pkg/geometry"
)

// silhouette draws filled rectangles of fg on a bg canvas.
func silhouette(w, h int, bg, fg uint8, rects ...image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = bg
	}
	for _, r := range rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetGray(x, y, color.Gray{Y: fg})
			}
		}
	}
	return img
}

func disk(w, h, cx, cy, r int) *image.Gray {
	img := silhouette(w, h, 255, 0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return img
}

func adjacent(a, b geometry.PointInt) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1 && (dx != 0 || dy != 0)
}

func TestBinarize(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 1))
	img.Pix = []uint8{0, 190, 230, 255}

	bin := Binarize(img, DefaultThreshold)
	assert.Equal(t, []uint8{0, 0, 255, 255}, bin.Pix)

	none := Binarize(img, 255)
	assert.Equal(t, []uint8{0, 0, 0, 0}, none.Pix)
}

func TestBackgroundIsBlack(t *testing.T) {
	assert.True(t, BackgroundIsBlack(silhouette(10, 10, 0, 255, image.Rect(3, 3, 6, 6))))
	assert.False(t, BackgroundIsBlack(silhouette(10, 10, 255, 0, image.Rect(3, 3, 6, 6))))

	// Shape touching two opposite corners still leaves the other diagonal.
	diag := silhouette(10, 10, 0, 255, image.Rect(0, 0, 2, 2), image.Rect(8, 8, 10, 10))
	assert.True(t, BackgroundIsBlack(diag))
}

func TestNewMaskPolarity(t *testing.T) {
	r := image.Rect(2, 3, 7, 9)
	dark := NewMask(silhouette(12, 12, 255, 0, r), DefaultThreshold)
	light := NewMask(silhouette(12, 12, 0, 255, r), DefaultThreshold)

	assert.Equal(t, dark.Pix, light.Pix)
	assert.Equal(t, r.Dx()*r.Dy(), dark.Count())
	assert.True(t, dark.At(2, 3))
	assert.False(t, dark.At(1, 3))
	assert.False(t, dark.At(-1, 0))
	assert.False(t, dark.At(12, 0))
}

func TestBoundariesSquare(t *testing.T) {
	m := NewMask(silhouette(40, 40, 255, 0, image.Rect(10, 10, 30, 30)), DefaultThreshold)
	bs := Boundaries(m)
	require.Len(t, bs, 1)

	b := bs[0]
	assert.Len(t, b, 76)
	assert.Equal(t, geometry.PointInt{X: 10, Y: 10}, b[0])
	assert.Equal(t, geometry.PointInt{X: 11, Y: 10}, b[1], "tracing runs clockwise")

	seen := map[geometry.PointInt]bool{}
	for i, p := range b {
		assert.False(t, seen[p], "%v repeated", p)
		seen[p] = true
		onEdge := p.X == 10 || p.X == 29 || p.Y == 10 || p.Y == 29
		assert.True(t, onEdge, "%v is not on the border", p)
		assert.True(t, adjacent(p, b[(i+1)%len(b)]), "%v and next are not neighbours", p)
	}
}

func TestBoundariesIgnoresHolesAndInnerShapes(t *testing.T) {
	img := silhouette(40, 40, 255, 0, image.Rect(5, 5, 35, 35))
	// Hole with an island inside it.
	for y := 10; y < 30; y++ {
		for x := 10; x < 30; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	for y := 15; y < 25; y++ {
		for x := 15; x < 25; x++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}

	bs := Boundaries(NewMask(img, DefaultThreshold))
	require.Len(t, bs, 1)
	assert.Equal(t, geometry.PointInt{X: 5, Y: 5}, bs[0][0])
	assert.Len(t, bs[0], 4*30-4)
}

func TestBoundariesSeveralShapes(t *testing.T) {
	img := silhouette(30, 30, 255, 0, image.Rect(15, 2, 20, 7), image.Rect(2, 10, 6, 14))
	bs := Boundaries(NewMask(img, DefaultThreshold))
	require.Len(t, bs, 2)
	assert.Equal(t, geometry.PointInt{X: 15, Y: 2}, bs[0][0])
	assert.Equal(t, geometry.PointInt{X: 2, Y: 10}, bs[1][0])
}

func TestBoundariesThinShapes(t *testing.T) {
	single := Boundaries(NewMask(silhouette(5, 5, 255, 0, image.Rect(2, 2, 3, 3)), DefaultThreshold))
	require.Len(t, single, 1)
	assert.Equal(t, []geometry.PointInt{{X: 2, Y: 2}}, single[0])

	// A one pixel wide line is walked out and back.
	line := Boundaries(NewMask(silhouette(10, 5, 255, 0, image.Rect(2, 2, 6, 3)), DefaultThreshold))
	require.Len(t, line, 1)
	assert.Equal(t, []geometry.PointInt{
		{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 2}, {X: 5, Y: 2}, {X: 4, Y: 2}, {X: 3, Y: 2},
	}, line[0])
}

func TestTraceFileFormats(t *testing.T) {
	dir := t.TempDir()
	img := disk(60, 50, 30, 25, 18)

	pngPath := filepath.Join(dir, "disk-1.png")
	require.NoError(t, imaging.Save(img, pngPath))

	bmpPath := filepath.Join(dir, "disk-2.bmp")
	writeWith(t, bmpPath, func(f *os.File) error { return bmp.Encode(f, img) })

	tiffPath := filepath.Join(dir, "disk-3.tif")
	writeWith(t, tiffPath, func(f *os.File) error { return tiff.Encode(f, img, nil) })

	gifPath := filepath.Join(dir, "disk-4.gif")
	writeWith(t, gifPath, func(f *os.File) error { return gif.Encode(f, img, nil) })

	tracer := NewTracer(DefaultThreshold)
	want, err := tracer.TraceImage(img)
	require.NoError(t, err)
	require.NotEmpty(t, want)

	for _, path := range []string{pngPath, bmpPath, tiffPath, gifPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			got, err := tracer.Trace(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestTraceErrors(t *testing.T) {
	dir := t.TempDir()
	blank := filepath.Join(dir, "blank.png")
	require.NoError(t, imaging.Save(silhouette(20, 20, 255, 0), blank))

	tracer := NewTracer(DefaultThreshold)
	_, err := tracer.Trace(blank)
	assert.ErrorIs(t, err, ErrNoContour)

	_, err = tracer.Trace(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	junk := filepath.Join(dir, "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0644))
	_, err = tracer.Trace(junk)
	assert.Error(t, err)
}

func TestTracerSatisfiesInterface(t *testing.T) {
	var _ Tracer = NewTracer(DefaultThreshold)
}

func writeWith(t *testing.T, path string, encode func(*os.File) error) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, encode(f))
	require.NoError(t, f.Close())
}
