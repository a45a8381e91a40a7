package cpdh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpdh-retrieval/pkg/geometry"
)

// squareContour walks the border of an axis aligned square clockwise.
func squareContour(x0, y0, side int) []geometry.PointInt {
	var pts []geometry.PointInt
	for x := x0; x < x0+side; x++ {
		pts = append(pts, geometry.PointInt{X: x, Y: y0})
	}
	for y := y0; y < y0+side; y++ {
		pts = append(pts, geometry.PointInt{X: x0 + side, Y: y})
	}
	for x := x0 + side; x > x0; x-- {
		pts = append(pts, geometry.PointInt{X: x, Y: y0 + side})
	}
	for y := y0 + side; y > y0; y-- {
		pts = append(pts, geometry.PointInt{X: x0, Y: y})
	}
	return pts
}

// ringContour returns n integer points on a circle.
func ringContour(cx, cy int, radius float64, n int, phaseDeg float64) []geometry.PointInt {
	pts := make([]geometry.PointInt, n)
	for i := range pts {
		a := (phaseDeg + 360*float64(i)/float64(n)) * math.Pi / 180
		pts[i] = geometry.PointInt{
			X: cx + int(math.Round(radius*math.Cos(a))),
			Y: cy + int(math.Round(radius*math.Sin(a))),
		}
	}
	return pts
}

func TestBuildHistogramSumsToPointCount(t *testing.T) {
	for _, n := range []int{50, 100, 250} {
		d, err := Build("square-1.png", squareContour(10, 10, 80), n)
		require.NoError(t, err)
		assert.Equal(t, n, d.NumPoints())
		assert.Equal(t, n, d.Histogram().Sum())
		assert.False(t, d.Oversampled())
	}
}

func TestNewDescriptorBinsByPolarPosition(t *testing.T) {
	// One point in the middle of every sector, all on the outer ring.
	pts := ringContour(200, 200, 100, 12, 15)
	d, err := NewDescriptor("dial", pts, 12)
	require.NoError(t, err)

	h := d.Histogram()
	for i := 0; i < 2*Sectors; i++ {
		assert.Zero(t, h[i], "bin %d", i)
	}
	for i := 2 * Sectors; i < Bins; i++ {
		assert.Equal(t, 1, h[i], "bin %d", i)
	}
}

func TestNewDescriptorRings(t *testing.T) {
	// Points on the horizontal axis: angle 0 is sector 11, angle 180 sector 5.
	pts := []geometry.PointInt{
		{X: -90, Y: 0}, {X: 90, Y: 0},
		{X: 10, Y: 0},
		{X: 45, Y: 0}, {X: -45, Y: 0},
	}
	d, err := NewDescriptor("axis", pts, len(pts))
	require.NoError(t, err)

	h := d.Histogram()
	assert.Equal(t, 1, h.At(2, 11), "outer right")
	assert.Equal(t, 1, h.At(2, 5), "outer left")
	assert.Equal(t, 1, h.At(0, 11), "inner")
	assert.Equal(t, 1, h.At(1, 11), "middle right")
	assert.Equal(t, 1, h.At(1, 5), "middle left")
}

func TestDegenerateShape(t *testing.T) {
	same := []geometry.PointInt{{X: 3, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 3}}
	_, err := NewDescriptor("dot", same, 3)
	assert.ErrorIs(t, err, ErrDegenerateShape)

	_, err = Build("dot", same, 50)
	assert.ErrorIs(t, err, ErrDegenerateShape)

	_, err = Build("empty", nil, 50)
	assert.ErrorIs(t, err, ErrDegenerateShape)
}

func TestNewDescriptorCountMismatch(t *testing.T) {
	_, err := NewDescriptor("x", squareContour(0, 0, 10), 7)
	assert.ErrorIs(t, err, ErrPointCountMismatch)
}

func TestBuildSparseContour(t *testing.T) {
	d, err := Build("tiny", squareContour(0, 0, 3), 50)
	require.NoError(t, err)
	assert.True(t, d.Oversampled())
	assert.Equal(t, 50, d.Histogram().Sum())
}

func TestFromHistogram(t *testing.T) {
	h := sequenceHistogram()
	d := FromHistogram("seq", h)
	assert.Equal(t, h.Sum(), d.NumPoints())
	assert.Equal(t, h, d.Histogram())
	assert.Equal(t, h.Signature(), d.Signature())
}

func TestDescriptorEquality(t *testing.T) {
	h := sequenceHistogram()
	a := FromHistogram("a-1.png", h)
	b := FromHistogram("a-1.png", h)
	c := FromHistogram("a-2.png", h)
	other := h
	other[0]++
	d := FromHistogram("a-1.png", other)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(nil))
}

func TestVariants(t *testing.T) {
	h := sequenceHistogram()
	vs := Variants(h)
	assert.Equal(t, h, vs[0])
	assert.Equal(t, h.Mirror(), vs[Sectors])
	for k := 0; k < Sectors; k++ {
		assert.Equal(t, h.Rotate(k), vs[k])
		assert.Equal(t, h.Mirror().Rotate(k), vs[Sectors+k])
		assert.Equal(t, h.Sum(), vs[k].Sum())
	}

	d := FromHistogram("seq", h)
	sigs := d.Variants()
	for i, v := range vs {
		assert.Equal(t, v.Signature(), sigs[i])
	}
}
