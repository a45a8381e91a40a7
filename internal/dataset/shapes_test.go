package dataset

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"cpdh-retrieval/internal/cpdh"
	"cpdh-retrieval/pkg/geometry"
)

// polygonContour walks the closed polygon through vertices in unit steps.
func polygonContour(vertices []geometry.Point2D) []geometry.PointInt {
	var pts []geometry.PointInt
	for i, a := range vertices {
		b := vertices[(i+1)%len(vertices)]
		steps := int(math.Ceil(a.Distance(b)))
		for s := 0; s < steps; s++ {
			p := a.Add(b.Sub(a).Scale(float64(s) / float64(steps)))
			pts = append(pts, geometry.PointInt{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))})
		}
	}
	return pts
}

func squareContour(x, y, side float64) []geometry.PointInt {
	return polygonContour([]geometry.Point2D{
		{X: x, Y: y}, {X: x + side, Y: y}, {X: x + side, Y: y + side}, {X: x, Y: y + side},
	})
}

func circleContour(cx, cy, r float64) []geometry.PointInt {
	n := int(2 * math.Pi * r)
	pts := make([]geometry.PointInt, n)
	for i, p := range geometry.GenerateCirclePoints(cx, cy, r, n) {
		pts[i] = geometry.PointInt{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
	}
	return pts
}

// starContour is a five pointed star with the given outer radius.
func starContour(cx, cy, r float64) []geometry.PointInt {
	var vertices []geometry.Point2D
	for i := 0; i < 10; i++ {
		radius := r
		if i%2 == 1 {
			radius = r * 0.4
		}
		a := -math.Pi/2 + float64(i)*math.Pi/5
		vertices = append(vertices, geometry.Point2D{X: cx + radius*math.Cos(a), Y: cy + radius*math.Sin(a)})
	}
	return polygonContour(vertices)
}

func describe(t *testing.T, id string, contour []geometry.PointInt, n int) *cpdh.Descriptor {
	t.Helper()
	d, err := cpdh.Build(id, contour, n)
	require.NoError(t, err)
	return d
}

// shapeDataset holds two circles, two squares and two stars.
func shapeDataset(t *testing.T, n int) *Dataset {
	t.Helper()
	ds := New(n)
	require.NoError(t, ds.Put(describe(t, "circle-1.png", circleContour(60, 60, 40), n)))
	require.NoError(t, ds.Put(describe(t, "circle-2.png", circleContour(100, 80, 55), n)))
	require.NoError(t, ds.Put(describe(t, "square-1.png", squareContour(10, 10, 60), n)))
	require.NoError(t, ds.Put(describe(t, "square-2.png", squareContour(40, 25, 80), n)))
	require.NoError(t, ds.Put(describe(t, "star-1.png", starContour(70, 70, 50), n)))
	require.NoError(t, ds.Put(describe(t, "star-2.png", starContour(90, 60, 65), n)))
	return ds
}

type fakeTracer map[string][]geometry.PointInt

func (f fakeTracer) Trace(path string) ([]geometry.PointInt, error) {
	pts, ok := f[path]
	if !ok {
		return nil, errors.New("cannot decode image")
	}
	return pts, nil
}
