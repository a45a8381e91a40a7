package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolar(t *testing.T) {
	tests := []struct {
		name    string
		p       Point2D
		wantMag float64
		wantDeg float64
	}{
		{"positive x", Point2D{X: 10}, 10, 0},
		{"positive y", Point2D{Y: 5}, 5, 90},
		{"negative x", Point2D{X: -3}, 3, 180},
		{"negative y", Point2D{Y: -2}, 2, 270},
		{"diagonal", Point2D{X: 3, Y: 3}, math.Sqrt(18), 45},
		{"fourth quadrant", Point2D{X: 1, Y: -1}, math.Sqrt2, 315},
		{"origin", Point2D{}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mag, deg := tt.p.Polar()
			assert.InDelta(t, tt.wantMag, mag, 1e-9)
			assert.InDelta(t, tt.wantDeg, deg, 1e-9)
			assert.GreaterOrEqual(t, deg, 0.0)
			assert.Less(t, deg, 360.0)
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, Point2D{X: 3, Y: -2}, Point2D{X: 2.5, Y: -2.5}.Round())
	assert.Equal(t, Point2D{X: -1, Y: 0}, Point2D{X: -1.4, Y: 0.49}.Round())
}

func TestMinEnclosingCircle(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Circle{}, MinEnclosingCircle(nil))
	})

	t.Run("identical points", func(t *testing.T) {
		c := MinEnclosingCircle([]Point2D{{X: 4, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 4}})
		assert.Equal(t, 0.0, c.Radius)
		assert.Equal(t, Point2D{X: 4, Y: 4}, c.Center)
	})

	t.Run("two points", func(t *testing.T) {
		c := MinEnclosingCircle([]Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}})
		assert.InDelta(t, 5, c.Radius, 1e-9)
		assert.InDelta(t, 5, c.Center.X, 1e-9)
		assert.InDelta(t, 0, c.Center.Y, 1e-9)
	})

	t.Run("collinear points", func(t *testing.T) {
		c := MinEnclosingCircle([]Point2D{{X: 0}, {X: 3}, {X: 10}, {X: 7}})
		assert.InDelta(t, 5, c.Radius, 1e-9)
		assert.InDelta(t, 5, c.Center.X, 1e-9)
	})

	t.Run("square", func(t *testing.T) {
		pts := []Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 5, Y: 5}}
		c := MinEnclosingCircle(pts)
		assert.InDelta(t, math.Sqrt(50), c.Radius, 1e-9)
		assert.InDelta(t, 5, c.Center.X, 1e-9)
		assert.InDelta(t, 5, c.Center.Y, 1e-9)
	})

	t.Run("circle samples", func(t *testing.T) {
		pts := GenerateCirclePoints(50, 40, 20, 64)
		c := MinEnclosingCircle(pts)
		assert.InDelta(t, 20, c.Radius, 1e-6)
		assert.InDelta(t, 50, c.Center.X, 1e-6)
		assert.InDelta(t, 40, c.Center.Y, 1e-6)
		for _, p := range pts {
			assert.True(t, c.Contains(p))
		}
	})

	t.Run("obtuse triangle uses longest side", func(t *testing.T) {
		c := MinEnclosingCircle([]Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 1}})
		assert.InDelta(t, 5, c.Radius, 1e-9)
	})
}
