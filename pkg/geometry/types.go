// Package geometry provides the point and circle types used to describe
// shape contours.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// Round returns the point with both coordinates rounded half up, the way
// pixel coordinates are snapped before polar conversion.
func (p Point2D) Round() Point2D {
	return Point2D{X: math.Floor(p.X + 0.5), Y: math.Floor(p.Y + 0.5)}
}

// Polar returns the magnitude of the vector from the origin to p and its
// angle in degrees, normalized to [0, 360). The angle is measured in image
// coordinates, so it grows clockwise on screen.
func (p Point2D) Polar() (magnitude, degrees float64) {
	magnitude = math.Hypot(p.X, p.Y)
	degrees = math.Atan2(p.Y, p.X) * 180 / math.Pi
	if degrees < 0 {
		degrees += 360
	}
	if degrees >= 360 {
		degrees -= 360
	}
	return magnitude, degrees
}

// PointInt represents a 2D point with integer coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToFloat converts to Point2D.
func (p PointInt) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// Circle is a circle in pixel space.
type Circle struct {
	Center Point2D `json:"center"`
	Radius float64 `json:"radius"`
}

// Contains reports whether p lies inside the circle or on its border,
// allowing a small relative tolerance for rounding.
func (c Circle) Contains(p Point2D) bool {
	return c.Center.Distance(p) <= c.Radius*(1+1e-9)+1e-9
}

// GenerateCirclePoints generates n evenly-spaced points around a circle.
func GenerateCirclePoints(centerX, centerY, radius float64, n int) []Point2D {
	points := make([]Point2D, n)
	for i := 0; i < n; i++ {
		angle := float64(i) * 2.0 * math.Pi / float64(n)
		points[i] = Point2D{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}
	return points
}
