package geometry

import "math"

// MinEnclosingCircle returns the smallest circle containing every point,
// using the incremental Welzl construction. Points are visited in the order
// given, so the result is deterministic for a given input.
//
// An empty input yields the zero Circle. A single distinct point yields a
// circle of radius 0; callers that divide by the radius must check for it.
func MinEnclosingCircle(points []Point2D) Circle {
	if len(points) == 0 {
		return Circle{}
	}

	c := Circle{Center: points[0]}
	for i := 1; i < len(points); i++ {
		if c.Contains(points[i]) {
			continue
		}
		c = Circle{Center: points[i]}
		for j := 0; j < i; j++ {
			if c.Contains(points[j]) {
				continue
			}
			c = circleFromDiameter(points[i], points[j])
			for k := 0; k < j; k++ {
				if c.Contains(points[k]) {
					continue
				}
				c = circleFromThree(points[i], points[j], points[k])
			}
		}
	}
	return c
}

// circleFromDiameter returns the circle having segment ab as its diameter.
func circleFromDiameter(a, b Point2D) Circle {
	center := Point2D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	return Circle{Center: center, Radius: center.Distance(a)}
}

// circleFromThree returns the circumcircle of a, b and c. For collinear
// points it falls back to the circle spanning the two farthest points.
func circleFromThree(a, b, c Point2D) Circle {
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y
	d := 2 * (bx*cy - by*cx)
	if math.Abs(d) < 1e-12 {
		best := circleFromDiameter(a, b)
		if alt := circleFromDiameter(a, c); alt.Radius > best.Radius {
			best = alt
		}
		if alt := circleFromDiameter(b, c); alt.Radius > best.Radius {
			best = alt
		}
		return best
	}

	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	center := Point2D{X: a.X + ux, Y: a.Y + uy}
	return Circle{Center: center, Radius: math.Hypot(ux, uy)}
}
