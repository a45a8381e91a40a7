package cpdh

import (
	"fmt"
	"math"

	"cpdh-retrieval/pkg/geometry"
)

// Sample selects n points spread evenly along contour, preserving order.
//
// Point i of the result is contour[round(i * len/n)], clamped to the last
// index. When the contour has fewer than n points the selection repeats
// points and sparse is true so the caller can warn; the result is still
// exactly n points long.
func Sample(contour []geometry.PointInt, n int) (sampled []geometry.PointInt, sparse bool, err error) {
	if n <= 0 {
		return nil, false, fmt.Errorf("sample: point count must be positive, got %d", n)
	}
	if len(contour) == 0 {
		return nil, false, fmt.Errorf("sample: %w: empty contour", ErrDegenerateShape)
	}

	last := len(contour) - 1
	increment := float64(len(contour)) / float64(n)
	sampled = make([]geometry.PointInt, n)
	for i := range sampled {
		idx := int(math.Floor(float64(i)*increment + 0.5))
		if idx > last {
			idx = last
		}
		sampled[i] = contour[idx]
	}
	return sampled, len(contour) < n, nil
}
