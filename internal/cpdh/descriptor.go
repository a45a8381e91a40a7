package cpdh

import (
	"fmt"
	"log"
	"sync"

	"cpdh-retrieval/pkg/geometry"
)

// Descriptor is the CPDH of one shape. It is immutable after construction
// and safe for concurrent use; always handle it by pointer.
type Descriptor struct {
	id        string
	hist      Histogram
	numPoints int
	sparse    bool

	variantsOnce sync.Once
	variants     [VariantCount][]float64
}

// Key identifies a descriptor for set membership: two descriptors with the
// same ID and histogram are the same element.
type Key struct {
	ID        string
	Histogram Histogram
}

// Build samples numPoints points from contour and describes them. It is the
// usual entry point for descriptors computed from a traced image.
//
// A contour shorter than numPoints is still described (points repeat); the
// condition is logged and reported by Oversampled.
func Build(id string, contour []geometry.PointInt, numPoints int) (*Descriptor, error) {
	sampled, sparse, err := Sample(contour, numPoints)
	if err != nil {
		return nil, fmt.Errorf("failed to sample %s: %w", id, err)
	}
	if sparse {
		log.Printf("Too few points in %s: %d contour points for %d samples", id, len(contour), numPoints)
	}
	d, err := NewDescriptor(id, sampled, numPoints)
	if err != nil {
		return nil, err
	}
	d.sparse = sparse
	return d, nil
}

// NewDescriptor bins already sampled points into a histogram. numPoints must
// equal len(sampled).
func NewDescriptor(id string, sampled []geometry.PointInt, numPoints int) (*Descriptor, error) {
	if len(sampled) != numPoints {
		return nil, fmt.Errorf("describe %s: %w: %d points for a %d point descriptor",
			id, ErrPointCountMismatch, len(sampled), numPoints)
	}

	pts := make([]geometry.Point2D, len(sampled))
	for i, p := range sampled {
		pts[i] = p.ToFloat()
	}
	circle := geometry.MinEnclosingCircle(pts)
	if circle.Radius <= 0 {
		return nil, fmt.Errorf("describe %s: %w: enclosing circle has zero radius", id, ErrDegenerateShape)
	}

	var h Histogram
	for _, p := range pts {
		mag, deg := p.Sub(circle.Center).Round().Polar()
		h[RingOf(mag, circle.Radius)*Sectors+SectorOf(deg)]++
	}

	return &Descriptor{id: id, hist: h, numPoints: numPoints}, nil
}

// FromHistogram wraps a stored histogram. The point count is the histogram
// sum.
func FromHistogram(id string, h Histogram) *Descriptor {
	return &Descriptor{id: id, hist: h, numPoints: h.Sum()}
}

// ID returns the identity the descriptor was built with, usually a file name.
func (d *Descriptor) ID() string { return d.id }

// Histogram returns a copy of the bin counts.
func (d *Descriptor) Histogram() Histogram { return d.hist }

// NumPoints returns the sampling count used to build the descriptor.
func (d *Descriptor) NumPoints() int { return d.numPoints }

// Oversampled reports whether the source contour had fewer points than
// NumPoints, so some samples are repeats.
func (d *Descriptor) Oversampled() bool { return d.sparse }

// Signature returns the histogram as EMD weights.
func (d *Descriptor) Signature() []float64 { return d.hist.Signature() }

// Key returns the set identity of the descriptor.
func (d *Descriptor) Key() Key { return Key{ID: d.id, Histogram: d.hist} }

// Equal reports whether both descriptors have the same ID and histogram.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Key() == other.Key()
}

// Variants returns the 24 rotation and mirror signatures of the descriptor.
// They are computed on first call and shared afterwards; callers must not
// modify the returned slices.
func (d *Descriptor) Variants() [VariantCount][]float64 {
	d.variantsOnce.Do(func() {
		for i, v := range Variants(d.hist) {
			d.variants[i] = v.Signature()
		}
	})
	return d.variants
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s (%d points)\n%s", d.id, d.numPoints, d.hist)
}
