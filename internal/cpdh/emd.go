package cpdh

import (
	"fmt"
	"math"
)

// TransportDistance computes the Earth Mover's Distance between two
// signatures of equal total mass under a ground distance. Implementations
// return the minimal transport work divided by the total mass, are
// symmetric in a and b and return 0 when a equals b.
type TransportDistance interface {
	Distance(a, b []float64, cost *CostMatrix) (float64, error)
}

// massTolerance is the relative difference allowed between signature masses.
const massTolerance = 1e-9

// Distance computes the EMD between two signatures with the default solver.
// A nil cost uses DefaultCostMatrix.
func Distance(a, b []float64, cost *CostMatrix) (float64, error) {
	return FlowSolver{}.Distance(a, b, cost)
}

// EMD compares two descriptors as stored, without trying other orientations.
func EMD(a, b *Descriptor) (float64, error) {
	if a.NumPoints() != b.NumPoints() {
		return 0, fmt.Errorf("emd %s vs %s: %w: %d and %d",
			a.ID(), b.ID(), ErrPointCountMismatch, a.NumPoints(), b.NumPoints())
	}
	return Distance(a.Signature(), b.Signature(), DefaultCostMatrix())
}

// MatchBest returns the smallest distance between any of the 24 variants of
// query and target as stored. Only the query is rotated and mirrored. A nil
// solver uses FlowSolver.
func MatchBest(solver TransportDistance, query, target *Descriptor) (float64, error) {
	if solver == nil {
		solver = FlowSolver{}
	}
	if query.NumPoints() != target.NumPoints() {
		return 0, fmt.Errorf("match %s vs %s: %w: %d and %d",
			query.ID(), target.ID(), ErrPointCountMismatch, query.NumPoints(), target.NumPoints())
	}

	cost := DefaultCostMatrix()
	sig := target.Signature()
	best := math.Inf(1)
	for _, v := range query.Variants() {
		d, err := solver.Distance(v, sig, cost)
		if err != nil {
			return 0, fmt.Errorf("match %s vs %s: %w", query.ID(), target.ID(), err)
		}
		if d < best {
			best = d
		}
		if best == 0 {
			break
		}
	}
	return best, nil
}

// transport is a balanced transportation problem between the bins where a
// has more mass than b (sources) and the bins where b has more than a
// (sinks). Mass present in both signatures stays in place: the ground
// distance has a zero diagonal and satisfies the triangle inequality, so
// moving it can never be cheaper.
type transport struct {
	cost   *CostMatrix
	src    []int
	dst    []int
	supply []float64
	demand []float64
	total  float64
}

func newTransport(a, b []float64, cost *CostMatrix) (*transport, error) {
	if cost == nil {
		cost = DefaultCostMatrix()
	}
	n := cost.Size()
	if len(a) != n || len(b) != n {
		return nil, fmt.Errorf("signature lengths %d and %d, cost matrix is %dx%d", len(a), len(b), n, n)
	}

	var sumA, sumB float64
	for i := 0; i < n; i++ {
		if a[i] < 0 || b[i] < 0 || math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			return nil, fmt.Errorf("bin %d: weights must be non-negative, got %g and %g", i, a[i], b[i])
		}
		sumA += a[i]
		sumB += b[i]
	}
	if sumA == 0 && sumB == 0 {
		return nil, ErrEmptySignature
	}
	if math.Abs(sumA-sumB) > massTolerance*math.Max(sumA, sumB) {
		return nil, fmt.Errorf("%w: %g and %g", ErrMassMismatch, sumA, sumB)
	}

	t := &transport{cost: cost, total: sumA}
	for i := 0; i < n; i++ {
		switch diff := a[i] - b[i]; {
		case diff > 0:
			t.src = append(t.src, i)
			t.supply = append(t.supply, diff)
		case diff < 0:
			t.dst = append(t.dst, i)
			t.demand = append(t.demand, -diff)
		}
	}
	return t, nil
}

// unit returns the cost of moving one unit from source s to sink d.
func (t *transport) unit(s, d int) float64 {
	return t.cost.At(t.src[s], t.dst[d])
}

// trivial reports whether the problem has a closed form: nothing to move,
// or a single source or sink that every unit must leave or reach.
func (t *transport) trivial() (work float64, ok bool) {
	switch {
	case len(t.src) == 0 || len(t.dst) == 0:
		return 0, true
	case len(t.src) == 1:
		for d, m := range t.demand {
			work += m * t.unit(0, d)
		}
		return work, true
	case len(t.dst) == 1:
		for s, m := range t.supply {
			work += m * t.unit(s, 0)
		}
		return work, true
	}
	return 0, false
}
