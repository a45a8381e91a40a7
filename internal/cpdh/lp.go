package cpdh

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// LPSolver computes the EMD by solving the transportation problem as a
// linear program with gonum's simplex implementation. It is slower than
// FlowSolver and mostly useful to cross-check it.
type LPSolver struct {
	// Tol is the reduced cost tolerance handed to the simplex. Zero means 1e-10.
	Tol float64
}

// Distance implements TransportDistance.
func (s LPSolver) Distance(a, b []float64, cost *CostMatrix) (float64, error) {
	t, err := newTransport(a, b, cost)
	if err != nil {
		return 0, fmt.Errorf("emd: %w", err)
	}
	if work, ok := t.trivial(); ok {
		return work / t.total, nil
	}

	tol := s.Tol
	if tol == 0 {
		tol = 1e-10
	}

	c, A, rhs := t.standardForm()
	work, _, err := lp.Simplex(c, A, rhs, tol, t.northWestCorner())
	if err != nil {
		// The corner basis can be rejected on rounding; let the simplex find
		// its own.
		work, _, err = lp.Simplex(c, A, rhs, tol, nil)
	}
	if err != nil {
		return 0, fmt.Errorf("emd: transportation lp: %w", err)
	}
	return work / t.total, nil
}

// standardForm writes the problem as min c'x s.t. Ax = b, x >= 0 with one
// variable per source/sink pair (index s*k + d). Every source row is kept
// and the last sink row is dropped: it is implied by the others and the
// simplex needs A to have full row rank.
func (t *transport) standardForm() (c []float64, A *mat.Dense, b []float64) {
	m, k := len(t.src), len(t.dst)
	rows, cols := m+k-1, m*k

	c = make([]float64, cols)
	A = mat.NewDense(rows, cols, nil)
	b = make([]float64, rows)

	for s := 0; s < m; s++ {
		b[s] = t.supply[s]
		for d := 0; d < k; d++ {
			col := s*k + d
			c[col] = t.unit(s, d)
			A.Set(s, col, 1)
			if d < k-1 {
				A.Set(m+d, col, 1)
			}
		}
	}
	for d := 0; d < k-1; d++ {
		b[m+d] = t.demand[d]
	}
	return c, A, b
}

// northWestCorner returns the variables of the north-west corner rule
// solution: a staircase of m+k-1 cells that spans every source and sink, so
// its columns form a nonsingular basis of the reduced constraint matrix.
func (t *transport) northWestCorner() []int {
	m, k := len(t.src), len(t.dst)
	left := append([]float64(nil), t.supply...)
	need := append([]float64(nil), t.demand...)

	basic := make([]int, 0, m+k-1)
	s, d := 0, 0
	for {
		basic = append(basic, s*k+d)
		if s == m-1 && d == k-1 {
			break
		}
		move := left[s]
		if need[d] < move {
			move = need[d]
		}
		left[s] -= move
		need[d] -= move
		if (left[s] <= need[d] && s < m-1) || d == k-1 {
			s++
		} else {
			d++
		}
	}
	return basic
}
