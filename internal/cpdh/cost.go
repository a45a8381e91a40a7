package cpdh

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// CostMatrix is the ground distance used by every EMD computation.
// cost(i, j) is the circular sector distance between bins i and j plus the
// absolute difference of their rings. It is symmetric with a zero diagonal
// and satisfies the triangle inequality. A CostMatrix is never modified
// after BuildCostMatrix returns it.
type CostMatrix struct {
	sym   *mat.SymDense
	size  int
	rings int
}

var (
	defaultCost     *CostMatrix
	defaultCostOnce sync.Once
)

// DefaultCostMatrix returns the process-wide 36x36 cost matrix for 3 rings of
// 12 sectors. It is built on first use.
func DefaultCostMatrix() *CostMatrix {
	defaultCostOnce.Do(func() {
		c, err := BuildCostMatrix(Bins, Rings)
		if err != nil {
			panic(fmt.Sprintf("cpdh: default cost matrix: %v", err))
		}
		defaultCost = c
	})
	return defaultCost
}

// BuildCostMatrix builds the ground distance for histLength bins arranged in
// numRings contiguous rings.
//
// Inside a ring the cost between sectors a and b is
// maxDist - |maxDist - ((b-a) mod n)| with n sectors per ring and
// maxDist = n/2, which is the circular distance between the sectors. Bins in
// different rings add the ring distance |ringA - ringB|.
//
// The number of sectors per ring must be even, otherwise the kernel above is
// not symmetric.
func BuildCostMatrix(histLength, numRings int) (*CostMatrix, error) {
	if histLength <= 0 || numRings <= 0 || histLength%numRings != 0 {
		return nil, fmt.Errorf("cost matrix: %d bins cannot be split into %d rings", histLength, numRings)
	}
	perRing := histLength / numRings
	if perRing%2 != 0 {
		return nil, fmt.Errorf("cost matrix: %d sectors per ring, need an even count", perRing)
	}
	maxDist := perRing / 2

	data := make([]float64, histLength*histLength)
	for i := 0; i < histLength; i++ {
		ringI, sectorI := i/perRing, i%perRing
		for j := 0; j < histLength; j++ {
			ringJ, sectorJ := j/perRing, j%perRing
			shift := ((sectorJ-sectorI)%perRing + perRing) % perRing
			angular := maxDist - abs(maxDist-shift)
			data[i*histLength+j] = float64(angular + abs(ringI-ringJ))
		}
	}

	return &CostMatrix{
		sym:   mat.NewSymDense(histLength, data),
		size:  histLength,
		rings: numRings,
	}, nil
}

// At returns the unit cost of moving mass from bin i to bin j.
func (c *CostMatrix) At(i, j int) float64 {
	return c.sym.At(i, j)
}

// Size returns the number of bins the matrix covers.
func (c *CostMatrix) Size() int {
	return c.size
}

// Rings returns the number of rings the bins are arranged in.
func (c *CostMatrix) Rings() int {
	return c.rings
}

// String renders the matrix one row per line.
func (c *CostMatrix) String() string {
	return fmt.Sprintf("%v", mat.Formatted(c.sym, mat.Squeeze()))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
