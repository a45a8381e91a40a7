package cpdh

import (
	"fmt"
	"strconv"
	"strings"
)

// Grid layout of a histogram.
const (
	Sectors = 12
	Rings   = 3
	Bins    = Sectors * Rings

	sectorWidth = 360 / Sectors
)

// Histogram counts sampled points per bin. Index is ring*Sectors + sector.
type Histogram [Bins]int

// Sum returns the total number of points counted.
func (h Histogram) Sum() int {
	total := 0
	for _, v := range h {
		total += v
	}
	return total
}

// Signature returns the counts as EMD weights.
func (h Histogram) Signature() []float64 {
	sig := make([]float64, Bins)
	for i, v := range h {
		sig[i] = float64(v)
	}
	return sig
}

// At returns the count at ring, sector.
func (h Histogram) At(ring, sector int) int {
	return h[ring*Sectors+sector]
}

// Rotate shifts every ring k sectors forward, wrapping around. The count of
// sector s moves to sector (s+k) mod 12 in the same ring.
func (h Histogram) Rotate(k int) Histogram {
	k = ((k % Sectors) + Sectors) % Sectors
	var out Histogram
	for ring := 0; ring < Rings; ring++ {
		base := ring * Sectors
		for s := 0; s < Sectors; s++ {
			out[base+(s+k)%Sectors] = h[base+s]
		}
	}
	return out
}

// Mirror reverses the sector order of every ring.
func (h Histogram) Mirror() Histogram {
	var out Histogram
	for ring := 0; ring < Rings; ring++ {
		base := ring * Sectors
		for s := 0; s < Sectors; s++ {
			out[base+Sectors-1-s] = h[base+s]
		}
	}
	return out
}

// Line renders the counts on one line separated by single spaces, the form
// used in data set files.
func (h Histogram) Line() string {
	var sb strings.Builder
	for i, v := range h {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// String renders one ring per line, inner ring first.
func (h Histogram) String() string {
	var sb strings.Builder
	for ring := 0; ring < Rings; ring++ {
		for s := 0; s < Sectors; s++ {
			fmt.Fprintf(&sb, "%4d", h.At(ring, s))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseHistogram reads a line written by Line. Leading and trailing
// whitespace is ignored; any run of spaces separates fields.
func ParseHistogram(line string) (Histogram, error) {
	var h Histogram
	fields := strings.Fields(line)
	if len(fields) != Bins {
		return h, fmt.Errorf("%w: want %d values, got %d", ErrCorruptRecord, Bins, len(fields))
	}
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return h, fmt.Errorf("%w: value %d: %q is not an integer", ErrCorruptRecord, i, f)
		}
		if v < 0 {
			return h, fmt.Errorf("%w: value %d is negative (%d)", ErrCorruptRecord, i, v)
		}
		h[i] = v
	}
	return h, nil
}

// SectorOf maps an angle in [0, 360) to its sector. Sector 0 covers
// [330, 360) and sector 11 covers [0, 30).
func SectorOf(degrees float64) int {
	s := int(degrees) / sectorWidth
	if s < 0 {
		s = 0
	}
	if s >= Sectors {
		s = Sectors - 1
	}
	return Sectors - 1 - s
}

// RingOf maps a distance from the circle centre to its ring. Magnitudes
// strictly above two thirds of the radius are in ring 2, strictly above one
// third in ring 1, the rest in ring 0.
func RingOf(magnitude, radius float64) int {
	first := radius / 3
	second := first * 2
	switch {
	case magnitude > second:
		return 2
	case magnitude > first:
		return 1
	default:
		return 0
	}
}
