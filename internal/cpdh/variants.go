package cpdh

// VariantCount is the number of orientations a query is compared in.
const VariantCount = 2 * Sectors

// Variants returns the 12 rotations of h followed by the 12 rotations of its
// mirror image. Variant 0 is h itself and variant 12 is h.Mirror().
func Variants(h Histogram) [VariantCount]Histogram {
	var out [VariantCount]Histogram
	mirrored := h.Mirror()
	for k := 0; k < Sectors; k++ {
		out[k] = h.Rotate(k)
		out[Sectors+k] = mirrored.Rotate(k)
	}
	return out
}
