// Package cpdh builds Contour Points Distribution Histograms and compares
// them with the Earth Mover's Distance.
//
// A descriptor is built from an ordered list of boundary points:
//
//  1. Sample reduces the boundary to a fixed number of evenly spaced points.
//  2. The minimal enclosing circle of the sampled points gives the centre and
//     radius of a polar grid of 3 rings and 12 angular sectors.
//  3. Each sampled point is counted in the bin its polar position falls in,
//     producing a 36 bin Histogram whose sum is the number of sampled points.
//
// Bin index is ring*12 + sector. Rings are inner, middle and outer (radius
// thirds). Sector 0 covers [330, 360) degrees and the sectors descend in
// 30 degree steps down to sector 11, which covers [0, 30).
//
// # Matching
//
// Histograms are compared with the Earth Mover's Distance under a fixed 36x36
// ground distance (see BuildCostMatrix) that combines circular sector
// distance with ring distance. The distance is normalised by the total mass,
// so moving all mass one sector over costs exactly 1.
//
// Orientation invariance is one sided: the query is expanded into 24 variants
// (12 rotations of the histogram and 12 rotations of its mirror image) and
// the smallest distance to the stored, unexpanded signature wins.
//
// Descriptors, histograms and cost matrices are immutable once built and are
// safe for concurrent use.
package cpdh
