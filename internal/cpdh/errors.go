package cpdh

import "errors"

var (
	// ErrDegenerateShape is returned when the boundary points cannot span an
	// enclosing circle (no points, or all points identical).
	ErrDegenerateShape = errors.New("degenerate shape")

	// ErrPointCountMismatch is returned when two descriptors built with
	// different sampling counts are compared or stored together.
	ErrPointCountMismatch = errors.New("point count mismatch")

	// ErrCorruptRecord is returned when a serialized histogram line has the
	// wrong number of fields or a token that is not a non-negative integer.
	ErrCorruptRecord = errors.New("corrupt histogram record")

	// ErrMassMismatch is returned when two signatures do not carry the same
	// total mass.
	ErrMassMismatch = errors.New("signature mass mismatch")

	// ErrEmptySignature is returned when a signature carries no mass at all.
	ErrEmptySignature = errors.New("empty signature")
)
