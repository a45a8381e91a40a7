package dataset

import (
	"runtime"

	"cpdh-retrieval/internal/cpdh"
)

// NearDuplicateEpsilon is the score under which a match is reported as a
// near duplicate of a stored shape.
const NearDuplicateEpsilon = 0.0005

// Option configures matching, construction and evaluation.
type Option func(*options)

type options struct {
	workers     int
	solver      cpdh.TransportDistance
	epsilon     float64
	excludeSelf bool
	progress    func(done, total int)
}

func newOptions(opts []Option) options {
	o := options{
		workers: runtime.NumCPU(),
		solver:  cpdh.FlowSolver{},
		epsilon: NearDuplicateEpsilon,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if o.solver == nil {
		o.solver = cpdh.FlowSolver{}
	}
	return o
}

// WithWorkers bounds the number of goroutines used. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithSolver selects the transport distance implementation.
func WithSolver(s cpdh.TransportDistance) Option {
	return func(o *options) { o.solver = s }
}

// WithNearDuplicateEpsilon overrides NearDuplicateEpsilon.
func WithNearDuplicateEpsilon(eps float64) Option {
	return func(o *options) { o.epsilon = eps }
}

// WithSelfExclusion skips stored descriptors equal to the query. Use it when
// the query is itself a dataset member, as in leave-one-out evaluation.
func WithSelfExclusion() Option {
	return func(o *options) { o.excludeSelf = true }
}

// WithProgress registers a callback invoked after each processed file.
// Calls are serialised.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) { o.progress = fn }
}
