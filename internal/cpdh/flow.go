package cpdh

import (
	"fmt"
	"math"
)

// flowEpsilon is the residual mass below which an edge counts as saturated.
const flowEpsilon = 1e-9

// FlowSolver computes the EMD exactly as a min-cost flow on the bipartite
// graph from surplus bins to deficit bins, using successive shortest paths.
// The zero value is ready to use.
type FlowSolver struct{}

// Distance implements TransportDistance.
func (FlowSolver) Distance(a, b []float64, cost *CostMatrix) (float64, error) {
	t, err := newTransport(a, b, cost)
	if err != nil {
		return 0, fmt.Errorf("emd: %w", err)
	}
	if work, ok := t.trivial(); ok {
		return work / t.total, nil
	}
	return t.solveFlow() / t.total, nil
}

// solveFlow returns the minimal transport work.
//
// Node layout: 0 is the super source, 1..m the sources, m+1..m+k the sinks
// and m+k+1 the super sink. Source to sink edges are uncapacitated, their
// residual back edges carry the current flow at negated cost. Shortest paths
// use Bellman-Ford with a FIFO queue since back edges are negative; the
// residual graph never has a negative cycle while augmenting along shortest
// paths.
func (t *transport) solveFlow() float64 {
	m, k := len(t.src), len(t.dst)
	sink := m + k + 1
	nodes := sink + 1

	left := append([]float64(nil), t.supply...)
	need := append([]float64(nil), t.demand...)
	flow := make([][]float64, m)
	for s := range flow {
		flow[s] = make([]float64, k)
	}

	dist := make([]float64, nodes)
	prev := make([]int, nodes)
	queued := make([]bool, nodes)
	queue := make([]int, 0, nodes)

	remaining := 0.0
	for _, v := range left {
		remaining += v
	}

	for remaining > flowEpsilon {
		for i := range dist {
			dist[i] = math.Inf(1)
			prev[i] = -1
		}
		dist[0] = 0
		queue = append(queue[:0], 0)
		queued[0] = true

		relax := func(u, v int, w float64) {
			if nd := dist[u] + w; nd < dist[v]-flowEpsilon {
				dist[v] = nd
				prev[v] = u
				if !queued[v] {
					queued[v] = true
					queue = append(queue, v)
				}
			}
		}

		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			queued[u] = false

			switch {
			case u == 0:
				for s := 0; s < m; s++ {
					if left[s] > flowEpsilon {
						relax(0, 1+s, 0)
					}
				}
			case u <= m:
				s := u - 1
				for d := 0; d < k; d++ {
					relax(u, 1+m+d, t.unit(s, d))
				}
			case u < sink:
				d := u - 1 - m
				for s := 0; s < m; s++ {
					if flow[s][d] > flowEpsilon {
						relax(u, 1+s, -t.unit(s, d))
					}
				}
				if need[d] > flowEpsilon {
					relax(u, sink, 0)
				}
			}
		}

		if math.IsInf(dist[sink], 1) {
			// Only rounding residue is left unmatched.
			break
		}

		// Bottleneck along the path: the first source's surplus, the last
		// sink's deficit and the flow on every back edge.
		last := prev[sink]
		push := need[last-1-m]
		for v := last; prev[v] != 0; v = prev[v] {
			u := prev[v]
			if v <= m {
				// back edge sink u -> source v
				push = math.Min(push, flow[v-1][u-1-m])
			}
		}
		first := last
		for prev[first] != 0 {
			first = prev[first]
		}
		push = math.Min(push, left[first-1])

		for v := last; prev[v] != 0; v = prev[v] {
			u := prev[v]
			if v <= m {
				flow[v-1][u-1-m] -= push
			} else {
				flow[u-1][v-1-m] += push
			}
		}
		left[first-1] -= push
		need[last-1-m] -= push
		remaining -= push
	}

	work := 0.0
	for s := 0; s < m; s++ {
		for d := 0; d < k; d++ {
			if flow[s][d] > 0 {
				work += flow[s][d] * t.unit(s, d)
			}
		}
	}
	return work
}
