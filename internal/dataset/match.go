package dataset

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"cpdh-retrieval/internal/cpdh"
)

// GroupScore is the distance of a query to a group: the smallest EMD to any
// of its members over every query orientation.
type GroupScore struct {
	Group string
	Score float64

	// NearDuplicate is set when Score is below the near duplicate epsilon,
	// meaning the query is most likely already in the group.
	NearDuplicate bool
}

func (g GroupScore) String() string {
	if g.NearDuplicate {
		return fmt.Sprintf("%s %.6f (near duplicate)", g.Group, g.Score)
	}
	return fmt.Sprintf("%s %.6f", g.Group, g.Score)
}

// MatchGroup returns the group closest to query.
//
// When two groups tie, the one with the smaller name wins.
func (ds *Dataset) MatchGroup(ctx context.Context, query *cpdh.Descriptor, opts ...Option) (GroupScore, error) {
	scores, err := ds.Rank(ctx, query, opts...)
	if err != nil {
		return GroupScore{}, err
	}
	return scores[0], nil
}

// Rank scores query against every group and returns the scores in
// ascending order. Groups are scored concurrently. On cancellation the
// context error is returned and no scores are.
func (ds *Dataset) Rank(ctx context.Context, query *cpdh.Descriptor, opts ...Option) ([]GroupScore, error) {
	if query == nil {
		return nil, fmt.Errorf("match: nil query")
	}
	if query.NumPoints() != ds.numPoints {
		return nil, fmt.Errorf("match %s: %w: query has %d points, dataset %d",
			query.ID(), cpdh.ErrPointCountMismatch, query.NumPoints(), ds.numPoints)
	}
	o := newOptions(opts)

	groups := ds.snapshot()
	if len(groups) == 0 {
		return nil, fmt.Errorf("match %s: %w", query.ID(), ErrEmptyDataset)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		scores   = make([]GroupScore, 0, len(groups))
		firstErr error
	)
	sem := make(chan struct{}, o.workers)

	for name, members := range groups {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(name string, members []*cpdh.Descriptor) {
			defer wg.Done()
			defer func() { <-sem }()

			score, ok, err := scoreGroup(ctx, o, query, members)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				if firstErr == nil {
					firstErr = fmt.Errorf("match %s against %s: %w", query.ID(), name, err)
				}
			case ok:
				scores = append(scores, GroupScore{
					Group:         name,
					Score:         score,
					NearDuplicate: score < o.epsilon,
				})
			}
		}(name, members)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("match %s: %w: no group has a member other than the query", query.ID(), ErrEmptyDataset)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score < scores[j].Score
		}
		return scores[i].Group < scores[j].Group
	})
	return scores, nil
}

// scoreGroup returns the best distance from query to members. ok is false
// when every member was excluded.
func scoreGroup(ctx context.Context, o options, query *cpdh.Descriptor, members []*cpdh.Descriptor) (best float64, ok bool, err error) {
	best = math.Inf(1)
	for _, m := range members {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		if o.excludeSelf && m.Equal(query) {
			continue
		}
		d, err := cpdh.MatchBest(o.solver, query, m)
		if err != nil {
			return 0, false, err
		}
		ok = true
		if d < best {
			best = d
		}
		if best == 0 {
			break
		}
	}
	return best, ok, nil
}
