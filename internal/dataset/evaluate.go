package dataset

import (
	"context"
	"errors"
	"fmt"
)

// GroupResult counts leave-one-out retrievals for one group.
type GroupResult struct {
	Group   string
	Total   int
	Correct int
}

// Miss is a member whose closest group was not its own.
type Miss struct {
	ID       string
	Expected string
	Got      GroupScore
}

// Evaluation is the outcome of a leave-one-out run.
type Evaluation struct {
	Total   int
	Correct int
	Groups  []GroupResult
	Misses  []Miss
}

// Accuracy returns the fraction of members retrieved into their own group.
func (e Evaluation) Accuracy() float64 {
	if e.Total == 0 {
		return 0
	}
	return float64(e.Correct) / float64(e.Total)
}

// Evaluate matches every member against the rest of the dataset and counts
// how often its own group comes out on top. Members that have nothing left
// to compare to are not counted.
func Evaluate(ctx context.Context, ds *Dataset, opts ...Option) (Evaluation, error) {
	var ev Evaluation
	if ds.IsEmpty() {
		return ev, ErrEmptyDataset
	}
	opts = append(opts[:len(opts):len(opts)], WithSelfExclusion())

	for _, group := range ds.Groups() {
		res := GroupResult{Group: group}
		for _, d := range ds.Members(group) {
			best, err := ds.MatchGroup(ctx, d, opts...)
			if errors.Is(err, ErrEmptyDataset) {
				continue
			}
			if err != nil {
				return Evaluation{}, fmt.Errorf("evaluate %s: %w", d.ID(), err)
			}
			res.Total++
			if best.Group == group {
				res.Correct++
			} else {
				ev.Misses = append(ev.Misses, Miss{ID: d.ID(), Expected: group, Got: best})
			}
		}
		ev.Total += res.Total
		ev.Correct += res.Correct
		ev.Groups = append(ev.Groups, res)
	}
	return ev, nil
}
