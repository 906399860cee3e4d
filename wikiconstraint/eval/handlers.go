package eval

import (
	"context"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/diff"
)

// HandleAddition scores a constraint against a newly-present claim
// (or, via diff.Context built from a bare Revision, a newly-present
// property). SUGGESTION constraints clamp a positive score to 0: a
// suggestion never counts as a new violation, only as a credited fix
// (spec.md §4.1, scenario 6).
func (c *Constraint) HandleAddition(ctx context.Context, dc diff.Context) (int, error) {
	score, err := c.Predicate.ScoreForAddition(ctx, dc)
	if err != nil {
		return 0, err
	}
	if c.Status == wikiconstraint.StatusSuggestion && score > 0 {
		return 0, nil
	}
	return score, nil
}

// HandleRemoval scores a constraint against a claim (or property)
// that is no longer present. Fixes are always credited regardless of
// status (spec.md §4.1, scenario 6), so no clamp applies here.
func (c *Constraint) HandleRemoval(ctx context.Context, dc diff.Context) (int, error) {
	return c.Predicate.ScoreForRemoval(ctx, dc)
}

// HandleUpdate scores a constraint against a claim (or property) that
// persists but changed, weighting the result by the constraint's
// status (spec.md §4.1: "score *= status", update only).
func (c *Constraint) HandleUpdate(ctx context.Context, dc diff.Context) (int, error) {
	score, err := c.Predicate.ScoreForUpdate(ctx, dc)
	if err != nil {
		return 0, err
	}
	return score * int(c.Status), nil
}
