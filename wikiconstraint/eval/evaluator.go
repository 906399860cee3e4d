package eval

import (
	"context"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/diff"
	"github.com/wikiconstraint/engine/wikiconstraint/predicate"
)

// Store is the constraint lookup surface ConstraintEvaluator needs;
// wikiconstraint/store.ConstraintsStore implements it (spec.md §4.2).
type Store interface {
	GetConstraints(ctx context.Context, prop wikiconstraint.PropertyID) ([]*Constraint, error)
	GetItemConstraints(ctx context.Context, props []wikiconstraint.PropertyID, changed map[wikiconstraint.PropertyID]bool) ([]*Constraint, error)
}

// ConstraintEvaluator is the top-level orchestrator, grounded
// stylistically on datalog/executor's Executor: it drives iteration
// over a sequence of units (there, relation tuples; here, diff atoms)
// and folds the results into a single aggregate (spec.md §4.4).
type ConstraintEvaluator struct {
	Store Store
}

func New(store Store) *ConstraintEvaluator {
	return &ConstraintEvaluator{Store: store}
}

// EvaluateChange scores the transition from old to new, optionally
// skipping atoms already reverted elsewhere per current (spec.md §4.4).
func (e *ConstraintEvaluator) EvaluateChange(ctx context.Context, old, new, current *wikiconstraint.Revision) (*Result, error) {
	result := &Result{}
	changed := map[wikiconstraint.PropertyID]bool{}

	for _, dc := range diff.ClaimDifferences(old, new) {
		if e.shouldSkip(dc, current) {
			continue
		}
		changed[dc.Prop()] = true

		if err := e.dispatchAtom(ctx, result, wikiconstraint.ScopeMain, dc); err != nil {
			return nil, err
		}

		oldClaim, newClaim := dc.OldClaim(), dc.NewClaim()
		if oldClaim == nil || newClaim == nil {
			continue
		}
		for _, qd := range diff.DiffQualifiers(oldClaim, newClaim) {
			changed[qd.Property] = true
			for _, q := range qd.Added {
				qdc := diff.Context{
					Old: diff.Side{Revision: old},
					New: diff.Side{Revision: new, Claim: q, Parent: newClaim},
				}
				if err := e.dispatchAtom(ctx, result, wikiconstraint.ScopeQualifier, qdc); err != nil {
					return nil, err
				}
			}
			for _, q := range qd.Removed {
				qdc := diff.Context{
					Old: diff.Side{Revision: old, Claim: q, Parent: oldClaim},
					New: diff.Side{Revision: new},
				}
				if err := e.dispatchAtom(ctx, result, wikiconstraint.ScopeQualifier, qdc); err != nil {
					return nil, err
				}
			}
			for _, u := range qd.Updated {
				qdc := diff.Context{
					Old: diff.Side{Revision: old, Claim: u.Old, Parent: oldClaim},
					New: diff.Side{Revision: new, Claim: u.New, Parent: newClaim},
				}
				if err := e.dispatchAtom(ctx, result, wikiconstraint.ScopeQualifier, qdc); err != nil {
					return nil, err
				}
			}
		}
	}

	added, removed := propertyDeltas(old, new, current)
	for prop := range added {
		changed[prop] = true
	}
	for prop := range removed {
		changed[prop] = true
	}

	if len(added) > 0 {
		props := propertyList(added)
		constraints, err := e.Store.GetItemConstraints(ctx, props, changed)
		if err != nil {
			return nil, err
		}
		for _, c := range constraints {
			if !added[c.Property] {
				continue
			}
			dc := diff.Context{New: diff.Side{Revision: new}}
			score, err := c.HandleAddition(ctx, dc)
			if err != nil {
				return nil, err
			}
			result.record(c, score)
		}
	}

	if len(removed) > 0 {
		props := propertyList(removed)
		constraints, err := e.Store.GetItemConstraints(ctx, props, changed)
		if err != nil {
			return nil, err
		}
		for _, c := range constraints {
			if !removed[c.Property] {
				continue
			}
			dc := diff.Context{Old: diff.Side{Revision: old}}
			score, err := c.HandleRemoval(ctx, dc)
			if err != nil {
				return nil, err
			}
			result.record(c, score)
		}
	}

	return result, nil
}

func (e *ConstraintEvaluator) dispatchAtom(ctx context.Context, result *Result, scope wikiconstraint.Scope, dc diff.Context) error {
	constraints, err := e.Store.GetConstraints(ctx, dc.Prop())
	if err != nil {
		return err
	}
	for _, c := range constraints {
		if !c.MayCheck(scope) {
			continue
		}
		score, err := dispatchClaim(ctx, c, dc)
		if err != nil {
			return err
		}
		result.record(c, score)
	}
	return nil
}

func dispatchClaim(ctx context.Context, c *Constraint, dc diff.Context) (int, error) {
	switch {
	case dc.OldClaim() == nil:
		return c.HandleAddition(ctx, dc)
	case dc.NewClaim() == nil:
		return c.HandleRemoval(ctx, dc)
	default:
		if c.Predicate.ValueChangeNeeded() && wikiconstraint.ValuesEqual(dc.OldClaim().Target, dc.NewClaim().Target) {
			return 0, nil
		}
		return c.HandleUpdate(ctx, dc)
	}
}

// shouldSkip implements the current-revision short-circuit (spec.md
// §4.4): a removal already reverted elsewhere, or an addition already
// undone elsewhere, is not re-counted against current.
func (e *ConstraintEvaluator) shouldSkip(dc diff.Context, current *wikiconstraint.Revision) bool {
	if current == nil {
		return false
	}
	if old := dc.OldClaim(); old != nil && current.HasClaim(old) {
		return true
	}
	if new := dc.NewClaim(); new != nil && len(current.Claims[new.Property]) == 0 {
		return true
	}
	return false
}

// propertyDeltas computes added = props(new) − props(old) [∩
// props(current)] and removed = props(old) − props(new) [−
// props(current)] (spec.md §4.4).
func propertyDeltas(old, new, current *wikiconstraint.Revision) (added, removed map[wikiconstraint.PropertyID]bool) {
	added = map[wikiconstraint.PropertyID]bool{}
	removed = map[wikiconstraint.PropertyID]bool{}

	for prop := range new.Claims {
		if len(old.Claims[prop]) == 0 && len(new.Claims[prop]) > 0 {
			if current == nil || len(current.Claims[prop]) > 0 {
				added[prop] = true
			}
		}
	}
	for prop := range old.Claims {
		if len(new.Claims[prop]) == 0 && len(old.Claims[prop]) > 0 {
			if current == nil || len(current.Claims[prop]) == 0 {
				removed[prop] = true
			}
		}
	}
	return added, removed
}

func propertyList(set map[wikiconstraint.PropertyID]bool) []wikiconstraint.PropertyID {
	out := make([]wikiconstraint.PropertyID, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// EvaluateEntity returns every constraint the entity currently
// violates (or, for entity-level predicates, is not satisfied for):
// claim-level predicates are checked against every claim of their
// property, including qualifier claims nested within other claims
// (spec.md §7 supplement, evaluator.py's evaluate_entity inner loop);
// entity-level predicates are checked once against the whole revision.
func (e *ConstraintEvaluator) EvaluateEntity(ctx context.Context, entity *wikiconstraint.Revision) ([]*Constraint, error) {
	var violated []*Constraint

	for prop, claims := range entity.Claims {
		constraints, err := e.Store.GetConstraints(ctx, prop)
		if err != nil {
			return nil, err
		}
		for _, c := range constraints {
			if !c.MayCheck(wikiconstraint.ScopeMain) {
				continue
			}
			cp, ok := c.Predicate.(predicate.ClaimPredicate)
			if !ok {
				continue
			}
			for _, claim := range claims {
				bad, err := cp.Violates(ctx, diff.Side{Revision: entity, Claim: claim})
				if err != nil {
					return nil, err
				}
				if bad {
					violated = append(violated, c)
				}
			}
		}

		for _, claim := range claims {
			for qualProp, quals := range claim.Qualifiers {
				qconstraints, err := e.Store.GetConstraints(ctx, qualProp)
				if err != nil {
					return nil, err
				}
				for _, c := range qconstraints {
					if !c.MayCheck(wikiconstraint.ScopeQualifier) {
						continue
					}
					cp, ok := c.Predicate.(predicate.ClaimPredicate)
					if !ok {
						continue
					}
					for _, q := range quals {
						bad, err := cp.Violates(ctx, diff.Side{Revision: entity, Claim: q, Parent: claim})
						if err != nil {
							return nil, err
						}
						if bad {
							violated = append(violated, c)
						}
					}
				}
			}
		}
	}

	var allProps []wikiconstraint.PropertyID
	for prop := range entity.Claims {
		allProps = append(allProps, prop)
	}
	entityConstraints, err := e.Store.GetItemConstraints(ctx, allProps, nil)
	if err != nil {
		return nil, err
	}
	for _, c := range entityConstraints {
		ep, ok := c.Predicate.(predicate.EntityPredicate)
		if !ok {
			continue
		}
		ok2, err := ep.Satisfied(ctx, entity)
		if err != nil {
			return nil, err
		}
		if !ok2 {
			violated = append(violated, c)
		}
	}

	return violated, nil
}
