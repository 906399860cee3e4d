// Package predicate implements the closed family of constraint
// predicates (spec.md §4.1): a polymorphic, declarative, composable
// set of checks dispatched over diff atoms and whole-entity revisions.
//
// The family is closed and small, so rather than open inheritance this
// models each variant as a struct holding a small "vtable" of closures
// (its Violates or Satisfied logic, its intrinsic scopes, whether a
// value change is required to re-evaluate on update) — the same
// interface-over-typed-structs shape datalog/query/predicate.go uses
// for its Term/Comparison family, generalized from a fixed vtable of
// two methods to the three score-for-{addition,removal,update} hooks
// most variants share by embedding one of ClaimBase/EntityBase, with
// the handful that override scoring (HasValidReference, LargeChange)
// implementing Predicate directly.
package predicate

import (
	"context"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/diff"
)

// Predicate is the common interface every constraint variant
// implements: the three scoring hooks plus the metadata the evaluator
// and store need to dispatch it correctly.
type Predicate interface {
	// IntrinsicScopes lists the structural positions this predicate is
	// capable of checking at all; a Constraint's declared scopes are
	// intersected with this set at dispatch time (spec.md §3).
	IntrinsicScopes() wikiconstraint.ScopeSet

	// ValueChangeNeeded reports whether an update should be
	// re-evaluated only when the claim's value actually changed
	// (true), or on any structural update regardless of value
	// (false, e.g. Qualifiers/RequiredQualifiers/PropertyScope).
	ValueChangeNeeded() bool

	ScoreForAddition(ctx context.Context, c diff.Context) (int, error)
	ScoreForRemoval(ctx context.Context, c diff.Context) (int, error)
	ScoreForUpdate(ctx context.Context, c diff.Context) (int, error)
}

// ClaimPredicate is a Predicate whose logic is a single boolean check
// against one claim. Default scoring (ClaimBase, below) derives
// Score* from Violates; a few claim predicates override scoring
// directly (HasValidReference, LargeChange) while keeping Violates
// around only to satisfy whole-entity checks (spec.md §4.4's
// EvaluateEntity calls Violates directly, not the Score* hooks).
type ClaimPredicate interface {
	Predicate
	Violates(ctx context.Context, side diff.Side) (bool, error)
}

// EntityPredicate is a Predicate whose logic is a single boolean check
// against an entire revision.
type EntityPredicate interface {
	Predicate
	Satisfied(ctx context.Context, rev *wikiconstraint.Revision) (bool, error)
}

// ViolatesFunc is the business logic a claim predicate supplies to
// ClaimBase.
type ViolatesFunc func(ctx context.Context, side diff.Side) (bool, error)

// SatisfiedFunc is the business logic an entity predicate supplies to
// EntityBase.
type SatisfiedFunc func(ctx context.Context, rev *wikiconstraint.Revision) (bool, error)

// ClaimBase implements Predicate's default scoring rules (spec.md
// §4.1): addition scores violates(new); removal scores
// -violates(old); update scores violates(new) - violates(old). Embed
// it in a concrete predicate type and assign Fn in the constructor.
type ClaimBase struct {
	Fn                ViolatesFunc
	Scopes            wikiconstraint.ScopeSet
	NeedsValueChange  bool
}

func NewClaimBase(fn ViolatesFunc, scopes wikiconstraint.ScopeSet, needsValueChange bool) ClaimBase {
	return ClaimBase{Fn: fn, Scopes: scopes, NeedsValueChange: needsValueChange}
}

func (b ClaimBase) IntrinsicScopes() wikiconstraint.ScopeSet { return b.Scopes }
func (b ClaimBase) ValueChangeNeeded() bool                  { return b.NeedsValueChange }

func (b ClaimBase) Violates(ctx context.Context, side diff.Side) (bool, error) {
	if side.Claim == nil {
		return false, nil
	}
	return b.Fn(ctx, side)
}

func (b ClaimBase) ScoreForAddition(ctx context.Context, c diff.Context) (int, error) {
	v, err := b.Violates(ctx, c.New)
	if err != nil {
		return 0, err
	}
	return boolToInt(v), nil
}

func (b ClaimBase) ScoreForRemoval(ctx context.Context, c diff.Context) (int, error) {
	v, err := b.Violates(ctx, c.Old)
	if err != nil {
		return 0, err
	}
	return -boolToInt(v), nil
}

func (b ClaimBase) ScoreForUpdate(ctx context.Context, c diff.Context) (int, error) {
	newV, err := b.Violates(ctx, c.New)
	if err != nil {
		return 0, err
	}
	oldV, err := b.Violates(ctx, c.Old)
	if err != nil {
		return 0, err
	}
	return boolToInt(newV) - boolToInt(oldV), nil
}

// EntityBase implements Predicate's default scoring rules for
// entity-level predicates: "not satisfied" stands in for "violates"
// (spec.md §4.1).
type EntityBase struct {
	Fn SatisfiedFunc
}

func NewEntityBase(fn SatisfiedFunc) EntityBase { return EntityBase{Fn: fn} }

func (b EntityBase) IntrinsicScopes() wikiconstraint.ScopeSet {
	return wikiconstraint.NewScopeSet(wikiconstraint.ScopeMain)
}

func (b EntityBase) ValueChangeNeeded() bool { return false }

func (b EntityBase) Satisfied(ctx context.Context, rev *wikiconstraint.Revision) (bool, error) {
	return b.Fn(ctx, rev)
}

func (b EntityBase) ScoreForAddition(ctx context.Context, c diff.Context) (int, error) {
	ok, err := b.Fn(ctx, c.New.Revision)
	if err != nil {
		return 0, err
	}
	return boolToInt(!ok), nil
}

func (b EntityBase) ScoreForRemoval(ctx context.Context, c diff.Context) (int, error) {
	ok, err := b.Fn(ctx, c.Old.Revision)
	if err != nil {
		return 0, err
	}
	return -boolToInt(!ok), nil
}

func (b EntityBase) ScoreForUpdate(ctx context.Context, c diff.Context) (int, error) {
	newOK, err := b.Fn(ctx, c.New.Revision)
	if err != nil {
		return 0, err
	}
	oldOK, err := b.Fn(ctx, c.Old.Revision)
	if err != nil {
		return 0, err
	}
	return boolToInt(!newOK) - boolToInt(!oldOK), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// targetNotFoundAsViolation converts the collaborator-level
// ErrTargetNotFound into the "treat as violation" outcome several
// predicates use (spec.md §7), letting genuine collaborator errors
// propagate unchanged.
func targetNotFoundAsViolation(err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if isTargetNotFound(err) {
		return true, nil
	}
	return false, err
}

// targetNotFoundAsNonViolation is the inverse policy
// NoLinksToDisambiguation uses: a missing target cannot be proven to
// link to a disambiguation page.
func targetNotFoundAsNonViolation(err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if isTargetNotFound(err) {
		return false, nil
	}
	return false, err
}

func isTargetNotFound(err error) bool {
	return wikiconstraint.IsTargetNotFound(err)
}
