package predicate

import (
	"context"
	"math"
	"math/big"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/diff"
)

// ReferenceScopeChecker answers whether a property's PropertyScope
// declaration permits it to appear in REFERENCE position — the one
// piece of store state HasValidReference needs, exposed as a narrow
// interface so this package never imports the store (spec.md §4.1).
type ReferenceScopeChecker interface {
	AllowsReferenceScope(ctx context.Context, prop wikiconstraint.PropertyID) (bool, error)
}

// referenceMetadataBlacklist are properties that exist to describe a
// reference's provenance mechanics, not its substance, so a block
// containing only these does not count as a valid reference.
var referenceMetadataBlacklist = map[wikiconstraint.PropertyID]bool{
	"P143":  true, // imported from Wikimedia project
	"P813":  true, // retrieved
	"P887":  true, // based on heuristic
	"P3452": true, // inferred from
	"P4656": true, // Wikimedia import URL
}

// HasValidReference overrides the default scoring rules entirely: it
// counts, per claim, reference blocks considered valid (carrying at
// least one non-blacklisted property whose scope allows REFERENCE),
// rather than producing a single boolean (spec.md §4.1).
type HasValidReference struct {
	Checker   ReferenceScopeChecker
	Blacklist map[wikiconstraint.PropertyID]bool
}

func NewHasValidReference(checker ReferenceScopeChecker) *HasValidReference {
	return &HasValidReference{Checker: checker, Blacklist: referenceMetadataBlacklist}
}

func (p *HasValidReference) IntrinsicScopes() wikiconstraint.ScopeSet {
	return wikiconstraint.NewScopeSet(wikiconstraint.ScopeMain)
}

func (p *HasValidReference) ValueChangeNeeded() bool { return false }

// Violates reports whether the claim has no valid reference at all,
// the boolean EvaluateEntity needs for its whole-revision check; the
// counted score used during EvaluateChange comes from the ScoreFor*
// methods below, not from this method.
func (p *HasValidReference) Violates(ctx context.Context, side diff.Side) (bool, error) {
	if side.Claim == nil {
		return false, nil
	}
	count, err := p.countValid(ctx, side.Claim)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (p *HasValidReference) countValid(ctx context.Context, claim *wikiconstraint.Claim) (int, error) {
	count := 0
	for _, block := range claim.Sources {
		valid, err := p.blockValid(ctx, block)
		if err != nil {
			return 0, err
		}
		if valid {
			count++
		}
	}
	return count, nil
}

func (p *HasValidReference) blockValid(ctx context.Context, block wikiconstraint.ReferenceBlock) (bool, error) {
	for prop := range block.Properties {
		if p.Blacklist[prop] {
			continue
		}
		ok, err := p.Checker.AllowsReferenceScope(ctx, prop)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (p *HasValidReference) ScoreForAddition(ctx context.Context, c diff.Context) (int, error) {
	if c.New.Claim == nil {
		return 0, nil
	}
	count, err := p.countValid(ctx, c.New.Claim)
	if err != nil {
		return 0, err
	}
	return -count, nil
}

func (p *HasValidReference) ScoreForRemoval(ctx context.Context, c diff.Context) (int, error) {
	if c.Old.Claim == nil {
		return 0, nil
	}
	count, err := p.countValid(ctx, c.Old.Claim)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (p *HasValidReference) ScoreForUpdate(ctx context.Context, c diff.Context) (int, error) {
	if c.Old.Claim == nil || c.New.Claim == nil {
		return 0, nil
	}

	oldCount, err := p.countValid(ctx, c.Old.Claim)
	if err != nil {
		return 0, err
	}
	newCount, err := p.countValid(ctx, c.New.Claim)
	if err != nil {
		return 0, err
	}

	valueChanged := c.Old.Claim.CmpKey() != c.New.Claim.CmpKey()
	sourcesChanged := !wikiconstraint.ReferencesSame(c.Old.Claim.Sources, c.New.Claim.Sources)
	if valueChanged && !sourcesChanged {
		return oldCount, nil
	}
	return newCount - oldCount, nil
}

// LargeChange scores a quantity update by the order-of-magnitude shift
// between old and new amounts, rather than a bounded violation delta
// (spec.md §4.1). It has no addition/removal score: a newly added or
// removed quantity claim has no "previous magnitude" to compare to.
type LargeChange struct{}

func NewLargeChange() *LargeChange { return &LargeChange{} }

func (p *LargeChange) IntrinsicScopes() wikiconstraint.ScopeSet {
	return wikiconstraint.NewScopeSet(wikiconstraint.ScopeMain)
}

func (p *LargeChange) ValueChangeNeeded() bool { return true }

// Violates is never meaningful outside an update context (there is no
// single claim whose magnitude is "too large" in isolation); it always
// reports satisfied so EvaluateEntity's whole-claim check is a no-op
// for this predicate.
func (p *LargeChange) Violates(_ context.Context, _ diff.Side) (bool, error) {
	return false, nil
}

func (p *LargeChange) ScoreForAddition(_ context.Context, _ diff.Context) (int, error) {
	return 0, nil
}

func (p *LargeChange) ScoreForRemoval(_ context.Context, _ diff.Context) (int, error) {
	return 0, nil
}

func (p *LargeChange) ScoreForUpdate(_ context.Context, c diff.Context) (int, error) {
	if c.Old.Claim == nil || c.New.Claim == nil {
		return 0, nil
	}
	oldQ, ok := c.Old.Claim.Target.(wikiconstraint.Quantity)
	if !ok {
		return 0, nil
	}
	newQ, ok := c.New.Claim.Target.(wikiconstraint.Quantity)
	if !ok {
		return 0, nil
	}

	oldF, ok := parseDecimal(oldQ.Amount)
	if !ok {
		return 0, nil
	}
	newF, ok := parseDecimal(newQ.Amount)
	if !ok {
		return 0, nil
	}

	oldAbs, _ := new(big.Float).Abs(oldF).Float64()
	newAbs, _ := new(big.Float).Abs(newF).Float64()
	if oldAbs == 0 || newAbs == 0 {
		return 0, nil
	}

	delta := math.Abs(math.Log10(oldAbs) - math.Log10(newAbs))
	return int(math.Round(delta)), nil
}
