package predicate

import (
	"context"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/diff"
)

// PropertyScope violates when the claim's structural position (main,
// qualifier, or reference) is not among the allowed scopes. It is
// structural, not value-dependent, so updates never re-score it
// (spec.md §4.1: "Returns 0 for update").
type PropertyScope struct {
	ClaimBase
	Allowed wikiconstraint.ScopeSet
}

func NewPropertyScope(allowed wikiconstraint.ScopeSet) *PropertyScope {
	p := &PropertyScope{Allowed: allowed}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), false)
	return p
}

func (p *PropertyScope) violates(_ context.Context, side diff.Side) (bool, error) {
	switch {
	case side.Claim.IsQualifier:
		return !p.Allowed.Has(wikiconstraint.ScopeQualifier), nil
	case side.Claim.IsReference:
		return !p.Allowed.Has(wikiconstraint.ScopeReference), nil
	default:
		return !p.Allowed.Has(wikiconstraint.ScopeMain), nil
	}
}

func (p *PropertyScope) ScoreForUpdate(_ context.Context, _ diff.Context) (int, error) {
	return 0, nil
}

// Qualifiers violates when the claim carries a qualifier property
// outside the allowed set. Main-scope only; structural (no value
// change needed to re-score).
type Qualifiers struct {
	ClaimBase
	Allowed map[wikiconstraint.PropertyID]bool
}

func NewQualifiers(allowed map[wikiconstraint.PropertyID]bool) *Qualifiers {
	p := &Qualifiers{Allowed: allowed}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.NewScopeSet(wikiconstraint.ScopeMain), false)
	return p
}

func (p *Qualifiers) violates(_ context.Context, side diff.Side) (bool, error) {
	for prop := range side.Claim.Qualifiers {
		if !p.Allowed[prop] {
			return true, nil
		}
	}
	return false, nil
}

// RequiredQualifiers violates when the claim is missing a required
// qualifier property. Main-scope only; structural.
type RequiredQualifiers struct {
	ClaimBase
	Required map[wikiconstraint.PropertyID]bool
}

func NewRequiredQualifiers(required map[wikiconstraint.PropertyID]bool) *RequiredQualifiers {
	p := &RequiredQualifiers{Required: required}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.NewScopeSet(wikiconstraint.ScopeMain), false)
	return p
}

func (p *RequiredQualifiers) violates(_ context.Context, side diff.Side) (bool, error) {
	for prop := range p.Required {
		if _, ok := side.Claim.Qualifiers[prop]; !ok {
			return true, nil
		}
	}
	return false, nil
}
