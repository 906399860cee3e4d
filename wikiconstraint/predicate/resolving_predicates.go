package predicate

import (
	"context"
	"strings"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/collab"
	"github.com/wikiconstraint/engine/wikiconstraint/diff"
	"github.com/wikiconstraint/engine/wikiconstraint/resolve"
)

// entityTarget extracts an entity-typed target, reporting ok=false for
// any other value kind (a predicate that only applies to entity
// references is vacuously satisfied against non-entity targets).
func entityTarget(v wikiconstraint.Value) (wikiconstraint.EntityID, bool) {
	id, ok := v.(wikiconstraint.EntityID)
	return id, ok
}

// ValueRequires violates when the claim's target entity is missing,
// lacks Prop entirely, or (when Values is non-nil) none of its
// Prop-claims are in Values.
type ValueRequires struct {
	ClaimBase
	Resolver *resolve.Resolver
	Prop     wikiconstraint.PropertyID
	Values   map[string]bool // nil means "presence is enough"
}

func NewValueRequires(resolver *resolve.Resolver, prop wikiconstraint.PropertyID, values map[string]bool) *ValueRequires {
	p := &ValueRequires{Resolver: resolver, Prop: prop, Values: values}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *ValueRequires) violates(ctx context.Context, side diff.Side) (bool, error) {
	id, ok := entityTarget(side.Claim.Target)
	if !ok {
		return false, nil
	}

	target, err := p.Resolver.Resolve(ctx, id)
	if err != nil {
		return targetNotFoundAsViolation(err)
	}

	claims := target.Claims[p.Prop]
	if len(claims) == 0 {
		return true, nil
	}
	if p.Values == nil {
		return false, nil
	}

	for _, cl := range claims {
		if wikiconstraint.InValues(cl, p.Values) {
			return false, nil
		}
	}
	return true, nil
}

// Symmetric violates unless the target's own claims on the same
// property include one whose value is the owning entity. Main-scope
// only (spec.md §4.1).
type Symmetric struct {
	ClaimBase
	Resolver *resolve.Resolver
}

func NewSymmetric(resolver *resolve.Resolver) *Symmetric {
	p := &Symmetric{Resolver: resolver}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.NewScopeSet(wikiconstraint.ScopeMain), true)
	return p
}

func (p *Symmetric) violates(ctx context.Context, side diff.Side) (bool, error) {
	return violatesInverseLike(ctx, p.Resolver, side, side.Claim.Property)
}

// Inverse violates unless the target's claims on Prop include one
// whose value is the owning entity. Main-scope only.
type Inverse struct {
	ClaimBase
	Resolver *resolve.Resolver
	Prop     wikiconstraint.PropertyID
}

func NewInverse(resolver *resolve.Resolver, prop wikiconstraint.PropertyID) *Inverse {
	p := &Inverse{Resolver: resolver, Prop: prop}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.NewScopeSet(wikiconstraint.ScopeMain), true)
	return p
}

func (p *Inverse) violates(ctx context.Context, side diff.Side) (bool, error) {
	return violatesInverseLike(ctx, p.Resolver, side, p.Prop)
}

func violatesInverseLike(ctx context.Context, resolver *resolve.Resolver, side diff.Side, prop wikiconstraint.PropertyID) (bool, error) {
	id, ok := entityTarget(side.Claim.Target)
	if !ok {
		return false, nil
	}

	target, err := resolver.Resolve(ctx, id)
	if err != nil {
		return targetNotFoundAsViolation(err)
	}

	for _, cl := range target.Claims[prop] {
		back, ok := entityTarget(cl.Target)
		if ok && back == side.Claim.OnItem {
			return false, nil
		}
	}
	return true, nil
}

// ValueExists violates when an entity-typed target does not exist.
type ValueExists struct {
	ClaimBase
	Store collab.EntityStore
}

func NewValueExists(store collab.EntityStore) *ValueExists {
	p := &ValueExists{Store: store}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *ValueExists) violates(ctx context.Context, side diff.Side) (bool, error) {
	id, ok := entityTarget(side.Claim.Target)
	if !ok {
		return false, nil
	}
	_, err := p.Store.Load(ctx, id)
	if err == nil {
		return false, nil
	}
	if wikiconstraint.IsTargetNotFound(err) {
		return true, nil
	}
	return false, err
}

// disambiguationClasses are the P31 targets identifying an entity as a
// disambiguation page (spec.md §4.1).
var disambiguationClasses = map[string]bool{
	"Q4167410":  true,
	"Q22808320": true,
}

// NoLinksToDisambiguation violates when the resolved target's P31
// includes a disambiguation class. A missing target is treated as a
// non-violation: it cannot be proven to link to a disambiguation page
// (spec.md §7).
type NoLinksToDisambiguation struct {
	ClaimBase
	Resolver *resolve.Resolver
}

func NewNoLinksToDisambiguation(resolver *resolve.Resolver) *NoLinksToDisambiguation {
	p := &NoLinksToDisambiguation{Resolver: resolver}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *NoLinksToDisambiguation) violates(ctx context.Context, side diff.Side) (bool, error) {
	id, ok := entityTarget(side.Claim.Target)
	if !ok {
		return false, nil
	}

	target, err := p.Resolver.Resolve(ctx, id)
	if err != nil {
		return targetNotFoundAsNonViolation(err)
	}

	for _, cl := range target.Claims["P31"] {
		if dst, ok := entityTarget(cl.Target); ok && disambiguationClasses[string(dst)] {
			return true, nil
		}
	}
	return false, nil
}

// NoSelfLink violates when an entity-typed target equals the owning
// entity.
type NoSelfLink struct{ ClaimBase }

func NewNoSelfLink() *NoSelfLink {
	p := &NoSelfLink{}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *NoSelfLink) violates(_ context.Context, side diff.Side) (bool, error) {
	id, ok := entityTarget(side.Claim.Target)
	return ok && id == side.Claim.OnItem, nil
}

// SandboxProperty always violates: it rejects any use of the
// property it is attached to.
type SandboxProperty struct{ ClaimBase }

func NewSandboxProperty() *SandboxProperty {
	p := &SandboxProperty{}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), false)
	return p
}

func (p *SandboxProperty) violates(_ context.Context, _ diff.Side) (bool, error) {
	return true, nil
}

// FileExistenceChecker reports whether a Commons-style file page
// exists in a given namespace on a given repository, the check
// CommonsLink needs without pulling in a full page-fetching API.
type FileExistenceChecker interface {
	FileExists(ctx context.Context, repo, namespace, title string) (bool, error)
}

// CommonsLink violates unless the target names an existing page in
// Namespace on FileRepo.
type CommonsLink struct {
	ClaimBase
	Checker   FileExistenceChecker
	FileRepo  string
	Namespace string
}

func NewCommonsLink(checker FileExistenceChecker, fileRepo, namespace string) *CommonsLink {
	p := &CommonsLink{Checker: checker, FileRepo: fileRepo, Namespace: namespace}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *CommonsLink) violates(ctx context.Context, side diff.Side) (bool, error) {
	title, ok := commonsTitle(side.Claim.Target)
	if !ok {
		return true, nil
	}
	exists, err := p.Checker.FileExists(ctx, p.FileRepo, p.Namespace, title)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func commonsTitle(v wikiconstraint.Value) (string, bool) {
	switch t := v.(type) {
	case wikiconstraint.PageValue:
		return t.Title, true
	case string:
		return t, true
	default:
		return "", false
	}
}

// Error404 violates when the external URL built from the property's
// best-ranked formatter claim (P1630, "$1" substituted by the target)
// probes as non-OK.
type Error404 struct {
	ClaimBase
	PropertyPages collab.EntityStore
	HTTP          collab.HTTPClient
}

func NewError404(propertyPages collab.EntityStore, http collab.HTTPClient) *Error404 {
	p := &Error404{PropertyPages: propertyPages, HTTP: http}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *Error404) violates(ctx context.Context, side diff.Side) (bool, error) {
	value, ok := side.Claim.Target.(string)
	if !ok || value == "" {
		return false, nil
	}

	ppage, err := p.PropertyPages.Load(ctx, side.Claim.Property)
	if err != nil {
		return false, nil
	}

	best := wikiconstraint.GetBestClaims(ppage.Claims, "P1630")
	if len(best) == 0 {
		return false, nil
	}

	formatter, ok := best[0].Target.(string)
	if !ok || formatter == "" {
		return false, nil
	}

	url := strings.ReplaceAll(formatter, "$1", value)
	ok, err = p.HTTP.Get(ctx, url)
	if err != nil {
		return false, err
	}
	return !ok, nil
}
