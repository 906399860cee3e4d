// Package diff computes the stable pairing of claims and qualifiers
// between two entity revisions, emitting the addition/removal/update
// atoms the evaluator dispatches constraints over (spec.md §4.3).
package diff

import (
	"github.com/wikiconstraint/engine/wikiconstraint"
)

// Side carries one revision's half of a Context: the revision itself
// plus the claim (if any) and its structural parent.
type Side struct {
	Revision *wikiconstraint.Revision
	Claim    *wikiconstraint.Claim // nil if this side has no claim
	Parent   *wikiconstraint.Claim // non-nil when Claim is a qualifier
}

// Context pairs the old and new sides of one atomic change. At least
// one of Old.Claim, New.Claim is non-nil for any Context reaching a
// claim-level predicate.
type Context struct {
	Old Side
	New Side
}

// Prop returns the property of whichever side carries a claim.
func (c Context) Prop() wikiconstraint.PropertyID {
	if c.Old.Claim != nil {
		return c.Old.Claim.Property
	}
	if c.New.Claim != nil {
		return c.New.Claim.Property
	}
	return ""
}

// OldClaim and NewClaim expose the two claims under comparison; either
// may be nil.
func (c Context) OldClaim() *wikiconstraint.Claim { return c.Old.Claim }
func (c Context) NewClaim() *wikiconstraint.Claim { return c.New.Claim }

// Atom is one unit of work for the evaluator: a diffed pair together
// with the structural scope it occurred at. References are not
// diffed in this design (spec.md §4.3, §9) — HasValidReference
// compensates for that with its own scoring, counting reference
// blocks directly rather than diffing them.
type Atom struct {
	Scope   wikiconstraint.Scope
	Context Context
}

// ClaimDifferences pairs claims of old and new by snak id for every
// property present in either revision. For ids present on only one
// side, it yields that side alone; for ids present on both, it
// compares structurally (ignoring rank, per spec.md §4.3) and yields
// the pair only when they differ.
func ClaimDifferences(old, new *wikiconstraint.Revision) []Context {
	var out []Context

	props := map[wikiconstraint.PropertyID]bool{}
	for p := range old.Claims {
		props[p] = true
	}
	for p := range new.Claims {
		props[p] = true
	}

	for prop := range props {
		oldIndex := indexBySnakID(old.Claims[prop])
		newIndex := indexBySnakID(new.Claims[prop])

		ids := map[string]bool{}
		for id := range oldIndex {
			ids[id] = true
		}
		for id := range newIndex {
			ids[id] = true
		}

		for id := range ids {
			oldClaim := oldIndex[id]
			newClaim := newIndex[id]
			if oldClaim == nil || newClaim == nil {
				out = append(out, Context{
					Old: Side{Revision: old, Claim: oldClaim},
					New: Side{Revision: new, Claim: newClaim},
				})
				continue
			}
			if !sameClaim(oldClaim, newClaim) {
				out = append(out, Context{
					Old: Side{Revision: old, Claim: oldClaim},
					New: Side{Revision: new, Claim: newClaim},
				})
			}
		}
	}

	return out
}

func indexBySnakID(claims []*wikiconstraint.Claim) map[string]*wikiconstraint.Claim {
	out := make(map[string]*wikiconstraint.Claim, len(claims))
	for _, c := range claims {
		out[c.SnakID] = c
	}
	return out
}

// QualifierDiff describes one property's worth of qualifier changes
// within an updated claim pair.
type QualifierDiff struct {
	Property wikiconstraint.PropertyID
	Added    []*wikiconstraint.Claim
	Removed  []*wikiconstraint.Claim
	// Updated holds 1-to-1 (removed, added) promotions: the only way a
	// qualifier can be updated without changing its logical identity
	// (spec.md §4.3).
	Updated []QualifierUpdate
}

type QualifierUpdate struct {
	Old *wikiconstraint.Claim
	New *wikiconstraint.Claim
}

// DiffQualifiers builds matched pairs between old and new qualifier
// lists by structural cmp_key equality: each old entry matches the
// first new entry with an equal key, in encounter order, regardless
// of whether that new entry was already claimed by an earlier old
// entry (evaluator.py's handle_update qualifier loop does the same
// unconditional scan, so duplicate-valued qualifiers under one
// property can leave a duplicate new entry unmatched even though
// every old entry matched something). Unmatched old entries are
// removals, unmatched new entries are additions. When exactly one
// qualifier is added and exactly one removed for a property, the pair
// is promoted to a single update instead of an add+remove.
func DiffQualifiers(oldClaim, newClaim *wikiconstraint.Claim) []QualifierDiff {
	keys := map[wikiconstraint.PropertyID]bool{}
	for k := range oldClaim.Qualifiers {
		keys[k] = true
	}
	for k := range newClaim.Qualifiers {
		keys[k] = true
	}

	var out []QualifierDiff
	for key := range keys {
		oldQuals := oldClaim.Qualifiers[key]
		newQuals := newClaim.Qualifiers[key]

		var added, removed []*wikiconstraint.Claim
		switch {
		case len(oldQuals) == 0:
			added = append(added, newQuals...)
		case len(newQuals) == 0:
			removed = append(removed, oldQuals...)
		default:
			oldMatched := make([]bool, len(oldQuals))
			newMatched := make([]bool, len(newQuals))
			for i, q := range oldQuals {
				for j, o := range newQuals {
					if q.CmpKey() == o.CmpKey() {
						oldMatched[i] = true
						newMatched[j] = true
						break
					}
				}
			}
			for i, q := range oldQuals {
				if !oldMatched[i] {
					removed = append(removed, q)
				}
			}
			for j, q := range newQuals {
				if !newMatched[j] {
					added = append(added, q)
				}
			}
		}

		if len(added) == 0 && len(removed) == 0 {
			continue
		}

		qd := QualifierDiff{Property: key}
		if len(added) == 1 && len(removed) == 1 {
			qd.Updated = []QualifierUpdate{{Old: removed[0], New: added[0]}}
		} else {
			qd.Added = added
			qd.Removed = removed
		}
		out = append(out, qd)
	}
	return out
}

// sameClaim is the diff engine's "same-as" relation: structurally
// equal ignoring rank, but considering qualifiers and references.
func sameClaim(a, b *wikiconstraint.Claim) bool {
	return wikiconstraint.SameAs(a, b)
}
