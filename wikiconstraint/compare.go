package wikiconstraint

// ValuesEqual compares two claim targets for equality. Entity-typed
// values compare by id (the caller is expected to have already
// resolved redirects), other types compare structurally.
func ValuesEqual(left, right Value) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}

	switch l := left.(type) {
	case EntityID:
		r, ok := right.(EntityID)
		return ok && l == r
	case string:
		r, ok := right.(string)
		return ok && l == r
	case MonolingualText:
		r, ok := right.(MonolingualText)
		return ok && l == r
	case Quantity:
		r, ok := right.(Quantity)
		if !ok {
			return false
		}
		return l.Amount == r.Amount && ptrEq(l.Upper, r.Upper) &&
			ptrEq(l.Lower, r.Lower) && unitEq(l.Unit, r.Unit)
	case Time:
		r, ok := right.(Time)
		return ok && l == r
	case PageValue:
		r, ok := right.(PageValue)
		return ok && l == r
	default:
		return left == right
	}
}

func ptrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func unitEq(a, b *EntityID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SameAs is the diff engine's "same-as" relation between two claims:
// structurally equal ignoring rank, but considering qualifiers and
// references (spec.md §4.3).
func SameAs(a, b *Claim) bool {
	return sameAs(a, b, false)
}

// sameAs is the diff engine's structural equality between two claims:
// it ignores rank (spec.md §4.3's "same-as" relation), but considers
// snak type, target, qualifiers, and — unless ignoreRefs — references.
func sameAs(a, b *Claim, ignoreRefs bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.SnakType != b.SnakType {
		return false
	}
	if !ValuesEqual(a.Target, b.Target) {
		return false
	}
	if !qualifiersSame(a.Qualifiers, b.Qualifiers) {
		return false
	}
	if !ignoreRefs && !referencesSame(a.Sources, b.Sources) {
		return false
	}
	return true
}

func qualifiersSame(a, b map[PropertyID][]*Claim) bool {
	keys := map[PropertyID]bool{}
	for k := range a {
		keys[k] = true
	}
	for k := range b {
		keys[k] = true
	}
	for k := range keys {
		if !claimListSame(a[k], b[k]) {
			return false
		}
	}
	return true
}

func claimListSame(a, b []*Claim) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, ca := range a {
		found := false
		for j, cb := range b {
			if used[j] {
				continue
			}
			if ca.SnakType == cb.SnakType && ValuesEqual(ca.Target, cb.Target) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ReferencesSame reports whether two claims' reference blocks are the
// same set, ignoring order (used by HasValidReference to tell a
// value-only update from one that also touched sources).
func ReferencesSame(a, b []ReferenceBlock) bool {
	return referencesSame(a, b)
}

func referencesSame(a, b []ReferenceBlock) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, ra := range a {
		found := false
		for j, rb := range b {
			if used[j] {
				continue
			}
			if referenceBlockSame(ra, rb) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func referenceBlockSame(a, b ReferenceBlock) bool {
	keys := map[PropertyID]bool{}
	for k := range a.Properties {
		keys[k] = true
	}
	for k := range b.Properties {
		keys[k] = true
	}
	for k := range keys {
		if !claimListSame(a.Properties[k], b.Properties[k]) {
			return false
		}
	}
	return true
}

// InValues reports whether claim's value membership-tests against a
// declared value set: a non-value snak compares by its snak-type
// literal ("novalue"/"somevalue"), a value snak compares its entity id.
func InValues(claim *Claim, values map[string]bool) bool {
	if claim.SnakType != SnakValue {
		return values[claim.SnakType.String()]
	}
	id, ok := claim.Target.(EntityID)
	if !ok {
		return false
	}
	return values[string(id)]
}
