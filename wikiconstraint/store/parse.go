package store

import (
	"math/big"
	"time"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/eval"
	"github.com/wikiconstraint/engine/wikiconstraint/intern"
	"github.com/wikiconstraint/engine/wikiconstraint/predicate"
)

// valToRelation maps a P2309 qualifier target to the relation chain
// SubjectType/ValueType traverse (spec.md §4.2).
var valToRelation = map[string]predicate.Relation{
	"Q21503252": predicate.RelationInstanceOf,
	"Q21514624": predicate.RelationSubclassOf,
	"Q30208840": predicate.RelationInstanceOrSub,
}

// parseConstraints parses page's P2302 declarations into constraint
// instances and appends the synthesized always-on set (spec.md §4.2).
func (s *ConstraintsStore) parseConstraints(page *wikiconstraint.Revision) []*eval.Constraint {
	prop := intern.Property(string(page.EntityID))
	var out []*eval.Constraint

	for _, claim := range page.Claims["P2302"] {
		if claim.Rank == wikiconstraint.RankDeprecated {
			continue
		}
		id, ok := claim.Target.(wikiconstraint.EntityID)
		if !ok {
			continue
		}

		pred := s.parseOne(string(id), claim)
		if pred == nil {
			continue
		}

		out = append(out, &eval.Constraint{
			Predicate: pred,
			Property:  prop,
			Status:    parseStatus(claim),
			Scopes:    parseScopes(claim),
		})
	}

	out = append(out, &eval.Constraint{
		Predicate: predicate.NewHasValidReference(s),
		Property:  prop,
		Status:    wikiconstraint.StatusRegular,
		Scopes:    wikiconstraint.NewScopeSet(wikiconstraint.ScopeMain),
	})

	switch page.DataType {
	case "wikibase-item":
		out = append(out,
			&eval.Constraint{
				Predicate: predicate.NewNoLinksToDisambiguation(s.Resolver),
				Property:  prop,
				Status:    wikiconstraint.StatusRegular,
				Scopes:    wikiconstraint.AllScopes(),
			},
			&eval.Constraint{
				Predicate: predicate.NewNoSelfLink(),
				Property:  prop,
				Status:    wikiconstraint.StatusRegular,
				Scopes:    wikiconstraint.AllScopes(),
			},
		)
	case "quantity":
		out = append(out, &eval.Constraint{
			Predicate: predicate.NewLargeChange(),
			Property:  prop,
			Status:    wikiconstraint.StatusSuggestion,
			Scopes:    wikiconstraint.AllScopes(),
		})
	}

	return out
}

// parseOne dispatches on the P2302 claim's target id, the selector for
// which constraint variant this declaration names (spec.md §4.2).
func (s *ConstraintsStore) parseOne(targetID string, claim *wikiconstraint.Claim) predicate.Predicate {
	switch targetID {
	case "Q21510859": // OneOf
		if values := qualifierValueSet(claim.Qualifiers["P2305"]); values != nil {
			return predicate.NewOneOf(values)
		}
	case "Q52558054": // NoneOf
		if values := qualifierValueSet(claim.Qualifiers["P2305"]); values != nil {
			return predicate.NewNoneOf(values)
		}
	case "Q21514353": // Units
		if values := qualifierValueSet(claim.Qualifiers["P2305"]); values != nil {
			return predicate.NewUnits(values)
		}

	case "Q108139345": // LabelInLanguage
		if langs := qualifierValueSet(claim.Qualifiers["P424"]); langs != nil {
			return predicate.NewLabelInLanguage(langs)
		}
	case "Q111204896": // DescriptionInLanguage
		if langs := qualifierValueSet(claim.Qualifiers["P424"]); langs != nil {
			return predicate.NewDescriptionInLanguage(langs)
		}

	case "Q21503247": // ItemRequires
		if prop, ok := relatedProperty(claim); ok {
			return predicate.NewItemRequires(prop, qualifierValueSetOrNil(claim, "P2305"))
		}
	case "Q21510864": // ValueRequires
		if prop, ok := relatedProperty(claim); ok {
			return predicate.NewValueRequires(s.Resolver, prop, qualifierValueSetOrNil(claim, "P2305"))
		}
	case "Q21502838": // ConflictsWith
		if prop, ok := relatedProperty(claim); ok {
			return predicate.NewConflictsWith(prop, qualifierValueSetOrNil(claim, "P2305"))
		}

	case "Q21502404": // Format
		for _, q := range claim.Qualifiers["P1793"] {
			pattern, ok := q.Target.(string)
			if !ok {
				continue
			}
			f, err := predicate.NewFormat(pattern)
			if err != nil {
				return nil
			}
			return f
		}

	case "Q21510852": // CommonsLink
		namespace := ""
		for _, q := range claim.Qualifiers["P2307"] {
			if v, ok := q.Target.(string); ok {
				namespace = v
			}
			break
		}
		if namespace == "" || s.FileChecker == nil {
			return nil
		}
		return predicate.NewCommonsLink(s.FileChecker, s.FileRepo, namespace)

	case "Q51723761": // NoBounds
		return predicate.NewNoBounds()
	case "Q52848401": // Integer
		return predicate.NewInteger()
	case "Q21510862": // Symmetric
		return predicate.NewSymmetric(s.Resolver)
	case "Q21510855": // Inverse
		for _, q := range claim.Qualifiers["P2306"] {
			if id, ok := q.Target.(wikiconstraint.EntityID); ok {
				return predicate.NewInverse(s.Resolver, intern.Property(string(id)))
			}
		}

	case "Q21510860": // QuantityRange or TimeRange, by qualifier shape
		if pred := parseQuantityOrTimeRange(claim); pred != nil {
			return pred
		}

	case "Q21510854": // DifferenceWithinRange
		return parseDifferenceWithinRange(claim)

	case "Q21510865": // ValueType
		if relation, classes, ok := parseTypeRelation(claim); ok {
			return predicate.NewValueType(s.Sparql, relation, classes)
		}
	case "Q21503250": // SubjectType
		if relation, classes, ok := parseTypeRelation(claim); ok {
			return predicate.NewSubjectType(s.Sparql, relation, classes, s.subjectTypeCache)
		}

	case "Q21510851": // Qualifiers
		if props := propertySet(claim.Qualifiers["P2306"]); props != nil {
			return predicate.NewQualifiers(props)
		}
	case "Q21510856": // RequiredQualifiers
		if props := propertySet(claim.Qualifiers["P2306"]); props != nil {
			return predicate.NewRequiredQualifiers(props)
		}

	case "Q53869507": // PropertyScope
		if scopes, ok := parsePropertyScope(claim); ok {
			return predicate.NewPropertyScope(scopes)
		}
	}
	return nil
}

func relatedProperty(claim *wikiconstraint.Claim) (wikiconstraint.PropertyID, bool) {
	for _, q := range claim.Qualifiers["P2306"] {
		if id, ok := q.Target.(wikiconstraint.EntityID); ok {
			return intern.Property(string(id)), true
		}
	}
	return "", false
}

// qualifierValueSet mirrors evaluator.py's _get_values: a non-value
// qualifier contributes its snak-type literal, a value qualifier its
// entity id. Returns nil (not an empty map) when quals is empty, so
// callers can distinguish "declared with no values" from "undeclared".
func qualifierValueSet(quals []*wikiconstraint.Claim) map[string]bool {
	if len(quals) == 0 {
		return nil
	}
	out := map[string]bool{}
	for _, q := range quals {
		if q.SnakType != wikiconstraint.SnakValue {
			out[q.SnakType.String()] = true
			continue
		}
		if id, ok := q.Target.(wikiconstraint.EntityID); ok {
			out[string(id)] = true
		}
	}
	return out
}

// qualifierValueSetOrNil is qualifierValueSet but explicitly nil when
// the qualifier is absent, for the ItemRequires/ValueRequires/
// ConflictsWith family where a missing P2305 means "presence is
// enough" rather than "match nothing".
func qualifierValueSetOrNil(claim *wikiconstraint.Claim, qualProp wikiconstraint.PropertyID) map[string]bool {
	return qualifierValueSet(claim.Qualifiers[qualProp])
}

func propertySet(quals []*wikiconstraint.Claim) map[wikiconstraint.PropertyID]bool {
	values := qualifierValueSet(quals)
	if values == nil {
		return nil
	}
	out := make(map[wikiconstraint.PropertyID]bool, len(values))
	for v := range values {
		out[intern.Property(v)] = true
	}
	return out
}

func parseTypeRelation(claim *wikiconstraint.Claim) (predicate.Relation, map[string]bool, bool) {
	classes := qualifierValueSet(claim.Qualifiers["P2308"])
	if classes == nil {
		return nil, nil, false
	}
	for _, q := range claim.Qualifiers["P2309"] {
		id, ok := q.Target.(wikiconstraint.EntityID)
		if !ok {
			continue
		}
		if relation, ok := valToRelation[string(id)]; ok {
			return relation, classes, true
		}
	}
	return nil, nil, false
}

// parseQuantityOrTimeRange builds QuantityRange from P2313 (lower) /
// P2312 (upper), and TimeRange from the separate P2310 (lower) / P2311
// (upper) qualifier pair, matching evaluator.py's load_constraints two
// zip loops over these distinct property pairs (spec.md §4.2).
func parseQuantityOrTimeRange(claim *wikiconstraint.Claim) predicate.Predicate {
	quantityLowerQ := claim.Qualifiers["P2313"]
	quantityUpperQ := claim.Qualifiers["P2312"]
	if len(quantityLowerQ) > 0 || len(quantityUpperQ) > 0 {
		lower := quantityBound(quantityLowerQ)
		upper := quantityBound(quantityUpperQ)
		return predicate.NewQuantityRange(lower, upper)
	}

	timeLowerQ := claim.Qualifiers["P2310"]
	timeUpperQ := claim.Qualifiers["P2311"]
	if len(timeLowerQ) > 0 || len(timeUpperQ) > 0 {
		lower := timeBound(timeLowerQ)
		upper := timeBound(timeUpperQ)
		return predicate.NewTimeRange(lower, upper)
	}

	return nil
}

func quantityBound(quals []*wikiconstraint.Claim) *big.Float {
	if len(quals) == 0 {
		return nil
	}
	q, ok := quals[0].Target.(wikiconstraint.Quantity)
	if !ok {
		return nil
	}
	f, ok := new(big.Float).SetString(q.Amount)
	if !ok {
		return nil
	}
	return f
}

// timeBound implements spec.md §4.2's novalue/somevalue handling for a
// P2310/P2311 bound: novalue means open (nil, no bound on that side),
// somevalue means "now" (evaluator.py's pywikibot.Timestamp.now(), the
// current instant at second precision), and a value snak carries the
// bound outright.
func timeBound(quals []*wikiconstraint.Claim) *wikiconstraint.Time {
	if len(quals) == 0 {
		return nil
	}
	q := quals[0]
	switch q.SnakType {
	case wikiconstraint.SnakNoValue:
		return nil
	case wikiconstraint.SnakSomeValue:
		return nowTime()
	}
	t, ok := q.Target.(wikiconstraint.Time)
	if !ok {
		return nil
	}
	return &t
}

func nowTime() *wikiconstraint.Time {
	now := time.Now().UTC()
	return &wikiconstraint.Time{
		Year:      now.Year(),
		Month:     int(now.Month()),
		Day:       now.Day(),
		Hour:      now.Hour(),
		Minute:    now.Minute(),
		Second:    now.Second(),
		Precision: wikiconstraint.PrecisionSecond,
	}
}

func parseDifferenceWithinRange(claim *wikiconstraint.Claim) predicate.Predicate {
	otherQ := claim.Qualifiers["P2306"]
	lowerQ := claim.Qualifiers["P2313"]
	upperQ := claim.Qualifiers["P2312"]
	if len(otherQ) == 0 || len(lowerQ) == 0 || len(upperQ) == 0 {
		return nil
	}

	other, ok := otherQ[0].Target.(wikiconstraint.EntityID)
	if !ok {
		return nil
	}
	if lowerQ[0].SnakType == wikiconstraint.SnakSomeValue || upperQ[0].SnakType == wikiconstraint.SnakSomeValue {
		return nil
	}

	lowerAmount, lowerUnit, ok := decimalQuantity(lowerQ[0])
	if !ok {
		return nil
	}
	upperAmount, upperUnit, ok := decimalQuantity(upperQ[0])
	if !ok {
		return nil
	}

	unit := lowerUnit
	if unit == "" {
		unit = upperUnit
	}
	if unit == "" {
		unit = predicate.UnitYears
	}

	return predicate.NewDifferenceWithinRange(intern.Property(string(other)), lowerAmount, upperAmount, unit)
}

func decimalQuantity(claim *wikiconstraint.Claim) (*big.Float, predicate.TimeUnit, bool) {
	q, ok := claim.Target.(wikiconstraint.Quantity)
	if !ok {
		return nil, "", false
	}
	f, ok := new(big.Float).SetString(q.Amount)
	if !ok {
		return nil, "", false
	}
	var unit predicate.TimeUnit
	if q.Unit != nil {
		unit = predicate.TimeUnit(*q.Unit)
	}
	return f, unit, true
}

func parsePropertyScope(claim *wikiconstraint.Claim) (wikiconstraint.ScopeSet, bool) {
	var scopes []wikiconstraint.Scope
	for _, q := range claim.Qualifiers["P5314"] {
		id, ok := q.Target.(wikiconstraint.EntityID)
		if !ok {
			continue
		}
		switch string(id) {
		case "Q54828448":
			scopes = append(scopes, wikiconstraint.ScopeMain)
		case "Q54828449":
			scopes = append(scopes, wikiconstraint.ScopeQualifier)
		case "Q54828450":
			scopes = append(scopes, wikiconstraint.ScopeReference)
		}
	}
	if len(scopes) == 0 {
		return wikiconstraint.ScopeSet(0), false
	}
	return wikiconstraint.NewScopeSet(scopes...), true
}

func parseStatus(claim *wikiconstraint.Claim) wikiconstraint.Status {
	for _, q := range claim.Qualifiers["P2316"] {
		id, ok := q.Target.(wikiconstraint.EntityID)
		if !ok {
			continue
		}
		switch string(id) {
		case "Q21502408":
			return wikiconstraint.StatusMandatory
		case "Q62026391":
			return wikiconstraint.StatusSuggestion
		}
	}
	return wikiconstraint.StatusRegular
}

func parseScopes(claim *wikiconstraint.Claim) wikiconstraint.ScopeSet {
	var scopes []wikiconstraint.Scope
	for _, q := range claim.Qualifiers["P4680"] {
		id, ok := q.Target.(wikiconstraint.EntityID)
		if !ok {
			continue
		}
		switch string(id) {
		case "Q46466787":
			scopes = append(scopes, wikiconstraint.ScopeMain)
		case "Q46466783":
			scopes = append(scopes, wikiconstraint.ScopeQualifier)
		case "Q46466805":
			scopes = append(scopes, wikiconstraint.ScopeReference)
		}
	}
	if len(scopes) == 0 {
		return wikiconstraint.AllScopes()
	}
	return wikiconstraint.NewScopeSet(scopes...)
}
