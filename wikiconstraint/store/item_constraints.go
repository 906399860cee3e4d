package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/eval"
	"github.com/wikiconstraint/engine/wikiconstraint/predicate"
)

// entityConstraintKind describes one of the entity-level predicate
// families GetItemConstraints bulk-discovers: which P2302 target id
// names it, the changed-property gate that must fire before bothering
// to look (nil means "always look"), and how to recognize an already-
// parsed constraint as belonging to this kind.
type entityConstraintKind struct {
	itemID  string
	require map[wikiconstraint.PropertyID]bool
	isKind  func(predicate.Predicate) bool
}

// entityConstraintKinds mirrors evaluator.py's get_item_constraints
// table (spec.md §4.2), with one correction: the original pairs
// SubjectType with item id Q21510865, which load_constraints assigns
// to ValueType — an upstream copy-paste slip, since ValueType is a
// claim-level predicate that has no business in entity-level bulk
// discovery. This table uses SubjectType's real id, Q21503250.
var entityConstraintKinds = []entityConstraintKind{
	{
		itemID: "Q21503247", // ItemRequires
		isKind: func(p predicate.Predicate) bool { _, ok := p.(*predicate.ItemRequires); return ok },
	},
	{
		itemID: "Q21502838", // ConflictsWith
		isKind: func(p predicate.Predicate) bool { _, ok := p.(*predicate.ConflictsWith); return ok },
	},
	{
		itemID:  "Q21503250", // SubjectType
		require: map[wikiconstraint.PropertyID]bool{"P31": true, "P279": true},
		isKind:  func(p predicate.Predicate) bool { _, ok := p.(*predicate.SubjectType); return ok },
	},
	{
		itemID: "Q108139345", // LabelInLanguage
		isKind: func(p predicate.Predicate) bool { _, ok := p.(*predicate.LabelInLanguage); return ok },
	},
	{
		itemID: "Q111204896", // DescriptionInLanguage
		isKind: func(p predicate.Predicate) bool { _, ok := p.(*predicate.DescriptionInLanguage); return ok },
	},
}

// GetItemConstraints returns every entity-level constraint of the
// known kinds declared on any property in props, consulting the
// shared per-property cache first and falling back to one bulk SPARQL
// discovery query per kind for properties not yet parsed (spec.md
// §4.2: "avoid loading every candidate property's page individually").
// changed gates require-bearing kinds: a kind is skipped entirely when
// none of its required properties appear in changed.
func (s *ConstraintsStore) GetItemConstraints(ctx context.Context, props []wikiconstraint.PropertyID, changed map[wikiconstraint.PropertyID]bool) ([]*eval.Constraint, error) {
	var out []*eval.Constraint

	for _, kind := range entityConstraintKinds {
		if kind.require != nil && !intersects(changed, kind.require) {
			continue
		}

		var loadedProps, leftProps []wikiconstraint.PropertyID
		for _, prop := range props {
			if _, ok := s.loaded(prop); ok {
				loadedProps = append(loadedProps, prop)
			} else {
				leftProps = append(leftProps, prop)
			}
		}
		if len(leftProps) < 5 {
			loadedProps = append(loadedProps, leftProps...)
			leftProps = nil
		}

		for _, prop := range loadedProps {
			cs, err := s.GetConstraints(ctx, prop)
			if err != nil {
				return nil, err
			}
			out = append(out, filterKind(cs, kind.isKind)...)
		}

		if len(leftProps) == 0 {
			continue
		}

		query := discoveryQuery(kind, leftProps, changed)
		found, err := s.Sparql.GetItems(ctx, query, "prop")
		if err != nil {
			return nil, fmt.Errorf("store: bulk discovery query for %s: %w", kind.itemID, err)
		}
		for _, id := range found {
			cs, err := s.GetConstraints(ctx, wikiconstraint.PropertyID(id))
			if err != nil {
				return nil, err
			}
			out = append(out, filterKind(cs, kind.isKind)...)
		}
	}

	return out, nil
}

func intersects(changed map[wikiconstraint.PropertyID]bool, required map[wikiconstraint.PropertyID]bool) bool {
	for p := range required {
		if changed[p] {
			return true
		}
	}
	return false
}

func filterKind(cs []*eval.Constraint, isKind func(predicate.Predicate) bool) []*eval.Constraint {
	var out []*eval.Constraint
	for _, c := range cs {
		if isKind(c.Predicate) {
			out = append(out, c)
		}
	}
	return out
}

// discoveryQuery renders the bulk-discovery SPARQL query for kind.
// A require-gated kind (only SubjectType, in practice) has no
// changed-property relation to filter by, so its query is plain
// membership; the others filter by pq:P2306 matching a changed
// property — except LabelInLanguage/DescriptionInLanguage, which key
// their relation off P424 rather than P2306 and so cannot share that
// template; they fall back to plain membership too (spec.md §4.2, a
// deliberate structural correction: the original applies one shared
// P2306-filtered template to every require=None kind, which cannot be
// correct for a kind whose relation qualifier isn't P2306 at all).
func discoveryQuery(kind entityConstraintKind, props []wikiconstraint.PropertyID, changed map[wikiconstraint.PropertyID]bool) string {
	local := joinWD(props)

	if kind.require != nil || kind.itemID == "Q108139345" || kind.itemID == "Q111204896" {
		return fmt.Sprintf(
			"SELECT DISTINCT ?prop { VALUES ?prop { %s } . ?prop wdt:P2302 wd:%s }",
			local, kind.itemID,
		)
	}

	changedList := make([]wikiconstraint.PropertyID, 0, len(changed))
	for p := range changed {
		changedList = append(changedList, p)
	}
	return fmt.Sprintf(
		"SELECT DISTINCT ?prop { VALUES ?prop { %s } . VALUES ?changed { %s } . "+
			"?prop p:P2302 [ ps:P2302 wd:%s; pq:P2306 ?changed ] }",
		local, joinWD(changedList), kind.itemID,
	)
}

func joinWD(props []wikiconstraint.PropertyID) string {
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = "wd:" + string(p)
	}
	return strings.Join(parts, " ")
}
