package predicate

import (
	"context"
	"fmt"
	"strings"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/cache"
	"github.com/wikiconstraint/engine/wikiconstraint/collab"
	"github.com/wikiconstraint/engine/wikiconstraint/diff"
)

// classPairKey is the (base, class) cache key SubjectType shares
// across instances (spec.md §4.1, §5: "a shared bounded cache").
type classPairKey struct {
	base  wikiconstraint.EntityID
	class string
}

// SharedClassCache is the bounded (base, class) → bool cache the store
// owns and hands to every SubjectType instance it constructs
// (capacity ≈ 1000, spec.md §5).
type SharedClassCache = cache.LRU[classPairKey, bool]

// NewSharedClassCache returns a cache sized per spec.md §5.
func NewSharedClassCache() *SharedClassCache {
	return cache.New[classPairKey, bool](1000)
}

// Relation identifies which property (or properties) SubjectType and
// ValueType traverse from the subject/target before checking class
// membership.
type Relation []wikiconstraint.PropertyID

var (
	RelationInstanceOf    Relation = []wikiconstraint.PropertyID{"P31"}
	RelationSubclassOf    Relation = []wikiconstraint.PropertyID{"P279"}
	RelationInstanceOrSub Relation = []wikiconstraint.PropertyID{"P31", "P279"}
)

// SubjectType is satisfied when this entity's Relation targets
// include one of Classes, or one that transitively subclasses
// (wdt:P279+) into one of Classes. Entity-level, MAIN scope only.
type SubjectType struct {
	EntityBase
	Sparql   collab.SparqlClient
	Relation Relation
	Classes  map[string]bool
	Shared   *SharedClassCache
}

func NewSubjectType(sparql collab.SparqlClient, relation Relation, classes map[string]bool, shared *SharedClassCache) *SubjectType {
	p := &SubjectType{Sparql: sparql, Relation: relation, Classes: classes, Shared: shared}
	p.EntityBase = NewEntityBase(p.satisfied)
	return p
}

func (p *SubjectType) satisfied(ctx context.Context, rev *wikiconstraint.Revision) (bool, error) {
	check := map[string]bool{}
	for _, prop := range p.Relation {
		for _, claim := range rev.Claims[prop] {
			if id, ok := entityTarget(claim.Target); ok {
				check[string(id)] = true
			}
		}
	}
	if len(check) == 0 {
		return false, nil
	}

	for base := range check {
		if p.Classes[base] {
			return true, nil
		}
	}

	needsQuery := map[string]bool{}
	for base := range check {
		hit := false
		allCached := true
		for class := range p.Classes {
			v, ok := p.Shared.Get(classPairKey{base: wikiconstraint.EntityID(base), class: class})
			if !ok {
				allCached = false
				continue
			}
			if v {
				hit = true
			}
		}
		if hit {
			return true, nil
		}
		if !allCached {
			needsQuery[base] = true
		}
	}

	if len(needsQuery) == 0 {
		return false, nil
	}

	var uncached []string
	for base := range needsQuery {
		uncached = append(uncached, base)
	}
	query := subjectTypeQuery(uncached)
	rows, err := p.Sparql.Select(ctx, query)
	if err != nil {
		return false, fmt.Errorf("predicate: SubjectType query: %w", err)
	}

	byBase := map[string]map[string]bool{}
	for _, row := range rows {
		base := row["base"]
		super := row["super"]
		if byBase[base] == nil {
			byBase[base] = map[string]bool{}
		}
		byBase[base][super] = true
	}

	out := false
	for base := range check {
		for class := range p.Classes {
			found := byBase[base][class]
			if found {
				out = true
			}
			p.Shared.Set(classPairKey{base: wikiconstraint.EntityID(base), class: class}, found)
		}
	}
	return out, nil
}

// subjectTypeQuery renders the fixed SELECT template (spec.md §6).
func subjectTypeQuery(bases []string) string {
	var vals []string
	for _, b := range bases {
		vals = append(vals, "wd:"+b)
	}
	return fmt.Sprintf(
		"SELECT REDUCED ?base ?super { VALUES ?base { %s } . ?base wdt:P279+ ?super }",
		strings.Join(vals, " "),
	)
}

// ValueType violates unless a claim's entity-typed target is
// transitively classified under one of Classes via Relation, checked
// with a per-instance bounded cache keyed by target id (spec.md §4.1,
// capacity ≈ 100).
type ValueType struct {
	ClaimBase
	Sparql   collab.SparqlClient
	Relation Relation
	Classes  map[string]bool
	cache    *cache.LRU[wikiconstraint.EntityID, bool]
}

func NewValueType(sparql collab.SparqlClient, relation Relation, classes map[string]bool) *ValueType {
	p := &ValueType{
		Sparql:   sparql,
		Relation: relation,
		Classes:  classes,
		cache:    cache.New[wikiconstraint.EntityID, bool](100),
	}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *ValueType) violates(ctx context.Context, side diff.Side) (bool, error) {
	id, ok := entityTarget(side.Claim.Target)
	if !ok {
		return false, nil
	}

	if classified, ok := p.cache.Get(id); ok {
		return !classified, nil
	}

	classified, err := p.Sparql.Ask(ctx, p.askQuery(id))
	if err != nil {
		return false, err
	}
	p.cache.Set(id, classified)
	return !classified, nil
}

// askQuery renders the fixed ASK template (spec.md §6); the optional
// wdt:P31 hop is included only when Relation calls for it.
func (p *ValueType) askQuery(id wikiconstraint.EntityID) string {
	var classes []string
	for c := range p.Classes {
		classes = append(classes, "wd:"+c)
	}
	return fmt.Sprintf(
		"ASK { VALUES ?class { %s } . wd:%s %swdt:P279* ?class }",
		strings.Join(classes, " "), id, relationPrefix(p.Relation),
	)
}

func relationPrefix(r Relation) string {
	has31, has279 := false, false
	for _, p := range r {
		switch p {
		case "P31":
			has31 = true
		case "P279":
			has279 = true
		}
	}
	switch {
	case has31 && has279:
		return "wdt:P31?/"
	case has31:
		return "wdt:P31/"
	default:
		return ""
	}
}

// ItemRequires is satisfied when the entity has a Prop-claim (and, if
// Values given, at least one such claim is in Values).
type ItemRequires struct {
	EntityBase
	Prop   wikiconstraint.PropertyID
	Values map[string]bool
}

func NewItemRequires(prop wikiconstraint.PropertyID, values map[string]bool) *ItemRequires {
	p := &ItemRequires{Prop: prop, Values: values}
	p.EntityBase = NewEntityBase(p.satisfied)
	return p
}

func (p *ItemRequires) satisfied(_ context.Context, rev *wikiconstraint.Revision) (bool, error) {
	claims := rev.Claims[p.Prop]
	if len(claims) == 0 {
		return false, nil
	}
	if p.Values == nil {
		return true, nil
	}
	for _, cl := range claims {
		if wikiconstraint.InValues(cl, p.Values) {
			return true, nil
		}
	}
	return false, nil
}

// ConflictsWith is satisfied when the entity has no Prop-claim (or,
// if Values given, none of its Prop-claims are in Values).
type ConflictsWith struct {
	EntityBase
	Prop   wikiconstraint.PropertyID
	Values map[string]bool
}

func NewConflictsWith(prop wikiconstraint.PropertyID, values map[string]bool) *ConflictsWith {
	p := &ConflictsWith{Prop: prop, Values: values}
	p.EntityBase = NewEntityBase(p.satisfied)
	return p
}

func (p *ConflictsWith) satisfied(_ context.Context, rev *wikiconstraint.Revision) (bool, error) {
	claims := rev.Claims[p.Prop]
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

// LabelInLanguage is satisfied when the entity has a label in at
// least one of Langs.
type LabelInLanguage struct {
	EntityBase
	Langs map[string]bool
}

func NewLabelInLanguage(langs map[string]bool) *LabelInLanguage {
	p := &LabelInLanguage{Langs: langs}
	p.EntityBase = NewEntityBase(p.satisfied)
	return p
}

func (p *LabelInLanguage) satisfied(_ context.Context, rev *wikiconstraint.Revision) (bool, error) {
	for lang := range rev.Labels {
		if p.Langs[lang] {
			return true, nil
		}
	}
	return false, nil
}

// DescriptionInLanguage is satisfied when the entity has a
// description in at least one of Langs.
type DescriptionInLanguage struct {
	EntityBase
	Langs map[string]bool
}

func NewDescriptionInLanguage(langs map[string]bool) *DescriptionInLanguage {
	p := &DescriptionInLanguage{Langs: langs}
	p.EntityBase = NewEntityBase(p.satisfied)
	return p
}

func (p *DescriptionInLanguage) satisfied(_ context.Context, rev *wikiconstraint.Revision) (bool, error) {
	for lang := range rev.Descriptions {
		if p.Langs[lang] {
			return true, nil
		}
	}
	return false, nil
}
