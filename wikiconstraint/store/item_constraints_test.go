package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/predicate"
	"github.com/wikiconstraint/engine/wikiconstraint/resolve"
	"github.com/wikiconstraint/engine/wikiconstraint/testfakes"
)

func TestGetItemConstraintsUsesLoadedCacheFirst(t *testing.T) {
	s, entities := newTestStore()
	decl := declClaim("Q21503247", map[wikiconstraint.PropertyID][]*wikiconstraint.Claim{
		"P2306": {qual("P2306", wikiconstraint.EntityID("P21"))},
	})
	entities.Put(propertyPage("P22", "wikibase-item", decl))

	_, err := s.GetConstraints(context.Background(), "P22")
	require.NoError(t, err)

	found, err := s.GetItemConstraints(context.Background(), []wikiconstraint.PropertyID{"P22"}, nil)
	require.NoError(t, err)

	var has bool
	for _, c := range found {
		if _, ok := c.Predicate.(*predicate.ItemRequires); ok {
			has = true
		}
	}
	assert.True(t, has)
}

func TestGetItemConstraintsSubjectTypeGatedByChangedProps(t *testing.T) {
	entities := testfakes.NewEntityStore()
	decl := declClaim("Q21503250", map[wikiconstraint.PropertyID][]*wikiconstraint.Claim{
		"P2308": {qual("P2308", wikiconstraint.EntityID("Q5"))},
		"P2309": {qual("P2309", wikiconstraint.EntityID("Q21503252"))},
	})
	entities.Put(propertyPage("P21", "wikibase-item", decl))
	sparqlCalled := false
	sparql := &testfakes.SparqlClient{
		GetItemsFunc: func(ctx context.Context, query, variable string) ([]wikiconstraint.EntityID, error) {
			sparqlCalled = true
			return nil, nil
		},
	}
	s := New(entities, sparql, resolve.New(entities, testfakes.NewRedirects()), testfakes.NewFileChecker(), "commons.wikimedia.org")

	// no P31/P279 in changed set: SubjectType kind is skipped entirely.
	found, err := s.GetItemConstraints(context.Background(), []wikiconstraint.PropertyID{"P21"}, map[wikiconstraint.PropertyID]bool{"P569": true})
	require.NoError(t, err)
	assert.False(t, sparqlCalled)
	for _, c := range found {
		_, isSubjectType := c.Predicate.(*predicate.SubjectType)
		assert.False(t, isSubjectType, "P21 declares SubjectType, but the kind is gated out")
	}
}

func TestGetItemConstraintsBulkDiscoveryWhenManyUnloadedProps(t *testing.T) {
	entities := testfakes.NewEntityStore()
	props := []wikiconstraint.PropertyID{"P1", "P2", "P3", "P4", "P5", "P6"}
	for _, p := range props {
		entities.Put(propertyPage(p, "wikibase-item", declClaim("Q51723761", nil)))
	}
	decl := declClaim("Q21503247", map[wikiconstraint.PropertyID][]*wikiconstraint.Claim{
		"P2306": {qual("P2306", wikiconstraint.EntityID("P99"))},
	})
	entities.Put(propertyPage("P3", "wikibase-item", decl))

	var queried string
	sparql := &testfakes.SparqlClient{
		GetItemsFunc: func(ctx context.Context, query, variable string) ([]wikiconstraint.EntityID, error) {
			queried = query
			return []wikiconstraint.EntityID{"P3"}, nil
		},
	}
	s := New(entities, sparql, resolve.New(entities, testfakes.NewRedirects()), testfakes.NewFileChecker(), "commons.wikimedia.org")

	found, err := s.GetItemConstraints(context.Background(), props, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, queried, "six unloaded properties exceeds the eager-load threshold of 5")

	var has bool
	for _, c := range found {
		if _, ok := c.Predicate.(*predicate.ItemRequires); ok {
			has = true
		}
	}
	assert.True(t, has)
}

func TestGetItemConstraintsFewUnloadedPropsSkipsSparql(t *testing.T) {
	entities := testfakes.NewEntityStore()
	props := []wikiconstraint.PropertyID{"P1", "P2"}
	decl := declClaim("Q21503247", map[wikiconstraint.PropertyID][]*wikiconstraint.Claim{
		"P2306": {qual("P2306", wikiconstraint.EntityID("P99"))},
	})
	entities.Put(propertyPage("P1", "wikibase-item", decl))
	entities.Put(propertyPage("P2", "wikibase-item", declClaim("Q51723761", nil)))

	sparqlCalled := false
	sparql := &testfakes.SparqlClient{
		GetItemsFunc: func(ctx context.Context, query, variable string) ([]wikiconstraint.EntityID, error) {
			sparqlCalled = true
			return nil, nil
		},
	}
	s := New(entities, sparql, resolve.New(entities, testfakes.NewRedirects()), testfakes.NewFileChecker(), "commons.wikimedia.org")

	found, err := s.GetItemConstraints(context.Background(), props, nil)
	require.NoError(t, err)
	assert.False(t, sparqlCalled, "fewer than 5 unloaded properties are eagerly loaded instead of queried")

	var has bool
	for _, c := range found {
		if _, ok := c.Predicate.(*predicate.ItemRequires); ok {
			has = true
		}
	}
	assert.True(t, has)
}

func TestDiscoveryQueryUsesPlainMembershipForLabelInLanguage(t *testing.T) {
	kind := entityConstraintKinds[3] // LabelInLanguage
	q := discoveryQuery(kind, []wikiconstraint.PropertyID{"P1559"}, map[wikiconstraint.PropertyID]bool{"P21": true})
	assert.Contains(t, q, "wdt:P2302 wd:Q108139345")
	assert.NotContains(t, q, "pq:P2306")
}

func TestDiscoveryQueryFiltersByChangedPropertyForConflictsWith(t *testing.T) {
	kind := entityConstraintKinds[1] // ConflictsWith
	q := discoveryQuery(kind, []wikiconstraint.PropertyID{"P22"}, map[wikiconstraint.PropertyID]bool{"P21": true})
	assert.Contains(t, q, "pq:P2306")
	assert.Contains(t, q, "wd:Q21502838")
}
