// Package store implements ConstraintsStore, the lazy, cached loader
// that turns a property page's P2302 constraint declarations into
// predicate instances (spec.md §4.2).
package store

import (
	"context"
	"sync"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/collab"
	"github.com/wikiconstraint/engine/wikiconstraint/eval"
	"github.com/wikiconstraint/engine/wikiconstraint/predicate"
	"github.com/wikiconstraint/engine/wikiconstraint/resolve"
)

// ConstraintsStore lazily parses and caches the constraint set for
// each property it is asked about. The cache has no automatic
// eviction (spec.md §4.5: "no eviction, explicit Purge"); callers
// invoke Purge when a property page changes, grounded on
// datalog/planner/cache.go's PlanCache shape but without its TTL path.
type ConstraintsStore struct {
	mu    sync.Mutex
	cache map[wikiconstraint.PropertyID][]*eval.Constraint

	Entities collab.EntityStore
	Sparql   collab.SparqlClient
	Resolver *resolve.Resolver

	// FileChecker and FileRepo back CommonsLink declarations; with a
	// nil FileChecker, CommonsLink declarations are skipped at parse
	// time and yield no constraint.
	FileChecker predicate.FileExistenceChecker
	FileRepo    string

	subjectTypeCache *predicate.SharedClassCache
}

// New builds a store with its own shared SubjectType cache (spec.md
// §4.5, capacity 1000).
func New(entities collab.EntityStore, sparql collab.SparqlClient, resolver *resolve.Resolver, fileChecker predicate.FileExistenceChecker, fileRepo string) *ConstraintsStore {
	return &ConstraintsStore{
		cache:            map[wikiconstraint.PropertyID][]*eval.Constraint{},
		Entities:         entities,
		Sparql:           sparql,
		Resolver:         resolver,
		FileChecker:      fileChecker,
		FileRepo:         fileRepo,
		subjectTypeCache: predicate.NewSharedClassCache(),
	}
}

// GetConstraints returns every constraint declared for prop, loading
// and caching its property page on first use.
func (s *ConstraintsStore) GetConstraints(ctx context.Context, prop wikiconstraint.PropertyID) ([]*eval.Constraint, error) {
	if cached, ok := s.loaded(prop); ok {
		return cached, nil
	}

	page, err := s.Entities.Load(ctx, wikiconstraint.EntityID(prop))
	if err != nil {
		return nil, err
	}

	constraints := s.parseConstraints(page)

	s.mu.Lock()
	s.cache[prop] = constraints
	s.mu.Unlock()

	return constraints, nil
}

func (s *ConstraintsStore) loaded(prop wikiconstraint.PropertyID) ([]*eval.Constraint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cache[prop]
	return c, ok
}

// Purge invalidates the cached constraint set for prop, forcing the
// next GetConstraints call to reload its property page.
func (s *ConstraintsStore) Purge(prop wikiconstraint.PropertyID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, prop)
}

// AllowsReferenceScope implements predicate.ReferenceScopeChecker:
// prop may serve as a valid reference property unless it declares a
// PropertyScope constraint that excludes REFERENCE (spec.md §4.1,
// custom.py's _is_valid_reference: "all(REFERENCE in scope_constr...)",
// vacuously true when no such declaration exists).
func (s *ConstraintsStore) AllowsReferenceScope(ctx context.Context, prop wikiconstraint.PropertyID) (bool, error) {
	constraints, err := s.GetConstraints(ctx, prop)
	if err != nil {
		return false, err
	}
	for _, c := range constraints {
		ps, ok := c.Predicate.(*predicate.PropertyScope)
		if !ok {
			continue
		}
		if !ps.Allowed.Has(wikiconstraint.ScopeReference) {
			return false, nil
		}
	}
	return true, nil
}
