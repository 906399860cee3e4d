// Package testfakes provides hand-written collaborator fakes for
// wikiconstraint's tests and the constraintcheck CLI demo: in-memory
// stand-ins for EntityStore, SparqlClient, HTTPClient, UserDirectory,
// resolve.Redirects, and predicate.FileExistenceChecker. EntityStore,
// SparqlClient and HTTPClient are overridable per-call via an optional
// func field; the other three answer from plain maps (grounded on
// theRebelliousNerd-codenerd/internal/store/mocks_test.go's
// MockEmbeddingEngine pattern).
package testfakes

import (
	"context"
	"fmt"

	"github.com/wikiconstraint/engine/wikiconstraint"
)

// EntityStore is an in-memory collab.EntityStore backed by a plain
// map; Load reports wikiconstraint.ErrTargetNotFound for an absent id
// unless LoadFunc is set to override the lookup entirely.
type EntityStore struct {
	Revisions map[wikiconstraint.EntityID]*wikiconstraint.Revision
	LoadFunc  func(ctx context.Context, id wikiconstraint.EntityID) (*wikiconstraint.Revision, error)
}

func NewEntityStore() *EntityStore {
	return &EntityStore{Revisions: map[wikiconstraint.EntityID]*wikiconstraint.Revision{}}
}

func (s *EntityStore) Put(rev *wikiconstraint.Revision) {
	s.Revisions[rev.EntityID] = rev
}

func (s *EntityStore) Load(ctx context.Context, id wikiconstraint.EntityID) (*wikiconstraint.Revision, error) {
	if s.LoadFunc != nil {
		return s.LoadFunc(ctx, id)
	}
	rev, ok := s.Revisions[id]
	if !ok {
		return nil, fmt.Errorf("testfakes: %s: %w", id, wikiconstraint.ErrTargetNotFound)
	}
	return rev, nil
}

func (s *EntityStore) LoadOldVersion(ctx context.Context, id wikiconstraint.EntityID, revID int64) (*wikiconstraint.Revision, error) {
	rev, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rev.RevisionID != revID {
		return nil, fmt.Errorf("testfakes: %s has no cached revision %d", id, revID)
	}
	return rev, nil
}

// SparqlClient is a collab.SparqlClient whose three query shapes each
// default to an empty/false answer unless the matching func field is
// set; tests assign these funcs directly rather than pattern-matching
// on query text, since the query strings are implementation detail.
type SparqlClient struct {
	AskFunc      func(ctx context.Context, query string) (bool, error)
	SelectFunc   func(ctx context.Context, query string) ([]map[string]string, error)
	GetItemsFunc func(ctx context.Context, query, variable string) ([]wikiconstraint.EntityID, error)
}

func (s *SparqlClient) Ask(ctx context.Context, query string) (bool, error) {
	if s.AskFunc != nil {
		return s.AskFunc(ctx, query)
	}
	return false, nil
}

func (s *SparqlClient) Select(ctx context.Context, query string) ([]map[string]string, error) {
	if s.SelectFunc != nil {
		return s.SelectFunc(ctx, query)
	}
	return nil, nil
}

func (s *SparqlClient) GetItems(ctx context.Context, query, variable string) ([]wikiconstraint.EntityID, error) {
	if s.GetItemsFunc != nil {
		return s.GetItemsFunc(ctx, query, variable)
	}
	return nil, nil
}

// HTTPClient is a collab.HTTPClient reporting a fixed or computed
// outcome per URL.
type HTTPClient struct {
	OK      map[string]bool
	GetFunc func(ctx context.Context, url string) (bool, error)
}

func (h *HTTPClient) Get(ctx context.Context, url string) (bool, error) {
	if h.GetFunc != nil {
		return h.GetFunc(ctx, url)
	}
	return h.OK[url], nil
}

// UserDirectory is a collab.UserDirectory backed by a set of names
// considered registered and autoconfirmed.
type UserDirectory struct {
	Autoconfirmed map[string]bool
}

func (u *UserDirectory) IsRegisteredAndAutoconfirmed(name string) (bool, error) {
	return u.Autoconfirmed[name], nil
}

// Redirects is a resolve.Redirects backed by a plain map; an id absent
// from Targets resolves to the zero EntityID (not a redirect).
type Redirects struct {
	Targets map[wikiconstraint.EntityID]wikiconstraint.EntityID
}

func NewRedirects() *Redirects {
	return &Redirects{Targets: map[wikiconstraint.EntityID]wikiconstraint.EntityID{}}
}

func (r *Redirects) RedirectTarget(ctx context.Context, id wikiconstraint.EntityID) (wikiconstraint.EntityID, error) {
	return r.Targets[id], nil
}

// FileChecker is a predicate.FileExistenceChecker backed by a set of
// (repo, namespace, title) tuples considered to exist.
type FileChecker struct {
	Exists map[string]bool
}

func NewFileChecker() *FileChecker {
	return &FileChecker{Exists: map[string]bool{}}
}

func fileKey(repo, namespace, title string) string {
	return repo + "\x00" + namespace + "\x00" + title
}

func (f *FileChecker) Put(repo, namespace, title string) {
	f.Exists[fileKey(repo, namespace, title)] = true
}

func (f *FileChecker) FileExists(ctx context.Context, repo, namespace, title string) (bool, error) {
	return f.Exists[fileKey(repo, namespace, title)], nil
}
