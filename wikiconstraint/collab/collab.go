// Package collab declares the external collaborators the engine
// depends on but does not implement: entity storage, SPARQL querying,
// HTTP probing, and user-directory lookups. Fetching entities, running
// SPARQL, and deciding which revisions bound a logical edit are all
// out of scope for the core (spec.md §1); this package is the seam.
package collab

import (
	"context"

	"github.com/wikiconstraint/engine/wikiconstraint"
)

type EntityID = wikiconstraint.EntityID

// EntityStore loads entity revisions. Implementations must tolerate
// old serialization quirks (an empty list standing in for an empty
// map) and missing properties, surfacing the latter as a structured
// error the core can recognize and retry against by dropping that key
// — see wikiconstraint.ErrIntegrityViolation for the distinct,
// non-retryable case of a genuinely malformed revision.
type EntityStore interface {
	Load(ctx context.Context, id EntityID) (*wikiconstraint.Revision, error)
	LoadOldVersion(ctx context.Context, id EntityID, revID int64) (*wikiconstraint.Revision, error)
}

// SparqlClient runs the three query shapes the core issues: a boolean
// ASK, a row-returning SELECT, and a convenience iterator over one
// projected variable of entity ids (used by ConstraintsStore's bulk
// discovery query, spec.md §4.2).
type SparqlClient interface {
	Ask(ctx context.Context, query string) (bool, error)
	Select(ctx context.Context, query string) ([]map[string]string, error)
	GetItems(ctx context.Context, query, variable string) ([]EntityID, error)
}

// HTTPClient performs the single GET the Error404 predicate needs to
// probe a formatter-built external URL.
type HTTPClient interface {
	Get(ctx context.Context, url string) (ok bool, err error)
}

// UserDirectory backs the revision-span heuristic that decides which
// edits belong to the same logical change (out of scope for the core,
// spec.md §1) — kept here only because the collaborator contract names
// it (spec.md §6).
type UserDirectory interface {
	IsRegisteredAndAutoconfirmed(name string) (bool, error)
}
