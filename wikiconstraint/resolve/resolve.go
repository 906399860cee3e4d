// Package resolve follows entity redirects to their target, the way
// several claim-level predicates must before comparing against a
// resolved entity's claims (ValueRequires, Symmetric, Inverse,
// NoLinksToDisambiguation — spec.md §4.1).
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/collab"
)

// DefaultMaxHops bounds the redirect chain length. spec.md §9 notes
// the original implementation has no cap and flags pathological
// cycles as a risk this one should guard against.
const DefaultMaxHops = 10

// ErrTooManyRedirects is returned when a redirect chain exceeds the
// configured hop limit.
var ErrTooManyRedirects = errors.New("resolve: too many redirects")

// Redirects reports the live redirect target for an entity, if any.
// A zero EntityID means the entity is not a redirect.
type Redirects interface {
	RedirectTarget(ctx context.Context, id wikiconstraint.EntityID) (wikiconstraint.EntityID, error)
}

// Resolver resolves a claim target to its live entity revision,
// following redirects up to MaxHops.
type Resolver struct {
	Store     collab.EntityStore
	Redirects Redirects
	MaxHops   int
}

// New returns a Resolver with DefaultMaxHops.
func New(store collab.EntityStore, redirects Redirects) *Resolver {
	return &Resolver{Store: store, Redirects: redirects, MaxHops: DefaultMaxHops}
}

// Resolve loads id, following redirects to the live entity. It
// returns wikiconstraint.ErrTargetNotFound (wrapped) if the chain ends
// in a missing page, and ErrTooManyRedirects if the chain exceeds
// MaxHops without settling.
func (r *Resolver) Resolve(ctx context.Context, id wikiconstraint.EntityID) (*wikiconstraint.Revision, error) {
	hops := 0
	for {
		rev, err := r.Store.Load(ctx, id)
		if err != nil {
			if errors.Is(err, wikiconstraint.ErrTargetNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("resolve: loading %s: %w", id, err)
		}

		if r.Redirects == nil {
			return rev, nil
		}

		target, err := r.Redirects.RedirectTarget(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve: checking redirect for %s: %w", id, err)
		}
		if target.IsZero() {
			return rev, nil
		}

		hops++
		if hops > r.MaxHops {
			return nil, fmt.Errorf("%w: %s after %d hops", ErrTooManyRedirects, id, hops)
		}
		id = target
	}
}
