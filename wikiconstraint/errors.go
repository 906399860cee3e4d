package wikiconstraint

import "errors"

// ErrTargetNotFound signals that resolving a claim's entity-typed
// target failed because the target page no longer exists (spec.md §7,
// "target-not-found"). Most predicates that require the target to
// exist treat this as a violation rather than propagating it;
// NoLinksToDisambiguation treats it as non-violation, since it cannot
// prove a disambiguation link against a target it cannot inspect.
var ErrTargetNotFound = errors.New("wikiconstraint: target entity not found")

// ErrIntegrityViolation marks a fatal data-model inconsistency, e.g. a
// claim whose OnItem does not match its enclosing revision's
// EntityID. Per spec.md §7 this is an implementation bug in the
// entity loader, not a recoverable condition: callers should abort
// rather than attempt to score around it.
var ErrIntegrityViolation = errors.New("wikiconstraint: integrity violation")

// IsTargetNotFound reports whether err is, or wraps, ErrTargetNotFound.
func IsTargetNotFound(err error) bool {
	return errors.Is(err, ErrTargetNotFound)
}
