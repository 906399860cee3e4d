// Package eval implements the top-level evaluator: dispatching diff
// atoms and whole-entity checks against constraints, and aggregating
// the result into a single signed score (spec.md §4.4).
package eval

import (
	"fmt"
	"reflect"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/predicate"
)

// Constraint pairs a predicate instance with the property it is
// declared on and the metadata the evaluator needs to dispatch it: the
// structural scopes it is declared for and its status weight.
type Constraint struct {
	Predicate predicate.Predicate
	Property  wikiconstraint.PropertyID
	Status    wikiconstraint.Status
	Scopes    wikiconstraint.ScopeSet
}

// String renders "P17.OneOf", matching evaluator.py's Constraint.__str__
// (spec.md §7 supplement) — useful in the CLI table and test failures.
func (c *Constraint) String() string {
	return fmt.Sprintf("%s.%s", c.Property, predicateName(c.Predicate))
}

func predicateName(p predicate.Predicate) string {
	t := reflect.TypeOf(p)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// MayCheck reports whether this constraint applies at scope: it must
// be declared for scope, and the predicate must be intrinsically
// capable of checking it there (spec.md §8's scope-filter property).
func (c *Constraint) MayCheck(scope wikiconstraint.Scope) bool {
	return c.Scopes.Has(scope) && c.Predicate.IntrinsicScopes().Has(scope)
}
