// Package intern provides string/enum interning, grounded on
// datalog/intern.go's KeywordIntern: a sync.Map-backed cache with a
// lock-free fast path, so the same property id (or scope/status
// label) repeated across many claims, constraints, and rendered rows
// shares one backing value instead of a fresh allocation each time.
package intern

import (
	"sync"

	"github.com/wikiconstraint/engine/wikiconstraint"
)

// propertyIntern caches string -> PropertyID conversions. Property ids
// like "P31" recur constantly while parsing declarations and decoding
// wire JSON; interning them collapses repeated conversions of the same
// id to one shared value.
type propertyIntern struct {
	cache sync.Map // map[string]wikiconstraint.PropertyID
}

var properties = &propertyIntern{}

// Property returns an interned PropertyID for s.
func Property(s string) wikiconstraint.PropertyID {
	if v, ok := properties.cache.Load(s); ok {
		return v.(wikiconstraint.PropertyID)
	}
	id := wikiconstraint.PropertyID(s)
	actual, _ := properties.cache.LoadOrStore(s, id)
	return actual.(wikiconstraint.PropertyID)
}

type scopeLabelIntern struct {
	cache sync.Map // map[wikiconstraint.Scope]string
}

var scopeLabels = &scopeLabelIntern{}

// ScopeLabel returns an interned display label for s (e.g. "main",
// "qualifier"), as rendered in the CLI's verbose contributions table.
func ScopeLabel(s wikiconstraint.Scope) string {
	if v, ok := scopeLabels.cache.Load(s); ok {
		return v.(string)
	}
	label := s.String()
	actual, _ := scopeLabels.cache.LoadOrStore(s, label)
	return actual.(string)
}

type statusLabelIntern struct {
	cache sync.Map // map[wikiconstraint.Status]string
}

var statusLabels = &statusLabelIntern{}

// StatusLabel returns an interned display label for s (e.g.
// "mandatory", "suggestion").
func StatusLabel(s wikiconstraint.Status) string {
	if v, ok := statusLabels.cache.Load(s); ok {
		return v.(string)
	}
	label := s.String()
	actual, _ := statusLabels.cache.LoadOrStore(s, label)
	return actual.(string)
}

// Clear resets every intern cache, mirroring datalog's ClearInterns —
// useful between test cases that assert on cache population.
func Clear() {
	properties = &propertyIntern{}
	scopeLabels = &scopeLabelIntern{}
	statusLabels = &statusLabelIntern{}
}
