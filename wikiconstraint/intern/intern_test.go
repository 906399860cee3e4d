package intern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wikiconstraint/engine/wikiconstraint"
)

func TestPropertyReturnsSameUnderlyingValue(t *testing.T) {
	Clear()
	a := Property("P31")
	b := Property("P31")
	assert.Equal(t, wikiconstraint.PropertyID("P31"), a)
	assert.Equal(t, a, b)
}

func TestPropertyDistinctIdsDoNotCollide(t *testing.T) {
	Clear()
	assert.Equal(t, wikiconstraint.PropertyID("P31"), Property("P31"))
	assert.Equal(t, wikiconstraint.PropertyID("P279"), Property("P279"))
}

func TestScopeLabel(t *testing.T) {
	Clear()
	assert.Equal(t, "main", ScopeLabel(wikiconstraint.ScopeMain))
	assert.Equal(t, "qualifier", ScopeLabel(wikiconstraint.ScopeQualifier))
	assert.Equal(t, "reference", ScopeLabel(wikiconstraint.ScopeReference))
}

func TestStatusLabel(t *testing.T) {
	Clear()
	assert.Equal(t, "suggestion", StatusLabel(wikiconstraint.StatusSuggestion))
	assert.Equal(t, "regular", StatusLabel(wikiconstraint.StatusRegular))
	assert.Equal(t, "mandatory", StatusLabel(wikiconstraint.StatusMandatory))
}

func TestClearResetsCaches(t *testing.T) {
	Property("P31")
	Clear()
	_, ok := properties.cache.Load("P31")
	assert.False(t, ok)
}
