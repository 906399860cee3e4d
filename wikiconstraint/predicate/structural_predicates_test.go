package predicate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/diff"
)

func TestPropertyScope(t *testing.T) {
	p := NewPropertyScope(wikiconstraint.NewScopeSet(wikiconstraint.ScopeMain))

	main := diff.Side{Claim: &wikiconstraint.Claim{}}
	bad, err := p.violates(context.Background(), main)
	require.NoError(t, err)
	assert.False(t, bad)

	qualifier := diff.Side{Claim: &wikiconstraint.Claim{IsQualifier: true}}
	bad, err = p.violates(context.Background(), qualifier)
	require.NoError(t, err)
	assert.True(t, bad)

	reference := diff.Side{Claim: &wikiconstraint.Claim{IsReference: true}}
	bad, err = p.violates(context.Background(), reference)
	require.NoError(t, err)
	assert.True(t, bad)
}

func TestPropertyScopeNeverRescoresOnUpdate(t *testing.T) {
	p := NewPropertyScope(wikiconstraint.AllScopes())
	score, err := p.ScoreForUpdate(context.Background(), diff.Context{})
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestQualifiersViolatesOnDisallowedProperty(t *testing.T) {
	p := NewQualifiers(map[wikiconstraint.PropertyID]bool{"P580": true})

	claim := &wikiconstraint.Claim{Qualifiers: map[wikiconstraint.PropertyID][]*wikiconstraint.Claim{
		"P582": {{}},
	}}
	bad, err := p.violates(context.Background(), diff.Side{Claim: claim})
	require.NoError(t, err)
	assert.True(t, bad)

	claim.Qualifiers = map[wikiconstraint.PropertyID][]*wikiconstraint.Claim{"P580": {{}}}
	bad, err = p.violates(context.Background(), diff.Side{Claim: claim})
	require.NoError(t, err)
	assert.False(t, bad)
}

func TestRequiredQualifiersViolatesWhenMissing(t *testing.T) {
	p := NewRequiredQualifiers(map[wikiconstraint.PropertyID]bool{"P580": true})

	empty := &wikiconstraint.Claim{}
	bad, err := p.violates(context.Background(), diff.Side{Claim: empty})
	require.NoError(t, err)
	assert.True(t, bad)

	present := &wikiconstraint.Claim{Qualifiers: map[wikiconstraint.PropertyID][]*wikiconstraint.Claim{"P580": {{}}}}
	bad, err = p.violates(context.Background(), diff.Side{Claim: present})
	require.NoError(t, err)
	assert.False(t, bad)
}
