package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/testfakes"
)

func TestResolveNoRedirectReturnsDirectly(t *testing.T) {
	store := testfakes.NewEntityStore()
	store.Put(wikiconstraint.NewRevision("Q1", 1))
	r := New(store, testfakes.NewRedirects())

	rev, err := r.Resolve(context.Background(), "Q1")
	require.NoError(t, err)
	assert.Equal(t, wikiconstraint.EntityID("Q1"), rev.EntityID)
}

func TestResolveFollowsRedirectChain(t *testing.T) {
	store := testfakes.NewEntityStore()
	store.Put(wikiconstraint.NewRevision("Q1", 1))
	store.Put(wikiconstraint.NewRevision("Q2", 1))
	store.Put(wikiconstraint.NewRevision("Q3", 1))

	redirects := testfakes.NewRedirects()
	redirects.Targets["Q1"] = "Q2"
	redirects.Targets["Q2"] = "Q3"

	r := New(store, redirects)
	rev, err := r.Resolve(context.Background(), "Q1")
	require.NoError(t, err)
	assert.Equal(t, wikiconstraint.EntityID("Q3"), rev.EntityID)
}

func TestResolveTooManyRedirectsErrors(t *testing.T) {
	store := testfakes.NewEntityStore()
	redirects := testfakes.NewRedirects()
	r := New(store, redirects)
	r.MaxHops = 3

	ids := []wikiconstraint.EntityID{"Q1", "Q2", "Q3", "Q4", "Q5"}
	for _, id := range ids {
		store.Put(wikiconstraint.NewRevision(id, 1))
	}
	for i := 0; i < len(ids)-1; i++ {
		redirects.Targets[ids[i]] = ids[i+1]
	}

	_, err := r.Resolve(context.Background(), "Q1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyRedirects))
}

func TestResolveMissingTargetPropagatesErrTargetNotFound(t *testing.T) {
	store := testfakes.NewEntityStore()
	r := New(store, testfakes.NewRedirects())

	_, err := r.Resolve(context.Background(), "Q999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, wikiconstraint.ErrTargetNotFound))
}

func TestResolveNilRedirectsShortCircuits(t *testing.T) {
	store := testfakes.NewEntityStore()
	store.Put(wikiconstraint.NewRevision("Q1", 1))
	r := New(store, nil)

	rev, err := r.Resolve(context.Background(), "Q1")
	require.NoError(t, err)
	assert.Equal(t, wikiconstraint.EntityID("Q1"), rev.EntityID)
}
