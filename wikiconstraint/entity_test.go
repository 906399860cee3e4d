package wikiconstraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeSet(t *testing.T) {
	s := NewScopeSet(ScopeMain, ScopeReference)
	assert.True(t, s.Has(ScopeMain))
	assert.True(t, s.Has(ScopeReference))
	assert.False(t, s.Has(ScopeQualifier))
	assert.False(t, s.Empty())

	var empty ScopeSet
	assert.True(t, empty.Empty())

	assert.Equal(t, AllScopes(), NewScopeSet(ScopeMain, ScopeQualifier, ScopeReference))

	inter := s.Intersect(AllScopes())
	assert.Equal(t, s, inter)
}

func TestGetBestClaimsPrefersPreferred(t *testing.T) {
	preferred := &Claim{Rank: RankPreferred}
	normal := &Claim{Rank: RankNormal}
	deprecated := &Claim{Rank: RankDeprecated}

	claims := map[PropertyID][]*Claim{
		"P31": {normal, preferred, deprecated},
	}

	best := GetBestClaims(claims, "P31")
	require.Len(t, best, 1)
	assert.Same(t, preferred, best[0])
}

func TestGetBestClaimsFallsBackToNormal(t *testing.T) {
	normal1 := &Claim{Rank: RankNormal}
	normal2 := &Claim{Rank: RankNormal}
	deprecated := &Claim{Rank: RankDeprecated}

	claims := map[PropertyID][]*Claim{
		"P31": {normal1, deprecated, normal2},
	}

	best := GetBestClaims(claims, "P31")
	assert.ElementsMatch(t, []*Claim{normal1, normal2}, best)
}

func TestRevisionHasClaim(t *testing.T) {
	rev := NewRevision("Q1", 1)
	claim := &Claim{SnakID: "Q1$abc", Property: "P31", SnakType: SnakValue, Target: EntityID("Q5")}
	rev.Claims["P31"] = append(rev.Claims["P31"], claim)

	same := &Claim{SnakID: "different-id", Property: "P31", SnakType: SnakValue, Target: EntityID("Q5")}
	assert.True(t, rev.HasClaim(same), "HasClaim compares structurally, not by snak id")

	different := &Claim{Property: "P31", SnakType: SnakValue, Target: EntityID("Q6")}
	assert.False(t, rev.HasClaim(different))
}

func TestTimeTupleTruncation(t *testing.T) {
	tm := Time{Year: 2020, Month: 6, Day: 15, Hour: 10, Minute: 30, Second: 5}

	assert.Equal(t, [6]int{2020, 0, 0, 0, 0, 0}, tm.Tuple(PrecisionYear))
	assert.Equal(t, [6]int{2020, 6, 15, 0, 0, 0}, tm.Tuple(PrecisionDay))
	assert.Equal(t, [6]int{2020, 6, 15, 10, 30, 5}, tm.Tuple(PrecisionSecond))
}

func TestTupleLess(t *testing.T) {
	assert.True(t, TupleLess([6]int{2019, 1, 1, 0, 0, 0}, [6]int{2020, 1, 1, 0, 0, 0}))
	assert.False(t, TupleLess([6]int{2020, 1, 1, 0, 0, 0}, [6]int{2020, 1, 1, 0, 0, 0}))
	assert.False(t, TupleLess([6]int{2021, 1, 1, 0, 0, 0}, [6]int{2020, 1, 1, 0, 0, 0}))
}
