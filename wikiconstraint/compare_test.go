package wikiconstraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesEqual(t *testing.T) {
	upper := "10"
	lower := "1"
	unit := EntityID("Q11573")

	cases := []struct {
		name  string
		left  Value
		right Value
		want  bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs value", nil, EntityID("Q1"), false},
		{"same entity", EntityID("Q1"), EntityID("Q1"), true},
		{"different entity", EntityID("Q1"), EntityID("Q2"), false},
		{"same string", "hello", "hello", true},
		{"different type", "hello", EntityID("Q1"), false},
		{"same monolingual", MonolingualText{Lang: "en", Text: "cat"}, MonolingualText{Lang: "en", Text: "cat"}, true},
		{"different monolingual lang", MonolingualText{Lang: "en", Text: "cat"}, MonolingualText{Lang: "fr", Text: "cat"}, false},
		{
			"same quantity with bounds",
			Quantity{Amount: "5", Upper: &upper, Lower: &lower, Unit: &unit},
			Quantity{Amount: "5", Upper: &upper, Lower: &lower, Unit: &unit},
			true,
		},
		{
			"quantity differing amount",
			Quantity{Amount: "5"},
			Quantity{Amount: "6"},
			false,
		},
		{"same time", Time{Year: 2020, Precision: PrecisionYear}, Time{Year: 2020, Precision: PrecisionYear}, true},
		{"different time", Time{Year: 2020}, Time{Year: 2021}, false},
		{"same page", PageValue{Kind: PageCommons, Title: "File:A.svg"}, PageValue{Kind: PageCommons, Title: "File:A.svg"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValuesEqual(tc.left, tc.right))
		})
	}
}

func TestSameAsIgnoresRank(t *testing.T) {
	a := &Claim{SnakType: SnakValue, Target: EntityID("Q1"), Rank: RankNormal}
	b := &Claim{SnakType: SnakValue, Target: EntityID("Q1"), Rank: RankPreferred}
	assert.True(t, SameAs(a, b), "rank must not affect SameAs")

	c := &Claim{SnakType: SnakValue, Target: EntityID("Q2"), Rank: RankNormal}
	assert.False(t, SameAs(a, c))
}

func TestSameAsConsidersQualifiersAndReferences(t *testing.T) {
	base := func() *Claim {
		return &Claim{
			SnakType: SnakValue,
			Target:   EntityID("Q1"),
			Qualifiers: map[PropertyID][]*Claim{
				"P100": {{SnakType: SnakValue, Target: "x"}},
			},
		}
	}

	a := base()
	b := base()
	require.True(t, SameAs(a, b))

	b.Qualifiers["P100"][0].Target = "y"
	assert.False(t, SameAs(a, b))
}

func TestReferencesSameIgnoresOrder(t *testing.T) {
	blockA := ReferenceBlock{Properties: map[PropertyID][]*Claim{
		"P143": {{SnakType: SnakValue, Target: EntityID("Q1")}},
	}}
	blockB := ReferenceBlock{Properties: map[PropertyID][]*Claim{
		"P813": {{SnakType: SnakValue, Target: EntityID("Q2")}},
	}}

	assert.True(t, ReferencesSame([]ReferenceBlock{blockA, blockB}, []ReferenceBlock{blockB, blockA}))
	assert.False(t, ReferencesSame([]ReferenceBlock{blockA}, []ReferenceBlock{blockA, blockB}))
}

func TestInValues(t *testing.T) {
	values := map[string]bool{"Q1": true, "novalue": true}

	assert.True(t, InValues(&Claim{SnakType: SnakValue, Target: EntityID("Q1")}, values))
	assert.False(t, InValues(&Claim{SnakType: SnakValue, Target: EntityID("Q2")}, values))
	assert.True(t, InValues(&Claim{SnakType: SnakNoValue}, values))
	assert.False(t, InValues(&Claim{SnakType: SnakSomeValue}, values))
}
