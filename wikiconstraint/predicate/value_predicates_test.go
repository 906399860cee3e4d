package predicate

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/diff"
)

func claimSide(target wikiconstraint.Value) diff.Side {
	return diff.Side{Claim: &wikiconstraint.Claim{SnakType: wikiconstraint.SnakValue, Target: target}}
}

func TestOneOf(t *testing.T) {
	p := NewOneOf(map[string]bool{"Q5": true})

	bad, err := p.violates(context.Background(), claimSide(wikiconstraint.EntityID("Q6")))
	require.NoError(t, err)
	assert.True(t, bad)

	ok, err := p.violates(context.Background(), claimSide(wikiconstraint.EntityID("Q5")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoneOf(t *testing.T) {
	p := NewNoneOf(map[string]bool{"Q6": true})

	bad, err := p.violates(context.Background(), claimSide(wikiconstraint.EntityID("Q6")))
	require.NoError(t, err)
	assert.True(t, bad)

	ok, err := p.violates(context.Background(), claimSide(wikiconstraint.EntityID("Q5")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFormatMatchesFullString(t *testing.T) {
	p, err := NewFormat(`^[A-Z]\d+$`)
	require.NoError(t, err)

	bad, err := p.violates(context.Background(), claimSide("A123"))
	require.NoError(t, err)
	assert.False(t, bad)

	bad, err = p.violates(context.Background(), claimSide("a123"))
	require.NoError(t, err)
	assert.True(t, bad, "partial match must not count")

	bad, err = p.violates(context.Background(), claimSide("A123x"))
	require.NoError(t, err)
	assert.True(t, bad, "regex must match the full string, not a prefix")
}

func TestFormatRejectsInvalidRegex(t *testing.T) {
	_, err := NewFormat(`[`)
	assert.Error(t, err)
}

func TestIntegerViolatesOnFraction(t *testing.T) {
	p := NewInteger()

	bad, err := p.violates(context.Background(), claimSide(wikiconstraint.Quantity{Amount: "5"}))
	require.NoError(t, err)
	assert.False(t, bad)

	bad, err = p.violates(context.Background(), claimSide(wikiconstraint.Quantity{Amount: "5.5"}))
	require.NoError(t, err)
	assert.True(t, bad)
}

func TestNoBounds(t *testing.T) {
	p := NewNoBounds()
	upper := "10"

	bad, err := p.violates(context.Background(), claimSide(wikiconstraint.Quantity{Amount: "5"}))
	require.NoError(t, err)
	assert.False(t, bad)

	bad, err = p.violates(context.Background(), claimSide(wikiconstraint.Quantity{Amount: "5", Upper: &upper}))
	require.NoError(t, err)
	assert.True(t, bad)
}

func TestQuantityRange(t *testing.T) {
	lower := big.NewFloat(0)
	upper := big.NewFloat(100)
	p := NewQuantityRange(lower, upper)

	bad, err := p.violates(context.Background(), claimSide(wikiconstraint.Quantity{Amount: "50"}))
	require.NoError(t, err)
	assert.False(t, bad)

	bad, err = p.violates(context.Background(), claimSide(wikiconstraint.Quantity{Amount: "150"}))
	require.NoError(t, err)
	assert.True(t, bad)

	bad, err = p.violates(context.Background(), claimSide(wikiconstraint.Quantity{Amount: "-1"}))
	require.NoError(t, err)
	assert.True(t, bad)
}

func TestTimeRange(t *testing.T) {
	lower := &wikiconstraint.Time{Year: 2000, Precision: wikiconstraint.PrecisionYear}
	upper := &wikiconstraint.Time{Year: 2020, Precision: wikiconstraint.PrecisionYear}
	p := NewTimeRange(lower, upper)

	bad, err := p.violates(context.Background(), claimSide(wikiconstraint.Time{Year: 2010, Precision: wikiconstraint.PrecisionYear}))
	require.NoError(t, err)
	assert.False(t, bad)

	bad, err = p.violates(context.Background(), claimSide(wikiconstraint.Time{Year: 1990, Precision: wikiconstraint.PrecisionYear}))
	require.NoError(t, err)
	assert.True(t, bad)

	bad, err = p.violates(context.Background(), claimSide(wikiconstraint.Time{Year: 2030, Precision: wikiconstraint.PrecisionYear}))
	require.NoError(t, err)
	assert.True(t, bad)
}

func TestUnits(t *testing.T) {
	p := NewUnits(map[string]bool{"Q11573": true, "novalue": true})
	unit := wikiconstraint.EntityID("Q11573")
	otherUnit := wikiconstraint.EntityID("Q25269")

	bad, err := p.violates(context.Background(), claimSide(wikiconstraint.Quantity{Amount: "1", Unit: &unit}))
	require.NoError(t, err)
	assert.False(t, bad)

	bad, err = p.violates(context.Background(), claimSide(wikiconstraint.Quantity{Amount: "1", Unit: &otherUnit}))
	require.NoError(t, err)
	assert.True(t, bad)

	bad, err = p.violates(context.Background(), claimSide(wikiconstraint.Quantity{Amount: "1"}))
	require.NoError(t, err)
	assert.False(t, bad, "unitless allowed because 'novalue' is declared")
}

func TestDifferenceWithinRangeRequiresAllOthersOutOfRange(t *testing.T) {
	lower := big.NewFloat(0)
	upper := big.NewFloat(5)
	p := NewDifferenceWithinRange("P569", lower, upper, UnitYears)

	birth := &wikiconstraint.Claim{Property: "P569", SnakType: wikiconstraint.SnakValue, Target: wikiconstraint.Time{Year: 2000, Month: 1, Day: 1}}
	closeDate := &wikiconstraint.Claim{Property: "P569", SnakType: wikiconstraint.SnakValue, Target: wikiconstraint.Time{Year: 1997, Month: 1, Day: 1}}
	farDate := &wikiconstraint.Claim{Property: "P569", SnakType: wikiconstraint.SnakValue, Target: wikiconstraint.Time{Year: 2050, Month: 1, Day: 1}}

	rev := wikiconstraint.NewRevision("Q1", 1)
	rev.Claims["P569"] = []*wikiconstraint.Claim{birth, closeDate, farDate}

	// birth is within range of closeDate (3y) but not farDate (50y):
	// "all" semantics requires every other claim to be outside range,
	// so this does not count as violated.
	bad, err := p.violates(context.Background(), diff.Side{Revision: rev, Claim: birth})
	require.NoError(t, err)
	assert.False(t, bad)

	// Remove the in-range claim: now every other claim is out of range.
	rev.Claims["P569"] = []*wikiconstraint.Claim{birth, farDate}
	bad, err = p.violates(context.Background(), diff.Side{Revision: rev, Claim: birth})
	require.NoError(t, err)
	assert.True(t, bad)
}

func TestDifferenceWithinRangeNoOtherClaimsIsNotViolated(t *testing.T) {
	p := NewDifferenceWithinRange("P569", big.NewFloat(0), big.NewFloat(5), UnitYears)
	claim := &wikiconstraint.Claim{Property: "P569", SnakType: wikiconstraint.SnakValue, Target: wikiconstraint.Time{Year: 2000}}
	rev := wikiconstraint.NewRevision("Q1", 1)
	rev.Claims["P569"] = []*wikiconstraint.Claim{claim}

	bad, err := p.violates(context.Background(), diff.Side{Revision: rev, Claim: claim})
	require.NoError(t, err)
	assert.False(t, bad)
}
