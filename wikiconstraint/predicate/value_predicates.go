package predicate

import (
	"context"
	"fmt"
	"math/big"
	"regexp"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/diff"
)

// OneOf violates unless the claim's value (or snak-kind literal) is in
// the declared set.
type OneOf struct {
	ClaimBase
	Values map[string]bool
}

func NewOneOf(values map[string]bool) *OneOf {
	p := &OneOf{Values: values}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *OneOf) violates(_ context.Context, side diff.Side) (bool, error) {
	return !wikiconstraint.InValues(side.Claim, p.Values), nil
}

// NoneOf violates when the claim's value is in the declared set.
type NoneOf struct {
	ClaimBase
	Values map[string]bool
}

func NewNoneOf(values map[string]bool) *NoneOf {
	p := &NoneOf{Values: values}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *NoneOf) violates(_ context.Context, side diff.Side) (bool, error) {
	return wikiconstraint.InValues(side.Claim, p.Values), nil
}

// Format violates unless the target's textual projection fully
// matches the declared regex. Projection rules (spec.md §4.1): a
// plain string as-is, a monolingual text's Text, a page-backed value
// its namespaced title; an empty/absent target projects to "".
type Format struct {
	ClaimBase
	Regex *regexp.Regexp
}

// NewFormat compiles pattern, reporting a drop-this-constraint signal
// to the caller (the store) rather than panicking: a malformed P1793
// regex drops only this declaration (spec.md §7).
func NewFormat(pattern string) (*Format, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("predicate: invalid format regex %q: %w", pattern, err)
	}
	p := &Format{Regex: re}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p, nil
}

func (p *Format) violates(_ context.Context, side diff.Side) (bool, error) {
	text := projectText(side.Claim.Target)
	return !matchesFull(p.Regex, text), nil
}

func projectText(target wikiconstraint.Value) string {
	switch v := target.(type) {
	case string:
		return v
	case wikiconstraint.MonolingualText:
		return v.Text
	case wikiconstraint.PageValue:
		return v.Title
	case nil:
		return ""
	default:
		return ""
	}
}

func matchesFull(re *regexp.Regexp, s string) bool {
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

// Integer violates when a quantity target carries a fractional part.
type Integer struct{ ClaimBase }

func NewInteger() *Integer {
	p := &Integer{}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *Integer) violates(_ context.Context, side diff.Side) (bool, error) {
	q, ok := side.Claim.Target.(wikiconstraint.Quantity)
	if !ok {
		return false, nil
	}
	f, ok := parseDecimal(q.Amount)
	if !ok {
		return false, nil
	}
	return !f.IsInt(), nil
}

// NoBounds violates when a quantity target carries an explicit
// upper/lower bound.
type NoBounds struct{ ClaimBase }

func NewNoBounds() *NoBounds {
	p := &NoBounds{}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *NoBounds) violates(_ context.Context, side diff.Side) (bool, error) {
	q, ok := side.Claim.Target.(wikiconstraint.Quantity)
	return ok && q.HasBounds(), nil
}

// QuantityRange violates when a quantity's amount falls outside
// [Lower, Upper] (either bound may be nil, meaning unbounded).
type QuantityRange struct {
	ClaimBase
	Lower, Upper *big.Float
}

func NewQuantityRange(lower, upper *big.Float) *QuantityRange {
	p := &QuantityRange{Lower: lower, Upper: upper}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *QuantityRange) violates(_ context.Context, side diff.Side) (bool, error) {
	q, ok := side.Claim.Target.(wikiconstraint.Quantity)
	if !ok {
		return false, nil
	}
	amount, ok := parseDecimal(q.Amount)
	if !ok {
		return false, nil
	}
	if p.Lower != nil && amount.Cmp(p.Lower) < 0 {
		return true, nil
	}
	if p.Upper != nil && amount.Cmp(p.Upper) > 0 {
		return true, nil
	}
	return false, nil
}

func parseDecimal(s string) (*big.Float, bool) {
	f, ok := new(big.Float).SetString(s)
	return f, ok
}

// TimeRange violates when a time's truncated tuple falls outside
// [Lower, Upper], compared at the minimum of the two precisions
// (spec.md §4.1).
type TimeRange struct {
	ClaimBase
	Lower, Upper *wikiconstraint.Time
}

func NewTimeRange(lower, upper *wikiconstraint.Time) *TimeRange {
	p := &TimeRange{Lower: lower, Upper: upper}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *TimeRange) violates(_ context.Context, side diff.Side) (bool, error) {
	t, ok := side.Claim.Target.(wikiconstraint.Time)
	if !ok {
		return false, nil
	}

	if p.Lower != nil {
		prec := minPrecision(p.Lower.Precision, t.Precision)
		if wikiconstraint.TupleLess(t.Tuple(prec), p.Lower.Tuple(prec)) {
			return true, nil
		}
	}
	if p.Upper != nil {
		prec := minPrecision(p.Upper.Precision, t.Precision)
		if wikiconstraint.TupleLess(p.Upper.Tuple(prec), t.Tuple(prec)) {
			return true, nil
		}
	}
	return false, nil
}

func minPrecision(a, b wikiconstraint.TimePrecision) wikiconstraint.TimePrecision {
	if a < b {
		return a
	}
	return b
}

// Units violates unless the quantity's unit id is in the declared
// set; an explicitly unitless quantity requires the literal "novalue"
// to be a declared member.
type Units struct {
	ClaimBase
	Values map[string]bool
}

func NewUnits(values map[string]bool) *Units {
	p := &Units{Values: values}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *Units) violates(_ context.Context, side diff.Side) (bool, error) {
	q, ok := side.Claim.Target.(wikiconstraint.Quantity)
	if !ok {
		return false, nil
	}
	if q.Unit == nil {
		return !p.Values["novalue"], nil
	}
	return !p.Values[string(*q.Unit)], nil
}

// TimeUnit identifies the unit item a DifferenceWithinRange bound is
// expressed in.
type TimeUnit string

const (
	UnitYears   TimeUnit = "Q577"
	UnitDays    TimeUnit = "Q573"
	UnitSeconds TimeUnit = "Q11574"
)

// DifferenceWithinRange violates when the delta between this claim's
// time and every co-property time on the same entity falls outside
// [Lower, Upper] measured in Unit — against *every* other claim, not
// any (spec.md §9 Open Question (a): the intuitive reading is "any";
// this preserves the original "all" semantics unchanged and is flagged
// here for review, not "fixed").
type DifferenceWithinRange struct {
	ClaimBase
	Prop         wikiconstraint.PropertyID
	Lower, Upper *big.Float
	Unit         TimeUnit
}

func NewDifferenceWithinRange(prop wikiconstraint.PropertyID, lower, upper *big.Float, unit TimeUnit) *DifferenceWithinRange {
	p := &DifferenceWithinRange{Prop: prop, Lower: lower, Upper: upper, Unit: unit}
	p.ClaimBase = NewClaimBase(p.violates, wikiconstraint.AllScopes(), true)
	return p
}

func (p *DifferenceWithinRange) violates(_ context.Context, side diff.Side) (bool, error) {
	t, ok := side.Claim.Target.(wikiconstraint.Time)
	if !ok {
		return false, nil
	}
	if side.Revision == nil {
		return false, nil
	}

	others := side.Revision.Claims[p.Prop]
	if len(others) == 0 {
		return false, nil
	}

	outsideAll := true
	any := false
	for _, other := range others {
		if other == side.Claim {
			continue
		}
		ot, ok := other.Target.(wikiconstraint.Time)
		if !ok {
			continue
		}
		any = true
		delta := p.delta(t, ot)
		if p.withinRange(delta) {
			outsideAll = false
		}
	}
	if !any {
		return false, nil
	}
	return outsideAll, nil
}

func (p *DifferenceWithinRange) withinRange(delta *big.Float) bool {
	if p.Lower != nil && delta.Cmp(p.Lower) < 0 {
		return false
	}
	if p.Upper != nil && delta.Cmp(p.Upper) > 0 {
		return false
	}
	return true
}

// delta computes t - other in p.Unit's measure. Years are
// calendar-aware: subtract one year if t's (month, day) precedes
// other's, matching a human "has this anniversary happened yet".
func (p *DifferenceWithinRange) delta(t, other wikiconstraint.Time) *big.Float {
	switch p.Unit {
	case UnitYears:
		years := t.Year - other.Year
		if t.Month < other.Month || (t.Month == other.Month && t.Day < other.Day) {
			years--
		}
		return big.NewFloat(float64(years))
	case UnitDays:
		return big.NewFloat(float64(toOrdinalDay(t) - toOrdinalDay(other)))
	case UnitSeconds:
		return big.NewFloat(float64(toSeconds(t) - toSeconds(other)))
	default:
		return big.NewFloat(0)
	}
}

// toOrdinalDay is a proleptic-Gregorian day count sufficient for
// relative delta comparisons; it is not a calendar-conversion utility.
func toOrdinalDay(t wikiconstraint.Time) int64 {
	y, m, d := int64(t.Year), int64(t.Month), int64(t.Day)
	if m <= 2 {
		y--
		m += 12
	}
	era := y / 400
	if y < 0 {
		era = (y - 399) / 400
	}
	yoe := y - era*400
	doy := (153*(m-3)+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe
}

func toSeconds(t wikiconstraint.Time) int64 {
	return toOrdinalDay(t)*86400 + int64(t.Hour)*3600 + int64(t.Minute)*60 + int64(t.Second)
}
