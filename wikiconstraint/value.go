// Package wikiconstraint models entity revisions, claims, and the typed
// values a claim can hold: the data model constraints are evaluated
// against.
package wikiconstraint

// Value represents any value a claim's target can hold.
// Just like janus-datalog uses interface{} with direct Go types for its
// Datom value column, claim targets here are interface{} over a small
// closed set of concrete types.
type Value interface{}

// Valid concrete Value types:
//   - EntityID        (item/property reference, e.g. Q42)
//   - string          (plain string)
//   - MonolingualText (lang, text)
//   - Quantity        (amount, optional bounds, optional unit)
//   - Time            (year/month/.../precision/calendar)
//   - PageValue       (geoshape, tabular, commons file reference)

// MonolingualText is a (language, text) pair.
type MonolingualText struct {
	Lang string
	Text string
}

// Quantity is a decimal amount with optional bounds and unit.
// Amount/Upper/Lower are decimal strings to avoid float rounding when
// comparing against declared constraint bounds; predicates that need
// arithmetic parse Amount into a big.Float themselves.
type Quantity struct {
	Amount string
	Upper  *string
	Lower  *string
	Unit   *EntityID // nil means unitless
}

// HasBounds reports whether the quantity carries an explicit range.
func (q Quantity) HasBounds() bool {
	return q.Upper != nil || q.Lower != nil
}

// Calendar identifies the calendar model a Time value is expressed in.
type Calendar int

const (
	CalendarGregorian Calendar = iota
	CalendarJulian
)

// TimePrecision mirrors Wikibase's precision enum: the number of
// trailing components a Time value actually specifies. 11 = day,
// 10 = month, 9 = year, and so on down to 0 = billion years.
type TimePrecision int

const (
	PrecisionSecond TimePrecision = 14
	PrecisionMinute TimePrecision = 13
	PrecisionHour   TimePrecision = 12
	PrecisionDay    TimePrecision = 11
	PrecisionMonth  TimePrecision = 10
	PrecisionYear   TimePrecision = 9
)

// Time is a Wikibase time value: a tuple of calendar components plus
// a precision marking how many of them are meaningful.
type Time struct {
	Year      int
	Month     int
	Day       int
	Hour      int
	Minute    int
	Second    int
	Precision TimePrecision
	Calendar  Calendar
}

// Tuple returns (year, month, day, hour, minute, second) truncated to
// the number of components implied by prec, per spec: max(1, prec-8).
func (t Time) Tuple(prec TimePrecision) [6]int {
	full := [6]int{t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second}
	n := int(prec) - 8
	if n < 1 {
		n = 1
	}
	if n > 6 {
		n = 6
	}
	out := [6]int{}
	copy(out[:n], full[:n])
	return out
}

// TupleLess compares two truncated tuples lexicographically, honoring
// only the first n entries (the rest are left at their zero value by
// Tuple, so comparing the full array is equivalent to comparing the
// first n).
func TupleLess(a, b [6]int) bool {
	for i := 0; i < 6; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// PageKind distinguishes the flavors of page-backed value.
type PageKind int

const (
	PageGeoshape PageKind = iota
	PageTabularData
	PageCommons
	PageGeneric
)

// PageValue references a wiki page: a geoshape, tabular data, or a
// Commons file, identified by its namespaced title.
type PageValue struct {
	Kind  PageKind
	Title string // namespaced title, e.g. "File:Example.svg"
}

// EntityID identifies an item or property, e.g. "Q42" or "P31".
// Unlike the teacher's content-addressed Identity (a SHA1 hash with a
// lazily-computed L85 encoding), Wikibase ids are already small, stable,
// human-assigned strings, so no hashing/interning-by-content scheme is
// needed — see DESIGN.md for why datalog/identity.go was not reused.
type EntityID string

func (id EntityID) String() string { return string(id) }

// PropertyID is an EntityID known to identify a property (a "P..." id).
type PropertyID = EntityID

func (id EntityID) IsZero() bool { return id == "" }
