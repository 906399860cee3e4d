// Package wikijson is the tagged-union JSON wire format for
// wikiconstraint.Revision: since a Claim's Target is a closed sum type
// held as interface{} (spec.md's Value kinds), naive JSON round-trips
// lose the concrete type on decode. This package is the one place
// that encodes/decodes that sum type, shared by the constraintcheck
// CLI's fixture loader and diskcache's persisted entries.
package wikijson

import (
	"encoding/json"

	"github.com/wikiconstraint/engine/wikiconstraint"
	"github.com/wikiconstraint/engine/wikiconstraint/intern"
)

type Revision struct {
	ID           string            `json:"id"`
	Revision     int64             `json:"revision"`
	DataType     string            `json:"data_type,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
	Descriptions map[string]string `json:"descriptions,omitempty"`
	Claims       map[string][]Claim `json:"claims,omitempty"`
}

type Claim struct {
	SnakID     string            `json:"snak_id"`
	SnakType   string            `json:"snak_type"`
	Value      *Value            `json:"value,omitempty"`
	Rank       string            `json:"rank,omitempty"`
	Qualifiers map[string][]Claim `json:"qualifiers,omitempty"`
	Sources    []ReferenceBlock  `json:"sources,omitempty"`
}

type ReferenceBlock struct {
	SnakID     string           `json:"snak_id"`
	Properties map[string][]Claim `json:"properties"`
}

// Value is the tagged union: Kind selects which of the remaining
// fields are meaningful.
type Value struct {
	Kind      string  `json:"kind"` // entity, string, quantity, time, monolingualtext, page
	ID        string  `json:"id,omitempty"`
	Text      string  `json:"text,omitempty"`
	Lang      string  `json:"lang,omitempty"`
	Amount    string  `json:"amount,omitempty"`
	Upper     *string `json:"upper,omitempty"`
	Lower     *string `json:"lower,omitempty"`
	Unit      *string `json:"unit,omitempty"`
	Year      int     `json:"year,omitempty"`
	Month     int     `json:"month,omitempty"`
	Day       int     `json:"day,omitempty"`
	Hour      int     `json:"hour,omitempty"`
	Minute    int     `json:"minute,omitempty"`
	Second    int     `json:"second,omitempty"`
	Precision int     `json:"precision,omitempty"`
	PageKind  string  `json:"page_kind,omitempty"`
	Title     string  `json:"title,omitempty"`
}

// Marshal renders rev as its JSON wire form.
func Marshal(rev *wikiconstraint.Revision) ([]byte, error) {
	return json.Marshal(toWire(rev))
}

// Unmarshal parses data as a Revision.
func Unmarshal(data []byte) (*wikiconstraint.Revision, error) {
	var wire Revision
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return fromWire(wire), nil
}

func toWire(rev *wikiconstraint.Revision) Revision {
	wire := Revision{
		ID:           string(rev.EntityID),
		Revision:     rev.RevisionID,
		DataType:     rev.DataType,
		Labels:       rev.Labels,
		Descriptions: rev.Descriptions,
	}
	if len(rev.Claims) > 0 {
		wire.Claims = map[string][]Claim{}
		for prop, claims := range rev.Claims {
			for _, c := range claims {
				wire.Claims[string(prop)] = append(wire.Claims[string(prop)], claimToWire(c))
			}
		}
	}
	return wire
}

func claimToWire(c *wikiconstraint.Claim) Claim {
	wc := Claim{
		SnakID:   c.SnakID,
		SnakType: snakTypeToWire(c.SnakType),
		Rank:     rankToWire(c.Rank),
	}
	if c.SnakType == wikiconstraint.SnakValue {
		v := valueToWire(c.Target)
		wc.Value = &v
	}
	if len(c.Qualifiers) > 0 {
		wc.Qualifiers = map[string][]Claim{}
		for prop, quals := range c.Qualifiers {
			for _, q := range quals {
				wc.Qualifiers[string(prop)] = append(wc.Qualifiers[string(prop)], claimToWire(q))
			}
		}
	}
	for _, block := range c.Sources {
		wb := ReferenceBlock{SnakID: block.SnakID, Properties: map[string][]Claim{}}
		for prop, pclaims := range block.Properties {
			for _, pc := range pclaims {
				wb.Properties[string(prop)] = append(wb.Properties[string(prop)], claimToWire(pc))
			}
		}
		wc.Sources = append(wc.Sources, wb)
	}
	return wc
}

func fromWire(wire Revision) *wikiconstraint.Revision {
	rev := wikiconstraint.NewRevision(wikiconstraint.EntityID(wire.ID), wire.Revision)
	rev.DataType = wire.DataType
	for lang, text := range wire.Labels {
		rev.Labels[lang] = text
	}
	for lang, text := range wire.Descriptions {
		rev.Descriptions[lang] = text
	}
	for prop, claims := range wire.Claims {
		propID := intern.Property(prop)
		for _, wc := range claims {
			rev.Claims[propID] = append(
				rev.Claims[propID],
				claimFromWire(rev.EntityID, propID, wc, false, false),
			)
		}
	}
	return rev
}

func claimFromWire(onItem wikiconstraint.EntityID, prop wikiconstraint.PropertyID, wc Claim, isQualifier, isReference bool) *wikiconstraint.Claim {
	claim := &wikiconstraint.Claim{
		SnakID:      wc.SnakID,
		OnItem:      onItem,
		Property:    prop,
		SnakType:    snakTypeFromWire(wc.SnakType),
		Rank:        rankFromWire(wc.Rank),
		IsQualifier: isQualifier,
		IsReference: isReference,
	}
	if claim.SnakType == wikiconstraint.SnakValue && wc.Value != nil {
		claim.Target = valueFromWire(*wc.Value)
	}
	if len(wc.Qualifiers) > 0 {
		claim.Qualifiers = map[wikiconstraint.PropertyID][]*wikiconstraint.Claim{}
		for qprop, quals := range wc.Qualifiers {
			qpropID := intern.Property(qprop)
			for _, q := range quals {
				claim.Qualifiers[qpropID] = append(
					claim.Qualifiers[qpropID],
					claimFromWire(onItem, qpropID, q, true, false),
				)
			}
		}
	}
	for _, wb := range wc.Sources {
		block := wikiconstraint.ReferenceBlock{SnakID: wb.SnakID, Properties: map[wikiconstraint.PropertyID][]*wikiconstraint.Claim{}}
		for rprop, rclaims := range wb.Properties {
			rpropID := intern.Property(rprop)
			for _, rc := range rclaims {
				block.Properties[rpropID] = append(
					block.Properties[rpropID],
					claimFromWire(onItem, rpropID, rc, false, true),
				)
			}
		}
		claim.Sources = append(claim.Sources, block)
	}
	return claim
}

func snakTypeToWire(t wikiconstraint.SnakType) string { return t.String() }

func snakTypeFromWire(s string) wikiconstraint.SnakType {
	switch s {
	case "novalue":
		return wikiconstraint.SnakNoValue
	case "somevalue":
		return wikiconstraint.SnakSomeValue
	default:
		return wikiconstraint.SnakValue
	}
}

func rankToWire(r wikiconstraint.Rank) string {
	switch r {
	case wikiconstraint.RankPreferred:
		return "preferred"
	case wikiconstraint.RankDeprecated:
		return "deprecated"
	default:
		return "normal"
	}
}

func rankFromWire(s string) wikiconstraint.Rank {
	switch s {
	case "preferred":
		return wikiconstraint.RankPreferred
	case "deprecated":
		return wikiconstraint.RankDeprecated
	default:
		return wikiconstraint.RankNormal
	}
}

func valueToWire(v wikiconstraint.Value) Value {
	switch t := v.(type) {
	case wikiconstraint.EntityID:
		return Value{Kind: "entity", ID: string(t)}
	case string:
		return Value{Kind: "string", Text: t}
	case wikiconstraint.MonolingualText:
		return Value{Kind: "monolingualtext", Lang: t.Lang, Text: t.Text}
	case wikiconstraint.Quantity:
		var unit *string
		if t.Unit != nil {
			s := string(*t.Unit)
			unit = &s
		}
		return Value{Kind: "quantity", Amount: t.Amount, Upper: t.Upper, Lower: t.Lower, Unit: unit}
	case wikiconstraint.Time:
		return Value{
			Kind: "time", Year: t.Year, Month: t.Month, Day: t.Day,
			Hour: t.Hour, Minute: t.Minute, Second: t.Second,
			Precision: int(t.Precision),
		}
	case wikiconstraint.PageValue:
		return Value{Kind: "page", PageKind: pageKindToWire(t.Kind), Title: t.Title}
	default:
		return Value{Kind: "string"}
	}
}

func valueFromWire(v Value) wikiconstraint.Value {
	switch v.Kind {
	case "entity":
		return wikiconstraint.EntityID(v.ID)
	case "string":
		return v.Text
	case "monolingualtext":
		return wikiconstraint.MonolingualText{Lang: v.Lang, Text: v.Text}
	case "quantity":
		var unit *wikiconstraint.EntityID
		if v.Unit != nil {
			id := wikiconstraint.EntityID(*v.Unit)
			unit = &id
		}
		return wikiconstraint.Quantity{Amount: v.Amount, Upper: v.Upper, Lower: v.Lower, Unit: unit}
	case "time":
		return wikiconstraint.Time{
			Year: v.Year, Month: v.Month, Day: v.Day,
			Hour: v.Hour, Minute: v.Minute, Second: v.Second,
			Precision: wikiconstraint.TimePrecision(v.Precision),
		}
	case "page":
		return wikiconstraint.PageValue{Kind: pageKindFromWire(v.PageKind), Title: v.Title}
	default:
		return nil
	}
}

func pageKindToWire(k wikiconstraint.PageKind) string {
	switch k {
	case wikiconstraint.PageGeoshape:
		return "geoshape"
	case wikiconstraint.PageTabularData:
		return "tabular"
	case wikiconstraint.PageCommons:
		return "commons"
	default:
		return "generic"
	}
}

func pageKindFromWire(s string) wikiconstraint.PageKind {
	switch s {
	case "geoshape":
		return wikiconstraint.PageGeoshape
	case "tabular":
		return wikiconstraint.PageTabularData
	case "commons":
		return wikiconstraint.PageCommons
	default:
		return wikiconstraint.PageGeneric
	}
}
