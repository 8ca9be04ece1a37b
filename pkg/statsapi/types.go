// Package statsapi provides a read-only client for the statistics provider's
// futures catalog: the season market index, individual market details, and
// team lookups by reference.
//
// The catalog has no fixed schema contract; field names shift between API
// revisions. Decoding therefore falls back through small alias lists instead
// of binding to a single struct tag per field.
package statsapi

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Market is one futures market: a title and one or more priced lines.
type Market struct {
	Title string
	Lines []Line
}

// Line is one bookmaker line within a market.
type Line struct {
	Provider string
	Outcomes []Outcome
}

// Outcome is a single priced outcome within a line. Exactly one of TeamRef
// and AthleteRef is set for well-formed outcomes; both empty means the
// outcome references nothing we can resolve.
type Outcome struct {
	TeamRef    string
	AthleteRef string

	Price    float64
	HasPrice bool

	// TotalLine is the over/under line value (e.g. a season win total),
	// when the outcome carries one.
	TotalLine *float64
}

// Team is the resolved detail for a team reference.
type Team struct {
	DisplayName  string `json:"displayName"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// BestName returns the preferred display name, falling back through the
// candidate fields in descending order of preference.
func (t *Team) BestName() string {
	for _, s := range []string{t.DisplayName, t.Name, t.Abbreviation} {
		if strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Field-name aliases per catalog revision.
var (
	titleAliases = []string{"displayName", "name", "title"}
	lineAliases  = []string{"books", "lines"}
	priceAliases = []string{"american", "price", "moneyline", "cost"}
	totalAliases = []string{"line", "total"}
	indexAliases = []string{"futures", "items"}
)

// marketIndex is the decoded season index: a flat list of opaque market
// references.
type marketIndex struct {
	Refs []string
}

func (idx *marketIndex) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, key := range indexAliases {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			continue
		}
		for _, entry := range entries {
			if ref := decodeRef(entry); ref != "" {
				idx.Refs = append(idx.Refs, ref)
			}
		}
		if len(idx.Refs) > 0 {
			return nil
		}
	}
	return nil
}

// decodeRef accepts either a bare string reference or an object carrying
// the reference under "$ref" or "ref".
func decodeRef(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	for _, key := range []string{"$ref", "ref", "href"} {
		if v, ok := obj[key]; ok {
			if err := json.Unmarshal(v, &s); err == nil && s != "" {
				return s
			}
		}
	}
	return ""
}

func (m *Market) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	m.Title = firstString(fields, titleAliases)

	for _, key := range lineAliases {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var lines []Line
		if err := json.Unmarshal(raw, &lines); err != nil {
			continue
		}
		if len(lines) > 0 {
			m.Lines = lines
			break
		}
	}
	return nil
}

func (l *Line) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if raw, ok := fields["provider"]; ok {
		var provider struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &provider); err == nil {
			l.Provider = provider.Name
		}
	}

	if raw, ok := fields["outcomes"]; ok {
		var outcomes []Outcome
		if err := json.Unmarshal(raw, &outcomes); err == nil {
			l.Outcomes = outcomes
		}
	}
	return nil
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if raw, ok := fields["team"]; ok {
		o.TeamRef = decodeRef(raw)
	}
	if raw, ok := fields["athlete"]; ok {
		o.AthleteRef = decodeRef(raw)
	}

	for _, key := range priceAliases {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if price, ok := decodePrice(raw); ok {
			o.Price = price
			o.HasPrice = true
			break
		}
	}

	for _, key := range totalAliases {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err == nil {
			o.TotalLine = &v
			break
		}
	}
	return nil
}

// decodePrice accepts a price as a JSON number or as a string in moneyline
// convention ("-150", "+800"). Anything unparsable yields no value.
func decodePrice(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

func firstString(fields map[string]json.RawMessage, aliases []string) string {
	for _, key := range aliases {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}
