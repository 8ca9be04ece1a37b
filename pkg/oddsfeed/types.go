// Package oddsfeed provides a client for the moneyline odds provider's
// upcoming-events feed and turns its head-to-head prices into implied
// next-game win probabilities.
package oddsfeed

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Event is one upcoming game with per-bookmaker quotes.
type Event struct {
	HomeTeam   string      `json:"home_team"`
	AwayTeam   string      `json:"away_team"`
	Bookmakers []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one book's quote set for an event.
type Bookmaker struct {
	Key     string        `json:"key"`
	Markets []QuoteMarket `json:"markets"`
}

// QuoteMarket is a named market within a bookmaker's quote set.
type QuoteMarket struct {
	Key      string         `json:"key"`
	Outcomes []QuoteOutcome `json:"outcomes"`
}

// QuoteOutcome pairs an outcome name with its moneyline price.
type QuoteOutcome struct {
	Name     string
	Price    float64
	HasPrice bool
}

func (o *QuoteOutcome) UnmarshalJSON(data []byte) error {
	var fields struct {
		Name  string          `json:"name"`
		Price json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	o.Name = fields.Name

	if len(fields.Price) == 0 {
		return nil
	}
	var n float64
	if err := json.Unmarshal(fields.Price, &n); err == nil {
		o.Price = n
		o.HasPrice = true
		return nil
	}
	var s string
	if err := json.Unmarshal(fields.Price, &s); err != nil {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	o.Price = d.InexactFloat64()
	o.HasPrice = true
	return nil
}

// headToHead returns the event's head-to-head market from its first
// bookmaker, if present.
func (e *Event) headToHead() (*QuoteMarket, bool) {
	if len(e.Bookmakers) == 0 {
		return nil, false
	}
	book := e.Bookmakers[0]
	for i := range book.Markets {
		if book.Markets[i].Key == "h2h" {
			return &book.Markets[i], true
		}
	}
	return nil, false
}
