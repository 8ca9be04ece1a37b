// Package core defines the shared domain types for the futuresnap pipeline:
// outcome kinds, per-team futures and projection records, and the snapshot
// document that each run produces.
package core

import "time"

// OutcomeKind is the semantic category a futures market resolves to.
type OutcomeKind string

const (
	OutcomeDivisionWinner     OutcomeKind = "division_winner"
	OutcomeReachChampionship  OutcomeKind = "reach_championship"
	OutcomeChampionshipWinner OutcomeKind = "championship_winner"
	OutcomeMakePlayoffs       OutcomeKind = "make_playoffs"
)

// AllOutcomeKinds lists every kind in a stable order, for iteration.
var AllOutcomeKinds = []OutcomeKind{
	OutcomeDivisionWinner,
	OutcomeReachChampionship,
	OutcomeChampionshipWinner,
	OutcomeMakePlayoffs,
}

// Valid reports whether k is one of the closed set of outcome kinds.
func (k OutcomeKind) Valid() bool {
	switch k {
	case OutcomeDivisionWinner, OutcomeReachChampionship,
		OutcomeChampionshipWinner, OutcomeMakePlayoffs:
		return true
	}
	return false
}

// FuturesRecord maps a team name to its de-vigged probability per outcome
// kind. Each (team, kind) slot holds the maximum probability observed across
// all markets resolving to that kind: the policy is "best available market",
// not an average.
type FuturesRecord map[string]map[OutcomeKind]float64

// Merge folds one classified market's probabilities into the record,
// keeping the maximum per (team, kind).
func (r FuturesRecord) Merge(kind OutcomeKind, probs map[string]float64) {
	for team, p := range probs {
		kinds, ok := r[team]
		if !ok {
			kinds = make(map[OutcomeKind]float64)
			r[team] = kinds
		}
		if p > kinds[kind] {
			kinds[kind] = p
		}
	}
}

// ProjectionRecord holds one team's season projection. Optional probability
// fields are pointers: nil means the source did not expose the field, which
// is distinct from an explicit zero.
type ProjectionRecord struct {
	Team           string   `json:"team"`
	ProjectedWins  float64  `json:"projectedWins"`
	PlayoffProb    *float64 `json:"playoffProb,omitempty"`
	DivisionProb   *float64 `json:"divisionProb,omitempty"`
	ConferenceProb *float64 `json:"conferenceProb,omitempty"`
	ChampApperProb *float64 `json:"champAppearanceProb,omitempty"`
	ChampWinProb   *float64 `json:"champWinProb,omitempty"`
}

// NextGameProb is one team's implied win probability for its next game,
// derived from a head-to-head moneyline after vig removal.
type NextGameProb struct {
	Team                   string  `json:"entity"`
	ImpliedNextGameWinProb float64 `json:"impliedNextGameWinProb"`
}

// Snapshot is the complete output of one pipeline run. It is immutable once
// written; the next run builds a wholly new document and may carry forward
// sections from this one when its own came up empty.
type Snapshot struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	RunID       string            `json:"runId"`
	Sources     map[string]string `json:"sources"`

	NextGame    []NextGameProb              `json:"nextGame"`
	Futures     FuturesRecord               `json:"futures"`
	Projections map[string]ProjectionRecord `json:"projections"`
	WinTotals   map[string]float64          `json:"winTotals"`
}

// Section names used in the Sources provenance map and by the cache
// fallback logic.
const (
	SectionNextGame    = "nextGame"
	SectionFutures     = "futures"
	SectionProjections = "projections"
	SectionWinTotals   = "winTotals"
)
