// Package futures discovers the season's futures markets, resolves their
// outcomes to canonical team names, removes bookmaker margin, classifies
// each market into an outcome kind, and folds everything into a per-team
// futures record.
package futures

import (
	"strings"

	"github.com/oddsmith/futuresnap/core"
)

// titleRule maps a title substring to an outcome kind. Rules are evaluated
// in order; the first match wins.
type titleRule struct {
	substr string
	kind   core.OutcomeKind
}

// titleRules are ordered by priority. A conference-championship title often
// also contains "division" or "champion", so the more specific phrases must
// come first.
var titleRules = []titleRule{
	{"super bowl", core.OutcomeChampionshipWinner},
	{"championship winner", core.OutcomeChampionshipWinner},
	{"win championship", core.OutcomeChampionshipWinner},
	{"afc championship", core.OutcomeReachChampionship},
	{"nfc championship", core.OutcomeReachChampionship},
	{"conference championship", core.OutcomeReachChampionship},
	{"reach championship", core.OutcomeReachChampionship},
	{"make the playoffs", core.OutcomeMakePlayoffs},
	{"make playoffs", core.OutcomeMakePlayoffs},
	{"to make playoffs", core.OutcomeMakePlayoffs},
	{"division", core.OutcomeDivisionWinner},
}

// divisionQualifiers are geographic tokens that mark a small market as a
// division market in the size-based fallback.
var divisionQualifiers = []string{
	"east", "west", "north", "south",
	"afc", "nfc",
}

// Outcome-count heuristics for titles no textual rule recognizes.
const (
	championshipMinOutcomes = 30 // full-league market
	conferenceMinOutcomes   = 14
	conferenceMaxOutcomes   = 18
	divisionMinOutcomes     = 4
	divisionMaxOutcomes     = 6
)

// Classify assigns an outcome kind to a market from its title and the
// chosen line's outcome count. Text rules run first in fixed priority
// order; size heuristics are the fallback. An unrecognized market returns
// ("", false) and is dropped rather than misclassified.
func Classify(title string, outcomeCount int) (core.OutcomeKind, bool) {
	lower := strings.ToLower(title)

	for _, rule := range titleRules {
		if strings.Contains(lower, rule.substr) {
			return rule.kind, true
		}
	}

	switch {
	case outcomeCount >= championshipMinOutcomes:
		return core.OutcomeChampionshipWinner, true
	case outcomeCount >= conferenceMinOutcomes && outcomeCount <= conferenceMaxOutcomes:
		return core.OutcomeReachChampionship, true
	case outcomeCount >= divisionMinOutcomes && outcomeCount <= divisionMaxOutcomes:
		for _, tok := range divisionQualifiers {
			if strings.Contains(lower, tok) {
				return core.OutcomeDivisionWinner, true
			}
		}
	}

	return "", false
}

// winTotalAliases mark markets that expose a season win-total line per team.
// These bypass outcome-kind classification and feed the winTotals section.
var winTotalAliases = []string{
	"win total",
	"season wins",
	"regular season wins",
	"total wins",
}

// IsWinTotalMarket reports whether a market title names a season win-total
// proposition.
func IsWinTotalMarket(title string) bool {
	lower := strings.ToLower(title)
	for _, alias := range winTotalAliases {
		if strings.Contains(lower, alias) {
			return true
		}
	}
	return false
}
