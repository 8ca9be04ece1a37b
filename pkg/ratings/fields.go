package ratings

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/oddsmith/futuresnap/core"
)

// Field-name aliases accepted by the embedded-object strategy. Source field
// names vary by page revision; matching is case-insensitive.
var (
	nameFieldAliases   = []string{"displayname", "teamname", "name", "team"}
	abbrevFieldAliases = []string{"abbrev", "abbreviation", "teamabbrev", "shortname"}
	winsFieldAliases   = []string{"projectedwins", "projwins", "winprojection", "expectedwins", "wins"}

	probFieldAliases = map[string][]string{
		"playoff":     {"playoffpct", "makeplayoffs", "playoffprob", "madeplayoffs"},
		"division":    {"divisionpct", "windivision", "divtitlepct"},
		"conference":  {"conferencepct", "winconference", "confpct"},
		"champAppear": {"champgamepct", "reachchamppct", "sbappearpct", "appearchamppct"},
		"champWin":    {"champwinpct", "winchamppct", "sbwinpct", "championshippct"},
	}
)

// Column-header aliases accepted by the header-driven table strategy.
var columnAliases = map[string][]string{
	"record":      {"proj record", "projected record", "proj. record", "proj w-l", "w-l"},
	"playoff":     {"playoff", "make playoffs", "playoffs%"},
	"division":    {"division", "win division", "div%"},
	"conference":  {"conference", "win conference", "conf%"},
	"champAppear": {"reach champ", "champ appearance", "make sb", "reach super bowl", "sb appearance"},
	"champWin":    {"win champ", "win super bowl", "win sb", "championship"},
}

// Permissive-scan canonical field order: percent tokens in a row are read
// left to right into these logical fields.
var canonicalProbOrder = []string{"playoff", "division", "conference", "champAppear", "champWin"}

var (
	recordPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[-–]\s*(\d+(?:\.\d+)?)`)
	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
)

// parseRecordWins extracts the win count from a "wins–losses" record string.
func parseRecordWins(s string) (float64, bool) {
	m := recordPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	wins, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return wins, true
}

// parsePercentCell converts a percentage cell ("12.3%" or "12.3") into a
// probability in [0,1]. An unparsable cell yields nil, never a zero standing
// in for "unknown".
func parsePercentCell(s string) *float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || s == "-" || s == "--" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	p := v / 100
	if p < 0 || p > 1 {
		return nil
	}
	return &p
}

// asProbability normalizes an embedded numeric field into [0,1]. Embedded
// objects carry probabilities either as fractions or percentage points.
func asProbability(v float64) *float64 {
	if v > 1 {
		v /= 100
	}
	if v < 0 || v > 1 {
		return nil
	}
	p := v
	return &p
}

// setProbField assigns a parsed probability to the record's logical field.
func setProbField(record *core.ProjectionRecord, field string, p *float64) {
	if p == nil {
		return
	}
	switch field {
	case "playoff":
		record.PlayoffProb = p
	case "division":
		record.DivisionProb = p
	case "conference":
		record.ConferenceProb = p
	case "champAppear":
		record.ChampApperProb = p
	case "champWin":
		record.ChampWinProb = p
	}
}
