package futures

import (
	"testing"

	"github.com/oddsmith/futuresnap/core"
)

func TestClassifyTextRules(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		count    int
		wantKind core.OutcomeKind
		wantOK   bool
	}{
		{"super bowl winner", "2025 Super Bowl Winner", 32, core.OutcomeChampionshipWinner, true},
		{"conference championship", "2025 AFC Championship", 16, core.OutcomeReachChampionship, true},
		{"nfc championship", "NFC Championship - Winner", 16, core.OutcomeReachChampionship, true},
		{"make playoffs", "Kansas City Chiefs to Make the Playoffs", 2, core.OutcomeMakePlayoffs, true},
		{"division winner", "NFC East Division Winner", 4, core.OutcomeDivisionWinner, true},
		{"unrecognized", "First Overall Draft Pick", 10, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := Classify(tt.title, tt.count)
			if ok != tt.wantOK {
				t.Fatalf("Classify(%q, %d) ok = %v, want %v", tt.title, tt.count, ok, tt.wantOK)
			}
			if kind != tt.wantKind {
				t.Errorf("Classify(%q, %d) = %v, want %v", tt.title, tt.count, kind, tt.wantKind)
			}
		})
	}
}

// Priority order is total: a title matching multiple rules takes the
// highest-priority one, regardless of outcome count.
func TestClassifyPriority(t *testing.T) {
	kind, ok := Classify("AFC West Division - Super Bowl Futures", 4)
	if !ok || kind != core.OutcomeChampionshipWinner {
		t.Errorf("championship phrase should outrank division phrase, got %v (ok=%v)", kind, ok)
	}

	// Conference title containing "division": conference wins.
	kind, ok = Classify("AFC Championship (winner of each division qualifies)", 16)
	if !ok || kind != core.OutcomeReachChampionship {
		t.Errorf("conference phrase should outrank division phrase, got %v (ok=%v)", kind, ok)
	}

	// Text rule beats size heuristic: 16 outcomes would otherwise look like
	// a conference market, but the title decides.
	kind, ok = Classify("Super Bowl Winner", 16)
	if !ok || kind != core.OutcomeChampionshipWinner {
		t.Errorf("text rule should beat size heuristic, got %v (ok=%v)", kind, ok)
	}
}

func TestClassifySizeHeuristics(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		count    int
		wantKind core.OutcomeKind
		wantOK   bool
	}{
		{"full league", "2025 Futures", 32, core.OutcomeChampionshipWinner, true},
		{"conference size", "2025 Futures", 16, core.OutcomeReachChampionship, true},
		{"division size with qualifier", "NFC East Futures", 4, core.OutcomeDivisionWinner, true},
		{"division size without qualifier", "Some Small Market", 4, "", false},
		{"in between", "2025 Futures", 10, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := Classify(tt.title, tt.count)
			if ok != tt.wantOK || kind != tt.wantKind {
				t.Errorf("Classify(%q, %d) = %v, %v; want %v, %v",
					tt.title, tt.count, kind, ok, tt.wantKind, tt.wantOK)
			}
		})
	}
}

func TestIsWinTotalMarket(t *testing.T) {
	for _, title := range []string{
		"2025 Regular Season Wins",
		"Team Win Totals",
		"season wins o/u",
	} {
		if !IsWinTotalMarket(title) {
			t.Errorf("IsWinTotalMarket(%q) = false, want true", title)
		}
	}
	if IsWinTotalMarket("Super Bowl Winner") {
		t.Error("championship market should not be a win-total market")
	}
}
