package snapshot

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/oddsmith/futuresnap/core"
)

func sampleSnapshot() *core.Snapshot {
	return Assemble(
		[]core.NextGameProb{{Team: "KANSAS CITY CHIEFS", ImpliedNextGameWinProb: 0.6}},
		core.FuturesRecord{
			"KANSAS CITY CHIEFS": {core.OutcomeChampionshipWinner: 0.18},
		},
		map[string]core.ProjectionRecord{
			"KANSAS CITY CHIEFS": {Team: "KANSAS CITY CHIEFS", ProjectedWins: 12.3},
		},
		map[string]float64{"KANSAS CITY CHIEFS": 11.5},
		map[string]string{
			core.SectionNextGame: "odds provider",
			core.SectionFutures:  "futures catalog",
		},
	)
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	store := NewStore(path)

	// First run: nothing on disk yet.
	prev, err := store.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if prev != nil {
		t.Fatal("missing file should load as nil snapshot")
	}

	snap := sampleSnapshot()
	if err := store.Save(snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil after Save")
	}
	if loaded.RunID != snap.RunID {
		t.Errorf("RunID = %q, want %q", loaded.RunID, snap.RunID)
	}
	if loaded.Futures["KANSAS CITY CHIEFS"][core.OutcomeChampionshipWinner] != 0.18 {
		t.Error("futures section did not round-trip")
	}
	if loaded.Projections["KANSAS CITY CHIEFS"].ProjectedWins != 12.3 {
		t.Error("projections section did not round-trip")
	}
}

func TestApplyFallbackSubstitutesEmptySections(t *testing.T) {
	previous := sampleSnapshot()
	previous.GeneratedAt = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	// New run: futures succeeded, everything else came up empty.
	current := Assemble(
		nil,
		core.FuturesRecord{
			"BUFFALO BILLS": {core.OutcomeChampionshipWinner: 0.12},
		},
		map[string]core.ProjectionRecord{},
		nil,
		map[string]string{core.SectionFutures: "futures catalog"},
	)

	ApplyFallback(current, previous, nil)

	// Empty sections carried forward.
	if len(current.NextGame) != 1 || current.NextGame[0].Team != "KANSAS CITY CHIEFS" {
		t.Errorf("nextGame not carried forward: %v", current.NextGame)
	}
	if current.Projections["KANSAS CITY CHIEFS"].ProjectedWins != 12.3 {
		t.Error("projections not carried forward")
	}
	if current.WinTotals["KANSAS CITY CHIEFS"] != 11.5 {
		t.Error("winTotals not carried forward")
	}

	// Fresh section kept from the new run, not the old one.
	if _, ok := current.Futures["KANSAS CITY CHIEFS"]; ok {
		t.Error("fresh futures section must not be replaced by the previous run")
	}
	if current.Futures["BUFFALO BILLS"][core.OutcomeChampionshipWinner] != 0.12 {
		t.Error("fresh futures value lost")
	}

	// Substitution is observable in the provenance map.
	if src := current.Sources[core.SectionNextGame]; src == "" {
		t.Error("carried-forward section must record provenance")
	}
}

func TestApplyFallbackNoPrevious(t *testing.T) {
	current := Assemble(nil, core.FuturesRecord{}, nil, nil, nil)
	ApplyFallback(current, nil, nil)

	if len(current.NextGame) != 0 || len(current.Futures) != 0 {
		t.Error("no previous snapshot: sections stay empty")
	}
}

func TestApplyFallbackNilSources(t *testing.T) {
	previous := sampleSnapshot()

	// A snapshot decoded from JSON may carry no sources map at all.
	current := &core.Snapshot{}

	ApplyFallback(current, previous, nil)

	if len(current.NextGame) != 1 {
		t.Error("nextGame not carried forward into bare snapshot")
	}
	if src := current.Sources[core.SectionNextGame]; src == "" {
		t.Error("carried-forward section must record provenance")
	}
}

func TestApplyFallbackIgnoresEmptyPreviousSection(t *testing.T) {
	previous := Assemble(nil, core.FuturesRecord{}, nil, nil, nil)
	current := Assemble(nil, core.FuturesRecord{}, nil, nil, nil)

	ApplyFallback(current, previous, nil)
	if len(current.Futures) != 0 {
		t.Error("empty previous section must not be substituted")
	}
}
