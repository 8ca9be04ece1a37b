package snapshot

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/oddsmith/futuresnap/core"
	"github.com/oddsmith/futuresnap/pkg/metrics"
)

// ApplyFallback substitutes each empty section of current with the previous
// snapshot's non-empty value, so a transient upstream failure never erases
// previously-good data. Sections are handled independently; a substitution
// is recorded in the provenance map so downstream consumers can tell a
// carried-forward section from a fresh one. metrics may be nil.
func ApplyFallback(current, previous *core.Snapshot, m *metrics.PipelineMetrics) {
	if current == nil {
		return
	}
	// Snapshots decoded from JSON may arrive without a sources map.
	if current.Sources == nil {
		current.Sources = make(map[string]string)
	}

	logger := log.With().Str("component", "snapshot").Logger()

	substitute := func(section string) {
		stamp := ""
		if previous != nil {
			stamp = previous.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		prior := previous.Sources[section]
		if prior == "" {
			prior = "previous snapshot"
		}
		current.Sources[section] = fmt.Sprintf("%s (carried forward from %s)", prior, stamp)
		logger.Warn().Str("section", section).Msg("section empty, carrying forward previous value")
		m.RecordCacheFallback(section)
	}

	if len(current.NextGame) == 0 {
		m.RecordEmptySection(core.SectionNextGame)
		if previous != nil && len(previous.NextGame) > 0 {
			current.NextGame = previous.NextGame
			substitute(core.SectionNextGame)
		}
	}
	if len(current.Futures) == 0 {
		m.RecordEmptySection(core.SectionFutures)
		if previous != nil && len(previous.Futures) > 0 {
			current.Futures = previous.Futures
			substitute(core.SectionFutures)
		}
	}
	if len(current.Projections) == 0 {
		m.RecordEmptySection(core.SectionProjections)
		if previous != nil && len(previous.Projections) > 0 {
			current.Projections = previous.Projections
			substitute(core.SectionProjections)
		}
	}
	if len(current.WinTotals) == 0 {
		m.RecordEmptySection(core.SectionWinTotals)
		if previous != nil && len(previous.WinTotals) > 0 {
			current.WinTotals = previous.WinTotals
			substitute(core.SectionWinTotals)
		}
	}
}
