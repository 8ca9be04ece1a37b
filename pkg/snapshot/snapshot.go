// Package snapshot assembles, persists, and carries forward the pipeline's
// output document. The snapshot on disk is the sole contract with
// downstream consumers and the only state shared between runs.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oddsmith/futuresnap/core"
)

// Assemble composes one run's sections into a fresh snapshot document.
// sources maps section names to human-readable provenance strings.
func Assemble(
	nextGame []core.NextGameProb,
	futures core.FuturesRecord,
	projections map[string]core.ProjectionRecord,
	winTotals map[string]float64,
	sources map[string]string,
) *core.Snapshot {
	if sources == nil {
		sources = make(map[string]string)
	}
	return &core.Snapshot{
		GeneratedAt: time.Now().UTC(),
		RunID:       uuid.NewString(),
		Sources:     sources,
		NextGame:    nextGame,
		Futures:     futures,
		Projections: projections,
		WinTotals:   winTotals,
	}
}

// Store reads and writes snapshots at a fixed path.
type Store struct {
	path   string
	logger zerolog.Logger
}

// NewStore creates a snapshot store.
func NewStore(path string) *Store {
	return &Store{
		path:   path,
		logger: log.With().Str("component", "snapshot").Logger(),
	}
}

// Load reads the previous snapshot. A missing file is a normal first-run
// condition and returns (nil, nil).
func (s *Store) Load() (*core.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Save writes the snapshot atomically: the document lands in a temp file in
// the same directory first, then renames over the target, so a crashed run
// never leaves a torn snapshot for the next run's cache fallback.
func (s *Store) Save(snap *core.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	s.logger.Info().Str("path", s.path).Str("runId", snap.RunID).Msg("snapshot written")
	return nil
}
