// Package ratings extracts per-team season projections from a ratings
// provider's public page. The page has no API contract and its markup
// drifts between revisions, so extraction runs through an ordered cascade
// of strategies: embedded-data-object extraction, header-driven table
// mapping, and a permissive row scan. Each strategy emits the same record
// shape; the first one yielding enough records wins.
package ratings

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oddsmith/futuresnap/core"
	"github.com/oddsmith/futuresnap/pkg/metrics"
)

// Config configures the extractor.
type Config struct {
	// Markers are the embedded data object names probed by the first
	// strategy, in order.
	Markers []string

	// TeamLinkPattern is the href substring that marks a link as a team
	// reference in the table strategies.
	TeamLinkPattern string

	// MinRecords is the acceptance threshold per strategy: a stage
	// yielding fewer records is treated as insufficient and the cascade
	// falls through to the next stage.
	MinRecords int
}

// DefaultConfig returns the extractor defaults for a 32-team league.
func DefaultConfig() Config {
	return Config{
		Markers:         []string{"__espnfitt__", "__INITIAL_STATE__", "__NEXT_DATA__"},
		TeamLinkPattern: "/team/",
		MinRecords:      24,
	}
}

// Extractor runs the strategy cascade over one page's markup.
type Extractor struct {
	config  Config
	metrics *metrics.PipelineMetrics
	logger  zerolog.Logger
}

// NewExtractor creates an extractor. metrics may be nil.
func NewExtractor(config Config, m *metrics.PipelineMetrics) *Extractor {
	if len(config.Markers) == 0 {
		config.Markers = DefaultConfig().Markers
	}
	if config.TeamLinkPattern == "" {
		config.TeamLinkPattern = DefaultConfig().TeamLinkPattern
	}
	if config.MinRecords <= 0 {
		config.MinRecords = DefaultConfig().MinRecords
	}
	return &Extractor{
		config:  config,
		metrics: m,
		logger:  log.With().Str("component", "ratings").Logger(),
	}
}

// Extract runs the cascade and returns the accepted stage's records, keyed
// by canonical team name. The result is exactly one stage's output, never a
// union of stages. An empty map means every stage came up short.
func (e *Extractor) Extract(markup string) map[string]core.ProjectionRecord {
	stages := []struct {
		name string
		fn   func(string) map[string]core.ProjectionRecord
	}{
		{"embedded", e.extractEmbedded},
		{"header_table", e.extractHeaderTable},
		{"row_scan", e.extractRowScan},
	}

	for _, stage := range stages {
		records := stage.fn(markup)
		if len(records) >= e.config.MinRecords {
			e.logger.Debug().Str("stage", stage.name).Int("records", len(records)).Msg("extraction accepted")
			e.metrics.RecordExtractorStage(stage.name)
			return records
		}
		e.logger.Debug().Str("stage", stage.name).Int("records", len(records)).Msg("extraction insufficient, falling through")
	}

	return map[string]core.ProjectionRecord{}
}

// Fetcher fetches the ratings page markup as-is.
type Fetcher struct {
	url        string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewFetcher creates a page fetcher.
func NewFetcher(url string) *Fetcher {
	return &Fetcher{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log.With().Str("component", "ratings").Logger(),
	}
}

// FetchPage returns the page's raw markup.
func (f *Fetcher) FetchPage(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", f.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; futuresnap/1.0)")
	req.Header.Set("Accept", "text/html")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// Projections fetches the page and runs the cascade; a fetch failure
// degrades to an empty record set, subject to the snapshot cache fallback.
func (e *Extractor) Projections(ctx context.Context, fetcher *Fetcher) map[string]core.ProjectionRecord {
	markup, err := fetcher.FetchPage(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("ratings page fetch failed")
		return map[string]core.ProjectionRecord{}
	}
	return e.Extract(markup)
}
