package futures

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/oddsmith/futuresnap/core"
	"github.com/oddsmith/futuresnap/pkg/metrics"
	"github.com/oddsmith/futuresnap/pkg/odds"
	"github.com/oddsmith/futuresnap/pkg/statsapi"
)

// Catalog is the slice of the statistics provider the pipeline consumes.
// *statsapi.Client satisfies it.
type Catalog interface {
	ListMarketRefs(ctx context.Context, season int) ([]string, error)
	GetMarket(ctx context.Context, ref string) (*statsapi.Market, error)
	GetTeam(ctx context.Context, ref string) (*statsapi.Team, error)
}

// Config configures a pipeline run.
type Config struct {
	Season      int
	Concurrency int // concurrent market fetches; <=0 means 4
}

// Result is the well-formed (possibly empty) outcome of one run.
type Result struct {
	Futures   core.FuturesRecord
	WinTotals map[string]float64
}

// Pipeline orchestrates one futures run: discover market references, fetch
// and classify each market, de-vig its probabilities, and merge per team.
// Markets are processed independently; any single market's failure is
// skipped, never fatal.
type Pipeline struct {
	catalog Catalog
	config  Config
	metrics *metrics.PipelineMetrics
	logger  zerolog.Logger
}

// NewPipeline creates a pipeline. metrics may be nil.
func NewPipeline(catalog Catalog, config Config, m *metrics.PipelineMetrics) *Pipeline {
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	return &Pipeline{
		catalog: catalog,
		config:  config,
		metrics: m,
		logger:  log.With().Str("component", "futures").Logger(),
	}
}

// Run executes one full pipeline pass. The returned Result is always
// well-formed; an unreachable catalog yields empty sections, not an error.
func (p *Pipeline) Run(ctx context.Context) *Result {
	start := time.Now()
	result := &Result{
		Futures:   make(core.FuturesRecord),
		WinTotals: make(map[string]float64),
	}

	refs := p.discover(ctx)
	p.metrics.RecordDiscovery(len(refs))
	if len(refs) == 0 {
		p.logger.Warn().Int("season", p.config.Season).Msg("no markets discovered")
		return result
	}

	resolver := NewResolver(&catalogTeamFetcher{catalog: p.catalog, metrics: p.metrics})

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)

	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			market, kind, probs, totals := p.processMarket(gctx, resolver, ref)
			if market == nil {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if len(totals) > 0 {
				for team, line := range totals {
					result.WinTotals[team] = line
				}
				return nil
			}
			result.Futures.Merge(kind, probs)
			return nil
		})
	}
	g.Wait()

	p.logger.Info().
		Int("markets", len(refs)).
		Int("teams", len(result.Futures)).
		Int("winTotals", len(result.WinTotals)).
		Dur("took", time.Since(start)).
		Msg("futures run complete")

	return result
}

// discover fetches the season's market index, retrying once against the
// prior season. Seasons roll over near calendar year boundaries, so an
// empty current-season index is expected early in the cycle.
func (p *Pipeline) discover(ctx context.Context) []string {
	refs, err := p.catalog.ListMarketRefs(ctx, p.config.Season)
	if err != nil {
		p.logger.Warn().Int("season", p.config.Season).Err(err).Msg("index fetch failed")
	}
	if len(refs) > 0 {
		return refs
	}

	prior := p.config.Season - 1
	refs, err = p.catalog.ListMarketRefs(ctx, prior)
	if err != nil {
		p.logger.Warn().Int("season", prior).Err(err).Msg("prior-season index fetch failed")
		return nil
	}
	return refs
}

// processMarket runs FetchMarket → Classify → ExtractProbabilities for one
// reference. It returns (nil, ...) when the market is skipped. For win-total
// markets it returns per-team lines instead of classified probabilities.
func (p *Pipeline) processMarket(ctx context.Context, resolver *Resolver, ref string) (*statsapi.Market, core.OutcomeKind, map[string]float64, map[string]float64) {
	market, err := p.catalog.GetMarket(ctx, ref)
	if err != nil {
		p.logger.Warn().Str("ref", ref).Err(err).Msg("market fetch failed")
		p.metrics.RecordSkip("fetch_failed")
		return nil, "", nil, nil
	}

	line, ok := bestLine(market)
	if !ok {
		p.metrics.RecordSkip("no_priced_outcomes")
		return nil, "", nil, nil
	}

	if IsWinTotalMarket(market.Title) {
		totals := p.extractWinTotals(ctx, resolver, line)
		if len(totals) == 0 {
			p.metrics.RecordSkip("win_total_empty")
			return nil, "", nil, nil
		}
		return market, "", nil, totals
	}

	kind, ok := Classify(market.Title, pricedOutcomes(line))
	if !ok {
		p.logger.Debug().Str("title", market.Title).Msg("unclassifiable market dropped")
		p.metrics.RecordSkip("unclassified")
		return nil, "", nil, nil
	}

	probs, err := p.extractProbabilities(ctx, resolver, line)
	if err != nil {
		p.metrics.RecordSkip("extract_failed")
		return nil, "", nil, nil
	}
	if len(probs) == 0 {
		p.metrics.RecordSkip("no_probabilities")
		return nil, "", nil, nil
	}

	p.metrics.RecordClassified(string(kind))
	return market, kind, probs, nil
}

// bestLine selects the line with the greatest number of priced outcomes:
// more outcomes means more complete coverage of the league. Markets with no
// priced outcome at all are discarded.
func bestLine(market *statsapi.Market) (*statsapi.Line, bool) {
	var best *statsapi.Line
	bestCount := 0
	for i := range market.Lines {
		count := pricedOutcomes(&market.Lines[i])
		if count > bestCount {
			best = &market.Lines[i]
			bestCount = count
		}
	}
	return best, best != nil
}

func pricedOutcomes(line *statsapi.Line) int {
	count := 0
	for _, o := range line.Outcomes {
		if o.HasPrice {
			count++
		}
	}
	return count
}

var errNotTeamMarket = errors.New("market has non-team outcomes")

// extractProbabilities converts one line's prices into the market's
// de-vigged probability map. The market is only usable if every priced
// outcome references a team; player-prop style markets are excluded whole.
// Within the market, duplicate listings of the same team keep the maximum
// raw probability.
func (p *Pipeline) extractProbabilities(ctx context.Context, resolver *Resolver, line *statsapi.Line) (map[string]float64, error) {
	raw := make(map[string]float64)

	for _, outcome := range line.Outcomes {
		if !outcome.HasPrice {
			continue
		}
		if outcome.TeamRef == "" {
			return nil, errNotTeamMarket
		}

		name, ok := resolver.Resolve(ctx, outcome.TeamRef)
		if !ok {
			continue
		}
		prob, ok := odds.PriceToProbability(outcome.Price)
		if !ok {
			continue
		}
		if prob > raw[name] {
			raw[name] = prob
		}
	}

	return odds.Devigorize(raw), nil
}

// extractWinTotals pulls the over/under line value per team from a
// win-total market.
func (p *Pipeline) extractWinTotals(ctx context.Context, resolver *Resolver, line *statsapi.Line) map[string]float64 {
	totals := make(map[string]float64)
	for _, outcome := range line.Outcomes {
		if outcome.TeamRef == "" || outcome.TotalLine == nil {
			continue
		}
		name, ok := resolver.Resolve(ctx, outcome.TeamRef)
		if !ok {
			continue
		}
		totals[name] = *outcome.TotalLine
	}
	return totals
}

// catalogTeamFetcher adapts the catalog's team endpoint to the resolver.
type catalogTeamFetcher struct {
	catalog Catalog
	metrics *metrics.PipelineMetrics
}

func (f *catalogTeamFetcher) FetchTeamName(ctx context.Context, ref string) (string, error) {
	team, err := f.catalog.GetTeam(ctx, ref)
	if err != nil {
		f.metrics.RecordResolution("error")
		return "", err
	}
	name := team.BestName()
	if name == "" {
		f.metrics.RecordResolution("no_name")
		return "", errNoUsableName
	}
	f.metrics.RecordResolution("fetched")
	return name, nil
}
