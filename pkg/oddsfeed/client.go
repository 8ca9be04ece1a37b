package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/oddsmith/futuresnap/core"
	"github.com/oddsmith/futuresnap/pkg/futures"
	"github.com/oddsmith/futuresnap/pkg/odds"
)

const (
	defaultRateLimit = 2.0 // requests per second
	defaultBurst     = 2
)

// Client is an odds provider client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a new odds provider client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		logger:  log.With().Str("component", "oddsfeed").Logger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListEvents fetches the upcoming events with head-to-head prices.
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("markets", "h2h")
	if c.apiKey != "" {
		params.Set("apiKey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/events?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(body))
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return events, nil
}

// NextGameProbs fetches the upcoming slate and converts each event's first
// bookmaker's head-to-head prices into per-team implied win probabilities.
// An event missing a usable head-to-head market is skipped; the result is
// always well-formed.
func (c *Client) NextGameProbs(ctx context.Context) []core.NextGameProb {
	events, err := c.ListEvents(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("events fetch failed")
		return nil
	}

	var probs []core.NextGameProb
	for i := range events {
		event := &events[i]
		market, ok := event.headToHead()
		if !ok {
			continue
		}

		homeRaw, awayRaw, ok := matchupProbs(event, market)
		if !ok {
			continue
		}
		home, away := odds.NormalizePair(homeRaw, awayRaw)

		probs = append(probs,
			core.NextGameProb{Team: futures.CanonicalName(event.HomeTeam), ImpliedNextGameWinProb: home},
			core.NextGameProb{Team: futures.CanonicalName(event.AwayTeam), ImpliedNextGameWinProb: away},
		)
	}

	c.logger.Debug().Int("events", len(events)).Int("teams", len(probs)).Msg("next-game probabilities built")
	return probs
}

// matchupProbs pairs the head-to-head outcomes with the event's home and
// away labels and converts both prices.
func matchupProbs(event *Event, market *QuoteMarket) (home, away float64, ok bool) {
	var homeOK, awayOK bool
	for _, outcome := range market.Outcomes {
		if !outcome.HasPrice {
			continue
		}
		p, valid := odds.PriceToProbability(outcome.Price)
		if !valid {
			continue
		}
		switch {
		case strings.EqualFold(outcome.Name, event.HomeTeam):
			home, homeOK = p, true
		case strings.EqualFold(outcome.Name, event.AwayTeam):
			away, awayOK = p, true
		}
	}
	return home, away, homeOK && awayOK
}
