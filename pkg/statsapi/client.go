package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	defaultRateLimit = 5.0 // requests per second
	defaultBurst     = 5
)

// Client is a futures catalog client.
type Client struct {
	baseURL    string
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

// WithRateLimit sets custom rate limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a new futures catalog client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		logger:  log.With().Str("component", "statsapi").Logger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListMarketRefs fetches the market index for a season and returns the
// opaque market references it exposes. An empty list is a valid outcome,
// not an error.
func (c *Client) ListMarketRefs(ctx context.Context, season int) ([]string, error) {
	var idx marketIndex
	path := fmt.Sprintf("/seasons/%d/futures", season)
	if err := c.get(ctx, c.baseURL+path, &idx); err != nil {
		return nil, err
	}
	c.logger.Debug().Int("season", season).Int("markets", len(idx.Refs)).Msg("fetched market index")
	return idx.Refs, nil
}

// GetMarket fetches one market's detail by its opaque reference.
func (c *Client) GetMarket(ctx context.Context, ref string) (*Market, error) {
	var market Market
	if err := c.get(ctx, c.resolve(ref), &market); err != nil {
		return nil, err
	}
	return &market, nil
}

// GetTeam fetches a team's detail by its opaque reference.
func (c *Client) GetTeam(ctx context.Context, ref string) (*Team, error) {
	var team Team
	if err := c.get(ctx, c.resolve(ref), &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// resolve turns a reference into an absolute URL. References from the index
// are usually absolute already; relative ones are joined to the base URL.
func (c *Client) resolve(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.baseURL + ref
}

// get performs a GET request with rate limiting.
func (c *Client) get(ctx context.Context, url string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
