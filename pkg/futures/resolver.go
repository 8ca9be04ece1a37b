package futures

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TeamFetcher fetches a team's detail by opaque reference.
// *statsapi.Client satisfies this via a thin adapter in the pipeline.
type TeamFetcher interface {
	FetchTeamName(ctx context.Context, ref string) (string, error)
}

// Resolver resolves opaque team references to canonical names, memoizing
// lookups so any given reference is fetched at most once per run on the
// success path. A Resolver is scoped to one pipeline run; it is never a
// process-wide singleton, so concurrent runs cannot interfere.
type Resolver struct {
	fetcher TeamFetcher
	logger  zerolog.Logger
	group   singleflight.Group

	mu    sync.RWMutex
	names map[string]string // reference -> canonical name
}

// NewResolver creates a run-scoped resolver.
func NewResolver(fetcher TeamFetcher) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		logger:  log.With().Str("component", "resolver").Logger(),
		names:   make(map[string]string),
	}
}

var errNoUsableName = errors.New("team detail has no usable name")

// Resolve returns the canonical name for a team reference. On a cache miss
// it performs one remote fetch and memoizes the result keyed by the original
// reference; concurrent callers of the same reference share one in-flight
// fetch, so a reference is fetched at most once per run on the success path.
// Fetch failures are not cached, so a later call with the same reference can
// retry.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, bool) {
	r.mu.RLock()
	name, ok := r.names[ref]
	r.mu.RUnlock()
	if ok {
		return name, true
	}

	v, err, _ := r.group.Do(ref, func() (interface{}, error) {
		// A caller that lost the race may arrive after the winner stored
		// the name and the flight was forgotten.
		r.mu.RLock()
		name, ok := r.names[ref]
		r.mu.RUnlock()
		if ok {
			return name, nil
		}

		raw, err := r.fetcher.FetchTeamName(ctx, ref)
		if err != nil {
			return nil, err
		}
		name = CanonicalName(raw)
		if name == "" {
			return nil, errNoUsableName
		}

		r.mu.Lock()
		r.names[ref] = name
		r.mu.Unlock()
		return name, nil
	})
	if err != nil {
		r.logger.Warn().Str("ref", ref).Err(err).Msg("team lookup failed")
		return "", false
	}

	return v.(string), true
}

// CacheSize returns the number of memoized references.
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// CanonicalName normalizes a raw team name: accents stripped, whitespace
// collapsed, upper-cased.
func CanonicalName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	name, _, _ = transform.String(t, name)

	name = strings.Join(strings.Fields(name), " ")
	return strings.ToUpper(strings.TrimSpace(name))
}
