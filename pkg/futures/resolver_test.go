package futures

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeFetcher struct {
	names map[string]string
	fail  map[string]bool
	calls map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		names: make(map[string]string),
		fail:  make(map[string]bool),
		calls: make(map[string]int),
	}
}

func (f *fakeFetcher) FetchTeamName(ctx context.Context, ref string) (string, error) {
	f.calls[ref]++
	if f.fail[ref] {
		return "", errors.New("unreachable")
	}
	name, ok := f.names[ref]
	if !ok {
		return "", errors.New("unknown ref")
	}
	return name, nil
}

func TestResolverMemoizes(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.names["/teams/1"] = "Kansas City Chiefs"

	resolver := NewResolver(fetcher)

	for i := 0; i < 3; i++ {
		name, ok := resolver.Resolve(context.Background(), "/teams/1")
		if !ok {
			t.Fatal("Resolve failed")
		}
		if name != "KANSAS CITY CHIEFS" {
			t.Errorf("name = %q", name)
		}
	}

	if fetcher.calls["/teams/1"] != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", fetcher.calls["/teams/1"])
	}
	if resolver.CacheSize() != 1 {
		t.Errorf("CacheSize = %d, want 1", resolver.CacheSize())
	}
}

// slowFetcher holds every fetch open long enough for concurrent callers of
// the same reference to pile up behind the first one.
type slowFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *slowFetcher) FetchTeamName(ctx context.Context, ref string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	time.Sleep(50 * time.Millisecond)
	return "Kansas City Chiefs", nil
}

func TestResolverSharesInFlightFetch(t *testing.T) {
	fetcher := &slowFetcher{}
	resolver := NewResolver(fetcher)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, ok := resolver.Resolve(context.Background(), "/teams/kc")
			if !ok || name != "KANSAS CITY CHIEFS" {
				t.Errorf("Resolve = %q, ok=%v", name, ok)
			}
		}()
	}
	wg.Wait()

	if fetcher.calls != 1 {
		t.Errorf("reference fetched %d times under concurrency, want 1", fetcher.calls)
	}
	if resolver.CacheSize() != 1 {
		t.Errorf("CacheSize = %d, want 1", resolver.CacheSize())
	}
}

func TestResolverDoesNotCacheFailures(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.names["/teams/2"] = "Buffalo Bills"
	fetcher.fail["/teams/2"] = true

	resolver := NewResolver(fetcher)

	if _, ok := resolver.Resolve(context.Background(), "/teams/2"); ok {
		t.Fatal("expected failure")
	}

	// Transient failure clears: the next call retries and succeeds.
	fetcher.fail["/teams/2"] = false
	name, ok := resolver.Resolve(context.Background(), "/teams/2")
	if !ok || name != "BUFFALO BILLS" {
		t.Fatalf("retry after transient failure: got %q, ok=%v", name, ok)
	}
	if fetcher.calls["/teams/2"] != 2 {
		t.Errorf("expected 2 fetches, got %d", fetcher.calls["/teams/2"])
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Kansas City Chiefs ", "KANSAS CITY CHIEFS"},
		{"São Paulo", "SAO PAULO"},
		{"green  bay   packers", "GREEN BAY PACKERS"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CanonicalName(tt.in); got != tt.want {
			t.Errorf("CanonicalName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
