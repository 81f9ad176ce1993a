package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"maintex-gateway/internal/config"
	"maintex-gateway/internal/core/domain"
	"maintex-gateway/internal/pkg/metrics"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string]*domain.ExportEntry
	getErr  error
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]*domain.ExportEntry{}}
}

func (c *mapCache) Get(_ context.Context, key string) (*domain.ExportEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	e, ok := c.entries[key]
	return e, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, entry *domain.ExportEntry, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	return nil
}

func (c *mapCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	return out
}

func scheduleCfg(ttl time.Duration) config.ScheduleConfig {
	return config.ScheduleConfig{SpreadsheetID: "doc123", CacheTTL: ttl, FetchTimeout: time.Second}
}

func newTestScheduleService(src *fakeSource, cache ExportCache, cfg config.ScheduleConfig) (*ScheduleService, *fakeClock) {
	clock := newFakeClock()
	svc := NewScheduleService(src, cache, cfg, metrics.New(), testLogger())
	svc.SetClock(clock.Now)
	return svc, clock
}

func TestFetchCachesWithinWindow(t *testing.T) {
	src := &fakeSource{kind: domain.SourcePublicExport}
	cache := newMapCache()
	svc, clock := newTestScheduleService(src, cache, scheduleCfg(60*time.Second))
	ctx := context.Background()

	first, err := svc.Fetch(ctx, domain.Caller{Identity: "alice"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	clock.Advance(59 * time.Second)
	second, err := svc.Fetch(ctx, domain.Caller{Identity: "bob"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if src.Calls() != 1 {
		t.Fatalf("upstream calls = %d, want 1", src.Calls())
	}
	if string(first) != string(second) {
		t.Fatalf("cached body differs: %q vs %q", first, second)
	}

	clock.Advance(time.Second)
	if _, err := svc.Fetch(ctx, domain.Caller{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if src.Calls() != 2 {
		t.Fatalf("entry at exactly TTL must be refetched; calls = %d", src.Calls())
	}
	if keys := cache.keys(); len(keys) != 1 || keys[0] != "schedule:doc123" {
		t.Fatalf("cache keys = %v", keys)
	}
}

func TestFetchZeroTTLDisablesCache(t *testing.T) {
	src := &fakeSource{kind: domain.SourceServiceCredential}
	cache := newMapCache()
	svc, _ := newTestScheduleService(src, cache, scheduleCfg(0))

	for i := 0; i < 3; i++ {
		if _, err := svc.Fetch(context.Background(), domain.Caller{}); err != nil {
			t.Fatalf("Fetch: %v", err)
		}
	}
	if src.Calls() != 3 {
		t.Fatalf("calls = %d, want 3", src.Calls())
	}
	if svc.CacheEnabled() || len(cache.keys()) != 0 {
		t.Fatal("zero TTL must not populate the cache")
	}
}

func TestFetchCacheReadErrorFallsThrough(t *testing.T) {
	src := &fakeSource{kind: domain.SourcePublicExport}
	cache := newMapCache()
	cache.getErr = errors.New("redis down")
	svc, _ := newTestScheduleService(src, cache, scheduleCfg(time.Minute))

	if _, err := svc.Fetch(context.Background(), domain.Caller{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if src.Calls() != 1 {
		t.Fatalf("calls = %d", src.Calls())
	}
}

func TestFetchDelegatedKeysPerCaller(t *testing.T) {
	src := &fakeSource{kind: domain.SourceDelegatedUser}
	cache := newMapCache()
	svc, clock := newTestScheduleService(src, cache, scheduleCfg(time.Minute))
	ctx := context.Background()
	tokens := &domain.TokenBundle{AccessToken: "at", Expiry: clock.Now().Add(time.Hour)}

	alice, err := svc.Fetch(ctx, domain.Caller{Identity: "alice@maintex.com", Tokens: tokens})
	if err != nil {
		t.Fatalf("Fetch alice: %v", err)
	}
	bob, err := svc.Fetch(ctx, domain.Caller{Identity: "bob@maintex.com", Tokens: tokens})
	if err != nil {
		t.Fatalf("Fetch bob: %v", err)
	}
	if string(alice) == string(bob) {
		t.Fatal("one caller was served another caller's export")
	}
	if src.Calls() != 2 {
		t.Fatalf("calls = %d, want 2", src.Calls())
	}

	if _, err := svc.Fetch(ctx, domain.Caller{Identity: "alice@maintex.com", Tokens: tokens}); err != nil {
		t.Fatal(err)
	}
	if src.Calls() != 2 {
		t.Fatalf("alice's second fetch should hit her own cache entry; calls = %d", src.Calls())
	}
}

func TestFetchDelegatedTokenChecks(t *testing.T) {
	src := &fakeSource{kind: domain.SourceDelegatedUser}
	svc, clock := newTestScheduleService(src, nil, scheduleCfg(0))
	ctx := context.Background()

	if _, err := svc.Fetch(ctx, domain.Caller{Identity: "a@maintex.com"}); !errors.Is(err, domain.ErrTokenMissing) {
		t.Fatalf("err = %v, want ErrTokenMissing", err)
	}

	expired := &domain.TokenBundle{AccessToken: "at", Expiry: clock.Now().Add(-time.Second)}
	if _, err := svc.Fetch(ctx, domain.Caller{Identity: "a@maintex.com", Tokens: expired}); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
	if src.Calls() != 0 {
		t.Fatal("source contacted without a usable token")
	}
}

func TestFetchDelegatedFailuresBecomeDenied(t *testing.T) {
	for _, upstream := range []error{
		fmt.Errorf("%w: connection reset", domain.ErrUpstreamFetch),
		fmt.Errorf("%w: drive returned 404", domain.ErrDocumentDenied),
	} {
		src := &fakeSource{kind: domain.SourceDelegatedUser, err: upstream}
		svc, clock := newTestScheduleService(src, nil, scheduleCfg(0))
		tokens := &domain.TokenBundle{AccessToken: "at", Expiry: clock.Now().Add(time.Hour)}

		_, err := svc.Fetch(context.Background(), domain.Caller{Identity: "a@maintex.com", Tokens: tokens})
		if !errors.Is(err, domain.ErrDocumentDenied) {
			t.Fatalf("upstream %v surfaced as %v, want ErrDocumentDenied", upstream, err)
		}
	}
}

func TestFetchSharedFailureStaysUpstream(t *testing.T) {
	src := &fakeSource{kind: domain.SourcePublicExport, err: fmt.Errorf("%w: HTTP 500", domain.ErrUpstreamFetch)}
	svc, _ := newTestScheduleService(src, newMapCache(), scheduleCfg(time.Minute))

	_, err := svc.Fetch(context.Background(), domain.Caller{})
	if !errors.Is(err, domain.ErrUpstreamFetch) || errors.Is(err, domain.ErrDocumentDenied) {
		t.Fatalf("err = %v, want ErrUpstreamFetch", err)
	}
}

func TestFetchWithoutDocument(t *testing.T) {
	src := &fakeSource{kind: domain.SourcePublicExport}
	svc, _ := newTestScheduleService(src, nil, config.ScheduleConfig{})

	if _, err := svc.Fetch(context.Background(), domain.Caller{}); !errors.Is(err, domain.ErrDocumentNotConfigured) {
		t.Fatalf("err = %v, want ErrDocumentNotConfigured", err)
	}
	if src.Calls() != 0 {
		t.Fatal("source contacted without a document id")
	}
}

func TestFetchCoalescesConcurrentMisses(t *testing.T) {
	src := &fakeSource{kind: domain.SourcePublicExport, gate: make(chan struct{})}
	svc, _ := newTestScheduleService(src, newMapCache(), scheduleCfg(time.Minute))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Fetch(context.Background(), domain.Caller{}); err != nil {
				t.Errorf("Fetch: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	if src.Calls() > 2 {
		t.Fatalf("calls = %d, concurrent misses were not coalesced", src.Calls())
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	src := &fakeSource{kind: domain.SourcePublicExport, err: fmt.Errorf("%w: timeout", domain.ErrUpstreamFetch)}
	svc, _ := newTestScheduleService(src, nil, scheduleCfg(0))

	for i := 0; i < 5; i++ {
		_, _ = svc.Fetch(context.Background(), domain.Caller{})
	}
	_, err := svc.Fetch(context.Background(), domain.Caller{})
	if !errors.Is(err, domain.ErrUpstreamOpen) {
		t.Fatalf("err = %v, want ErrUpstreamOpen", err)
	}
	if src.Calls() != 5 {
		t.Fatalf("calls = %d, open breaker should short-circuit", src.Calls())
	}
}

func TestRefresh(t *testing.T) {
	src := &fakeSource{kind: domain.SourceServiceCredential}
	cache := newMapCache()
	svc, _ := newTestScheduleService(src, cache, scheduleCfg(time.Minute))

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := svc.Fetch(context.Background(), domain.Caller{}); err != nil {
		t.Fatal(err)
	}
	if src.Calls() != 1 {
		t.Fatalf("Fetch after Refresh went upstream; calls = %d", src.Calls())
	}

	delegated := &fakeSource{kind: domain.SourceDelegatedUser}
	dsvc, _ := newTestScheduleService(delegated, cache, scheduleCfg(time.Minute))
	if err := dsvc.Refresh(context.Background()); err != nil || delegated.Calls() != 0 {
		t.Fatalf("Refresh must skip per-caller sources (err=%v calls=%d)", err, delegated.Calls())
	}
}

func TestPublicExportSource(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Query().Get("fail") != "" {
			http.Error(w, "nope", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", XLSXContentType)
		_, _ = w.Write([]byte("PK\x03\x04workbook"))
	}))
	defer srv.Close()

	src := NewPublicExportSource(srv.Client(), srv.URL+"/export")
	data, err := src.Export(context.Background(), "doc123", domain.Caller{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if string(data) != "PK\x03\x04workbook" || gotPath != "/export" {
		t.Fatalf("data=%q path=%q", data, gotPath)
	}

	failing := NewPublicExportSource(srv.Client(), srv.URL+"/export?fail=1")
	if _, err := failing.Export(context.Background(), "doc123", domain.Caller{}); !errors.Is(err, domain.ErrUpstreamFetch) {
		t.Fatalf("err = %v, want ErrUpstreamFetch", err)
	}
}

func TestPublicExportURL(t *testing.T) {
	src := NewPublicExportSource(nil, "")
	want := "https://docs.google.com/spreadsheets/d/doc123/export?format=xlsx"
	if got := src.ExportURL("doc123"); got != want {
		t.Fatalf("ExportURL = %q, want %q", got, want)
	}
}

func TestServiceAccountSourceRequiresKey(t *testing.T) {
	if _, err := NewServiceAccountSource(context.Background(), nil, nil); !errors.Is(err, domain.ErrServiceAccountMissing) {
		t.Fatalf("err = %v", err)
	}
	if _, err := NewServiceAccountSource(context.Background(), []byte(`{"type":`), nil); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}
