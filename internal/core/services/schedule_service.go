package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maintex-gateway/internal/config"
	"maintex-gateway/internal/core/domain"
	"maintex-gateway/internal/pkg/metrics"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
)

// ScheduleService serves the production schedule workbook from a source,
// with an optional time-boxed cache in front of it.
type ScheduleService struct {
	source  ScheduleSource
	cache   ExportCache
	cfg     config.ScheduleConfig
	now     func() time.Time
	group   singleflight.Group
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	log     *logrus.Logger
}

// NewScheduleService creates a new schedule service. cache may be nil, in
// which case every request goes upstream.
func NewScheduleService(source ScheduleSource, cache ExportCache, cfg config.ScheduleConfig, m *metrics.Metrics, log *logrus.Logger) *ScheduleService {
	s := &ScheduleService{
		source:  source,
		cache:   cache,
		cfg:     cfg,
		now:     time.Now,
		metrics: m,
		log:     log,
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "schedule-export",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A caller without document access says nothing about upstream health.
			return err == nil || errors.Is(err, domain.ErrAuthorization) || errors.Is(err, domain.ErrAuthentication)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
		},
	})
	return s
}

// SetClock replaces the time source used for cache freshness.
func (s *ScheduleService) SetClock(now func() time.Time) {
	s.now = now
}

// Source returns the configured source kind
func (s *ScheduleService) Source() domain.ExportSource {
	return s.source.Name()
}

// CacheEnabled reports whether fetched workbooks are cached.
func (s *ScheduleService) CacheEnabled() bool {
	return s.cache != nil && s.cfg.CacheTTL > 0
}

// Fetch returns the current workbook for caller. A cached copy younger than
// the configured TTL is returned without contacting the source.
func (s *ScheduleService) Fetch(ctx context.Context, caller domain.Caller) ([]byte, error) {
	source := string(s.source.Name())

	docID, err := s.cfg.DocumentID()
	if err != nil {
		s.metrics.Export(source, metrics.ExportError)
		return nil, err
	}

	if s.source.Name().PerCaller() {
		if caller.Tokens == nil || caller.Tokens.AccessToken == "" {
			return nil, domain.ErrTokenMissing
		}
		if caller.Tokens.Expired(s.now()) {
			return nil, domain.ErrTokenExpired
		}
	}

	key := s.cacheKey(docID, caller)
	if data, ok := s.cached(ctx, key); ok {
		s.metrics.Export(source, metrics.ExportCacheHit)
		return data, nil
	}

	// The shared fetch outlives any single requester; the HTTP client
	// timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.fetch(fetchCtx, docID, key, caller)
	})
	if err != nil {
		return nil, s.classify(err)
	}

	s.metrics.Export(source, metrics.ExportFetched)
	return v.([]byte), nil
}

// Refresh fetches the shared workbook and stores it in the cache. Sources
// that export per caller are skipped.
func (s *ScheduleService) Refresh(ctx context.Context) error {
	if s.source.Name().PerCaller() || !s.CacheEnabled() {
		return nil
	}
	docID, err := s.cfg.DocumentID()
	if err != nil {
		return err
	}
	key := s.cacheKey(docID, domain.Caller{})
	_, err, _ = s.group.Do(key, func() (interface{}, error) {
		return s.fetch(ctx, docID, key, domain.Caller{})
	})
	return err
}

func (s *ScheduleService) cacheKey(docID string, caller domain.Caller) string {
	key := "schedule:" + docID
	if s.source.Name().PerCaller() {
		key += ":" + caller.Identity
	}
	return key
}

func (s *ScheduleService) cached(ctx context.Context, key string) ([]byte, bool) {
	if !s.CacheEnabled() {
		return nil, false
	}
	entry, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("export cache read failed")
		return nil, false
	}
	if !ok || entry == nil {
		return nil, false
	}
	if s.now().Sub(entry.FetchedAt) >= s.cfg.CacheTTL {
		return nil, false
	}
	return entry.Data, true
}

func (s *ScheduleService) fetch(ctx context.Context, docID, key string, caller domain.Caller) ([]byte, error) {
	fetchedAt := s.now()
	start := time.Now()

	v, err := s.breaker.Execute(func() (interface{}, error) {
		return s.source.Export(ctx, docID, caller)
	})
	s.metrics.ObserveUpstream(string(s.source.Name()), time.Since(start))
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, domain.ErrUpstreamOpen
		}
		return nil, err
	}

	data := v.([]byte)
	if s.CacheEnabled() {
		entry := &domain.ExportEntry{Data: data, FetchedAt: fetchedAt}
		if err := s.cache.Set(ctx, key, entry, s.cfg.CacheTTL); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("export cache write failed")
		}
	}
	return data, nil
}

// classify records the failure and, for delegated exports, folds every
// upstream failure into access-denied.
func (s *ScheduleService) classify(err error) error {
	source := string(s.source.Name())
	if !s.source.Name().PerCaller() {
		s.metrics.Export(source, metrics.ExportError)
		return err
	}
	if errors.Is(err, domain.ErrDocumentDenied) {
		s.metrics.Export(source, metrics.ExportDenied)
		return err
	}
	if errors.Is(err, domain.ErrUpstream) || errors.Is(err, domain.ErrAuthorization) {
		s.metrics.Export(source, metrics.ExportDenied)
		return fmt.Errorf("%w: %v", domain.ErrDocumentDenied, err)
	}
	s.metrics.Export(source, metrics.ExportError)
	return err
}
