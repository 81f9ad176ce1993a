package services

import (
	"context"
	"io"
	"sync"
	"time"

	"maintex-gateway/internal/core/domain"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeSource records calls and returns a payload naming the caller.
type fakeSource struct {
	mu      sync.Mutex
	kind    domain.ExportSource
	calls   int
	err     error
	gate    chan struct{}
	callers []string
}

func (s *fakeSource) Name() domain.ExportSource { return s.kind }

func (s *fakeSource) Export(_ context.Context, documentID string, caller domain.Caller) ([]byte, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.callers = append(s.callers, caller.Identity)
	if s.err != nil {
		return nil, s.err
	}
	return []byte(documentID + "|" + caller.Identity), nil
}

func (s *fakeSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// fakeProvider is an IdentityProvider with canned answers.
type fakeProvider struct {
	email       string
	exchangeErr error
	emailErr    error
	lastState   string
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	p.lastState = state
	return "https://accounts.example.test/auth?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*domain.TokenBundle, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &domain.TokenBundle{AccessToken: "at-" + code, RefreshToken: "rt", Expiry: time.Now().Add(time.Hour)}, nil
}

func (p *fakeProvider) VerifiedEmail(_ context.Context, _ *domain.TokenBundle) (string, error) {
	if p.emailErr != nil {
		return "", p.emailErr
	}
	return p.email, nil
}
