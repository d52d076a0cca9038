package boundary

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryReporter forwards failures to Sentry and also logs them.
type SentryReporter struct {
	hub  *sentry.Hub
	next Reporter
}

// NewSentryReporter initialises a Sentry client for dsn. next, if non-nil,
// receives every failure as well.
func NewSentryReporter(dsn, environment string, next Reporter) (*SentryReporter, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry client: %w", err)
	}
	return &SentryReporter{hub: sentry.NewHub(client, sentry.NewScope()), next: next}, nil
}

func (s *SentryReporter) Report(ctx context.Context, err error) {
	hub := s.hub
	if h := sentry.GetHubFromContext(ctx); h != nil {
		hub = h
	}
	hub.CaptureException(err)
	if s.next != nil {
		s.next.Report(ctx, err)
	}
}

// Flush waits for buffered events to be sent.
func (s *SentryReporter) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}
