// Package okrservice coordinates the store, the reflection journal and the
// status engine. API handlers and MCP tools go through it; it is the only
// layer that reads the clock.
package okrservice

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/starford/okrtrack/internal/apperr"
	"github.com/starford/okrtrack/internal/clock"
	"github.com/starford/okrtrack/internal/journal"
	"github.com/starford/okrtrack/internal/metrics"
	"github.com/starford/okrtrack/internal/store"
)

// Change event types published through the Notifier.
const (
	EventPeriodChanged    = "period.changed"
	EventPeriodActivated  = "period.activated"
	EventObjectiveChanged = "objective.changed"
	EventKeyResultChanged = "key_result.changed"
	EventProgressRecorded = "progress.recorded"
	EventReflectionSaved  = "reflection.saved"
	EventClockChanged     = "clock.changed"
)

// Notifier receives change events after a successful mutation.
type Notifier interface {
	PublishChange(eventType string, data any)
}

// Service implements the OKR use cases.
type Service struct {
	db       *store.DB
	journal  journal.Provider
	clock    *clock.Override
	metrics  *metrics.Metrics
	notifier Notifier
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records check-ins and status counts on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger for failures that do not fail the call.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithNotifier publishes change events to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// New creates a service. A nil clk uses the wall clock.
func New(db *store.DB, j journal.Provider, clk *clock.Override, opts ...Option) *Service {
	if clk == nil {
		clk = clock.NewOverride(nil)
	}
	s := &Service{db: db, journal: j, clock: clk, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service's notion of the current time, honouring any
// test-date override.
func (s *Service) Now() time.Time { return s.clock.Now() }

// recordedAt stamps writes that compete on recency. It ignores the test-date
// override so that moving the date back never makes a newer edit look older.
func (s *Service) recordedAt() time.Time { return s.clock.Base().Now() }

func (s *Service) publish(eventType string, data any) {
	if s.notifier != nil {
		s.notifier.PublishChange(eventType, data)
	}
}

func newID() string { return uuid.NewString() }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperr.ErrInvalid, fmt.Sprintf(format, args...))
}

func notFoundFromFS(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return apperr.ErrNotFound
	}
	return err
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
