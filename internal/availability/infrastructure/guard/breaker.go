package guard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/hiresync/hiresync/internal/availability/application"
	"github.com/hiresync/hiresync/internal/availability/domain"
)

// ErrCalendarUnavailable is returned while the breaker is open.
var ErrCalendarUnavailable = errors.New("calendar provider unavailable")

// Config controls the circuit breaker around the calendar provider.
type Config struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultConfig returns breaker settings suitable for a flaky provider.
func DefaultConfig() Config {
	return Config{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// GuardedCollaborator wraps a calendar collaborator with a circuit
// breaker so a failing provider trips fast instead of stalling every
// booking on its timeout.
type GuardedCollaborator struct {
	inner   application.CalendarCollaborator
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
}

// NewGuardedCollaborator wraps inner with a circuit breaker.
func NewGuardedCollaborator(inner application.CalendarCollaborator, config Config, logger *slog.Logger) *GuardedCollaborator {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        "calendar",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return &GuardedCollaborator{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		logger:  logger,
	}
}

func (g *GuardedCollaborator) execute(fn func() (any, error)) (any, error) {
	result, err := g.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCalendarUnavailable
	}
	return result, err
}

func (g *GuardedCollaborator) GetBusyIntervals(ctx context.Context, email string, window domain.Interval) ([]domain.Interval, error) {
	result, err := g.execute(func() (any, error) {
		return g.inner.GetBusyIntervals(ctx, email, window)
	})
	if err != nil {
		return nil, err
	}
	intervals, _ := result.([]domain.Interval)
	return intervals, nil
}

func (g *GuardedCollaborator) CreateEvent(ctx context.Context, req application.CreateEventRequest) (*application.CreatedEvent, error) {
	result, err := g.execute(func() (any, error) {
		return g.inner.CreateEvent(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	created, _ := result.(*application.CreatedEvent)
	return created, nil
}

func (g *GuardedCollaborator) DeleteEvent(ctx context.Context, eventID string) error {
	_, err := g.execute(func() (any, error) {
		return nil, g.inner.DeleteEvent(ctx, eventID)
	})
	return err
}
