package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	availabilityApp "github.com/hiresync/hiresync/internal/availability/application"
	availabilityDomain "github.com/hiresync/hiresync/internal/availability/domain"
	"github.com/hiresync/hiresync/internal/availability/infrastructure/memory"
	"github.com/hiresync/hiresync/internal/interviews/domain"
	"github.com/hiresync/hiresync/internal/interviews/infrastructure/persistence"
	sharedApplication "github.com/hiresync/hiresync/internal/shared/application"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/lock"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/outbox"
)

// Wednesday noon; the booking window starts the next day.
var fixedNow = time.Date(2026, time.September, 9, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// flakyCalendar wraps the in-memory calendar with injectable failures.
type flakyCalendar struct {
	inner     *memory.Calendar
	busyErr   error
	createErr error
	deleteErr error
}

func newFlakyCalendar() *flakyCalendar {
	return &flakyCalendar{inner: memory.NewCalendar()}
}

func (c *flakyCalendar) GetBusyIntervals(ctx context.Context, email string, window availabilityDomain.Interval) ([]availabilityDomain.Interval, error) {
	if c.busyErr != nil {
		return nil, c.busyErr
	}
	return c.inner.GetBusyIntervals(ctx, email, window)
}

func (c *flakyCalendar) CreateEvent(ctx context.Context, req availabilityApp.CreateEventRequest) (*availabilityApp.CreatedEvent, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	return c.inner.CreateEvent(ctx, req)
}

func (c *flakyCalendar) DeleteEvent(ctx context.Context, eventID string) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	return c.inner.DeleteEvent(ctx, eventID)
}

// failingProgressionRepo wraps the in-memory repository with injectable
// failures per method. findsBeforeErr lets the first N lookups succeed
// before findErr kicks in.
type failingProgressionRepo struct {
	*persistence.InMemoryProgressionRepository
	findErr        error
	findsBeforeErr int
	saveErr        error
}

func (r *failingProgressionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Progression, error) {
	if r.findErr != nil {
		if r.findsBeforeErr > 0 {
			r.findsBeforeErr--
		} else {
			return nil, r.findErr
		}
	}
	return r.InMemoryProgressionRepository.FindByID(ctx, id)
}

func (r *failingProgressionRepo) Save(ctx context.Context, progression *domain.Progression) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.InMemoryProgressionRepository.Save(ctx, progression)
}

// bookingFixture wires a BookRoundHandler against in-memory collaborators
// with a fixed clock.
type bookingFixture struct {
	repo     *failingProgressionRepo
	calendar *flakyCalendar
	outbox   *outbox.InMemoryRepository
	handler  *BookRoundHandler
}

func newBookingFixture(t *testing.T, config BookingConfig) *bookingFixture {
	t.Helper()
	repo := &failingProgressionRepo{InMemoryProgressionRepository: persistence.NewInMemoryProgressionRepository()}
	calendar := newFlakyCalendar()
	outboxRepo := outbox.NewInMemoryRepository()

	resolver := availabilityApp.NewResolver(calendar, availabilityApp.DefaultResolverConfig(), nil)
	handler := NewBookRoundHandler(
		repo,
		resolver,
		calendar,
		outboxRepo,
		sharedApplication.NoopUnitOfWork{},
		lock.NewKeyedMutex(),
		config,
		nil,
	).WithClock(fixedClock)

	return &bookingFixture{
		repo:     repo,
		calendar: calendar,
		outbox:   outboxRepo,
		handler:  handler,
	}
}

func interviewerAssignments() []domain.RoundAssignment {
	return []domain.RoundAssignment{
		{RoundType: domain.RoundTechnical, InterviewerID: uuid.New(), InterviewerName: "Tara", InterviewerEmail: "tara@example.com", Department: "Engineering"},
		{RoundType: domain.RoundManager, InterviewerID: uuid.New(), InterviewerName: "Mila", InterviewerEmail: "mila@example.com", Department: "Management"},
		{RoundType: domain.RoundHR, InterviewerID: uuid.New(), InterviewerName: "Hugo", InterviewerEmail: "hugo@example.com", Department: "HR"},
	}
}

// seedProgression stores a fresh three-round progression and returns it.
func seedProgression(t *testing.T, repo domain.ProgressionRepository) *domain.Progression {
	t.Helper()
	progression, err := domain.NewProgression(
		uuid.New(), uuid.New(),
		"Ana Flores", "ana@example.com", "Backend Engineer",
		interviewerAssignments(),
	)
	require.NoError(t, err)
	progression.ClearDomainEvents()
	require.NoError(t, repo.Save(context.Background(), progression))
	return progression
}

// routingKeys extracts the routing keys of all stored outbox messages.
func routingKeys(msgs []*outbox.Message) []string {
	keys := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		keys = append(keys, msg.RoutingKey)
	}
	return keys
}
