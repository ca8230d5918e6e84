package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	availabilityApp "github.com/hiresync/hiresync/internal/availability/application"
	availabilityDomain "github.com/hiresync/hiresync/internal/availability/domain"
	"github.com/hiresync/hiresync/internal/interviews/domain"
	sharedApplication "github.com/hiresync/hiresync/internal/shared/application"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/lock"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/outbox"
)

// BookingOutcome classifies the result of a booking attempt.
type BookingOutcome string

const (
	OutcomeBooked           BookingOutcome = "booked"
	OutcomeAlreadyScheduled BookingOutcome = "already_scheduled"
	OutcomeNoSlot           BookingOutcome = "no_slot_found"
	OutcomeBlocked          BookingOutcome = "blocked"
)

// BookingConfig tunes the orchestrator's slot search and fallbacks.
type BookingConfig struct {
	// Duration of every interview slot.
	Duration time.Duration
	// HorizonDays bounds the search window, starting tomorrow.
	HorizonDays int
	// Timezone recorded on bookings.
	Timezone string
	// FallbackToDefaultSlot books the next business day at 10:00 when
	// the resolver finds nothing, instead of reporting no slot.
	FallbackToDefaultSlot bool
}

// DefaultBookingConfig returns the standard booking settings.
func DefaultBookingConfig() BookingConfig {
	return BookingConfig{
		Duration:              60 * time.Minute,
		HorizonDays:           7,
		Timezone:              "UTC",
		FallbackToDefaultSlot: true,
	}
}

// BookRoundCommand requests a calendar booking for one round of a
// progression. PreferredTime skips the availability search.
type BookRoundCommand struct {
	ProgressionID uuid.UUID
	RoundIndex    int
	PreferredTime *time.Time
}

// BookRoundResult reports what happened, including whether any degraded
// fallback was used.
type BookRoundResult struct {
	Outcome         BookingOutcome
	ProgressionID   uuid.UUID
	RoundNumber     int
	RoundType       string
	InterviewerName string
	StartTime       time.Time
	EndTime         time.Time
	MeetingLink     string
	// Degraded is set when the calendar collaborator failed and the
	// meeting link was fabricated locally.
	Degraded bool
	// FallbackSlot is set when no common slot existed and the default
	// next-business-day slot was used.
	FallbackSlot bool
	Reason       string
}

// BookRoundHandler books one round: it resolves a slot, creates the
// calendar event, records the booking on the progression, and queues the
// notification through the outbox.
type BookRoundHandler struct {
	progressionRepo domain.ProgressionRepository
	resolver        *availabilityApp.Resolver
	calendar        availabilityApp.CalendarCollaborator
	outboxRepo      outbox.Repository
	uow             sharedApplication.UnitOfWork
	locker          lock.Locker
	config          BookingConfig
	logger          *slog.Logger
	now             func() time.Time
}

// NewBookRoundHandler creates a new handler.
func NewBookRoundHandler(
	progressionRepo domain.ProgressionRepository,
	resolver *availabilityApp.Resolver,
	calendar availabilityApp.CalendarCollaborator,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	config BookingConfig,
	logger *slog.Logger,
) *BookRoundHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Duration <= 0 {
		config.Duration = 60 * time.Minute
	}
	if config.HorizonDays <= 0 {
		config.HorizonDays = 7
	}
	if config.Timezone == "" {
		config.Timezone = "UTC"
	}
	return &BookRoundHandler{
		progressionRepo: progressionRepo,
		resolver:        resolver,
		calendar:        calendar,
		outboxRepo:      outboxRepo,
		uow:             uow,
		locker:          locker,
		config:          config,
		logger:          logger,
		now:             time.Now,
	}
}

// WithClock overrides the handler's clock, for tests.
func (h *BookRoundHandler) WithClock(now func() time.Time) *BookRoundHandler {
	h.now = now
	return h
}

// Handle executes the command. Mutations on one progression are
// serialized through the locker.
func (h *BookRoundHandler) Handle(ctx context.Context, cmd BookRoundCommand) (*BookRoundResult, error) {
	release, err := h.locker.Acquire(ctx, cmd.ProgressionID)
	if err != nil {
		return nil, err
	}
	defer release()

	progression, err := h.progressionRepo.FindByID(ctx, cmd.ProgressionID)
	if err != nil {
		return nil, err
	}

	if progression.IsTerminal() {
		return &BookRoundResult{
			Outcome:       OutcomeBlocked,
			ProgressionID: progression.ID(),
			Reason:        fmt.Sprintf("progression is %s", progression.Status()),
		}, nil
	}

	round, err := progression.Round(cmd.RoundIndex)
	if err != nil {
		return nil, err
	}
	if cmd.RoundIndex > progression.NextRoundIndex() {
		return nil, domain.ErrRoundNotCurrent
	}
	if booking := round.Booking(); booking != nil {
		return &BookRoundResult{
			Outcome:         OutcomeAlreadyScheduled,
			ProgressionID:   progression.ID(),
			RoundNumber:     round.RoundNumber(),
			RoundType:       string(round.RoundType()),
			InterviewerName: round.InterviewerName(),
			StartTime:       booking.StartTime,
			EndTime:         booking.EndTime,
			MeetingLink:     booking.MeetingLink,
			Degraded:        booking.Degraded,
			Reason:          "round already has an active booking",
		}, nil
	}

	result := &BookRoundResult{
		ProgressionID:   progression.ID(),
		RoundNumber:     round.RoundNumber(),
		RoundType:       string(round.RoundType()),
		InterviewerName: round.InterviewerName(),
	}

	slot, fallbackUsed, err := h.resolveSlot(ctx, progression, round, cmd.PreferredTime)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		result.Outcome = OutcomeNoSlot
		result.Reason = fmt.Sprintf("no common slot within %d days", h.config.HorizonDays)
		return result, nil
	}
	result.FallbackSlot = fallbackUsed

	booking := h.createEvent(ctx, progression, round, *slot)
	if err := progression.RecordBooking(cmd.RoundIndex, booking); err != nil {
		return nil, err
	}

	if err := h.persist(ctx, progression); err != nil {
		return nil, err
	}

	result.Outcome = OutcomeBooked
	result.StartTime = booking.StartTime
	result.EndTime = booking.EndTime
	result.MeetingLink = booking.MeetingLink
	result.Degraded = booking.Degraded
	return result, nil
}

// resolveSlot picks the interview slot: the preferred time verbatim, the
// first common free slot, or the configured fallback.
func (h *BookRoundHandler) resolveSlot(ctx context.Context, progression *domain.Progression, round *domain.Round, preferred *time.Time) (*availabilityDomain.Slot, bool, error) {
	if preferred != nil {
		if preferred.Before(h.now()) {
			return nil, false, fmt.Errorf("%w: preferred time %s is in the past", domain.ErrInvalidPreferredTime, preferred.Format(time.RFC3339))
		}
		return &availabilityDomain.Slot{
			Start: *preferred,
			End:   preferred.Add(h.config.Duration),
		}, false, nil
	}

	tomorrow := h.startOfDay(h.now().AddDate(0, 0, 1))
	window := availabilityDomain.Interval{
		Start: tomorrow,
		End:   tomorrow.AddDate(0, 0, h.config.HorizonDays),
	}
	parties := []string{round.InterviewerEmail(), progression.CandidateEmail()}

	slot, err := h.resolver.FindCommonSlot(ctx, parties, h.config.Duration, window)
	if err != nil {
		h.logger.Warn("availability lookup failed",
			"progression_id", progression.ID(),
			"round", round.RoundNumber(),
			"error", err,
		)
		slot = nil
	}
	if slot != nil {
		return slot, false, nil
	}
	if !h.config.FallbackToDefaultSlot {
		return nil, false, nil
	}

	fallback := h.defaultSlot()
	h.logger.Warn("no common slot found, using default fallback slot",
		"progression_id", progression.ID(),
		"round", round.RoundNumber(),
		"start", fallback.Start,
	)
	return &fallback, true, nil
}

// defaultSlot is the next business day at 10:00 for the configured
// duration.
func (h *BookRoundHandler) defaultSlot() availabilityDomain.Slot {
	day := h.now().AddDate(0, 0, 1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 10, 0, 0, 0, day.Location())
	return availabilityDomain.Slot{Start: start, End: start.Add(h.config.Duration)}
}

// createEvent asks the calendar collaborator for an event. Provider
// failure degrades to a fabricated meeting link so scheduling never
// blocks on a calendar outage.
func (h *BookRoundHandler) createEvent(ctx context.Context, progression *domain.Progression, round *domain.Round, slot availabilityDomain.Slot) domain.Booking {
	summary := fmt.Sprintf("%s Interview - Round %d: %s", round.RoundType(), round.RoundNumber(), progression.CandidateName())
	description := fmt.Sprintf("%s interview for the %s position.\nInterviewer: %s (%s)",
		round.RoundType(), progression.JobRole(), round.InterviewerName(), round.Department())

	created, err := h.calendar.CreateEvent(ctx, availabilityApp.CreateEventRequest{
		Summary:     summary,
		Description: description,
		Start:       slot.Start,
		End:         slot.End,
		Attendees:   []string{round.InterviewerEmail(), progression.CandidateEmail()},
	})
	if err != nil {
		h.logger.Warn("calendar event creation failed, fabricating meeting link",
			"progression_id", progression.ID(),
			"round", round.RoundNumber(),
			"error", err,
		)
		return domain.Booking{
			MeetingLink: availabilityApp.GenerateMeetingLink(),
			StartTime:   slot.Start,
			EndTime:     slot.End,
			Timezone:    h.config.Timezone,
			Degraded:    true,
		}
	}

	return domain.Booking{
		EventID:     created.EventID,
		MeetingLink: created.MeetingLink,
		StartTime:   slot.Start,
		EndTime:     slot.End,
		Timezone:    h.config.Timezone,
	}
}

func (h *BookRoundHandler) persist(ctx context.Context, progression *domain.Progression) error {
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		if err := h.progressionRepo.Save(ctx, progression); err != nil {
			return err
		}
		msgs, err := outbox.FromEvents(progression.DomainEvents())
		if err != nil {
			return err
		}
		return h.outboxRepo.SaveBatch(ctx, msgs)
	})
	if err != nil {
		return err
	}
	progression.ClearDomainEvents()
	return nil
}

func (h *BookRoundHandler) startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
