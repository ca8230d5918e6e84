package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hiresync/hiresync/internal/availability/domain"
)

// ResolverConfig configures slot discretization.
type ResolverConfig struct {
	WorkStart    time.Duration // Start of working hours (e.g. 9 * time.Hour)
	WorkEnd      time.Duration // End of working hours (e.g. 17 * time.Hour)
	Granularity  time.Duration // Step between candidate slot starts
	SkipWeekends bool
}

// DefaultResolverConfig returns the standard working-hours configuration.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		WorkStart:    9 * time.Hour,
		WorkEnd:      17 * time.Hour,
		Granularity:  30 * time.Minute,
		SkipWeekends: true,
	}
}

// Resolver computes mutually free slots for a set of parties by
// intersecting their calendar availability.
type Resolver struct {
	calendar CalendarCollaborator
	config   ResolverConfig
	logger   *slog.Logger
}

// NewResolver creates a new availability resolver.
func NewResolver(calendar CalendarCollaborator, config ResolverConfig, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Granularity <= 0 {
		config.Granularity = 30 * time.Minute
	}
	return &Resolver{
		calendar: calendar,
		config:   config,
		logger:   logger,
	}
}

// FindCommonSlot returns the first slot of the requested duration that is
// free for every party, in chronological order, or nil when the window
// holds none. It never invents a slot; fallbacks are the caller's call.
func (r *Resolver) FindCommonSlot(ctx context.Context, parties []string, duration time.Duration, window domain.Interval) (*domain.Slot, error) {
	slots, err := r.findCommonSlots(ctx, parties, duration, window, 1)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, nil
	}
	slot := slots[0]
	return &slot, nil
}

// FindAllCommonSlots returns every mutually free slot in the window, in
// chronological order.
func (r *Resolver) FindAllCommonSlots(ctx context.Context, parties []string, duration time.Duration, window domain.Interval) ([]domain.Slot, error) {
	return r.findCommonSlots(ctx, parties, duration, window, 0)
}

func (r *Resolver) findCommonSlots(ctx context.Context, parties []string, duration time.Duration, window domain.Interval, limit int) ([]domain.Slot, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %s", duration)
	}

	candidates := r.discretize(window, duration)
	if len(candidates) == 0 {
		return nil, nil
	}

	// Free-for-everyone starts as all ones and narrows per party.
	free := newBitset(len(candidates))
	free.fill(len(candidates))

	for _, party := range parties {
		busy, err := r.calendar.GetBusyIntervals(ctx, party, window)
		if err != nil {
			return nil, fmt.Errorf("fetch busy intervals for %s: %w", party, err)
		}

		mask := newBitset(len(candidates))
		for i, slot := range candidates {
			if !overlapsAny(slot, busy) {
				mask.set(i)
			}
		}
		free.and(mask)
	}

	slots := make([]domain.Slot, 0)
	for i := free.nextSet(0); i >= 0; i = free.nextSet(i + 1) {
		slots = append(slots, candidates[i])
		if limit > 0 && len(slots) == limit {
			break
		}
	}

	r.logger.Debug("availability resolved",
		"parties", len(parties),
		"candidate_slots", len(candidates),
		"free_slots", len(slots),
	)

	return slots, nil
}

// discretize generates candidate slots of the requested duration at
// granularity steps inside working hours across the window.
func (r *Resolver) discretize(window domain.Interval, duration time.Duration) []domain.Slot {
	slots := make([]domain.Slot, 0)

	day := time.Date(window.Start.Year(), window.Start.Month(), window.Start.Day(), 0, 0, 0, 0, window.Start.Location())
	for ; day.Before(window.End); day = day.AddDate(0, 0, 1) {
		if r.config.SkipWeekends {
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
		}

		workStart := day.Add(r.config.WorkStart)
		workEnd := day.Add(r.config.WorkEnd)

		for start := workStart; !start.Add(duration).After(workEnd); start = start.Add(r.config.Granularity) {
			slot := domain.Slot{Start: start, End: start.Add(duration)}
			if slot.Start.Before(window.Start) || slot.End.After(window.End) {
				continue
			}
			slots = append(slots, slot)
		}
	}

	return slots
}

func overlapsAny(slot domain.Slot, busy []domain.Interval) bool {
	for _, b := range busy {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}
