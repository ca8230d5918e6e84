package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/hiresync/hiresync/internal/interviews/domain"
)

// TrackingStatsQuery aggregates progression counters, optionally scoped
// to a single job.
type TrackingStatsQuery struct {
	JobID *uuid.UUID
}

// TrackingStats summarizes where the pipeline stands.
type TrackingStats struct {
	Total             int            `json:"total"`
	ByStatus          map[string]int `json:"by_status"`
	RoundsCompleted   int            `json:"rounds_completed"`
	ActiveBookings    int            `json:"active_bookings"`
	DegradedBookings  int            `json:"degraded_bookings"`
	RescheduledRounds int            `json:"rescheduled_rounds"`
}

// TrackingStatsHandler handles the TrackingStatsQuery.
type TrackingStatsHandler struct {
	progressionRepo domain.ProgressionRepository
}

// NewTrackingStatsHandler creates a new handler.
func NewTrackingStatsHandler(progressionRepo domain.ProgressionRepository) *TrackingStatsHandler {
	return &TrackingStatsHandler{progressionRepo: progressionRepo}
}

// Handle executes the query.
func (h *TrackingStatsHandler) Handle(ctx context.Context, query TrackingStatsQuery) (*TrackingStats, error) {
	var (
		progressions []*domain.Progression
		err          error
	)
	if query.JobID != nil {
		progressions, err = h.progressionRepo.FindByJob(ctx, *query.JobID)
	} else {
		progressions, err = h.progressionRepo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	stats := &TrackingStats{ByStatus: make(map[string]int)}
	for _, progression := range progressions {
		stats.Total++
		stats.ByStatus[string(progression.Status())]++
		stats.RoundsCompleted += progression.CompletedRounds()
		for _, round := range progression.Rounds() {
			if round.Rescheduled() {
				stats.RescheduledRounds++
			}
			booking := round.Booking()
			if booking == nil {
				continue
			}
			stats.ActiveBookings++
			if booking.Degraded {
				stats.DegradedBookings++
			}
		}
	}
	return stats, nil
}
