package cli

import (
	availabilityApp "github.com/hiresync/hiresync/internal/availability/application"
	interviewCommands "github.com/hiresync/hiresync/internal/interviews/application/commands"
	interviewQueries "github.com/hiresync/hiresync/internal/interviews/application/queries"
	talentDomain "github.com/hiresync/hiresync/internal/talent/domain"
)

// App holds the CLI application dependencies.
type App struct {
	// Command Handlers
	ShortlistHandler         *interviewCommands.ShortlistCandidatesHandler
	BookRoundHandler         *interviewCommands.BookRoundHandler
	RescheduleRoundHandler   *interviewCommands.RescheduleRoundHandler
	CancelRoundHandler       *interviewCommands.CancelRoundHandler
	SubmitFeedbackHandler    *interviewCommands.SubmitFeedbackHandler
	DeleteProgressionHandler *interviewCommands.DeleteProgressionHandler

	// Query Handlers
	GetProgressionHandler   *interviewQueries.GetProgressionHandler
	ListProgressionsHandler *interviewQueries.ListProgressionsHandler
	TrackingStatsHandler    *interviewQueries.TrackingStatsHandler

	// Availability
	Resolver *availabilityApp.Resolver

	// Talent stores
	JobStore         talentDomain.JobStore
	CandidateStore   talentDomain.CandidateStore
	InterviewerStore talentDomain.InterviewerStore
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
