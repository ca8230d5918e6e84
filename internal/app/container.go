package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	availabilityApp "github.com/hiresync/hiresync/internal/availability/application"
	availabilityCalDAV "github.com/hiresync/hiresync/internal/availability/infrastructure/caldav"
	availabilityGuard "github.com/hiresync/hiresync/internal/availability/infrastructure/guard"
	availabilityHosted "github.com/hiresync/hiresync/internal/availability/infrastructure/hosted"
	availabilityMemory "github.com/hiresync/hiresync/internal/availability/infrastructure/memory"
	interviewCommands "github.com/hiresync/hiresync/internal/interviews/application/commands"
	interviewQueries "github.com/hiresync/hiresync/internal/interviews/application/queries"
	interviewServices "github.com/hiresync/hiresync/internal/interviews/application/services"
	interviewSubs "github.com/hiresync/hiresync/internal/interviews/application/subscribers"
	interviewsDomain "github.com/hiresync/hiresync/internal/interviews/domain"
	interviewPersistence "github.com/hiresync/hiresync/internal/interviews/infrastructure/persistence"
	"github.com/hiresync/hiresync/internal/interviews/infrastructure/notify"
	sharedApplication "github.com/hiresync/hiresync/internal/shared/application"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/database"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/eventbus"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/lock"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/migrations"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/hiresync/hiresync/internal/shared/infrastructure/persistence"
	talentDomain "github.com/hiresync/hiresync/internal/talent/domain"
	talentPersistence "github.com/hiresync/hiresync/internal/talent/infrastructure/persistence"
	"github.com/hiresync/hiresync/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database. At most one of SQLiteDB and PgxPool is set, depending on
	// the configured driver; neither is set for the in-memory driver.
	SQLiteDB *sql.DB
	PgxPool  *pgxpool.Pool

	// Redis
	RedisClient *redis.Client

	// Repositories
	ProgressionRepo  interviewsDomain.ProgressionRepository
	JobStore         talentDomain.JobStore
	CandidateStore   talentDomain.CandidateStore
	InterviewerStore talentDomain.InterviewerStore
	OutboxRepo       outbox.Repository

	// Shared infrastructure
	UnitOfWork     sharedApplication.UnitOfWork
	Locker         lock.Locker
	EventPublisher eventbus.Publisher
	EventBus       *eventbus.InProcessEventBus

	// Availability
	Calendar availabilityApp.CalendarCollaborator
	Resolver *availabilityApp.Resolver

	// Services
	RoundPlanner *interviewServices.RoundPlanner

	// Command handlers
	ShortlistHandler         *interviewCommands.ShortlistCandidatesHandler
	BookRoundHandler         *interviewCommands.BookRoundHandler
	RescheduleRoundHandler   *interviewCommands.RescheduleRoundHandler
	CancelRoundHandler       *interviewCommands.CancelRoundHandler
	SubmitFeedbackHandler    *interviewCommands.SubmitFeedbackHandler
	DeleteProgressionHandler *interviewCommands.DeleteProgressionHandler

	// Query handlers
	GetProgressionHandler   *interviewQueries.GetProgressionHandler
	ListProgressionsHandler *interviewQueries.ListProgressionsHandler
	TrackingStatsHandler    *interviewQueries.TrackingStatsHandler

	// Subscribers
	NotificationSubscriber *interviewSubs.NotificationSubscriber

	// Outbox processor
	OutboxProcessor *outbox.Processor

	rabbitPublisher *eventbus.RabbitMQPublisher
}

// NewContainer creates and wires all dependencies for the configured
// database driver.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	switch database.Driver(cfg.DatabaseDriver) {
	case database.DriverPostgres:
		if err := c.initPostgres(ctx); err != nil {
			return nil, err
		}
	case database.DriverSQLite:
		if err := c.initSQLite(ctx); err != nil {
			return nil, err
		}
	case "memory":
		c.initMemory()
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}

	if err := c.initRedis(ctx); err != nil {
		c.closeDB()
		return nil, err
	}
	c.initLocker()

	if err := c.initCalendar(ctx); err != nil {
		c.closeDB()
		return nil, err
	}

	if err := c.initEventBus(); err != nil {
		c.closeDB()
		return nil, err
	}

	c.wireHandlers()

	processorConfig := outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger)

	return c, nil
}

func (c *Container) initPostgres(ctx context.Context) error {
	pool, err := database.OpenPostgres(ctx, c.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	c.PgxPool = pool
	c.Logger.Info("connected to database", "driver", "postgres")

	c.ProgressionRepo = interviewPersistence.NewPostgresProgressionRepository(pool)
	store := talentPersistence.NewPostgresStore(pool)
	c.JobStore = store
	c.CandidateStore = store
	c.InterviewerStore = store
	c.OutboxRepo = outbox.NewPostgresRepository(pool)
	c.UnitOfWork = sharedPersistence.NewPgxUnitOfWork(pool)
	return nil
}

func (c *Container) initSQLite(ctx context.Context) error {
	path := c.Config.SQLitePath
	if path == "" {
		path = database.DefaultSQLitePath()
	}
	db, err := database.OpenSQLite(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	c.SQLiteDB = db
	c.Logger.Info("connected to database", "driver", "sqlite", "path", path)

	c.ProgressionRepo = interviewPersistence.NewSQLiteProgressionRepository(db)
	store := talentPersistence.NewSQLiteStore(db)
	c.JobStore = store
	c.CandidateStore = store
	c.InterviewerStore = store
	c.OutboxRepo = outbox.NewSQLiteRepository(db)
	c.UnitOfWork = sharedPersistence.NewSQLUnitOfWork(db)
	return nil
}

func (c *Container) initMemory() {
	c.ProgressionRepo = interviewPersistence.NewInMemoryProgressionRepository()
	store := talentPersistence.NewInMemoryStore()
	c.JobStore = store
	c.CandidateStore = store
	c.InterviewerStore = store
	c.OutboxRepo = outbox.NewInMemoryRepository()
	c.UnitOfWork = sharedApplication.NoopUnitOfWork{}
	c.Logger.Info("using in-memory storage")
}

func (c *Container) initRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, locking will use the in-process mutex", "error", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, locking will use the in-process mutex", "error", err)
		return nil
	}
	c.RedisClient = client
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) initLocker() {
	if c.RedisClient != nil {
		c.Locker = lock.NewRedisLocker(c.RedisClient, c.Logger)
		return
	}
	c.Locker = lock.NewKeyedMutex()
}

func (c *Container) initCalendar(ctx context.Context) error {
	cfg := c.Config
	var inner availabilityApp.CalendarCollaborator

	switch cfg.CalendarProvider {
	case "memory", "":
		inner = availabilityMemory.NewCalendar()
	case "caldav":
		collaborator, err := availabilityCalDAV.NewCollaborator(availabilityCalDAV.Config{
			BaseURL:              cfg.CalDAVBaseURL,
			Username:             cfg.CalDAVUsername,
			Password:             cfg.CalDAVPassword,
			CalendarPathTemplate: cfg.CalDAVPathTemplate,
		}, c.Logger)
		if err != nil {
			return fmt.Errorf("failed to configure CalDAV provider: %w", err)
		}
		inner = collaborator
	case "hosted":
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.OAuthTokenURL},
		}
		source := oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.OAuthRefreshToken})
		inner = availabilityHosted.NewCollaborator(source, c.Logger).WithCalendarID(cfg.CalendarID)
	default:
		return fmt.Errorf("unknown calendar provider %q", cfg.CalendarProvider)
	}

	if cfg.CalendarBreakerEnabled {
		inner = availabilityGuard.NewGuardedCollaborator(inner, availabilityGuard.DefaultConfig(), c.Logger)
	}
	c.Calendar = inner

	c.Resolver = availabilityApp.NewResolver(inner, availabilityApp.ResolverConfig{
		WorkStart:    time.Duration(cfg.WorkStartHour) * time.Hour,
		WorkEnd:      time.Duration(cfg.WorkEndHour) * time.Hour,
		Granularity:  cfg.SlotGranularity,
		SkipWeekends: true,
	}, c.Logger)
	return nil
}

func (c *Container) initEventBus() error {
	c.EventBus = eventbus.NewInProcessEventBus(c.Logger)
	c.NotificationSubscriber = interviewSubs.NewNotificationSubscriber(notify.NewLogNotifier(c.Logger), c.Logger)
	c.EventBus.RegisterConsumer(c.NotificationSubscriber)

	if c.Config.RabbitMQURL == "" {
		c.EventPublisher = c.EventBus
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
		c.EventPublisher = c.EventBus
		return nil
	}
	c.rabbitPublisher = publisher
	c.EventPublisher = publisher
	return nil
}

func (c *Container) wireHandlers() {
	c.RoundPlanner = interviewServices.NewRoundPlanner()

	bookingConfig := interviewCommands.BookingConfig{
		Duration:              c.Config.InterviewDuration,
		HorizonDays:           c.Config.SearchHorizonDays,
		Timezone:              c.Config.Timezone,
		FallbackToDefaultSlot: c.Config.FallbackToDefaultSlot,
	}

	c.BookRoundHandler = interviewCommands.NewBookRoundHandler(
		c.ProgressionRepo,
		c.Resolver,
		c.Calendar,
		c.OutboxRepo,
		c.UnitOfWork,
		c.Locker,
		bookingConfig,
		c.Logger,
	)
	c.ShortlistHandler = interviewCommands.NewShortlistCandidatesHandler(
		c.CandidateStore,
		c.JobStore,
		c.InterviewerStore,
		c.RoundPlanner,
		c.ProgressionRepo,
		c.BookRoundHandler,
		c.OutboxRepo,
		c.UnitOfWork,
		c.Logger,
	)
	c.RescheduleRoundHandler = interviewCommands.NewRescheduleRoundHandler(
		c.ProgressionRepo,
		c.Calendar,
		c.BookRoundHandler,
		c.OutboxRepo,
		c.UnitOfWork,
		c.Locker,
		c.Logger,
	)
	c.CancelRoundHandler = interviewCommands.NewCancelRoundHandler(
		c.ProgressionRepo,
		c.Calendar,
		c.OutboxRepo,
		c.UnitOfWork,
		c.Locker,
		c.Logger,
	)
	c.SubmitFeedbackHandler = interviewCommands.NewSubmitFeedbackHandler(
		c.ProgressionRepo,
		c.BookRoundHandler,
		c.OutboxRepo,
		c.UnitOfWork,
		c.Locker,
		c.Logger,
	)
	c.DeleteProgressionHandler = interviewCommands.NewDeleteProgressionHandler(
		c.ProgressionRepo,
		c.Calendar,
		c.UnitOfWork,
		c.Locker,
		c.Logger,
	)

	c.GetProgressionHandler = interviewQueries.NewGetProgressionHandler(c.ProgressionRepo)
	c.ListProgressionsHandler = interviewQueries.NewListProgressionsHandler(c.ProgressionRepo)
	c.TrackingStatsHandler = interviewQueries.NewTrackingStatsHandler(c.ProgressionRepo)
}

func (c *Container) closeDB() {
	if c.PgxPool != nil {
		c.PgxPool.Close()
		c.PgxPool = nil
	}
	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing SQLite connection", "error", err)
		}
		c.SQLiteDB = nil
	}
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.rabbitPublisher != nil {
		if err := c.rabbitPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	if c.EventBus != nil {
		if err := c.EventBus.Close(); err != nil {
			c.Logger.Warn("error closing event bus", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	c.closeDB()
}
