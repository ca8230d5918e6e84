package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hiresync/hiresync/internal/shared/infrastructure/eventbus"
)

// ProcessorConfig holds configuration for the outbox processor.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig returns sensible defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     100 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: 1 * time.Second,
		RetryBackoffMax:  1 * time.Minute,
	}
}

// Processor polls the outbox and publishes events to the message broker.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex
}

// NewProcessor creates a new outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the polling loop in a goroutine.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)

	return nil
}

// Stop gracefully stops the processor.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("outbox processor stopped")
}

func (p *Processor) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			if err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error("outbox batch failed", "error", err)
			}
		}
	}
}

// ProcessBatch publishes one batch of unpublished messages.
func (p *Processor) ProcessBatch(ctx context.Context) error {
	msgs, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		if err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
			p.logger.Warn("failed to publish outbox message",
				"message_id", msg.ID,
				"routing_key", msg.RoutingKey,
				"retry_count", msg.RetryCount,
				"error", err,
			)
			if msg.CanRetry(p.config.MaxRetries) {
				backoff := p.backoff(msg.RetryCount)
				if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), time.Now().UTC().Add(backoff)); markErr != nil {
					return markErr
				}
				continue
			}
			p.logger.Error("outbox message exhausted retries, dead-lettering",
				"message_id", msg.ID,
				"routing_key", msg.RoutingKey,
				"retry_count", msg.RetryCount,
			)
			if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error()); markErr != nil {
				return markErr
			}
			continue
		}
		if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) backoff(retryCount int) time.Duration {
	backoff := p.config.RetryBackoffBase << uint(retryCount)
	if backoff > p.config.RetryBackoffMax || backoff <= 0 {
		backoff = p.config.RetryBackoffMax
	}
	return backoff
}
