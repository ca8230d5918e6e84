package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultConsumerQueueName is the default queue name for consuming events.
const DefaultConsumerQueueName = "hiresync.consumer"

// RabbitMQConsumerConfig configures the RabbitMQ consumer.
type RabbitMQConsumerConfig struct {
	URL       string
	QueueName string
	Exchange  string
	Logger    *slog.Logger
}

func (cfg *RabbitMQConsumerConfig) applyDefaults() {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultConsumerQueueName
	}
	if cfg.Exchange == "" {
		cfg.Exchange = ExchangeName
	}
}

// RabbitMQConsumer consumes events from RabbitMQ and dispatches them to
// registered consumers. Queue bindings are collected as consumers register
// and applied when Start opens the delivery stream.
type RabbitMQConsumer struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	queue    string
	exchange string
	registry *ConsumerRegistry
	logger   *slog.Logger

	mu        sync.Mutex
	bindings  []string
	running   bool
	closeChan chan struct{}
}

// NewRabbitMQConsumer connects to RabbitMQ and declares the queue topology.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *ConsumerRegistry) (*RabbitMQConsumer, error) {
	cfg.applyDefaults()

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch, cfg.Exchange, cfg.QueueName); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	cfg.Logger.Info("RabbitMQ consumer connected",
		"queue", cfg.QueueName,
		"exchange", cfg.Exchange,
	)

	return &RabbitMQConsumer{
		conn:      conn,
		channel:   ch,
		queue:     cfg.QueueName,
		exchange:  cfg.Exchange,
		registry:  registry,
		logger:    cfg.Logger,
		closeChan: make(chan struct{}),
	}, nil
}

// declareTopology ensures the topic exchange and the durable queue exist.
// The publisher declares the same exchange, so declaration order between
// the two binaries does not matter.
func declareTopology(ch *amqp.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %q: %w", queue, err)
	}
	return nil
}

// RegisterConsumer registers an event consumer. Its routing keys are bound
// to the queue when Start runs.
func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) {
	c.registry.Register(consumer)

	c.mu.Lock()
	c.bindings = append(c.bindings, consumer.EventTypes()...)
	c.mu.Unlock()
}

// Start binds the registered routing keys and consumes deliveries until the
// context is cancelled or Close is called.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer already running")
	}
	c.running = true
	bindings := make([]string, len(c.bindings))
	copy(bindings, c.bindings)
	c.mu.Unlock()

	for _, key := range bindings {
		if err := c.channel.QueueBind(c.queue, key, c.exchange, false, nil); err != nil {
			return fmt.Errorf("bind %q to %q: %w", key, c.queue, err)
		}
	}

	// One unacked delivery at a time keeps dispatch ordering per queue.
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %q: %w", c.queue, err)
	}

	c.logger.Info("consuming events", "queue", c.queue, "bindings", len(bindings))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closeChan:
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.settle(msg, c.handleDelivery(ctx, msg))
		}
	}
}

// handleDelivery decodes and dispatches one delivery. A decode failure is
// not retryable and reports success so the poison message is dropped.
func (c *RabbitMQConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) error {
	// The body is the flat domain event JSON; routing carries the type.
	event := &ConsumedEvent{}
	if err := json.Unmarshal(msg.Body, event); err != nil {
		c.logger.Error("discarding undecodable event",
			"routing_key", msg.RoutingKey,
			"error", err,
		)
		return nil
	}
	if event.RoutingKey == "" {
		event.RoutingKey = msg.RoutingKey
	}
	event.Payload = msg.Body

	start := time.Now()
	if err := c.registry.Dispatch(ctx, event); err != nil {
		c.logger.Error("event dispatch failed",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"error", err,
		)
		return err
	}

	c.logger.Debug("event processed",
		"routing_key", event.RoutingKey,
		"event_id", event.EventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// settle acks a handled delivery and requeues a failed one.
func (c *RabbitMQConsumer) settle(msg amqp.Delivery, handleErr error) {
	if handleErr != nil {
		if err := msg.Nack(false, true); err != nil {
			c.logger.Error("nack failed", "routing_key", msg.RoutingKey, "error", err)
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		c.logger.Error("ack failed", "routing_key", msg.RoutingKey, "error", err)
	}
}

// Close stops the consume loop and closes the connection.
func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		close(c.closeChan)
		c.running = false
	}

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return err
		}
	}
	return nil
}
