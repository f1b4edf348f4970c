// Package amqp connects the web process to the sync worker through
// RabbitMQ. Publishes go through a small circuit breaker so a dead broker
// degrades uploads to "stored but not mirrored" instead of hanging them.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

const (
	// Circuit breaker states.
	StateClosed int32 = iota
	StateOpen
)

const (
	circuitFailureThreshold = 5
	circuitResetTimeout     = 60 * time.Second
	maxReconnectAttempts    = 5
)

type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	failureCount int64
	lastFailure  int64 // unix nanoseconds
	state        int32
}

// NewClient connects to the broker and declares the exchange, queue and
// binding used for statement sync messages.
func NewClient(url, exchangeName, queueName string) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	if err := channel.ExchangeDeclare(c.exchangeName, "direct", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(c.queueName, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(queue.Name, c.queueName, c.exchangeName, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	c.conn = conn
	c.channel = channel
	slog.Info("AMQP client connected", "exchange", c.exchangeName, "queue", c.queueName)
	return nil
}

// exponentialBackoff returns the wait before reconnect attempt n, capped at
// 30 seconds.
func exponentialBackoff(attempt int) time.Duration {
	if attempt > 5 {
		return 30 * time.Second
	}
	d := time.Second << uint(attempt)
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

// isConnectionError reports whether err looks like a broken broker
// connection rather than a protocol or application error.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"channel/connection is not open",
		"unexpected EOF",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) == StateClosed {
		return false
	}
	last := atomic.LoadInt64(&c.lastFailure)
	if time.Since(time.Unix(0, last)) > circuitResetTimeout {
		atomic.StoreInt32(&c.state, StateClosed)
		atomic.StoreInt64(&c.failureCount, 0)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	atomic.StoreInt64(&c.lastFailure, time.Now().UnixNano())
	if atomic.AddInt64(&c.failureCount, 1) >= circuitFailureThreshold {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func (c *Client) reconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for attempt := 0; attempt < maxReconnectAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(exponentialBackoff(attempt)):
		}

		if err := c.connect(); err != nil {
			slog.Warn("AMQP reconnect failed", "attempt", attempt+1, "error", err)
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to reconnect to AMQP broker after %d attempts", maxReconnectAttempts)
}

// PublishStatementSync queues a statement for the sheet mirror. With the
// circuit open it fails fast; the pending scan picks the statement up later.
func (c *Client) PublishStatementSync(ctx context.Context, statementID int64) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("AMQP circuit open, not publishing statement %d", statementID)
	}

	msg := NewStatementSyncMessage(statementID)
	body, err := msg.ToJSON()
	if err != nil {
		return err
	}

	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()

	err = channel.PublishWithContext(ctx, c.exchangeName, c.queueName, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			if rerr := c.reconnect(ctx); rerr != nil {
				return fmt.Errorf("failed to publish statement sync: %w", err)
			}
			c.mu.Lock()
			channel = c.channel
			c.mu.Unlock()
			err = channel.PublishWithContext(ctx, c.exchangeName, c.queueName, false, false,
				amqp091.Publishing{
					ContentType:  "application/json",
					DeliveryMode: amqp091.Persistent,
					Timestamp:    time.Now(),
					Body:         body,
				})
		}
		if err != nil {
			c.recordFailure()
			return fmt.Errorf("failed to publish statement sync: %w", err)
		}
	}

	c.recordSuccess()
	slog.InfoContext(ctx, "Statement sync message published", "statement_id", statementID)
	return nil
}

// ConsumeStatementSync delivers sync messages to handler until the context
// is cancelled. Handler errors nack the message back onto the queue;
// malformed payloads are dropped.
func (c *Client) ConsumeStatementSync(ctx context.Context, handler func(ctx context.Context, msg *StatementSyncMessage) error) error {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()

	if err := channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := channel.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	slog.Info("Consuming statement sync messages", "queue", c.queueName)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("AMQP delivery channel closed")
			}

			msg, err := StatementSyncMessageFromJSON(delivery.Body)
			if err != nil {
				slog.Error("Dropping malformed sync message", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(ctx, msg); err != nil {
				slog.Error("Sync message handling failed",
					"statement_id", msg.StatementID, "error", err)
				delivery.Nack(false, true)
				continue
			}
			delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
