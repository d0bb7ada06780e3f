package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/cinema-booking-wizard/internal/logger"
)

// Consumer drains both booking queues into an append-only ops log, one line
// per event.  Partial failures are the lines operators reconcile by hand.
type Consumer struct {
	url    string
	tag    string
	logDir string
	log    logger.Logger
}

// NewConsumer returns a consumer for the broker at url writing to
// logDir/booking.log.
func NewConsumer(url, tag, logDir string, log logger.Logger) *Consumer {
	return &Consumer{url: url, tag: tag, logDir: logDir, log: log}
}

// Run connects and consumes until ctx is cancelled, reconnecting with
// exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warnf(ctx, "queue.Consumer.Run: dial failed: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warnf(ctx, "queue.Consumer.Run: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warnf(ctx, "queue.Consumer.consume: set QoS failed: %v", err)
	}

	merged := make(chan amqp.Delivery)
	for _, name := range []string{RoutingSubmitted, RoutingPartialFailure} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, c.tag+"-"+name, false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume %s: %w", name, err)
		}
		go func(msgs <-chan amqp.Delivery) {
			for d := range msgs {
				select {
				case merged <- d:
				case <-ctx.Done():
					return
				}
			}
		}(msgs)
	}

	closed := ch.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr == nil {
				return errors.New("channel closed")
			}
			return amqpErr
		case d := <-merged:
			if err := c.handle(d.Body); err != nil {
				c.log.Errorf(ctx, "queue.Consumer.consume: handle message failed: %v", err)
				_ = d.Nack(false, false) // reject without requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(c.logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.logDir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.logDir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	return WriteLine(f, ev)
}

// WriteLine formats ev as a single human-friendly log line.
func WriteLine(w io.Writer, ev BookingEvent) error {
	seats := fmt.Sprintf("[%s]", strings.Join(ev.Seats, ","))
	line := fmt.Sprintf("[%s] Booking %s | booking_id=%s | user=%s | movie_id=%d | movie=%q | theater=%q | show=%s %s | total=%d | seats=%s",
		ev.OccurredAt, ev.Outcome, ev.BookingID, ev.UserPhone, ev.MovieID, ev.MovieTitle, ev.Address, ev.ShowDate, ev.ShowTime, ev.TotalPrice, seats)
	if len(ev.FailedSeats) > 0 {
		line += fmt.Sprintf(" | failed=[%s] | compensated=%t", strings.Join(ev.FailedSeats, ","), ev.Compensated)
	}
	if _, err := io.WriteString(w, line+"\n"); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
