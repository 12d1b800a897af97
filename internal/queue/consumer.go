package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"relayforge/internal/infra"
)

// HandlerFunc runs one complete production pass for the referenced job.
type HandlerFunc func(ctx context.Context, jobID string) error

// Options configures the media queue consumer.
type Options struct {
	URL       string
	Queue     string
	Handler   HandlerFunc
	Logger    infra.Logger
	Consumer  string
	Reconnect time.Duration
}

// Consumer is the intake loop of the producer. It holds at most one
// unacknowledged delivery at a time: each message is handled to completion
// before the broker hands out the next one. A failed delivery is requeued
// once; a failure of an already-redelivered message drops it so a poison job
// cannot loop forever.
type Consumer struct {
	url       string
	queue     string
	handler   HandlerFunc
	logger    infra.Logger
	tag       string
	reconnect time.Duration
}

// jobRef is the queue message schema. All job data is fetched fresh from the
// job store, so the reference is the whole payload.
type jobRef struct {
	JobID string `json:"job_id"`
}

var errEmptyJobRef = errors.New("queue: message has no job_id")

func NewConsumer(opts Options) *Consumer {
	tag := opts.Consumer
	if tag == "" {
		// Unique per process so concurrent consumers are distinguishable in
		// broker tooling.
		tag = "producer-" + uuid.NewString()[:8]
	}
	reconnect := opts.Reconnect
	if reconnect <= 0 {
		reconnect = 5 * time.Second
	}
	return &Consumer{
		url:       opts.URL,
		queue:     opts.Queue,
		handler:   opts.Handler,
		logger:    opts.Logger,
		tag:       tag,
		reconnect: reconnect,
	}
}

// Run connects to the broker and consumes until ctx is cancelled. Broken
// connections are re-established after a short delay.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			c.logger.Error().Err(err).Msg("queue: connection lost, reconnecting")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnect):
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("queue: dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("queue: open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue: declare %s: %w", c.queue, err)
	}

	// Prefetch of one is the backpressure mechanism: a slow job blocks new
	// arrivals, and a crash leaves the message unacknowledged for redelivery.
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("queue: set qos: %w", err)
	}

	deliveries, err := ch.Consume(c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue: consume %s: %w", c.queue, err)
	}

	c.logger.Info().Str("queue", c.queue).Msg("queue: consuming")

	for {
		select {
		case <-ctx.Done():
			// Stop accepting new deliveries, then let the deferred channel
			// and connection closes run. An in-flight delivery has already
			// been settled by handleDelivery at this point.
			if err := ch.Cancel(c.tag, false); err != nil {
				c.logger.Warn().Err(err).Msg("queue: cancel consumer")
			}
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("queue: delivery channel closed")
			}
			c.handleDelivery(ctx, d)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	jobID, err := decodeJobRef(d.Body)
	if err != nil {
		c.logger.Error().Err(err).Msg("queue: dropping malformed message")
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Warn().Err(nackErr).Msg("queue: nack failed")
		}
		return
	}

	log := c.logger.With().Str("job_id", jobID).Logger()
	log.Info().Msg("queue: processing job")

	if err := c.handler(ctx, jobID); err != nil {
		requeue := requeueOnFailure(d.Redelivered)
		log.Error().Err(err).Bool("requeue", requeue).Msg("queue: job failed")
		if nackErr := d.Nack(false, requeue); nackErr != nil {
			log.Warn().Err(nackErr).Msg("queue: nack failed")
		}
		return
	}

	log.Info().Msg("queue: job complete")
	if ackErr := d.Ack(false); ackErr != nil {
		log.Warn().Err(ackErr).Msg("queue: ack failed")
	}
}

func decodeJobRef(body []byte) (string, error) {
	var ref jobRef
	if err := json.Unmarshal(body, &ref); err != nil {
		return "", fmt.Errorf("queue: decode message: %w", err)
	}
	jobID := strings.TrimSpace(ref.JobID)
	if jobID == "" {
		return "", errEmptyJobRef
	}
	return jobID, nil
}

// requeueOnFailure bounds redelivery to one extra attempt per delivery chain.
// A transient failure gets a second chance; a message that already failed its
// redelivery is dropped for operator intervention.
func requeueOnFailure(redelivered bool) bool {
	return !redelivered
}
