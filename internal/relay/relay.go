// Package relay moves committed quote events from the outbox table to Pub/Sub.
package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventdesk-backend/pkg/config"
	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
	"github.com/angelmondragon/eventdesk-backend/pkg/logger"
	"github.com/angelmondragon/eventdesk-backend/pkg/metrics"
	"github.com/angelmondragon/eventdesk-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 500 * time.Millisecond
	defaultMaxAttempts    = 10
	defaultPublishTimeout = 15 * time.Second
)

type txRunner interface {
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type eventStore interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type deadLetterStore interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type resolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

// Sink delivers a message to a broker topic and returns the broker's id.
type Sink interface {
	Publish(ctx context.Context, topic string, msg *gcppubsub.Message) (string, error)
}

type recorder interface {
	ObserveBatch(d time.Duration)
	IncPublished(eventType string)
	IncFailed(eventType string, terminal bool)
}

// Options tune the relay loop. Zero values fall back to defaults.
type Options struct {
	BatchSize       int
	MaxAttempts     int
	PollInterval    time.Duration
	PublishTimeout  time.Duration
	DeadLetterTopic string
}

// OptionsFrom maps the outbox config onto relay options.
func OptionsFrom(cfg config.OutboxConfig, deadLetterTopic string) Options {
	return Options{
		BatchSize:       cfg.BatchSize,
		MaxAttempts:     cfg.MaxAttempts,
		PollInterval:    time.Duration(cfg.PollIntervalMS) * time.Millisecond,
		DeadLetterTopic: strings.TrimSpace(deadLetterTopic),
	}
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.PublishTimeout <= 0 {
		o.PublishTimeout = defaultPublishTimeout
	}
	return o
}

type Params struct {
	Logger      *logger.Logger
	DB          txRunner
	Events      eventStore
	DeadLetters deadLetterStore
	Registry    resolver
	Sink        Sink
	Metrics     recorder
	Options     Options
}

// Relay claims pending outbox rows in batches and publishes each one.
// Delivery is at-least-once: a row is marked published only after the broker
// acknowledged it, in the same transaction that claimed it.
type Relay struct {
	logg        *logger.Logger
	db          txRunner
	events      eventStore
	deadLetters deadLetterStore
	registry    resolver
	sink        Sink
	metrics     recorder
	opts        Options
	pace        *pacer
	now         func() time.Time
}

func New(p Params) (*Relay, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("logger is required")
	case p.DB == nil:
		return nil, errors.New("database client is required")
	case p.Events == nil:
		return nil, errors.New("outbox repository is required")
	case p.DeadLetters == nil:
		return nil, errors.New("dead letter repository is required")
	case p.Registry == nil:
		return nil, errors.New("event registry is required")
	case p.Sink == nil:
		return nil, errors.New("sink is required")
	}
	rec := p.Metrics
	if rec == nil {
		rec = metrics.NewOutboxMetrics(nil)
	}
	opts := p.Options.withDefaults()
	return &Relay{
		logg:        p.Logger,
		db:          p.DB,
		events:      p.Events,
		deadLetters: p.DeadLetters,
		registry:    p.Registry,
		sink:        p.Sink,
		metrics:     rec,
		opts:        opts,
		pace:        newPacer(opts.PollInterval),
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Run drains the outbox until ctx is canceled. Full batches are followed
// immediately by another drain; failed cycles back off exponentially.
func (r *Relay) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		handled, err := r.Drain(ctx)
		var wait time.Duration
		switch {
		case err != nil:
			r.logg.Error(ctx, "outbox relay cycle failed", err)
			wait = r.pace.failed()
		case handled > 0:
			r.pace.reset()
			continue
		default:
			r.pace.reset()
			wait = r.pace.idle()
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Drain relays one batch and reports how many rows it settled.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	started := r.now()
	handled := 0
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := r.events.FetchUnpublishedForPublish(tx, r.opts.BatchSize, r.opts.MaxAttempts)
		if err != nil {
			return fmt.Errorf("fetch outbox batch: %w", err)
		}
		for _, row := range rows {
			if err := r.settle(ctx, tx, row); err != nil {
				return err
			}
			handled++
		}
		return nil
	})
	if handled > 0 {
		r.metrics.ObserveBatch(r.now().Sub(started))
	}
	return handled, err
}

// settle publishes one row and records the verdict. Only bookkeeping
// failures are returned; broker failures end up in the row state.
func (r *Relay) settle(ctx context.Context, tx *gorm.DB, row models.OutboxEvent) error {
	ctx = r.logg.WithFields(ctx, map[string]any{
		"outbox_id":    row.ID.String(),
		"event_type":   string(row.EventType),
		"aggregate_id": row.AggregateID.String(),
	})
	attempt := row.AttemptCount + 1

	resolved, cause := r.registry.Resolve(row)
	if cause == nil {
		topic := resolved.Descriptor.Topic
		ctx = r.logg.WithFields(ctx, map[string]any{"topic": topic, "event_id": resolved.Envelope.EventID})
		cause = r.send(ctx, topic, message(row, resolved.Envelope.EventID))
	}

	v, reason := judge(cause, attempt, r.opts.MaxAttempts)
	switch v {
	case delivered:
		if err := r.events.MarkPublishedTx(tx, row.ID); err != nil {
			return fmt.Errorf("mark %s published: %w", row.ID, err)
		}
		r.metrics.IncPublished(string(row.EventType))
		r.logg.Info(ctx, "outbox event published")
		return nil
	case parked:
		return r.park(ctx, tx, row, attempt, reason, cause)
	default:
		r.logg.Warn(r.logg.WithFields(ctx, map[string]any{"attempt": attempt, "error": cause.Error()}), "outbox publish failed")
		if err := r.events.MarkFailedTx(tx, row.ID, cause); err != nil {
			return fmt.Errorf("mark %s failed: %w", row.ID, err)
		}
		r.metrics.IncFailed(string(row.EventType), false)
		return nil
	}
}

func (r *Relay) park(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, attempt int, reason enums.OutboxDLQErrorReason, cause error) error {
	msg := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       row.ID,
		EventType:     row.EventType,
		AggregateType: row.AggregateType,
		AggregateID:   row.AggregateID,
		Payload:       row.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &msg,
		AttemptCount:  attempt,
		FailedAt:      r.now(),
	}
	if err := r.deadLetters.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("record dead letter %s: %w", row.ID, err)
	}
	if err := r.events.MarkTerminalTx(tx, row.ID, cause, r.opts.MaxAttempts); err != nil {
		return fmt.Errorf("mark %s terminal: %w", row.ID, err)
	}
	r.metrics.IncFailed(string(row.EventType), true)

	ctx = r.logg.WithFields(ctx, map[string]any{"error_reason": string(reason), "error": msg})
	r.logg.Warn(ctx, "outbox event parked")

	// the dead letter row is authoritative; the topic copy is best effort
	if r.opts.DeadLetterTopic == "" {
		return nil
	}
	copyMsg := message(row, "")
	copyMsg.Attributes["error_reason"] = string(reason)
	if err := r.send(ctx, r.opts.DeadLetterTopic, copyMsg); err != nil {
		r.logg.Warn(r.logg.WithField(ctx, "forward_error", err.Error()), "dead letter copy not published")
	}
	return nil
}

func (r *Relay) send(ctx context.Context, topic string, msg *gcppubsub.Message) error {
	sendCtx, cancel := context.WithTimeout(ctx, r.opts.PublishTimeout)
	defer cancel()
	_, err := r.sink.Publish(sendCtx, topic, msg)
	return err
}

// message carries the stored envelope untouched; routing metadata rides in
// the attributes so subscribers can filter without decoding.
func message(row models.OutboxEvent, eventID string) *gcppubsub.Message {
	attrs := map[string]string{
		"outbox_id":      row.ID.String(),
		"event_type":     string(row.EventType),
		"aggregate_type": string(row.AggregateType),
		"aggregate_id":   row.AggregateID.String(),
		"enqueued_at":    row.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if eventID != "" {
		attrs["event_id"] = eventID
	}
	return &gcppubsub.Message{Data: row.Payload, Attributes: attrs}
}
