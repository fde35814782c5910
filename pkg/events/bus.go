// Package events is the item event bus: Watermill over PostgreSQL tables.
//
// The PostgreSQL item store publishes inside the transaction that changed the
// row, so an event exists exactly when its write committed. Consumers register
// handlers with Handle and drive them with Run; delivery is at-least-once and
// handlers must be idempotent.
//
// With a ConsumerGroup, instances in the group share messages. Without one
// every instance sees every message.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ghuser/itemstore/pkg/logger"
)

// ErrNotPostgres is returned when the bus is pointed at a non-PostgreSQL URL.
var ErrNotPostgres = errors.New("events: event bus requires a postgres database url")

const (
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
	shutdownTimeout      = 30 * time.Second
	forwarderTopic       = "_forwarder_queue"
	forwarderGroup       = "forwarder-consumer"
)

// Options configures an EventBus.
type Options struct {
	// DatabaseURL must be a postgres:// or postgresql:// URL.
	DatabaseURL string
	// ConsumerGroup shares delivery across instances. Empty means broadcast.
	ConsumerGroup string
	// Forwarder routes publishes through a durable queue drained by StartForwarder.
	Forwarder bool
	// MaxRetries and RetryInterval bound redelivery of a failing handler.
	// Zero values mean 3 retries starting at 1s, doubling each time.
	MaxRetries    int
	RetryInterval time.Duration
	// PoisonTopic receives messages whose handler still fails after retries.
	// Empty leaves them unacked for redelivery.
	PoisonTopic string
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = defaultRetryInterval
	}
	return o
}

// EventBus publishes and consumes messages stored in PostgreSQL.
type EventBus struct {
	opts       Options
	db         *sql.DB
	log        logger.Logger
	wlog       watermill.LoggerAdapter
	publisher  message.Publisher // direct, or forwarder-enveloped
	direct     *watermillsql.Publisher
	subscriber *watermillsql.Subscriber
	router     *message.Router
	fwd        *forwarder.Forwarder
	wg         sync.WaitGroup
}

func isPostgresURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// NewEventBus opens a dedicated connection pool to opts.DatabaseURL.
// Message tables are created on first use; EnsureTopics creates them ahead
// of transactional publishes.
func NewEventBus(opts Options, log logger.Logger) (*EventBus, error) {
	if !isPostgresURL(opts.DatabaseURL) {
		return nil, ErrNotPostgres
	}
	opts = opts.withDefaults()

	db, err := sql.Open("pgx", opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}

	q := &EventBus{
		opts: opts,
		db:   db,
		log:  log,
		wlog: watermill.NewSlogLogger(log.ToSlog().With("component", "events")),
	}

	q.direct, err = watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, q.wlog)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	q.publisher = q.envelope(q.direct)

	q.subscriber, err = q.newSubscriber(opts.ConsumerGroup)
	if err != nil {
		_ = q.direct.Close()
		_ = db.Close()
		return nil, err
	}

	if err := q.initRouter(); err != nil {
		_ = q.subscriber.Close()
		_ = q.direct.Close()
		_ = db.Close()
		return nil, err
	}
	return q, nil
}

func (q *EventBus) newSubscriber(group string) (*watermillsql.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(q.db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, q.wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}
	return sub, nil
}

// envelope wraps pub so messages travel through the forwarder queue when
// forwarder mode is on.
func (q *EventBus) envelope(pub message.Publisher) message.Publisher {
	if !q.opts.Forwarder {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
}

// StartForwarder runs the daemon that moves enveloped messages from the
// forwarder queue to their target topics. It returns once the daemon is
// running. Only valid with Options.Forwarder, and only once.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.opts.Forwarder {
		return errors.New("events: StartForwarder called on non-forwarder EventBus")
	}
	if q.fwd != nil {
		return errors.New("events: forwarder already started")
	}

	fwdSub, err := q.newSubscriber(forwarderGroup)
	if err != nil {
		return err
	}
	fwd, err := forwarder.NewForwarder(fwdSub, q.direct, q.wlog, forwarder.Config{
		ForwarderTopic: forwarderTopic,
	})
	if err != nil {
		_ = fwdSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
		}
	}()

	select {
	case <-fwd.Running():
		q.log.InfoContext(ctx, "events: forwarder running")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for forwarder: %w", ctx.Err())
	}
}

// EnsureTopics creates message and offset tables for topics, plus the poison
// topic when one is configured. Transactional publishers never create tables.
func (q *EventBus) EnsureTopics(topics ...string) error {
	if q.opts.PoisonTopic != "" {
		topics = append(topics, q.opts.PoisonTopic)
	}
	if q.opts.Forwarder {
		topics = append(topics, forwarderTopic)
	}
	for _, topic := range topics {
		if err := q.subscriber.SubscribeInitialize(topic); err != nil {
			return fmt.Errorf("events: initialize topic %s: %w", topic, err)
		}
	}
	return nil
}

// NewMessage JSON-encodes payload into a message with a fresh UUID.
func NewMessage(payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("events: encode payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set("content-type", "application/json")
	return msg, nil
}

// PublishTx publishes payload to topic as part of tx. The message becomes
// visible to consumers only if tx commits.
func (q *EventBus) PublishTx(ctx context.Context, tx *sql.Tx, topic string, payload any) error {
	msg, err := NewMessage(payload)
	if err != nil {
		return err
	}
	injectTrace(ctx, msg)

	pub, err := watermillsql.NewPublisher(tx, watermillsql.PublisherConfig{
		SchemaAdapter: watermillsql.DefaultPostgreSQLSchema{},
	}, q.wlog)
	if err != nil {
		return fmt.Errorf("events: new tx publisher: %w", err)
	}
	if err := q.envelope(pub).Publish(topic, msg); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s in tx: %w", topic, err)
	}
	return nil
}

// Publish sends msgs to topic outside any caller transaction.
func (q *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	injectTrace(ctx, msgs...)
	if err := q.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

func injectTrace(ctx context.Context, msgs ...*message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, msg := range msgs {
		for k, v := range carrier {
			msg.Metadata.Set(k, v)
		}
	}
}

// Ping checks the bus database connection.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the router and forwarder, waits up to 30s for in-flight
// handlers, then closes publishers and the pool.
func (q *EventBus) Close() error {
	var errs []error
	if q.router != nil {
		errs = append(errs, q.router.Close())
	}
	if q.fwd != nil {
		errs = append(errs, q.fwd.Close())
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers")
	}

	errs = append(errs, q.subscriber.Close(), q.publisher.Close(), q.db.Close())
	return errors.Join(errs...)
}
