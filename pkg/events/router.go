package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// HandlerFunc processes one message. ctx carries the publisher's trace.
// Returning an error triggers retries, then the poison topic if configured.
type HandlerFunc func(ctx context.Context, msg *message.Message) error

func (q *EventBus) initRouter() error {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: shutdownTimeout}, q.wlog)
	if err != nil {
		return fmt.Errorf("events: new router: %w", err)
	}
	mws, err := q.middlewares(q.direct)
	if err != nil {
		return err
	}
	router.AddMiddleware(mws...)
	q.router = router
	return nil
}

// middlewares is the consume-side stack, outermost first: restore trace,
// divert to poison topic, retry with backoff, turn panics into errors.
func (q *EventBus) middlewares(poisonPub message.Publisher) ([]message.HandlerMiddleware, error) {
	mws := []message.HandlerMiddleware{extractTrace}
	if q.opts.PoisonTopic != "" {
		poison, err := middleware.PoisonQueue(poisonPub, q.opts.PoisonTopic)
		if err != nil {
			return nil, fmt.Errorf("events: poison queue: %w", err)
		}
		mws = append(mws, poison)
	}
	mws = append(mws,
		middleware.Retry{
			MaxRetries:      q.opts.MaxRetries,
			InitialInterval: q.opts.RetryInterval,
			Multiplier:      2,
			Logger:          q.wlog,
		}.Middleware,
		middleware.Recoverer,
	)
	return mws, nil
}

// extractTrace restores the publisher's trace context onto the message.
func extractTrace(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		carrier := propagation.MapCarrier{}
		for k, v := range msg.Metadata {
			carrier[k] = v
		}
		msg.SetContext(otel.GetTextMapPropagator().Extract(msg.Context(), carrier))
		return h(msg)
	}
}

// Handle registers handler for topic under a unique name. Call before Run.
func (q *EventBus) Handle(name, topic string, handler HandlerFunc) {
	q.router.AddNoPublisherHandler(name, topic, q.subscriber, func(msg *message.Message) error {
		return handler(msg.Context(), msg)
	})
}

// Run consumes every registered topic until ctx is cancelled or Close is called.
func (q *EventBus) Run(ctx context.Context) error {
	q.wg.Add(1)
	defer q.wg.Done()
	if err := q.router.Run(ctx); err != nil {
		return fmt.Errorf("events: router: %w", err)
	}
	return nil
}

// Running is closed once Run has started every handler.
func (q *EventBus) Running() <-chan struct{} {
	return q.router.Running()
}
