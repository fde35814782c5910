package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/itemstore/pkg/logger"
)

func setupTracer() *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp
}

// testBus is an EventBus with only the parts the consume-side stack needs.
func testBus(opts Options) *EventBus {
	return &EventBus{opts: opts.withDefaults(), log: logger.Discard(), wlog: watermill.NopLogger{}}
}

// chain applies mws to h with mws[0] outermost, as the router does.
func chain(h message.HandlerFunc, mws []message.HandlerMiddleware) message.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func noPublish(fn func(*message.Message) error) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		return nil, fn(msg)
	}
}

func TestOptions_Defaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.MaxRetries != defaultMaxRetries || o.RetryInterval != defaultRetryInterval {
		t.Fatalf("unexpected defaults: %+v", o)
	}
	o = Options{MaxRetries: 7, RetryInterval: time.Millisecond}.withDefaults()
	if o.MaxRetries != 7 || o.RetryInterval != time.Millisecond {
		t.Fatalf("explicit values overwritten: %+v", o)
	}
}

func TestMiddlewares_RetriesUntilSuccess(t *testing.T) {
	q := testBus(Options{MaxRetries: 3, RetryInterval: time.Millisecond})
	mws, err := q.middlewares(nil)
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	h := chain(noPublish(func(*message.Message) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}), mws)

	if _, err := h(message.NewMessage("id", nil)); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestMiddlewares_ExhaustedRetriesReturnError(t *testing.T) {
	q := testBus(Options{MaxRetries: 2, RetryInterval: time.Millisecond})
	mws, err := q.middlewares(nil)
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	h := chain(noPublish(func(*message.Message) error {
		calls++
		return errors.New("permanent")
	}), mws)

	if _, err := h(message.NewMessage("id", nil)); err == nil {
		t.Fatal("expected error after retries")
	}
	if calls != 3 {
		t.Errorf("expected 1 attempt + 2 retries, got %d", calls)
	}
}

func TestMiddlewares_PanicIsRecovered(t *testing.T) {
	q := testBus(Options{MaxRetries: 1, RetryInterval: time.Millisecond})
	mws, err := q.middlewares(nil)
	if err != nil {
		t.Fatal(err)
	}
	h := chain(noPublish(func(*message.Message) error { panic("boom") }), mws)

	if _, err := h(message.NewMessage("id", nil)); err == nil {
		t.Fatal("expected panic to surface as error")
	}
}

func TestMiddlewares_PoisonTopicReceivesFailures(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1}, watermill.NopLogger{})
	defer pubsub.Close()
	poisoned, err := pubsub.Subscribe(context.Background(), "item.poison")
	if err != nil {
		t.Fatal(err)
	}

	q := testBus(Options{MaxRetries: 1, RetryInterval: time.Millisecond, PoisonTopic: "item.poison"})
	mws, err := q.middlewares(pubsub)
	if err != nil {
		t.Fatal(err)
	}
	h := chain(noPublish(func(*message.Message) error { return errors.New("bad payload") }), mws)

	if _, err := h(message.NewMessage("msg-1", []byte(`{}`))); err != nil {
		t.Fatalf("poisoned message should be acked, got %v", err)
	}

	select {
	case msg := <-poisoned:
		if msg.UUID != "msg-1" {
			t.Errorf("unexpected poisoned message %s", msg.UUID)
		}
		if msg.Metadata.Get(middleware.ReasonForPoisonedKey) == "" {
			t.Error("expected poison reason metadata")
		}
		msg.Ack()
	case <-time.After(5 * time.Second):
		t.Fatal("poisoned message not published")
	}
}

func TestExtractTrace_RestoresPublisherSpan(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	ctx, span := otel.Tracer("test").Start(context.Background(), "publish")
	defer span.End()
	want := span.SpanContext().TraceID()

	msg := message.NewMessage("id", nil)
	injectTrace(ctx, msg)

	var got trace.TraceID
	h := extractTrace(noPublish(func(m *message.Message) error {
		got = trace.SpanContextFromContext(m.Context()).TraceID()
		return nil
	}))
	if _, err := h(msg); err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("trace ID mismatch: want %s, got %s", want, got)
	}
}

func TestStartForwarder_NonForwarderMode(t *testing.T) {
	if err := testBus(Options{}).StartForwarder(context.Background()); err == nil {
		t.Fatal("expected error for non-forwarder EventBus")
	}
}

func TestEnvelope_OnlyInForwarderMode(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubsub.Close()

	if got := testBus(Options{}).envelope(pubsub); got != message.Publisher(pubsub) {
		t.Error("expected direct publisher without forwarder")
	}
	if got := testBus(Options{Forwarder: true}).envelope(pubsub); got == message.Publisher(pubsub) {
		t.Error("expected forwarder-wrapped publisher")
	}
}

func TestNewEventBus_RejectsNonPostgresURL(t *testing.T) {
	for _, url := range []string{"sqlite://items.db", "redis://localhost:6379/0", ""} {
		if _, err := NewEventBus(Options{DatabaseURL: url}, logger.Discard()); !errors.Is(err, ErrNotPostgres) {
			t.Errorf("%q: expected ErrNotPostgres, got %v", url, err)
		}
	}
}

func TestNewMessage_EncodesPayload(t *testing.T) {
	payload := struct {
		ItemID string  `json:"item_id"`
		Price  float64 `json:"price"`
	}{ItemID: "c8a4f6b2-0d1e-4e57-9a1b-9a0e6f1d2c3b", Price: 450}

	msg, err := NewMessage(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.UUID == "" {
		t.Error("expected message UUID to be set")
	}
	if got := msg.Metadata.Get("content-type"); got != "application/json" {
		t.Errorf("expected json content-type, got %q", got)
	}
	var decoded map[string]any
	if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if decoded["price"] != float64(450) {
		t.Errorf("expected price 450, got %v", decoded["price"])
	}
}

func TestNewMessage_UnencodablePayload(t *testing.T) {
	if _, err := NewMessage(make(chan int)); err == nil {
		t.Fatal("expected error for channel payload")
	}
}
