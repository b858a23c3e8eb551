package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestNewEvent(t *testing.T) {
	type payload struct {
		ProductID int `json:"product_id"`
	}
	ev, err := NewEvent("omnishop.cart.updated", "sess-1", "cart", "storefront", payload{ProductID: 3})
	require.NoError(t, err)

	assert.Len(t, ev.ID, 36)
	assert.Equal(t, "sess-1", ev.Key)
	assert.Equal(t, "cart", ev.Subject)
	assert.Empty(t, ev.Op)
	assert.WithinDuration(t, time.Now().UTC(), ev.OccurredAt, 2*time.Second)

	var got payload
	require.NoError(t, ev.Decode(&got))
	assert.Equal(t, 3, got.ProductID)

	_, err = NewEvent("bad", "x", "y", "z", make(chan int))
	assert.Error(t, err)
}

func TestEvent_Message(t *testing.T) {
	ev, err := NewEvent("omnishop.wishlist.updated", "sess-2", "wishlist", "storefront", map[string]int{"product_id": 4})
	require.NoError(t, err)
	ev.WithCorrelationID("corr").WithOp("added")

	msg, err := ev.message("omnishop.wishlist.updated")
	require.NoError(t, err)
	assert.Equal(t, "omnishop.wishlist.updated", msg.Topic)
	assert.Equal(t, "sess-2", string(msg.Key))
	assert.Equal(t, ev.OccurredAt, msg.Time)
	assert.Equal(t, "wishlist", header(msg, "subject"))
	assert.Equal(t, "added", header(msg, "op"))
	assert.Equal(t, "corr", header(msg, "correlation_id"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "added", body["op"])
	assert.Equal(t, "sess-2", body["key"])
	assert.Equal(t, float64(4), body["data"].(map[string]any)["product_id"])
}

func TestEvent_MessageOmitsEmptyHeaders(t *testing.T) {
	ev, err := NewEvent("omnishop.cart.updated", "sess-3", "cart", "storefront", nil)
	require.NoError(t, err)

	msg, err := ev.message("omnishop.cart.updated")
	require.NoError(t, err)
	assert.Empty(t, header(msg, "op"))
	assert.Empty(t, header(msg, "correlation_id"))
	assert.Equal(t, "omnishop.cart.updated", header(msg, "event_type"))
}

func TestProducer_PublishSetsKeyAndHeaders(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	w := &fakeWriter{}
	p := newProducer(w, []string{"localhost:9092"}, discard())

	ev, err := NewEvent("cart.updated", "sess-1", "cart", "storefront", map[string]int{"quantity": 2})
	require.NoError(t, err)
	ev.WithCorrelationID("corr-7").WithOp("added")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	before := testutil.ToFloat64(producerMessagesPublished.WithLabelValues("omnishop.test"))
	require.NoError(t, p.Publish(ctx, "omnishop.test", ev))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "sess-1", string(msg.Key))
	assert.Equal(t, "cart.updated", header(msg, "event_type"))
	assert.Equal(t, "corr-7", header(msg, "correlation_id"))
	assert.Equal(t, "added", header(msg, "op"))
	assert.Contains(t, header(msg, "traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")
	assert.Equal(t, before+1, testutil.ToFloat64(producerMessagesPublished.WithLabelValues("omnishop.test")))
}

func TestProducer_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newProducer(w, nil, discard())

	ev, err := NewEvent("cart.updated", "sess-1", "cart", "storefront", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), "omnishop.fail", ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "omnishop.fail")
	assert.Equal(t, float64(1), testutil.ToFloat64(producerPublishErrors.WithLabelValues("omnishop.fail")))
}

func TestProducer_PingWithoutBrokers(t *testing.T) {
	p := newProducer(&fakeWriter{}, nil, discard())
	assert.Error(t, p.Ping(context.Background()))
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newProducer(w, nil, discard()).Close())
	assert.True(t, w.closed)
}
