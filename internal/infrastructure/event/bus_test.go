package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stockEvent struct {
	shared.BaseDomainEvent
	ItemID string `json:"item_id"`
}

func newStockEvent(eventType string) *stockEvent {
	return &stockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "StockRecord", uuid.New()),
		ItemID:          "itm-0042",
	}
}

// recordingHandler collects delivered events and optionally fails.
type recordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	delivered  []shared.DomainEvent
	failWith   error
}

func subscribeRecorder(bus *InMemoryEventBus, eventTypes ...string) *recordingHandler {
	h := &recordingHandler{eventTypes: eventTypes}
	bus.Subscribe(h, eventTypes...)
	return h
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.delivered = append(h.delivered, event)
	return h.failWith
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) deliveredEvents() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.delivered...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	t.Run("single handler", func(t *testing.T) {
		handler := subscribeRecorder(bus, "StockReserved")

		reserved := newStockEvent("StockReserved")
		require.NoError(t, bus.Publish(context.Background(), reserved))

		delivered := handler.deliveredEvents()
		require.Len(t, delivered, 1)
		assert.Equal(t, reserved, delivered[0])
	})

	t.Run("batch of events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := subscribeRecorder(bus, "StockReduced")

		first := newStockEvent("StockReduced")
		second := newStockEvent("StockReduced")
		require.NoError(t, bus.Publish(context.Background(), first, second))

		assert.Len(t, handler.deliveredEvents(), 2)
	})

	t.Run("fan-out to multiple handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		alerting := subscribeRecorder(bus, "StockBelowReorderPoint")
		audit := subscribeRecorder(bus, "StockBelowReorderPoint")

		require.NoError(t, bus.Publish(context.Background(), newStockEvent("StockBelowReorderPoint")))

		assert.Len(t, alerting.deliveredEvents(), 1)
		assert.Len(t, audit.deliveredEvents(), 1)
	})

	t.Run("wildcard handler sees every event", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		wildcard := subscribeRecorder(bus)

		require.NoError(t, bus.Publish(context.Background(), newStockEvent("StockRestocked")))

		assert.Len(t, wildcard.deliveredEvents(), 1)
	})

	t.Run("no subscriber for event type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := subscribeRecorder(bus, "StockReleased")

		require.NoError(t, bus.Publish(context.Background(), newStockEvent("StockReserved")))

		assert.Empty(t, handler.deliveredEvents())
	})
}

func TestInMemoryEventBus_HandlerErrorDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := subscribeRecorder(bus, "StockReserved")
	failing.failWith = errors.New("alert webhook unreachable")
	healthy := subscribeRecorder(bus, "StockReserved")

	err := bus.Publish(context.Background(), newStockEvent("StockReserved"))

	// Delivery errors are logged, never propagated to the publisher.
	require.NoError(t, err)
	assert.Len(t, failing.deliveredEvents(), 1)
	assert.Len(t, healthy.deliveredEvents(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := subscribeRecorder(bus, "StockReserved")

	_ = bus.Publish(context.Background(), newStockEvent("StockReserved"))
	require.Len(t, handler.deliveredEvents(), 1)

	bus.Unsubscribe(handler)

	_ = bus.Publish(context.Background(), newStockEvent("StockReserved"))
	assert.Len(t, handler.deliveredEvents(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	require.NoError(t, bus.Start(context.Background()))

	handler := subscribeRecorder(bus, "StockReserved")
	require.NoError(t, bus.Publish(context.Background(), newStockEvent("StockReserved")))
	assert.Len(t, handler.deliveredEvents(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
}
