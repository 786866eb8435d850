package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopcore/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

type reorderTestEvent struct {
	shared.BaseDomainEvent
	ItemID uuid.UUID
}

func newReorderTestEvent() *reorderTestEvent {
	return &reorderTestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			"StockBelowReorderPoint",
			"StockRecord",
			uuid.New(),
		),
		ItemID: uuid.New(),
	}
}

// memoryStore returns an in-memory idempotency store closed at test end.
func memoryStore(t *testing.T) shared.IdempotencyStore {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIdempotentHandler_FirstDelivery(t *testing.T) {
	inner := new(MockEventHandler)
	event := newReorderTestEvent()
	inner.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(inner, memoryStore(t), zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), event))

	inner.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
	assert.Equal(t, int64(0), handler.metrics.EventsDuplicate.Load())
}

func TestIdempotentHandler_Redelivery(t *testing.T) {
	inner := new(MockEventHandler)
	event := newReorderTestEvent()
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(inner, memoryStore(t), zap.NewNop())

	// Same event delivered three times reaches the inner handler once.
	for i := 0; i < 3; i++ {
		require.NoError(t, handler.Handle(context.Background(), event))
	}

	inner.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
	assert.Equal(t, int64(2), handler.metrics.EventsDuplicate.Load())
}

func TestIdempotentHandler_InnerHandlerError(t *testing.T) {
	inner := new(MockEventHandler)
	event := newReorderTestEvent()
	innerErr := errors.New("notifier unavailable")
	inner.On("Handle", mock.Anything, event).Return(innerErr)

	handler := NewIdempotentHandler(inner, memoryStore(t), zap.NewNop())

	err := handler.Handle(context.Background(), event)
	require.ErrorIs(t, err, innerErr)

	assert.Equal(t, int64(0), handler.metrics.EventsProcessed.Load())
	assert.Equal(t, int64(1), handler.metrics.EventsFailed.Load())
}

func TestIdempotentHandler_StoreFailureFallsOpen(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := newReorderTestEvent()

	store.On("MarkProcessed", mock.Anything, event.EventID().String(), mock.Anything).
		Return(false, errors.New("redis down"))
	// Delivery proceeds when the store cannot answer.
	inner.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), event))
	store.AssertExpectations(t)
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	inner := new(MockEventHandler)
	event := newReorderTestEvent()
	inner.On("Handle", mock.Anything, event).Return(nil).Times(3)

	cfg := shared.DefaultIdempotencyConfig()
	cfg.Enabled = false

	handler := NewIdempotentHandler(inner, memoryStore(t), zap.NewNop(),
		WithIdempotencyConfig(cfg),
	)

	for i := 0; i < 3; i++ {
		require.NoError(t, handler.Handle(context.Background(), event))
	}

	inner.AssertExpectations(t)
	assert.Equal(t, int64(0), handler.metrics.EventsProcessed.Load())
	assert.Equal(t, int64(0), handler.metrics.EventsDuplicate.Load())
}

func TestIdempotentHandler_EventTypesPassThrough(t *testing.T) {
	inner := new(MockEventHandler)
	want := []string{"StockReserved", "StockBelowReorderPoint"}
	inner.On("EventTypes").Return(want)

	handler := NewIdempotentHandler(inner, memoryStore(t), zap.NewNop())

	assert.Equal(t, want, handler.EventTypes())
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_CustomTTL(t *testing.T) {
	inner := new(MockEventHandler)
	event := newReorderTestEvent()
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(inner, memoryStore(t), zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{TTL: time.Hour, Enabled: true}),
	)

	require.NoError(t, handler.Handle(context.Background(), event))
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_GetWrappedHandler(t *testing.T) {
	inner := new(MockEventHandler)
	handler := NewIdempotentHandler(inner, memoryStore(t), zap.NewNop())
	assert.Equal(t, inner, handler.GetWrappedHandler())
}

func TestIdempotentHandler_SharedMetrics(t *testing.T) {
	store := memoryStore(t)
	metrics := &IdempotencyMetrics{}

	innerA := new(MockEventHandler)
	innerB := new(MockEventHandler)
	eventA := newReorderTestEvent()
	eventB := newReorderTestEvent()
	innerA.On("Handle", mock.Anything, eventA).Return(nil)
	innerB.On("Handle", mock.Anything, eventB).Return(nil)

	handlerA := NewIdempotentHandler(innerA, store, zap.NewNop(), WithIdempotencyMetrics(metrics))
	handlerB := NewIdempotentHandler(innerB, store, zap.NewNop(), WithIdempotencyMetrics(metrics))

	require.NoError(t, handlerA.Handle(context.Background(), eventA))
	require.NoError(t, handlerB.Handle(context.Background(), eventB))

	assert.Equal(t, int64(2), metrics.EventsProcessed.Load())
	innerA.AssertExpectations(t)
	innerB.AssertExpectations(t)
}

func TestWrapHandlersWithIdempotency(t *testing.T) {
	handlers := []shared.EventHandler{new(MockEventHandler), new(MockEventHandler)}

	wrapped := WrapHandlersWithIdempotency(handlers, memoryStore(t), zap.NewNop())

	require.Len(t, wrapped, 2)
	for i, h := range wrapped {
		_, ok := h.(*IdempotentHandler)
		assert.True(t, ok, "handler %d not wrapped", i)
	}
}

func TestIdempotencyMetrics_Stats(t *testing.T) {
	metrics := &IdempotencyMetrics{}
	metrics.EventsProcessed.Add(10)
	metrics.EventsDuplicate.Add(5)
	metrics.EventsFailed.Add(2)

	stats := metrics.Stats()
	assert.Equal(t, int64(10), stats.EventsProcessed)
	assert.Equal(t, int64(5), stats.EventsDuplicate)
	assert.Equal(t, int64(2), stats.EventsFailed)
}

func TestIdempotentHandler_ConcurrentRedelivery(t *testing.T) {
	inner := new(MockEventHandler)
	event := newReorderTestEvent()
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(inner, memoryStore(t), zap.NewNop())

	const workers = 50
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			errCh <- handler.Handle(context.Background(), event)
		}()
	}
	for i := 0; i < workers; i++ {
		assert.NoError(t, <-errCh)
	}

	inner.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.metrics.EventsProcessed.Load())
	assert.Equal(t, int64(workers-1), handler.metrics.EventsDuplicate.Load())
}
