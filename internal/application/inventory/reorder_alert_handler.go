package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shopcore/backend/internal/domain/inventory"
	"github.com/shopcore/backend/internal/domain/shared"
)

// ReorderAlertHandler handles StockBelowReorderPoint events and
// forwards them to a notifier so purchasing can act.
type ReorderAlertHandler struct {
	logger   *zap.Logger
	notifier ReorderNotifier
}

// ReorderNotifier is the interface for delivering reorder alerts.
// Implementations can support different channels (in-app, email, webhook).
type ReorderNotifier interface {
	// SendAlert sends a reorder alert notification
	SendAlert(ctx context.Context, alert ReorderAlert) error
}

// ReorderAlert describes one record that needs reordering
type ReorderAlert struct {
	StockRecordID   string `json:"stock_record_id"`
	ItemID          string `json:"item_id"`
	SKU             string `json:"sku"`
	Available       int64  `json:"available"`
	ReorderPoint    int64  `json:"reorder_point"`
	ReorderQuantity int64  `json:"reorder_quantity"`
}

// NewReorderAlertHandler creates a new handler for reorder point events
func NewReorderAlertHandler(logger *zap.Logger) *ReorderAlertHandler {
	return &ReorderAlertHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *ReorderAlertHandler) WithNotifier(notifier ReorderNotifier) *ReorderAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *ReorderAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowReorderPoint}
}

// Handle processes a StockBelowReorderPointEvent
func (h *ReorderAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	reorderEvent, ok := event.(*inventory.StockBelowReorderPointEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockBelowReorderPoint),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowReorderPoint, event.EventType())
	}

	h.logger.Warn("stock below reorder point",
		zap.String("stock_record_id", reorderEvent.StockRecordID.String()),
		zap.String("item_id", reorderEvent.ItemID.String()),
		zap.String("sku", reorderEvent.SKU),
		zap.Int64("available", reorderEvent.Available),
		zap.Int64("reorder_point", reorderEvent.ReorderPoint),
		zap.Int64("reorder_quantity", reorderEvent.ReorderQuantity),
	)

	if h.notifier == nil {
		return nil
	}

	alert := ReorderAlert{
		StockRecordID:   reorderEvent.StockRecordID.String(),
		ItemID:          reorderEvent.ItemID.String(),
		SKU:             reorderEvent.SKU,
		Available:       reorderEvent.Available,
		ReorderPoint:    reorderEvent.ReorderPoint,
		ReorderQuantity: reorderEvent.ReorderQuantity,
	}

	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		// Notification failure must not fail the event handling
		h.logger.Error("failed to send reorder alert",
			zap.String("sku", alert.SKU),
			zap.Error(err),
		)
	}

	return nil
}

// Ensure ReorderAlertHandler implements shared.EventHandler
var _ shared.EventHandler = (*ReorderAlertHandler)(nil)

// LoggingReorderNotifier logs alerts instead of delivering them.
// Useful for development and testing.
type LoggingReorderNotifier struct {
	logger *zap.Logger
}

// NewLoggingReorderNotifier creates a new logging notifier
func NewLoggingReorderNotifier(logger *zap.Logger) *LoggingReorderNotifier {
	return &LoggingReorderNotifier{
		logger: logger,
	}
}

// SendAlert logs the reorder alert
func (n *LoggingReorderNotifier) SendAlert(ctx context.Context, alert ReorderAlert) error {
	n.logger.Warn("REORDER ALERT",
		zap.String("sku", alert.SKU),
		zap.String("item_id", alert.ItemID),
		zap.Int64("available", alert.Available),
		zap.Int64("reorder_point", alert.ReorderPoint),
		zap.Int64("reorder_quantity", alert.ReorderQuantity),
	)
	return nil
}

// Ensure LoggingReorderNotifier implements ReorderNotifier
var _ ReorderNotifier = (*LoggingReorderNotifier)(nil)
