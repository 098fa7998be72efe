package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carpetline/orderflow/internal/stock"
	"github.com/carpetline/orderflow/internal/timeline"
)

// Timeline is the append-only per-order event log. Appends on the saga's
// paths are best-effort: a failed append never rolls back the transition.
type Timeline interface {
	Append(ctx context.Context, orderID, eventType string, payload any) error
	ListByOrder(ctx context.Context, orderID string, limit int) ([]timeline.Event, error)
}

// Recorder writes expiring reservation facts (audit only).
type Recorder interface {
	Record(ctx context.Context, orderID, sku string, qty int) error
}

// InventoryNotifier publishes to the bus; it never returns an error.
type InventoryNotifier interface {
	InventoryReserved(orderID, sku string, qty int)
	InventoryReleased(orderID, sku string, qty int)
}

// ExternalReleaser mirrors releases to a remote inventory service.
type ExternalReleaser interface {
	Release(ctx context.Context, sku string, qty int) error
}

// Saga coordinates the order lifecycle against the stock ledger, order
// store, event timeline and notification bus. There is no transaction
// spanning those stores: the ledger and the order row are the primary path,
// everything else is best-effort with its own failure tolerance.
type Saga struct {
	Ledger   stock.Ledger
	Store    Store
	Timeline Timeline
	Recorder Recorder
	Notify   InventoryNotifier
	External ExternalReleaser // optional; nil disables the remote mirror
	Log      *zap.Logger
}

// Create reserves stock line by line, in caller order. On the first failed
// line every prior reservation is released (same order) and the whole call
// fails with InsufficientStockError; a failed compensating release is logged
// and must never mask the original failure.
func (s *Saga) Create(ctx context.Context, customerEmail string, items []LineItem) (*Order, error) {
	var reserved []LineItem
	for _, line := range items {
		ok, err := s.Ledger.Reserve(ctx, line.SKU, line.Quantity)
		if err == nil && ok {
			reserved = append(reserved, line)
			continue
		}
		s.compensate(ctx, reserved)
		if err != nil {
			return nil, err
		}
		avail := -1
		if a, aerr := s.Ledger.Available(ctx, line.SKU); aerr == nil {
			avail = a
		}
		return nil, &InsufficientStockError{SKU: line.SKU, Requested: line.Quantity, Available: avail}
	}

	var total float64
	for _, line := range items {
		total += float64(line.Quantity) * line.Price
	}

	now := time.Now().UTC()
	order := &Order{
		OrderID:       "ORD-" + uuid.NewString(),
		CustomerEmail: customerEmail,
		Items:         items,
		TotalAmount:   total,
		Status:        StatusReserved,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Store.Save(ctx, order); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, order.OrderID, EventOrderCreated, map[string]string{"email": customerEmail})
	for _, line := range items {
		s.appendEvent(ctx, order.OrderID, EventInventoryReserved,
			map[string]any{"sku": line.SKU, "qty": line.Quantity})
		if err := s.Recorder.Record(ctx, order.OrderID, line.SKU, line.Quantity); err != nil {
			s.Log.Warn("reservation record failed",
				zap.String("order_id", order.OrderID), zap.String("sku", line.SKU), zap.Error(err))
		}
		s.Notify.InventoryReserved(order.OrderID, line.SKU, line.Quantity)
	}
	return order, nil
}

func (s *Saga) Get(ctx context.Context, orderID string) (*Order, error) {
	return s.Store.GetByOrderID(ctx, orderID)
}

// Cancel restocks every line and moves the order to CANCELLED. Orders that
// cannot transition (already CANCELLED / REFUNDED) are returned unchanged.
func (s *Saga) Cancel(ctx context.Context, orderID string) (*Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, StatusCancelled) {
		return order, nil
	}

	for _, line := range order.Items {
		// a failed release here is a stock-accounting bug, not a request failure
		if ok, rerr := s.Ledger.Release(ctx, line.SKU, line.Quantity); rerr != nil || !ok {
			s.Log.Warn("restock failed on cancel",
				zap.String("order_id", orderID), zap.String("sku", line.SKU), zap.Error(rerr))
		}
		if s.External != nil {
			if rerr := s.External.Release(ctx, line.SKU, line.Quantity); rerr != nil {
				s.Log.Warn("external release failed",
					zap.String("order_id", orderID), zap.String("sku", line.SKU), zap.Error(rerr))
			}
		}
	}

	s.appendEvent(ctx, orderID, EventInventoryReleased, nil)
	for _, line := range order.Items {
		s.Notify.InventoryReleased(orderID, line.SKU, line.Quantity)
	}

	order.Status = StatusCancelled
	order.UpdatedAt = time.Now().UTC()
	if err := s.Store.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// MarkPaid is idempotent: an order already PAID is returned unchanged. The
// transition is fed both synchronously from the payment flow and from the
// at-least-once bus consumer, so duplicates are expected.
func (s *Saga) MarkPaid(ctx context.Context, orderID string) (*Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == StatusPaid {
		s.Log.Info("order already PAID, skipping duplicate transition", zap.String("order_id", orderID))
		return order, nil
	}
	if !CanTransition(order.Status, StatusPaid) {
		return nil, &InvalidStateError{OrderID: orderID, Actual: order.Status, Expected: string(StatusReserved)}
	}

	order.Status = StatusPaid
	order.UpdatedAt = time.Now().UTC()
	s.appendEvent(ctx, orderID, EventPaymentSucceeded, nil)
	if err := s.Store.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Saga) UpdateShippingAddress(ctx context.Context, orderID, requesterEmail string, address Address) (*Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerEmail != requesterEmail {
		return nil, &UnauthorizedError{Requester: requesterEmail, Resource: "order " + orderID}
	}
	if order.Status != StatusReserved && order.Status != StatusPaid {
		return nil, &InvalidStateError{OrderID: orderID, Actual: order.Status, Expected: "RESERVED or PAID"}
	}

	order.ShippingAddress = &address
	order.UpdatedAt = time.Now().UTC()
	s.appendEvent(ctx, orderID, EventShippingAddressUpdated,
		map[string]string{"line1": address.Line1, "city": address.City, "country": address.Country})
	if err := s.Store.Save(ctx, order); err != nil {
		return nil, err
	}
	s.Log.Info("shipping address updated",
		zap.String("order_id", orderID), zap.String("requester", requesterEmail))
	return order, nil
}

// SaveDirect persists a status another component computed itself (the
// payment processor's REFUNDED transition). Always stamps UpdatedAt.
func (s *Saga) SaveDirect(ctx context.Context, order *Order) (*Order, error) {
	order.UpdatedAt = time.Now().UTC()
	if err := s.Store.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// History pages a customer's orders, newest first.
func (s *Saga) History(ctx context.Context, customerEmail string, page, size int) ([]Order, error) {
	return s.Store.ListByCustomer(ctx, customerEmail, page, size)
}

// Events reads the order's timeline, newest first.
func (s *Saga) Events(ctx context.Context, orderID string, limit int) ([]timeline.Event, error) {
	return s.Timeline.ListByOrder(ctx, orderID, limit)
}

// compensate releases already-reserved lines in their original order.
// Failures are logged and swallowed so they never mask the cause.
func (s *Saga) compensate(ctx context.Context, reserved []LineItem) {
	for _, r := range reserved {
		if ok, err := s.Ledger.Release(ctx, r.SKU, r.Quantity); err != nil || !ok {
			s.Log.Warn("compensating release failed",
				zap.String("sku", r.SKU), zap.Int("qty", r.Quantity), zap.Error(err))
		}
	}
}

func (s *Saga) appendEvent(ctx context.Context, orderID, eventType string, payload any) {
	if err := s.Timeline.Append(ctx, orderID, eventType, payload); err != nil {
		s.Log.Warn("timeline append failed",
			zap.String("order_id", orderID), zap.String("type", eventType), zap.Error(err))
	}
}
