package payments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carpetline/orderflow/internal/orders"
)

// Orders is the slice of the order saga the processor drives.
type Orders interface {
	Get(ctx context.Context, orderID string) (*orders.Order, error)
	MarkPaid(ctx context.Context, orderID string) (*orders.Order, error)
	SaveDirect(ctx context.Context, order *orders.Order) (*orders.Order, error)
}

// Notifier publishes payment events to the bus; never returns an error.
type Notifier interface {
	PaymentSucceeded(orderID string, amount float64)
}

// Processor captures and refunds payments. Record and ledger writes are
// primary path; the bus publish is the only best-effort step here.
type Processor struct {
	Store  Store
	Ledger Ledger
	Orders Orders
	Notify Notifier
	Log    *zap.Logger
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Status *Status
	Method *string
	Amount *float64
}

// Submit creates a PENDING record. CARD settles immediately: the record
// moves to SUCCESS, the order is marked paid and a ledger row is written.
// Other methods stay PENDING until a later Update completes the flow.
func (p *Processor) Submit(ctx context.Context, orderID, method string, amount float64) (*Record, error) {
	rec := &Record{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Amount:    amount,
		Method:    method,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.Store.Save(ctx, rec); err != nil {
		return nil, err
	}

	if strings.EqualFold(method, "CARD") {
		if err := p.complete(ctx, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Refund requires a settled SUCCESS payment. It writes a new record and a
// ledger row with the negated amount and moves the order to REFUNDED via
// SaveDirect. Refund alone never restocks; restocking belongs to Cancel.
func (p *Processor) Refund(ctx context.Context, orderID, reason string) (*Record, error) {
	paid, err := p.Store.LatestByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if paid.Status != StatusSuccess {
		return nil, &NotRefundableError{OrderID: orderID, Status: paid.Status}
	}

	now := time.Now().UTC()
	refund := &Record{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		Amount:      -paid.Amount,
		Method:      paid.Method,
		Status:      StatusRefundSuccess,
		CreatedAt:   now,
		CompletedAt: &now,
	}
	if err := p.Store.Save(ctx, refund); err != nil {
		return nil, err
	}

	order, err := p.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Status = orders.StatusRefunded
	if _, err := p.Orders.SaveDirect(ctx, order); err != nil {
		return nil, err
	}

	if err := p.Ledger.Append(ctx, LedgerEntry{
		OrderID:    orderID,
		AmountUSD:  refund.Amount,
		Method:     refund.Method,
		Status:     StatusRefundSuccess,
		RecordedAt: now,
	}); err != nil {
		return nil, err
	}

	p.Log.Info("payment refunded",
		zap.String("order_id", orderID), zap.Float64("amount", refund.Amount), zap.String("reason", reason))
	return refund, nil
}

// Update partially updates the latest record. A transition to SUCCESS runs
// the same completion side effects as a CARD Submit; FAILED only stamps the
// completion time.
func (p *Processor) Update(ctx context.Context, orderID string, req UpdateRequest) (*Record, error) {
	rec, err := p.Store.LatestByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if req.Method != nil {
		rec.Method = *req.Method
	}
	if req.Amount != nil {
		rec.Amount = *req.Amount
	}

	switch {
	case req.Status != nil && *req.Status == StatusSuccess && rec.Status != StatusSuccess:
		if err := p.complete(ctx, rec); err != nil {
			return nil, err
		}
	case req.Status != nil && *req.Status == StatusFailed:
		now := time.Now().UTC()
		rec.Status = StatusFailed
		rec.CompletedAt = &now
		if err := p.Store.Save(ctx, rec); err != nil {
			return nil, err
		}
	default:
		if req.Status != nil {
			rec.Status = *req.Status
		}
		if err := p.Store.Save(ctx, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Status returns the latest record for the order (checkout pages poll this).
func (p *Processor) Status(ctx context.Context, orderID string) (*Record, error) {
	return p.Store.LatestByOrder(ctx, orderID)
}

// complete settles rec: SUCCESS + completion time, order marked paid,
// best-effort bus publish, immutable ledger row.
func (p *Processor) complete(ctx context.Context, rec *Record) error {
	now := time.Now().UTC()
	rec.Status = StatusSuccess
	rec.CompletedAt = &now
	if err := p.Store.Save(ctx, rec); err != nil {
		return err
	}
	if _, err := p.Orders.MarkPaid(ctx, rec.OrderID); err != nil {
		return err
	}
	p.Notify.PaymentSucceeded(rec.OrderID, rec.Amount)
	return p.Ledger.Append(ctx, LedgerEntry{
		OrderID:    rec.OrderID,
		AmountUSD:  rec.Amount,
		Method:     rec.Method,
		Status:     StatusSuccess,
		RecordedAt: now,
	})
}
