package payments

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carpetline/orderflow/internal/orders"
)

// ---- in-memory doubles ----

type fakeStore struct {
	mu   sync.Mutex
	byID map[string]Record
	seq  []string // insertion order; latest-by-order = last inserted for it
}

func newFakeStore() *fakeStore { return &fakeStore{byID: map[string]Record{}} }

func (f *fakeStore) Save(_ context.Context, r *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[r.ID]; !ok {
		f.seq = append(f.seq, r.ID)
	}
	f.byID[r.ID] = *r
	return nil
}

func (f *fakeStore) LatestByOrder(_ context.Context, orderID string) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.seq) - 1; i >= 0; i-- {
		if r, ok := f.byID[f.seq[i]]; ok && r.OrderID == orderID {
			cp := r
			return &cp, nil
		}
	}
	return nil, &NotFoundError{OrderID: orderID}
}

type fakeLedger struct {
	mu      sync.Mutex
	entries []LedgerEntry
}

func (f *fakeLedger) Append(_ context.Context, e LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

type fakeOrders struct {
	mu            sync.Mutex
	byID          map[string]orders.Order
	markPaidCalls int
}

func newFakeOrders(existing ...orders.Order) *fakeOrders {
	f := &fakeOrders{byID: map[string]orders.Order{}}
	for _, o := range existing {
		f.byID[o.OrderID] = o
	}
	return f
}

func (f *fakeOrders) Get(_ context.Context, orderID string) (*orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[orderID]
	if !ok {
		return nil, &orders.NotFoundError{OrderID: orderID}
	}
	cp := o
	return &cp, nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, orderID string) (*orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markPaidCalls++
	o, ok := f.byID[orderID]
	if !ok {
		return nil, &orders.NotFoundError{OrderID: orderID}
	}
	if o.Status == orders.StatusPaid {
		return &o, nil
	}
	if !orders.CanTransition(o.Status, orders.StatusPaid) {
		return nil, &orders.InvalidStateError{OrderID: orderID, Actual: o.Status, Expected: string(orders.StatusReserved)}
	}
	o.Status = orders.StatusPaid
	f.byID[orderID] = o
	return &o, nil
}

func (f *fakeOrders) SaveDirect(_ context.Context, order *orders.Order) (*orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[order.OrderID] = *order
	return order, nil
}

func (f *fakeOrders) status(orderID string) orders.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[orderID].Status
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeNotifier) PaymentSucceeded(orderID string, amount float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, orderID)
}

func newTestProcessor(existing ...orders.Order) (*Processor, *fakeStore, *fakeLedger, *fakeOrders, *fakeNotifier) {
	store := newFakeStore()
	ledger := &fakeLedger{}
	ord := newFakeOrders(existing...)
	notif := &fakeNotifier{}
	p := &Processor{Store: store, Ledger: ledger, Orders: ord, Notify: notif, Log: zap.NewNop()}
	return p, store, ledger, ord, notif
}

func reservedOrder(orderID string) orders.Order {
	return orders.Order{OrderID: orderID, CustomerEmail: "alice@example.com", Status: orders.StatusReserved}
}

// ---- tests ----

func TestSubmit_CardSettlesImmediately(t *testing.T) {
	ctx := context.Background()
	p, _, ledger, ord, notif := newTestProcessor(reservedOrder("ORD-123"))

	rec, err := p.Submit(ctx, "ORD-123", "CARD", 499.00)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, rec.Status)
	assert.NotNil(t, rec.CompletedAt)
	assert.InDelta(t, 499.00, rec.Amount, 1e-9)

	assert.Equal(t, orders.StatusPaid, ord.status("ORD-123"))
	assert.Equal(t, []string{"ORD-123"}, notif.calls)

	require.Len(t, ledger.entries, 1)
	assert.Equal(t, StatusSuccess, ledger.entries[0].Status)
	assert.InDelta(t, 499.00, ledger.entries[0].AmountUSD, 1e-9)
}

func TestSubmit_NonCardStaysPending(t *testing.T) {
	ctx := context.Background()
	p, _, ledger, ord, notif := newTestProcessor(reservedOrder("ORD-123"))

	rec, err := p.Submit(ctx, "ORD-123", "WECHAT_QR", 120.00)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, rec.Status)
	assert.Nil(t, rec.CompletedAt)
	assert.Equal(t, orders.StatusReserved, ord.status("ORD-123"))
	assert.Empty(t, ledger.entries)
	assert.Empty(t, notif.calls)
	assert.Zero(t, ord.markPaidCalls)
}

func TestUpdate_ToSuccessCompletesFlow(t *testing.T) {
	ctx := context.Background()
	p, _, ledger, ord, notif := newTestProcessor(reservedOrder("ORD-123"))

	_, err := p.Submit(ctx, "ORD-123", "WECHAT_QR", 120.00)
	require.NoError(t, err)

	success := StatusSuccess
	rec, err := p.Update(ctx, "ORD-123", UpdateRequest{Status: &success})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, rec.Status)
	assert.NotNil(t, rec.CompletedAt)
	assert.Equal(t, orders.StatusPaid, ord.status("ORD-123"))
	assert.Equal(t, []string{"ORD-123"}, notif.calls)
	require.Len(t, ledger.entries, 1)
	assert.InDelta(t, 120.00, ledger.entries[0].AmountUSD, 1e-9)
}

func TestUpdate_ToFailedStampsCompletionOnly(t *testing.T) {
	ctx := context.Background()
	p, _, ledger, ord, _ := newTestProcessor(reservedOrder("ORD-123"))

	_, err := p.Submit(ctx, "ORD-123", "ALIPAY_QR", 75.00)
	require.NoError(t, err)

	failed := StatusFailed
	rec, err := p.Update(ctx, "ORD-123", UpdateRequest{Status: &failed})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, rec.Status)
	assert.NotNil(t, rec.CompletedAt)
	assert.Equal(t, orders.StatusReserved, ord.status("ORD-123"))
	assert.Empty(t, ledger.entries)
}

func TestUpdate_PartialFields(t *testing.T) {
	ctx := context.Background()
	p, _, _, _, _ := newTestProcessor(reservedOrder("ORD-123"))

	_, err := p.Submit(ctx, "ORD-123", "WECHAT_QR", 75.00)
	require.NoError(t, err)

	method := "ALIPAY_QR"
	amount := 80.00
	rec, err := p.Update(ctx, "ORD-123", UpdateRequest{Method: &method, Amount: &amount})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, rec.Status)
	assert.Equal(t, "ALIPAY_QR", rec.Method)
	assert.InDelta(t, 80.00, rec.Amount, 1e-9)
}

func TestRefund_CreatesNegativeRecordAndRefundsOrder(t *testing.T) {
	ctx := context.Background()
	order := reservedOrder("ORD-xyz")
	p, store, ledger, ord, _ := newTestProcessor(order)

	_, err := p.Submit(ctx, "ORD-xyz", "CARD", 499.00)
	require.NoError(t, err)

	refund, err := p.Refund(ctx, "ORD-xyz", "customer_cancel")
	require.NoError(t, err)

	assert.Equal(t, StatusRefundSuccess, refund.Status)
	assert.InDelta(t, -499.00, refund.Amount, 1e-9)
	assert.NotNil(t, refund.CompletedAt)

	assert.Equal(t, orders.StatusRefunded, ord.status("ORD-xyz"))

	// latest record for the order is now the refund
	latest, err := store.LatestByOrder(ctx, "ORD-xyz")
	require.NoError(t, err)
	assert.Equal(t, StatusRefundSuccess, latest.Status)

	require.Len(t, ledger.entries, 2)
	assert.Equal(t, StatusRefundSuccess, ledger.entries[1].Status)
	assert.InDelta(t, -499.00, ledger.entries[1].AmountUSD, 1e-9)
}

func TestRefund_NoPaymentFails(t *testing.T) {
	ctx := context.Background()
	p, _, _, _, _ := newTestProcessor(reservedOrder("ORD-xyz"))

	_, err := p.Refund(ctx, "ORD-xyz", "whatever")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRefund_PendingPaymentFails(t *testing.T) {
	ctx := context.Background()
	p, _, _, ord, _ := newTestProcessor(reservedOrder("ORD-xyz"))

	_, err := p.Submit(ctx, "ORD-xyz", "WECHAT_QR", 50.00)
	require.NoError(t, err)

	_, err = p.Refund(ctx, "ORD-xyz", "whatever")
	var notRefundable *NotRefundableError
	require.ErrorAs(t, err, &notRefundable)
	assert.Equal(t, StatusPending, notRefundable.Status)
	assert.Equal(t, orders.StatusReserved, ord.status("ORD-xyz"))
}

func TestStatus_LatestAndNotFound(t *testing.T) {
	ctx := context.Background()
	p, _, _, _, _ := newTestProcessor(reservedOrder("ORD-abc"))

	_, err := p.Status(ctx, "ORD-abc")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = p.Submit(ctx, "ORD-abc", "CARD", 100.00)
	require.NoError(t, err)

	rec, err := p.Status(ctx, "ORD-abc")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, rec.Status)
	assert.Equal(t, "CARD", rec.Method)
	assert.InDelta(t, 100.00, rec.Amount, 1e-9)
}

// Duplicate settlement via Update must not re-trigger markPaid side effects
// beyond the idempotent transition itself.
func TestUpdate_DuplicateSuccessIsHarmless(t *testing.T) {
	ctx := context.Background()
	p, _, ledger, ord, _ := newTestProcessor(reservedOrder("ORD-123"))

	_, err := p.Submit(ctx, "ORD-123", "CARD", 200.00)
	require.NoError(t, err)
	require.Len(t, ledger.entries, 1)

	success := StatusSuccess
	rec, err := p.Update(ctx, "ORD-123", UpdateRequest{Status: &success})
	require.NoError(t, err)

	// already SUCCESS: no second completion, no second ledger row
	assert.Equal(t, StatusSuccess, rec.Status)
	assert.Len(t, ledger.entries, 1)
	assert.Equal(t, orders.StatusPaid, ord.status("ORD-123"))
}
