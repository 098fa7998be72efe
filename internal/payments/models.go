package payments

import "time"

type Status string

const (
	StatusPending       Status = "PENDING"
	StatusSuccess       Status = "SUCCESS"
	StatusFailed        Status = "FAILED"
	StatusRefundSuccess Status = "REFUND_SUCCESS"
)

// Record is a payment attempt. Lookup is "latest by order": refunds are new
// records with a negated amount, so history stays append-style.
type Record struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"order_id"`
	Amount      float64    `json:"amount"`
	Method      string     `json:"method"` // CARD / MOBILE / ALIPAY / WECHATPAY
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// LedgerEntry is the immutable financial row: one per monetary event,
// never updated or deleted.
type LedgerEntry struct {
	OrderID    string    `json:"order_id"`
	AmountUSD  float64   `json:"amount_usd"`
	Method     string    `json:"method"`
	Status     Status    `json:"status"` // SUCCESS or REFUND_SUCCESS
	RecordedAt time.Time `json:"recorded_at"`
}
