package orders

import (
	"encoding/json"
	"time"
)

// Timeline / bus event types.
const (
	EventOrderCreated           = "OrderCreated"
	EventInventoryReserved      = "InventoryReserved"
	EventInventoryReleased      = "InventoryReleased"
	EventPaymentSucceeded       = "PaymentSucceeded"
	EventShippingAddressUpdated = "ShippingAddressUpdated"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- bus payloads ----

type InventoryReservedPayload struct {
	OrderID  string `json:"order_id"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type InventoryReleasedPayload struct {
	OrderID  string `json:"order_id"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type PaymentSucceededPayload struct {
	OrderID   string  `json:"order_id"`
	AmountUSD float64 `json:"amount_usd"`
}
