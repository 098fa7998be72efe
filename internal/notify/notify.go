// Package notify is the best-effort side of the system: publishing never
// returns an error to the caller. Delivery is at-least-once and consumers
// must tolerate duplicates.
package notify

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/carpetline/orderflow/internal/kafka"
	"github.com/carpetline/orderflow/internal/orders"
)

// Kafka publishes envelopes keyed by order id, one producer per topic.
type Kafka struct {
	Reserved *kafkax.Producer // inventory.reserved
	Released *kafkax.Producer // inventory.released
	Paid     *kafkax.Producer // payment.succeeded
	Service  string
}

func (k *Kafka) InventoryReserved(orderID, sku string, qty int) {
	k.publish(k.Reserved, orderID, orders.EventInventoryReserved,
		orders.InventoryReservedPayload{OrderID: orderID, SKU: sku, Quantity: qty})
}

func (k *Kafka) InventoryReleased(orderID, sku string, qty int) {
	k.publish(k.Released, orderID, orders.EventInventoryReleased,
		orders.InventoryReleasedPayload{OrderID: orderID, SKU: sku, Quantity: qty})
}

func (k *Kafka) PaymentSucceeded(orderID string, amount float64) {
	k.publish(k.Paid, orderID, orders.EventPaymentSucceeded,
		orders.PaymentSucceededPayload{OrderID: orderID, AmountUSD: amount})
}

func (k *Kafka) publish(p *kafkax.Producer, orderID, eventType string, payload any) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      k.Service,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// Nop drops everything; used when the bus is disabled.
type Nop struct{}

func (Nop) InventoryReserved(string, string, int) {}
func (Nop) InventoryReleased(string, string, int) {}
func (Nop) PaymentSucceeded(string, float64)      {}
