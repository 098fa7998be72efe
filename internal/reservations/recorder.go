// Package reservations writes short-lived reservation facts for audit and
// debugging. The keys expire on their own; absence of a record says nothing
// about the underlying stock deduction.
package reservations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carpetline/orderflow/internal/redisx"
)

type Fact struct {
	OrderID    string    `json:"order_id"`
	SKU        string    `json:"sku"`
	Quantity   int       `json:"quantity"`
	ReservedAt time.Time `json:"reserved_at"`
}

type Recorder struct {
	Redis *redis.Client
	TTL   time.Duration
}

// Record writes the fact keyed by order and by sku. Write-once: an existing
// key is left alone (SetNX), so redelivery never extends a reservation.
func (r *Recorder) Record(ctx context.Context, orderID, sku string, qty int) error {
	fact := Fact{OrderID: orderID, SKU: sku, Quantity: qty, ReservedAt: time.Now().UTC()}
	b, err := json.Marshal(fact)
	if err != nil {
		return err
	}
	byOrder := fmt.Sprintf(redisx.KeyReservationByOrder, orderID, sku)
	bySKU := fmt.Sprintf(redisx.KeyReservationBySKU, sku, orderID)
	if err := r.Redis.SetNX(ctx, byOrder, b, r.TTL).Err(); err != nil {
		return err
	}
	return r.Redis.SetNX(ctx, bySKU, b, r.TTL).Err()
}

// ListByOrder is an operational query only, never on the critical path.
func (r *Recorder) ListByOrder(ctx context.Context, orderID string) ([]Fact, error) {
	pattern := fmt.Sprintf(redisx.KeyReservationByOrder, orderID, "*")
	var out []Fact
	iter := r.Redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		raw, err := r.Redis.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue // expired between scan and get
		}
		var f Fact
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, iter.Err()
}
