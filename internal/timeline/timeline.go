// Package timeline is the append-only, per-order event log. Rows are never
// updated or deleted; reads scan one order's partition newest-first.
package timeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	OrderID string          `json:"order_id"`
	TS      time.Time       `json:"ts"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type Store struct{ DB *pgxpool.Pool }

func (s *Store) Append(ctx context.Context, orderID, eventType string, payload any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
		INSERT INTO order_events(order_id, ts, type, payload)
		VALUES ($1, $2, $3, $4)`,
		orderID, time.Now().UTC(), eventType, b)
	return err
}

func (s *Store) ListByOrder(ctx context.Context, orderID string, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.DB.Query(ctx, `
		SELECT order_id, ts, type, payload FROM order_events
		WHERE order_id = $1 ORDER BY ts DESC LIMIT $2`, orderID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.OrderID, &e.TS, &e.Type, &e.Payload); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
