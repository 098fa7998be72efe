package orders

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the authoritative order record: one row per business order id.
type Store interface {
	Save(ctx context.Context, o *Order) error
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	ListByCustomer(ctx context.Context, customerEmail string, page, size int) ([]Order, error)
}

type PGStore struct{ DB *pgxpool.Pool }

func (s *PGStore) Save(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	var addr []byte
	if o.ShippingAddress != nil {
		if addr, err = json.Marshal(o.ShippingAddress); err != nil {
			return err
		}
	}
	_, err = s.DB.Exec(ctx, `
		INSERT INTO orders(order_id, customer_email, items, shipping_address, total_amount, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (order_id) DO UPDATE SET
			shipping_address = EXCLUDED.shipping_address,
			status           = EXCLUDED.status,
			updated_at       = EXCLUDED.updated_at`,
		o.OrderID, o.CustomerEmail, items, addr, o.TotalAmount, string(o.Status), o.CreatedAt, o.UpdatedAt)
	return err
}

func (s *PGStore) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT order_id, customer_email, items, shipping_address, total_amount, status, created_at, updated_at
		FROM orders WHERE order_id = $1`, orderID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{OrderID: orderID}
	}
	return o, err
}

// ListByCustomer pages by creation time descending; size is clamped to 100.
func (s *PGStore) ListByCustomer(ctx context.Context, customerEmail string, page, size int) ([]Order, error) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 1
	}
	if size > 100 {
		size = 100
	}
	rows, err := s.DB.Query(ctx, `
		SELECT order_id, customer_email, items, shipping_address, total_amount, status, created_at, updated_at
		FROM orders WHERE customer_email = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		customerEmail, size, page*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status string
	var items []byte
	var addr []byte
	if err := row.Scan(&o.OrderID, &o.CustomerEmail, &items, &addr, &o.TotalAmount,
		&status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, err
	}
	if len(addr) > 0 {
		o.ShippingAddress = &Address{}
		if err := json.Unmarshal(addr, o.ShippingAddress); err != nil {
			return nil, err
		}
	}
	o.Status = Status(status)
	return &o, nil
}
