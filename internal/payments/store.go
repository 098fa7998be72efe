package payments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Save(ctx context.Context, r *Record) error
	LatestByOrder(ctx context.Context, orderID string) (*Record, error)
}

// Ledger appends immutable financial rows. There is deliberately no update
// or delete on this interface.
type Ledger interface {
	Append(ctx context.Context, e LedgerEntry) error
}

type PGStore struct{ DB *pgxpool.Pool }

func (s *PGStore) Save(ctx context.Context, r *Record) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO payments(id, order_id, amount, method, status, created_at, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			amount       = EXCLUDED.amount,
			method       = EXCLUDED.method,
			status       = EXCLUDED.status,
			completed_at = EXCLUDED.completed_at`,
		r.ID, r.OrderID, r.Amount, r.Method, string(r.Status), r.CreatedAt, r.CompletedAt)
	return err
}

func (s *PGStore) LatestByOrder(ctx context.Context, orderID string) (*Record, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT id, order_id, amount, method, status, created_at, completed_at
		FROM payments WHERE order_id = $1
		ORDER BY created_at DESC LIMIT 1`, orderID)
	var r Record
	var status string
	err := row.Scan(&r.ID, &r.OrderID, &r.Amount, &r.Method, &status, &r.CreatedAt, &r.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{OrderID: orderID}
	}
	if err != nil {
		return nil, err
	}
	r.Status = Status(status)
	return &r, nil
}

type PGLedger struct{ DB *pgxpool.Pool }

func (l *PGLedger) Append(ctx context.Context, e LedgerEntry) error {
	_, err := l.DB.Exec(ctx, `
		INSERT INTO payment_ledger(order_id, amount_usd, method, status, recorded_at)
		VALUES ($1,$2,$3,$4,$5)`,
		e.OrderID, e.AmountUSD, e.Method, string(e.Status), e.RecordedAt)
	return err
}
