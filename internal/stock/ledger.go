package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ledger owns per-SKU available quantity. Reserve must be a single
// conditional update against the store: correctness holds across process
// instances with no application-level locking.
type Ledger interface {
	// Reserve decrements available quantity iff available >= qty at the
	// moment of the conditional update. No change on failure.
	Reserve(ctx context.Context, sku string, qty int) (bool, error)

	// Release increments available quantity unconditionally. Returns false
	// only when the sku does not exist.
	Release(ctx context.Context, sku string, qty int) (bool, error)

	// Available returns the current quantity, or ErrUnknownSKU.
	Available(ctx context.Context, sku string) (int, error)
}

type PG struct{ DB *pgxpool.Pool }

func (l *PG) Reserve(ctx context.Context, sku string, qty int) (bool, error) {
	ct, err := l.DB.Exec(ctx, `
		UPDATE stock SET quantity = quantity - $2, updated_at = now()
		WHERE sku = $1 AND quantity >= $2`, sku, qty)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (l *PG) Release(ctx context.Context, sku string, qty int) (bool, error) {
	ct, err := l.DB.Exec(ctx, `
		UPDATE stock SET quantity = quantity + $2, updated_at = now()
		WHERE sku = $1`, sku, qty)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (l *PG) Available(ctx context.Context, sku string) (int, error) {
	var qty int
	err := l.DB.QueryRow(ctx, `SELECT quantity FROM stock WHERE sku = $1`, sku).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUnknownSKU
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}
