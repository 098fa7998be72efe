package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate bootstraps the schema. order_events and payment_ledger are
// append-only: nothing in the codebase updates or deletes their rows.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stock (
			sku        TEXT PRIMARY KEY,
			quantity   INT NOT NULL CHECK (quantity >= 0),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id         TEXT PRIMARY KEY,
			customer_email   TEXT NOT NULL,
			items            JSONB NOT NULL,
			shipping_address JSONB,
			total_amount     DOUBLE PRECISION NOT NULL,
			status           TEXT NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer
			ON orders (customer_email, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS order_events (
			id       BIGSERIAL PRIMARY KEY,
			order_id TEXT NOT NULL,
			ts       TIMESTAMPTZ NOT NULL,
			type     TEXT NOT NULL,
			payload  JSONB NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_events_order
			ON order_events (order_id, ts DESC)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id           TEXT PRIMARY KEY,
			order_id     TEXT NOT NULL,
			amount       DOUBLE PRECISION NOT NULL,
			method       TEXT NOT NULL,
			status       TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_order
			ON payments (order_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS payment_ledger (
			id          BIGSERIAL PRIMARY KEY,
			order_id    TEXT NOT NULL,
			amount_usd  DOUBLE PRECISION NOT NULL,
			method      TEXT NOT NULL,
			status      TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
