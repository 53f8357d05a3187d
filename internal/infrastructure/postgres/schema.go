package postgres

import (
	"context"
	"fmt"
)

// schema DDL idempotente. El saldo nunca es negativo por constraint, además de la validación del motor.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL,
		is_active  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_by  TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS categories_name_idx ON categories (lower(btrim(name)))`,
	`CREATE TABLE IF NOT EXISTS items (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		code        TEXT,
		tag         TEXT,
		category_id TEXT NOT NULL REFERENCES categories(id),
		attributes  JSONB NOT NULL DEFAULT '{}'::jsonb,
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_by  TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS items_code_key ON items (code) WHERE code IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS items_tag_key ON items (tag) WHERE tag IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS items_name_idx ON items (lower(btrim(name)))`,
	`CREATE TABLE IF NOT EXISTS balances (
		item_id    TEXT PRIMARY KEY REFERENCES items(id) ON DELETE CASCADE,
		stock      BIGINT NOT NULL DEFAULT 0 CHECK (stock >= 0),
		minimum    BIGINT NOT NULL DEFAULT 0 CHECK (minimum >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS movements (
		id           TEXT PRIMARY KEY,
		item_id      TEXT NOT NULL REFERENCES items(id),
		actor_id     TEXT NOT NULL,
		kind         TEXT NOT NULL CHECK (kind IN ('RECEIPT', 'ISSUE', 'ADJUSTMENT')),
		quantity     BIGINT NOT NULL,
		reason       TEXT NOT NULL DEFAULT '',
		stock_before BIGINT NOT NULL,
		stock_after  BIGINT NOT NULL CHECK (stock_after >= 0),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS movements_item_idx ON movements (item_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS movements_actor_idx ON movements (actor_id, created_at DESC)`,
}

// Migrate crea las tablas del inventario si no existen.
func Migrate(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate paso %d: %w", i+1, err)
		}
	}
	return nil
}
