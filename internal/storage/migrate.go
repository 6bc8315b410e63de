package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Накатывает схему при старте. Все выражения идемпотентные
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS channels (
			id         BIGSERIAL PRIMARY KEY,
			name       TEXT        NOT NULL,
			feed_url   TEXT        NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS listings (
			id           BIGSERIAL PRIMARY KEY,
			price_usd    NUMERIC(10,2),
			currency     TEXT        NOT NULL DEFAULT 'USD',
			bedrooms     INT,
			district     TEXT,
			term         TEXT        NOT NULL DEFAULT 'unknown',
			contact      TEXT,
			link         TEXT        NOT NULL,
			channel      TEXT        NOT NULL,
			message_id   BIGINT      NOT NULL DEFAULT 0,
			text         TEXT        NOT NULL,
			score        INT         NOT NULL DEFAULT 0,
			published_at TIMESTAMPTZ NOT NULL,
			notified_at  TIMESTAMPTZ,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		-- Посты без ссылки дедупу не подлежат, уникальность только по непустым
		CREATE UNIQUE INDEX IF NOT EXISTS idx_listings_link ON listings(link) WHERE link <> '';

		CREATE INDEX IF NOT EXISTS idx_listings_price    ON listings(price_usd);
		CREATE INDEX IF NOT EXISTS idx_listings_score    ON listings(score);
		CREATE INDEX IF NOT EXISTS idx_listings_notified ON listings(notified_at);
	`)

	return err
}
