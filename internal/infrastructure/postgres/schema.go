package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS notifications (
	id         BIGINT PRIMARY KEY,
	user_id    TEXT,
	title      TEXT NOT NULL,
	role       TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS notification_dismissals (
	notification_id BIGINT NOT NULL REFERENCES notifications(id) ON DELETE CASCADE,
	user_id         TEXT NOT NULL,
	PRIMARY KEY (notification_id, user_id)
);

CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	role       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_role ON notifications (role);
CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications (created_at DESC);
`

// EnsureSchema creates the tables and indexes if they do not exist yet.
// Called once at startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
