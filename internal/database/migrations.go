package database

import (
	"context"
	"fmt"
)

// schema is valid for both Postgres and SQLite. Money columns are BIGINT
// minor units; timestamps are BIGINT unix milliseconds.
const schema = `
CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL,
    joined_at BIGINT NOT NULL,
    PRIMARY KEY (group_id, user_id)
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    payer_id TEXT NOT NULL,
    description TEXT NOT NULL,
    amount BIGINT NOT NULL CHECK (amount >= 0),
    category TEXT NOT NULL,
    split_bill_id TEXT,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS split_bills (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    created_by_id TEXT NOT NULL,
    description TEXT NOT NULL,
    total_amount BIGINT NOT NULL CHECK (total_amount >= 0),
    split_type TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS split_bill_participants (
    split_bill_id TEXT NOT NULL REFERENCES split_bills(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    amount_owed BIGINT NOT NULL CHECK (amount_owed >= 0),
    status TEXT NOT NULL,
    paid_at BIGINT,
    payment_method TEXT,
    note TEXT,
    updated_at BIGINT NOT NULL,
    PRIMARY KEY (split_bill_id, user_id)
);

CREATE TABLE IF NOT EXISTS split_bill_activity (
    id TEXT PRIMARY KEY,
    split_bill_id TEXT NOT NULL REFERENCES split_bills(id) ON DELETE CASCADE,
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    actor_id TEXT NOT NULL,
    action TEXT NOT NULL,
    payment_method TEXT,
    note TEXT,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id);
CREATE INDEX IF NOT EXISTS idx_expenses_group_id ON expenses(group_id);
CREATE INDEX IF NOT EXISTS idx_split_bills_group_id ON split_bills(group_id);
CREATE INDEX IF NOT EXISTS idx_split_bill_activity_bill_id ON split_bill_activity(split_bill_id);
`

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, db *DB) error {
	if _, err := db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
