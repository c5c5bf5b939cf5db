package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitsettle/internal/database"
)

// execer is satisfied by both *database.DB and *database.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Repository handles activity data persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates a new activity repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create appends an event using db, or tx when it is not nil
func (r *Repository) Create(ctx context.Context, tx *database.Tx, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	var ex execer = r.db
	if tx != nil {
		ex = tx
	}

	query := `
		INSERT INTO split_bill_activity (id, split_bill_id, group_id, user_id, actor_id, action, payment_method, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := ex.ExecContext(ctx, query,
		event.ID,
		event.SplitBillID,
		event.GroupID,
		event.UserID,
		event.ActorID,
		string(event.Action),
		event.PaymentMethod,
		event.Note,
		event.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create activity event: %w", err)
	}
	return nil
}

// ListBySplitBillID retrieves the events of a split bill, newest first
func (r *Repository) ListBySplitBillID(ctx context.Context, splitBillID string, limit, offset int) ([]*Event, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM split_bill_activity WHERE split_bill_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, splitBillID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count activity: %w", err)
	}

	query := `
		SELECT id, split_bill_id, group_id, user_id, actor_id, action, payment_method, note, created_at
		FROM split_bill_activity
		WHERE split_bill_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, splitBillID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event := &Event{}
		var action string
		var method, note sql.NullString
		var createdAt int64
		if err := rows.Scan(
			&event.ID,
			&event.SplitBillID,
			&event.GroupID,
			&event.UserID,
			&event.ActorID,
			&action,
			&method,
			&note,
			&createdAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan activity: %w", err)
		}
		event.Action = Action(action)
		if method.Valid {
			event.PaymentMethod = &method.String
		}
		if note.Valid {
			event.Note = &note.String
		}
		event.CreatedAt = time.UnixMilli(createdAt).UTC()
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate activity: %w", err)
	}

	return events, total, nil
}
