package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitsettle/internal/database"
)

// Repository handles expense data persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new expense into the database
func (r *Repository) Create(ctx context.Context, expense *Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	query := `
		INSERT INTO expenses (id, group_id, payer_id, description, amount, category, split_bill_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		expense.ID,
		expense.GroupID,
		expense.PayerID,
		expense.Description,
		expense.Amount,
		expense.Category,
		expense.SplitBillID,
		expense.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	return nil
}

// GetByID retrieves an expense by its ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Expense, error) {
	query := `
		SELECT id, group_id, payer_id, description, amount, category, split_bill_id, created_at
		FROM expenses
		WHERE id = $1
	`

	expense, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return expense, nil
}

// ListByGroupID retrieves every expense of a group, oldest first
func (r *Repository) ListByGroupID(ctx context.Context, groupID string) ([]*Expense, error) {
	query := `
		SELECT id, group_id, payer_id, description, amount, category, split_bill_id, created_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*Expense, error) {
	expense := &Expense{}
	var createdAt int64
	if err := row.Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PayerID,
		&expense.Description,
		&expense.Amount,
		&expense.Category,
		&expense.SplitBillID,
		&createdAt,
	); err != nil {
		return nil, err
	}
	expense.CreatedAt = time.UnixMilli(createdAt).UTC()
	return expense, nil
}
