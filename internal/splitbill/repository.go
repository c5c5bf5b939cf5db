package splitbill

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitsettle/internal/database"
	"github.com/fkhayef/splitsettle/internal/splitbill/split"
)

// Repository handles split bill data persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates a new split bill repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a split bill and all of its participants in one transaction
func (r *Repository) Create(ctx context.Context, bill *SplitBill, inTx func(tx *database.Tx) error) error {
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO split_bills (id, group_id, created_by_id, description, total_amount, split_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, bill.ID, bill.GroupID, bill.CreatedByID, bill.Description, bill.TotalAmount, string(bill.SplitType), bill.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to create split bill: %w", err)
	}

	for _, p := range bill.Participants {
		p.SplitBillID = bill.ID
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = bill.CreatedAt
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO split_bill_participants (split_bill_id, user_id, amount_owed, status, paid_at, payment_method, note, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, p.SplitBillID, p.UserID, p.AmountOwed, string(p.Status), millisOrNil(p.PaidAt), p.PaymentMethod, p.Note, p.UpdatedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to add participant %s: %w", p.UserID, err)
		}
	}

	if inTx != nil {
		if err := inTx(tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit split bill: %w", err)
	}
	return nil
}

// GetByID retrieves a split bill with its participants ordered by user ID
func (r *Repository) GetByID(ctx context.Context, id string) (*SplitBill, error) {
	bill, err := scanBill(r.db.QueryRowContext(ctx, `
		SELECT id, group_id, created_by_id, description, total_amount, split_type, created_at
		FROM split_bills
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get split bill: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT split_bill_id, user_id, amount_owed, status, paid_at, payment_method, note, updated_at
		FROM split_bill_participants
		WHERE split_bill_id = $1
		ORDER BY user_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		bill.Participants = append(bill.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return bill, nil
}

// ListByGroupID retrieves every split bill of a group with participants,
// oldest bill first.
func (r *Repository) ListByGroupID(ctx context.Context, groupID string) ([]*SplitBill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, group_id, created_by_id, description, total_amount, split_type, created_at
		FROM split_bills
		WHERE group_id = $1
		ORDER BY created_at, id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list split bills: %w", err)
	}

	var bills []*SplitBill
	byID := make(map[string]*SplitBill)
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan split bill: %w", err)
		}
		bills = append(bills, bill)
		byID[bill.ID] = bill
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate split bills: %w", err)
	}
	rows.Close()

	if len(bills) == 0 {
		return bills, nil
	}

	prows, err := r.db.QueryContext(ctx, `
		SELECT p.split_bill_id, p.user_id, p.amount_owed, p.status, p.paid_at, p.payment_method, p.note, p.updated_at
		FROM split_bill_participants p
		JOIN split_bills b ON b.id = p.split_bill_id
		WHERE b.group_id = $1
		ORDER BY p.split_bill_id, p.user_id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		p, err := scanParticipant(prows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		// A bill inserted between the two queries is skipped.
		if bill, ok := byID[p.SplitBillID]; ok {
			bill.Participants = append(bill.Participants, p)
		}
	}
	if err := prows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return bills, nil
}

// GetParticipant retrieves a single participant row
func (r *Repository) GetParticipant(ctx context.Context, billID, userID string) (*Participant, error) {
	p, err := scanParticipant(r.db.QueryRowContext(ctx, `
		SELECT split_bill_id, user_id, amount_owed, status, paid_at, payment_method, note, updated_at
		FROM split_bill_participants
		WHERE split_bill_id = $1 AND user_id = $2
	`, billID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// Transition moves a PENDING participant to change.To. The update is
// conditional on the row still being PENDING, so of several concurrent
// callers exactly one sees applied == true. inTx runs inside the same
// transaction only when the update applied.
func (r *Repository) Transition(ctx context.Context, billID, userID string, change StatusChange, inTx func(tx *database.Tx) error) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var paidAt any
	if change.To == StatusPaid {
		paidAt = change.At.UnixMilli()
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE split_bill_participants
		SET status = $3, paid_at = $4, payment_method = $5, note = $6, updated_at = $7
		WHERE split_bill_id = $1 AND user_id = $2 AND status = 'PENDING'
	`, billID, userID, string(change.To), paidAt, change.Method, change.Note, change.At.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("failed to update participant: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if inTx != nil {
		if err := inTx(tx); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transition: %w", err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*SplitBill, error) {
	bill := &SplitBill{}
	var splitType string
	var createdAt int64
	if err := row.Scan(
		&bill.ID,
		&bill.GroupID,
		&bill.CreatedByID,
		&bill.Description,
		&bill.TotalAmount,
		&splitType,
		&createdAt,
	); err != nil {
		return nil, err
	}
	bill.SplitType = split.SplitType(splitType)
	bill.CreatedAt = time.UnixMilli(createdAt).UTC()
	return bill, nil
}

func scanParticipant(row rowScanner) (*Participant, error) {
	p := &Participant{}
	var status string
	var paidAt sql.NullInt64
	var method, note sql.NullString
	var updatedAt int64
	if err := row.Scan(
		&p.SplitBillID,
		&p.UserID,
		&p.AmountOwed,
		&status,
		&paidAt,
		&method,
		&note,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = ParticipantStatus(status)
	if paidAt.Valid {
		t := time.UnixMilli(paidAt.Int64).UTC()
		p.PaidAt = &t
	}
	if method.Valid {
		p.PaymentMethod = &method.String
	}
	if note.Valid {
		p.Note = &note.String
	}
	p.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return p, nil
}

func millisOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
