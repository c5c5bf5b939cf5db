package activity

import (
	"context"
	"fmt"

	"github.com/fkhayef/splitsettle/internal/database"
	"github.com/fkhayef/splitsettle/internal/splitbill"
)

// BillFinder resolves a split bill, returning splitbill.ErrSplitBillNotFound
// when it does not exist
type BillFinder interface {
	GetByID(ctx context.Context, id string) (*splitbill.SplitBill, error)
}

// Service handles activity business logic
type Service struct {
	repo  *Repository
	bills BillFinder
}

// NewService creates a new activity service. bills may be nil until the
// split bill service exists; see SetBillFinder.
func NewService(repo *Repository, bills BillFinder) *Service {
	return &Service{repo: repo, bills: bills}
}

// SetBillFinder wires the split bill lookup. The split bill service records
// into this one, so the two are constructed in sequence.
func (s *Service) SetBillFinder(bills BillFinder) {
	s.bills = bills
}

// RecordTransition implements splitbill.Recorder
func (s *Service) RecordTransition(ctx context.Context, tx *database.Tx, e splitbill.TransitionEvent) error {
	var action Action
	switch e.Status {
	case splitbill.StatusPaid:
		action = ActionPaid
	case splitbill.StatusRejected:
		action = ActionRejected
	default:
		return fmt.Errorf("no activity for status %s", e.Status)
	}

	return s.repo.Create(ctx, tx, &Event{
		SplitBillID:   e.SplitBillID,
		GroupID:       e.GroupID,
		UserID:        e.UserID,
		ActorID:       e.ActorID,
		Action:        action,
		PaymentMethod: e.Method,
		Note:          e.Note,
		CreatedAt:     e.At,
	})
}

// ListBySplitBill retrieves a page of a split bill's activity
func (s *Service) ListBySplitBill(ctx context.Context, splitBillID string, page, perPage int) ([]*Event, int, error) {
	if s.bills != nil {
		if _, err := s.bills.GetByID(ctx, splitBillID); err != nil {
			return nil, 0, err
		}
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListBySplitBillID(ctx, splitBillID, perPage, offset)
}
