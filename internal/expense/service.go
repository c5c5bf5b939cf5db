package expense

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/splitbill"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrInvalidExpense  = errors.New("invalid expense")
	ErrNotGroupMember  = errors.New("payer is not a member of the group")
)

// DefaultCategory is used when an expense is created without a category
const DefaultCategory = "general"

// GroupChecker answers group existence and membership questions
type GroupChecker interface {
	Exists(ctx context.Context, groupID string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// BillFinder resolves a split bill, returning splitbill.ErrSplitBillNotFound
// when it does not exist
type BillFinder interface {
	GetByID(ctx context.Context, id string) (*splitbill.SplitBill, error)
}

// Service handles expense business logic
type Service struct {
	repo   *Repository
	groups GroupChecker
	bills  BillFinder
	codec  money.Codec
}

// NewService creates a new expense service
func NewService(repo *Repository, groups GroupChecker, bills BillFinder, codec money.Codec) *Service {
	return &Service{
		repo:   repo,
		groups: groups,
		bills:  bills,
		codec:  codec,
	}
}

// Create validates and stores a new expense paid by payerID
func (s *Service) Create(ctx context.Context, payerID string, req *CreateExpenseRequest) (*Expense, error) {
	if strings.TrimSpace(req.Description) == "" || req.GroupID == "" {
		return nil, fmt.Errorf("%w: group_id and description are required", ErrInvalidExpense)
	}

	amount, err := s.codec.Resolve(req.Amount, req.AmountMinor)
	if err != nil {
		return nil, err
	}

	if err := s.groups.Exists(ctx, req.GroupID); err != nil {
		return nil, err
	}
	member, err := s.groups.IsMember(ctx, req.GroupID, payerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("%w: %s", ErrNotGroupMember, payerID)
	}

	if req.SplitBillID != nil {
		bill, err := s.bills.GetByID(ctx, *req.SplitBillID)
		if err != nil {
			return nil, err
		}
		if bill.GroupID != req.GroupID {
			return nil, fmt.Errorf("%w: split bill %s belongs to another group", ErrInvalidExpense, bill.ID)
		}
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = DefaultCategory
	}

	expense := &Expense{
		GroupID:     req.GroupID,
		PayerID:     payerID,
		Description: req.Description,
		Amount:      amount,
		Category:    category,
		SplitBillID: req.SplitBillID,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// GetByID retrieves an expense
func (s *Service) GetByID(ctx context.Context, id string) (*Expense, error) {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}
	return expense, nil
}

// ListByGroupID retrieves the expenses of a group
func (s *Service) ListByGroupID(ctx context.Context, groupID string) ([]*Expense, error) {
	if err := s.groups.Exists(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.ListByGroupID(ctx, groupID)
}
