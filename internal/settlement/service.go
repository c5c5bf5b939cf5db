package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fkhayef/splitsettle/internal/expense"
	"github.com/fkhayef/splitsettle/internal/ledger"
	"github.com/fkhayef/splitsettle/internal/metrics"
	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/planner"
	"github.com/fkhayef/splitsettle/internal/settlement/cache"
	"github.com/fkhayef/splitsettle/internal/splitbill"
)

// GroupChecker confirms that a group exists
type GroupChecker interface {
	Exists(ctx context.Context, groupID string) error
}

// ExpenseLister loads a group's expenses
type ExpenseLister interface {
	ListByGroupID(ctx context.Context, groupID string) ([]*expense.Expense, error)
}

// BillLister loads a group's split bills, or one bill by ID
type BillLister interface {
	ListByGroupID(ctx context.Context, groupID string) ([]*splitbill.SplitBill, error)
	GetByID(ctx context.Context, id string) (*splitbill.SplitBill, error)
}

// Service answers settlement queries. It never changes the ledger.
type Service struct {
	groups   GroupChecker
	expenses ExpenseLister
	bills    BillLister
	cache    cache.Cache
	metrics  *metrics.Metrics
}

// NewService creates a new settlement service
func NewService(groups GroupChecker, expenses ExpenseLister, bills BillLister, plans cache.Cache, m *metrics.Metrics) *Service {
	return &Service{
		groups:   groups,
		expenses: expenses,
		bills:    bills,
		cache:    plans,
		metrics:  m,
	}
}

// GetGroupSettlement returns the plan that settles every balance of the
// group, from cache when no write happened since it was computed.
func (s *Service) GetGroupSettlement(ctx context.Context, groupID string) ([]planner.Transaction, error) {
	if err := s.groups.Exists(ctx, groupID); err != nil {
		return nil, err
	}

	plan, ok, err := s.cache.Get(ctx, groupID)
	if err != nil {
		slog.Warn("settlement cache read failed", "group_id", groupID, "error", err)
	} else if ok {
		s.metrics.ObserveCache(true)
		return plan, nil
	}
	s.metrics.ObserveCache(false)

	// The stamp must be taken before the ledger is read.
	stamp, serr := s.cache.Version(ctx, groupID)
	if serr != nil {
		slog.Warn("settlement cache version read failed", "group_id", groupID, "error", serr)
	}

	start := time.Now()
	balances, _, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	plan, err = planner.Plan(balances)
	if err != nil {
		return nil, s.inconsistent(groupID, err)
	}
	s.metrics.ObservePlan(time.Since(start).Seconds(), len(plan))

	if serr == nil {
		stored, err := s.cache.Put(ctx, groupID, stamp, plan)
		switch {
		case err != nil:
			slog.Warn("settlement cache write failed", "group_id", groupID, "error", err)
		case !stored:
			slog.Debug("settlement plan not cached, ledger write in flight or newer", "group_id", groupID)
		}
	}

	return plan, nil
}

// GetGroupBalances returns each member's net balance sorted by user ID
// and the group's total spend.
func (s *Service) GetGroupBalances(ctx context.Context, groupID string) (*GroupBalances, error) {
	if err := s.groups.Exists(ctx, groupID); err != nil {
		return nil, err
	}

	balances, spent, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &GroupBalances{
		Balances:   balances.Sorted(),
		TotalSpent: spent,
	}, nil
}

// GetPaymentSummary reports how much of a split bill has been collected
// and who still owes its creator.
func (s *Service) GetPaymentSummary(ctx context.Context, splitBillID string) (*PaymentSummary, error) {
	bill, err := s.bills.GetByID(ctx, splitBillID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, splitbill.ErrSplitBillNotFound
	}

	summary := &PaymentSummary{
		Participants: bill.Participants,
		SplitBill:    bill,
	}
	for _, p := range bill.Participants {
		if p.UserID == bill.CreatedByID || p.Status == splitbill.StatusRejected {
			continue
		}
		if summary.TotalOwed, err = money.Add(summary.TotalOwed, p.AmountOwed); err != nil {
			return nil, err
		}
		if p.Status == splitbill.StatusPaid {
			if summary.TotalPaid, err = money.Add(summary.TotalPaid, p.AmountOwed); err != nil {
				return nil, err
			}
		}
	}
	summary.Balance = summary.TotalOwed - summary.TotalPaid

	balances, err := ledger.ComputeBillBalances(bill)
	if err != nil {
		return nil, s.inconsistent(bill.GroupID, err)
	}
	if summary.Debts, err = planner.Plan(balances); err != nil {
		return nil, s.inconsistent(bill.GroupID, err)
	}
	summary.Settled = planner.Settled(balances)

	return summary, nil
}

// BeginWrite marks a ledger write of the group in flight. Until the
// matching EndWrite no plan of the group is cached. It implements
// splitbill.Invalidator.
func (s *Service) BeginWrite(ctx context.Context, groupID string) error {
	return s.cache.BeginWrite(ctx, groupID)
}

// EndWrite runs after the write committed or rolled back
func (s *Service) EndWrite(ctx context.Context, groupID string) error {
	return s.cache.EndWrite(ctx, groupID)
}

func (s *Service) load(ctx context.Context, groupID string) (ledger.Balances, int64, error) {
	expenses, err := s.expenses.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}
	bills, err := s.bills.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}

	balances, err := ledger.ComputeBalances(groupID, expenses, bills)
	if err != nil {
		return nil, 0, s.inconsistent(groupID, err)
	}
	spent, err := ledger.GroupSpend(expenses)
	if err != nil {
		return nil, 0, err
	}
	return balances, spent, nil
}

func (s *Service) inconsistent(groupID string, err error) error {
	if errors.Is(err, ledger.ErrLedgerInconsistency) {
		s.metrics.ObserveInconsistency()
		slog.Error("ledger inconsistency", "group_id", groupID, "error", err)
	}
	return fmt.Errorf("group %s: %w", groupID, err)
}
