// Package ledger folds a group's expenses and split bills into net
// balances per user. A positive balance means the group owes the user.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sort"

	"github.com/fkhayef/splitsettle/internal/expense"
	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/splitbill"
)

var (
	ErrLedgerInconsistency  = errors.New("ledger balances do not sum to zero")
	ErrGroupMismatch        = errors.New("record belongs to another group")
	ErrDuplicateParticipant = errors.New("participant appears twice on a split bill")
)

// InconsistencyError carries the offending sum. It matches
// ErrLedgerInconsistency with errors.Is.
type InconsistencyError struct {
	Sum int64
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: sum is %d", ErrLedgerInconsistency, e.Sum)
}

func (e *InconsistencyError) Is(target error) bool {
	return target == ErrLedgerInconsistency
}

// Balances maps user ID to net balance in minor units
type Balances map[string]int64

// Entry is one user's balance
type Entry struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

// Sorted returns the entries ordered by user ID
func (b Balances) Sorted() []Entry {
	entries := make([]Entry, 0, len(b))
	for id, v := range b {
		entries = append(entries, Entry{UserID: id, Balance: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries
}

// Sum adds every balance exactly, in 128 bits, so neither the result nor
// an overflow error depends on map order. Only a total outside int64
// fails.
func Sum(b Balances) (int64, error) {
	var hi, lo uint64
	for _, v := range b {
		var carry uint64
		lo, carry = bits.Add64(lo, uint64(v), 0)
		hi += carry
		if v < 0 {
			hi-- // sign extension
		}
	}

	total := int64(lo)
	if (hi == 0 && total >= 0) || (hi == math.MaxUint64 && total < 0) {
		return total, nil
	}
	return 0, fmt.Errorf("%w: balances total does not fit in int64", money.ErrInvalidAmount)
}

// ComputeBalances derives the group's balances. Only PENDING shares move
// money: the participant owes the bill creator. PAID shares are settled and
// REJECTED shares are absorbed by the creator. Expenses are checked but
// never change balances.
func ComputeBalances(groupID string, expenses []*expense.Expense, bills []*splitbill.SplitBill) (Balances, error) {
	for _, e := range expenses {
		if e.GroupID != groupID {
			return nil, fmt.Errorf("%w: expense %s", ErrGroupMismatch, e.ID)
		}
		if err := money.Validate(e.Amount); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
	}

	balances := make(Balances)
	for _, bill := range bills {
		if bill.GroupID != groupID {
			return nil, fmt.Errorf("%w: split bill %s", ErrGroupMismatch, bill.ID)
		}
		if err := fold(balances, bill); err != nil {
			return nil, err
		}
	}

	if err := checkConserved(balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// ComputeBillBalances is ComputeBalances restricted to one split bill
func ComputeBillBalances(bill *splitbill.SplitBill) (Balances, error) {
	balances := make(Balances)
	if err := fold(balances, bill); err != nil {
		return nil, err
	}
	if err := checkConserved(balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// GroupSpend totals the amounts of the given expenses
func GroupSpend(expenses []*expense.Expense) (int64, error) {
	var total int64
	for _, e := range expenses {
		if err := money.Validate(e.Amount); err != nil {
			return 0, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		var err error
		if total, err = money.Add(total, e.Amount); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func fold(balances Balances, bill *splitbill.SplitBill) error {
	creator := bill.CreatedByID
	if _, ok := balances[creator]; !ok {
		balances[creator] = 0
	}

	seen := make(map[string]struct{}, len(bill.Participants))
	for _, p := range bill.Participants {
		if _, dup := seen[p.UserID]; dup {
			return fmt.Errorf("%w: %s on %s", ErrDuplicateParticipant, p.UserID, bill.ID)
		}
		seen[p.UserID] = struct{}{}

		if err := money.Validate(p.AmountOwed); err != nil {
			return fmt.Errorf("split bill %s participant %s: %w", bill.ID, p.UserID, err)
		}
		if _, ok := balances[p.UserID]; !ok {
			balances[p.UserID] = 0
		}

		if p.Status != splitbill.StatusPending || p.UserID == creator {
			continue
		}

		debit, err := money.Sub(balances[p.UserID], p.AmountOwed)
		if err != nil {
			return err
		}
		credit, err := money.Add(balances[creator], p.AmountOwed)
		if err != nil {
			return err
		}
		balances[p.UserID] = debit
		balances[creator] = credit
	}
	return nil
}

func checkConserved(balances Balances) error {
	sum, err := Sum(balances)
	if err != nil {
		return err
	}
	if sum != 0 {
		return &InconsistencyError{Sum: sum}
	}
	return nil
}
