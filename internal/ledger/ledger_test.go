package ledger

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitsettle/internal/expense"
	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/splitbill"
)

const groupID = "g1"

func share(user string, amount int64, status splitbill.ParticipantStatus) *splitbill.Participant {
	return &splitbill.Participant{UserID: user, AmountOwed: amount, Status: status}
}

func bill(id, creator string, participants ...*splitbill.Participant) *splitbill.SplitBill {
	var total int64
	for _, p := range participants {
		p.SplitBillID = id
		total += p.AmountOwed
	}
	return &splitbill.SplitBill{
		ID:           id,
		GroupID:      groupID,
		CreatedByID:  creator,
		TotalAmount:  total,
		Participants: participants,
	}
}

func dinner(bob, carol splitbill.ParticipantStatus) *splitbill.SplitBill {
	return bill("dinner", "alice",
		share("alice", 100, splitbill.StatusPaid),
		share("bob", 100, bob),
		share("carol", 100, carol),
	)
}

func TestComputeBalances_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		bills []*splitbill.SplitBill
		want  Balances
	}{
		{
			name:  "all pending",
			bills: []*splitbill.SplitBill{dinner(splitbill.StatusPending, splitbill.StatusPending)},
			want:  Balances{"alice": 200, "bob": -100, "carol": -100},
		},
		{
			name:  "bob paid",
			bills: []*splitbill.SplitBill{dinner(splitbill.StatusPaid, splitbill.StatusPending)},
			want:  Balances{"alice": 100, "bob": 0, "carol": -100},
		},
		{
			name:  "bob paid and carol rejected",
			bills: []*splitbill.SplitBill{dinner(splitbill.StatusPaid, splitbill.StatusRejected)},
			want:  Balances{"alice": 0, "bob": 0, "carol": 0},
		},
		{
			name: "offsetting bills net out",
			bills: []*splitbill.SplitBill{
				bill("b1", "bob", share("alice", 50, splitbill.StatusPending)),
				bill("b2", "alice", share("bob", 30, splitbill.StatusPending)),
			},
			want: Balances{"alice": -20, "bob": 20},
		},
		{
			name: "creator's pending own share nets to zero",
			bills: []*splitbill.SplitBill{
				bill("b1", "alice", share("alice", 70, splitbill.StatusPending), share("bob", 30, splitbill.StatusPending)),
			},
			want: Balances{"alice": 30, "bob": -30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeBalances(groupID, nil, tt.bills)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			sum, err := Sum(got)
			require.NoError(t, err)
			assert.Zero(t, sum)
		})
	}
}

func TestComputeBalances_EmptyLedger(t *testing.T) {
	got, err := ComputeBalances(groupID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestComputeBalances_ExpensesDoNotMoveBalances(t *testing.T) {
	expenses := []*expense.Expense{
		{ID: "e1", GroupID: groupID, PayerID: "alice", Amount: 5000},
		{ID: "e2", GroupID: groupID, PayerID: "bob", Amount: 1200},
	}

	got, err := ComputeBalances(groupID, expenses, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	spend, err := GroupSpend(expenses)
	require.NoError(t, err)
	assert.Equal(t, int64(6200), spend)
}

func TestComputeBalances_Errors(t *testing.T) {
	t.Run("bill from another group", func(t *testing.T) {
		b := dinner(splitbill.StatusPending, splitbill.StatusPending)
		b.GroupID = "other"
		_, err := ComputeBalances(groupID, nil, []*splitbill.SplitBill{b})
		assert.ErrorIs(t, err, ErrGroupMismatch)
	})

	t.Run("expense from another group", func(t *testing.T) {
		_, err := ComputeBalances(groupID, []*expense.Expense{{ID: "e1", GroupID: "other"}}, nil)
		assert.ErrorIs(t, err, ErrGroupMismatch)
	})

	t.Run("negative expense", func(t *testing.T) {
		_, err := ComputeBalances(groupID, []*expense.Expense{{ID: "e1", GroupID: groupID, Amount: -1}}, nil)
		assert.ErrorIs(t, err, money.ErrInvalidAmount)
	})

	t.Run("duplicate participant", func(t *testing.T) {
		b := bill("b1", "alice", share("bob", 10, splitbill.StatusPending), share("bob", 10, splitbill.StatusPending))
		_, err := ComputeBalances(groupID, nil, []*splitbill.SplitBill{b})
		assert.ErrorIs(t, err, ErrDuplicateParticipant)
	})

	t.Run("negative share", func(t *testing.T) {
		b := bill("b1", "alice", share("bob", -10, splitbill.StatusPending))
		_, err := ComputeBalances(groupID, nil, []*splitbill.SplitBill{b})
		assert.ErrorIs(t, err, money.ErrInvalidAmount)
	})

	t.Run("overflow", func(t *testing.T) {
		bills := []*splitbill.SplitBill{
			bill("b1", "alice", share("bob", math.MaxInt64, splitbill.StatusPending)),
			bill("b2", "alice", share("carol", 1, splitbill.StatusPending)),
		}
		_, err := ComputeBalances(groupID, nil, bills)
		assert.ErrorIs(t, err, money.ErrInvalidAmount)
	})
}

func TestComputeBalances_Conservation(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	statuses := []splitbill.ParticipantStatus{
		splitbill.StatusPending,
		splitbill.StatusPaid,
		splitbill.StatusRejected,
	}

	for round := 0; round < 300; round++ {
		users := 2 + r.Intn(8)
		var bills []*splitbill.SplitBill
		for i, n := 0, r.Intn(12); i < n; i++ {
			creator := fmt.Sprintf("user-%d", r.Intn(users))
			var shares []*splitbill.Participant
			for _, u := range r.Perm(users)[:1+r.Intn(users)] {
				status := statuses[r.Intn(len(statuses))]
				shares = append(shares, share(fmt.Sprintf("user-%d", u), r.Int63n(1_000_000), status))
			}
			bills = append(bills, bill(fmt.Sprintf("b%d", i), creator, shares...))
		}

		got, err := ComputeBalances(groupID, nil, bills)
		require.NoError(t, err, "round %d", round)
		sum, err := Sum(got)
		require.NoError(t, err)
		require.Zero(t, sum, "round %d", round)
	}
}

func TestSum(t *testing.T) {
	t.Run("intermediate overflow is not an error", func(t *testing.T) {
		b := Balances{"a": math.MaxInt64, "c": 1, "b": -math.MaxInt64, "d": -1}
		for i := 0; i < 100; i++ {
			sum, err := Sum(b)
			require.NoError(t, err)
			require.Zero(t, sum)
		}
	})

	t.Run("extremes", func(t *testing.T) {
		sum, err := Sum(Balances{"a": math.MinInt64})
		require.NoError(t, err)
		assert.Equal(t, int64(math.MinInt64), sum)

		sum, err = Sum(Balances{"a": math.MaxInt64, "b": -5})
		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64-5), sum)
	})

	t.Run("total outside int64", func(t *testing.T) {
		_, err := Sum(Balances{"a": math.MaxInt64, "b": 1})
		assert.ErrorIs(t, err, money.ErrInvalidAmount)

		_, err = Sum(Balances{"a": math.MinInt64, "b": -1})
		assert.ErrorIs(t, err, money.ErrInvalidAmount)
	})
}

func TestInconsistencyError(t *testing.T) {
	var err error = &InconsistencyError{Sum: 7}
	assert.ErrorIs(t, err, ErrLedgerInconsistency)
	assert.Contains(t, err.Error(), "7")
}

func TestComputeBillBalances(t *testing.T) {
	got, err := ComputeBillBalances(dinner(splitbill.StatusPaid, splitbill.StatusPending))
	require.NoError(t, err)
	assert.Equal(t, Balances{"alice": 100, "bob": 0, "carol": -100}, got)
}

func TestBalancesSorted(t *testing.T) {
	b := Balances{"carol": -5, "alice": 10, "bob": -5}
	assert.Equal(t, []Entry{
		{UserID: "alice", Balance: 10},
		{UserID: "bob", Balance: -5},
		{UserID: "carol", Balance: -5},
	}, b.Sorted())
}
