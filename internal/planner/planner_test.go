package planner

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitsettle/internal/ledger"
	"github.com/fkhayef/splitsettle/internal/money"
)

func TestPlan_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		balances ledger.Balances
		want     []Transaction
	}{
		{
			name:     "two debtors pay one creditor",
			balances: ledger.Balances{"alice": 200, "bob": -100, "carol": -100},
			want: []Transaction{
				{From: "bob", To: "alice", Amount: 100},
				{From: "carol", To: "alice", Amount: 100},
			},
		},
		{
			name:     "one share settled",
			balances: ledger.Balances{"alice": 100, "bob": 0, "carol": -100},
			want:     []Transaction{{From: "carol", To: "alice", Amount: 100}},
		},
		{
			name:     "everything settled",
			balances: ledger.Balances{"alice": 0, "bob": 0, "carol": 0},
			want:     []Transaction{},
		},
		{
			name:     "offsetting debts net to one payment",
			balances: ledger.Balances{"alice": -20, "bob": 20},
			want:     []Transaction{{From: "alice", To: "bob", Amount: 20}},
		},
		{
			name:     "largest pairs first",
			balances: ledger.Balances{"a": 70, "b": 30, "c": -60, "d": -40},
			want: []Transaction{
				{From: "c", To: "a", Amount: 60},
				{From: "d", To: "b", Amount: 30},
				{From: "d", To: "a", Amount: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Plan(tt.balances)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlan_EmptyIsNonNil(t *testing.T) {
	got, err := Plan(nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPlan_Inconsistent(t *testing.T) {
	for _, b := range []ledger.Balances{
		{"alice": 10},
		{"alice": 10, "bob": -5},
	} {
		_, err := Plan(b)
		assert.ErrorIs(t, err, ledger.ErrLedgerInconsistency)
	}
}

func TestPlan_ExtremeBalancesAreDeterministic(t *testing.T) {
	balances := ledger.Balances{"a": math.MaxInt64, "c": 1, "b": -math.MaxInt64, "d": -1}
	want := []Transaction{
		{From: "b", To: "a", Amount: math.MaxInt64},
		{From: "d", To: "c", Amount: 1},
	}

	// map order differs between calls
	for i := 0; i < 200; i++ {
		got, err := Plan(balances)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	after, err := Apply(balances, want)
	require.NoError(t, err)
	assert.True(t, Settled(after))
}

func TestPlan_UnsettleableBalance(t *testing.T) {
	balances := ledger.Balances{"a": math.MinInt64, "b": math.MaxInt64, "c": 1}
	for i := 0; i < 50; i++ {
		_, err := Plan(balances)
		require.ErrorIs(t, err, money.ErrInvalidAmount)
	}
}

func TestPlan_TiesBreakByUserID(t *testing.T) {
	balances := ledger.Balances{"zed": 50, "amy": 50, "kim": -50, "bo": -50}

	got, err := Plan(balances)
	require.NoError(t, err)
	assert.Equal(t, []Transaction{
		{From: "bo", To: "amy", Amount: 50},
		{From: "kim", To: "zed", Amount: 50},
	}, got)
}

func randomBalances(r *rand.Rand, n int) ledger.Balances {
	b := make(ledger.Balances, n)
	var sum int64
	for i := 0; i < n-1; i++ {
		v := r.Int63n(200001) - 100000
		b[fmt.Sprintf("user-%02d", i)] = v
		sum += v
	}
	b[fmt.Sprintf("user-%02d", n-1)] = -sum
	return b
}

func TestPlan_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		balances := randomBalances(r, 2+r.Intn(12))

		plan, err := Plan(balances)
		require.NoError(t, err)

		nonZero := 0
		for _, v := range balances {
			if v != 0 {
				nonZero++
			}
		}
		if nonZero > 0 {
			assert.LessOrEqual(t, len(plan), nonZero-1)
		}

		for _, tx := range plan {
			assert.NotEqual(t, tx.From, tx.To)
			assert.Positive(t, tx.Amount)
		}

		after, err := Apply(balances, plan)
		require.NoError(t, err)
		assert.True(t, Settled(after), "balances not settled: %v", after)

		again, err := Plan(balances)
		require.NoError(t, err)
		assert.Equal(t, plan, again)
	}
}

func TestApply(t *testing.T) {
	balances := ledger.Balances{"alice": 100, "carol": -100}

	after, err := Apply(balances, []Transaction{{From: "carol", To: "alice", Amount: 40}})
	require.NoError(t, err)
	assert.Equal(t, ledger.Balances{"alice": 60, "carol": -60}, after)
	assert.Equal(t, int64(100), balances["alice"], "input must not be modified")

	_, err = Apply(balances, []Transaction{{From: "alice", To: "alice", Amount: 1}})
	assert.ErrorIs(t, err, ErrInvalidTransaction)

	_, err = Apply(balances, []Transaction{{From: "carol", To: "alice", Amount: 0}})
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}
