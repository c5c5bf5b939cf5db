package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitsettle/internal/database"
	"github.com/fkhayef/splitsettle/internal/expense"
	"github.com/fkhayef/splitsettle/internal/group"
	"github.com/fkhayef/splitsettle/internal/ledger"
	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/planner"
	"github.com/fkhayef/splitsettle/internal/settlement/cache"
	"github.com/fkhayef/splitsettle/internal/splitbill"
	"github.com/fkhayef/splitsettle/internal/splitbill/split"
)

type fixture struct {
	settlement *Service
	bills      *splitbill.Service
	expenses   *expense.Service
	groups     *group.Service
	cache      *cache.Memory
	billRepo   *splitbill.Repository
	groupID    string
	codec      money.Codec
}

// invalidatingLister simulates a ledger write landing while a plan is
// being computed.
type invalidatingLister struct {
	BillLister
	cache cache.Cache
	armed bool
}

func (l *invalidatingLister) ListByGroupID(ctx context.Context, groupID string) ([]*splitbill.SplitBill, error) {
	if l.armed {
		l.armed = false
		_ = l.cache.BeginWrite(ctx, groupID)
		_ = l.cache.EndWrite(ctx, groupID)
	}
	return l.BillLister.ListByGroupID(ctx, groupID)
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := database.NewTestDB(t)
	codec := money.NewCodec(2)

	groups := group.NewService(group.NewRepository(db))
	g, _, err := groups.Create(context.Background(), "alice", &group.CreateGroupRequest{
		Name:      "Trip",
		MemberIDs: []string{"bob", "carol"},
	})
	require.NoError(t, err)

	plans := cache.NewMemory()
	expenseRepo := expense.NewRepository(db)
	billRepo := splitbill.NewRepository(db)

	settlement := NewService(groups, expenseRepo, billRepo, plans, nil)
	bills := splitbill.NewService(billRepo, groups, split.NewSplitStrategyFactory(), codec,
		splitbill.Hooks{Invalidator: settlement})

	return &fixture{
		settlement: settlement,
		bills:      bills,
		expenses:   expense.NewService(expenseRepo, groups, bills, codec),
		groups:     groups,
		cache:      plans,
		billRepo:   billRepo,
		groupID:    g.ID,
		codec:      codec,
	}
}

func (f *fixture) evenBill(t *testing.T, creator string, total int64, users ...string) *splitbill.SplitBill {
	t.Helper()
	req := &splitbill.CreateSplitBillRequest{
		GroupID:          f.groupID,
		Description:      "Dinner",
		TotalAmountMinor: &total,
		SplitType:        "EVEN",
	}
	for _, u := range users {
		req.Participants = append(req.Participants, &splitbill.ParticipantInput{UserID: u})
	}
	bill, err := f.bills.Create(context.Background(), creator, req)
	require.NoError(t, err)
	return bill
}

func TestService_SettlementLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	bill := f.evenBill(t, "alice", 300, "alice", "bob", "carol")

	plan, err := f.settlement.GetGroupSettlement(ctx, f.groupID)
	require.NoError(t, err)
	assert.Equal(t, []planner.Transaction{
		{From: "bob", To: "alice", Amount: 100},
		{From: "carol", To: "alice", Amount: 100},
	}, plan)

	_, cached, err := f.cache.Get(ctx, f.groupID)
	require.NoError(t, err)
	assert.True(t, cached)

	_, err = f.bills.MarkAsPaid(ctx, bill.ID, "bob", "cash", "")
	require.NoError(t, err)

	_, cached, err = f.cache.Get(ctx, f.groupID)
	require.NoError(t, err)
	assert.False(t, cached, "transition must drop the cached plan")

	plan, err = f.settlement.GetGroupSettlement(ctx, f.groupID)
	require.NoError(t, err)
	assert.Equal(t, []planner.Transaction{{From: "carol", To: "alice", Amount: 100}}, plan)

	// a refused retry changes nothing
	_, err = f.bills.MarkAsPaid(ctx, bill.ID, "bob", "cash", "")
	require.ErrorIs(t, err, splitbill.ErrAlreadySettled)
	again, err := f.settlement.GetGroupSettlement(ctx, f.groupID)
	require.NoError(t, err)
	assert.Equal(t, plan, again)

	_, err = f.bills.Reject(ctx, bill.ID, "carol")
	require.NoError(t, err)

	plan, err = f.settlement.GetGroupSettlement(ctx, f.groupID)
	require.NoError(t, err)
	assert.NotNil(t, plan)
	assert.Empty(t, plan)

	balances, err := f.settlement.GetGroupBalances(ctx, f.groupID)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Entry{
		{UserID: "alice", Balance: 0},
		{UserID: "bob", Balance: 0},
		{UserID: "carol", Balance: 0},
	}, balances.Balances)
}

func TestService_OffsettingBillsNet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// alice owes bob 50, bob owes alice 30
	f.evenBill(t, "bob", 50, "alice")
	f.evenBill(t, "alice", 30, "bob")

	plan, err := f.settlement.GetGroupSettlement(ctx, f.groupID)
	require.NoError(t, err)
	assert.Equal(t, []planner.Transaction{{From: "alice", To: "bob", Amount: 20}}, plan)
}

func TestService_BalancesIncludeSpend(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	amount := "12.50"
	_, err := f.expenses.Create(ctx, "bob", &expense.CreateExpenseRequest{
		GroupID:     f.groupID,
		Description: "Snacks",
		Amount:      &amount,
	})
	require.NoError(t, err)
	f.evenBill(t, "alice", 1000, "alice", "bob")

	got, err := f.settlement.GetGroupBalances(ctx, f.groupID)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), got.TotalSpent)
	assert.Equal(t, []ledger.Entry{
		{UserID: "alice", Balance: 500},
		{UserID: "bob", Balance: -500},
	}, got.Balances)
}

func TestService_StalePlanIsNotCached(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.evenBill(t, "alice", 300, "alice", "bob", "carol")

	lister := &invalidatingLister{
		BillLister: f.settlement.bills,
		cache:      f.cache,
		armed:      true,
	}
	f.settlement.bills = lister

	_, err := f.settlement.GetGroupSettlement(ctx, f.groupID)
	require.NoError(t, err)

	_, cached, err := f.cache.Get(ctx, f.groupID)
	require.NoError(t, err)
	assert.False(t, cached)

	// the next read caches normally
	_, err = f.settlement.GetGroupSettlement(ctx, f.groupID)
	require.NoError(t, err)
	_, cached, err = f.cache.Get(ctx, f.groupID)
	require.NoError(t, err)
	assert.True(t, cached)
}

// A reader that loads the ledger while a transition is uncommitted must
// not leave its plan behind, even when the post-commit step fails.
func TestService_PlanReadDuringWriteIsNeverCached(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	bill := f.evenBill(t, "alice", 300, "alice", "bob", "carol")

	_, err := f.settlement.GetGroupSettlement(ctx, f.groupID)
	require.NoError(t, err)

	// pre-commit half of bob's payment
	require.NoError(t, f.settlement.BeginWrite(ctx, f.groupID))

	plan, err := f.settlement.GetGroupSettlement(ctx, f.groupID)
	require.NoError(t, err)
	require.Len(t, plan, 2, "reader still sees bob pending")

	applied, err := f.billRepo.Transition(ctx, bill.ID, "bob",
		splitbill.StatusChange{To: splitbill.StatusPaid, At: time.Now()}, nil)
	require.NoError(t, err)
	require.True(t, applied)
	// EndWrite is lost

	plan, err = f.settlement.GetGroupSettlement(ctx, f.groupID)
	require.NoError(t, err)
	assert.Equal(t, []planner.Transaction{{From: "carol", To: "alice", Amount: 100}}, plan)

	_, cached, err := f.cache.Get(ctx, f.groupID)
	require.NoError(t, err)
	assert.False(t, cached, "group stays uncacheable until the write ends")

	require.NoError(t, f.settlement.EndWrite(ctx, f.groupID))
	_, err = f.settlement.GetGroupSettlement(ctx, f.groupID)
	require.NoError(t, err)
	_, cached, err = f.cache.Get(ctx, f.groupID)
	require.NoError(t, err)
	assert.True(t, cached)
}

func TestService_UnknownGroup(t *testing.T) {
	f := setup(t)

	_, err := f.settlement.GetGroupSettlement(context.Background(), "missing")
	assert.ErrorIs(t, err, group.ErrGroupNotFound)

	_, err = f.settlement.GetGroupBalances(context.Background(), "missing")
	assert.ErrorIs(t, err, group.ErrGroupNotFound)
}

func TestService_PaymentSummary(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	bill := f.evenBill(t, "alice", 300, "alice", "bob", "carol")

	summary, err := f.settlement.GetPaymentSummary(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), summary.TotalOwed)
	assert.Equal(t, int64(0), summary.TotalPaid)
	assert.Equal(t, int64(200), summary.Balance)
	assert.False(t, summary.Settled)
	assert.Len(t, summary.Debts, 2)

	_, err = f.bills.MarkAsPaid(ctx, bill.ID, "bob", "", "")
	require.NoError(t, err)
	_, err = f.bills.Reject(ctx, bill.ID, "carol")
	require.NoError(t, err)

	summary, err = f.settlement.GetPaymentSummary(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), summary.TotalOwed)
	assert.Equal(t, int64(100), summary.TotalPaid)
	assert.Equal(t, int64(0), summary.Balance)
	assert.True(t, summary.Settled)
	assert.Empty(t, summary.Debts)

	_, err = f.settlement.GetPaymentSummary(ctx, "missing")
	assert.ErrorIs(t, err, splitbill.ErrSplitBillNotFound)
}
