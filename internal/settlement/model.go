package settlement

import (
	"github.com/fkhayef/splitsettle/internal/ledger"
	"github.com/fkhayef/splitsettle/internal/planner"
	"github.com/fkhayef/splitsettle/internal/splitbill"
)

// GroupBalances is a group's net position per member and its total spend
type GroupBalances struct {
	Balances   []ledger.Entry
	TotalSpent int64
}

// PaymentSummary describes how much of a split bill has been collected
type PaymentSummary struct {
	TotalPaid    int64
	TotalOwed    int64
	Balance      int64
	Settled      bool
	Participants []*splitbill.Participant
	Debts        []planner.Transaction
	SplitBill    *splitbill.SplitBill
}
