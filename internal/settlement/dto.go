package settlement

import (
	"github.com/fkhayef/splitsettle/internal/ledger"
	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/planner"
	"github.com/fkhayef/splitsettle/internal/splitbill"
)

// TransactionResponse represents a single payment of a settlement plan
type TransactionResponse struct {
	From          string `json:"from"`
	To            string `json:"to"`
	Amount        int64  `json:"amount"`
	AmountDisplay string `json:"amount_display"`
}

// BalanceResponse represents one member's net balance.
// Positive = the group owes the member, negative = the member owes the group.
type BalanceResponse struct {
	UserID         string `json:"user_id"`
	Balance        int64  `json:"balance"`
	BalanceDisplay string `json:"balance_display"`
}

// GroupBalancesResponse represents the response for GET /groups/{groupId}/balances
type GroupBalancesResponse struct {
	Balances          []*BalanceResponse `json:"balances"`
	TotalSpent        int64              `json:"total_spent"`
	TotalSpentDisplay string             `json:"total_spent_display"`
}

// SummaryResponse represents the collection state of a split bill
type SummaryResponse struct {
	TotalPaid        int64                            `json:"total_paid"`
	TotalPaidDisplay string                           `json:"total_paid_display"`
	TotalOwed        int64                            `json:"total_owed"`
	TotalOwedDisplay string                           `json:"total_owed_display"`
	Balance          int64                            `json:"balance"`
	BalanceDisplay   string                           `json:"balance_display"`
	Settled          bool                             `json:"settled"`
	Participants     []*splitbill.ParticipantResponse `json:"participants"`
}

// PaymentSummaryResponse represents the response for GET /split-bills/{id}/payment-summary
type PaymentSummaryResponse struct {
	Summary   *SummaryResponse             `json:"summary"`
	Debts     []*TransactionResponse       `json:"debts"`
	SplitBill *splitbill.SplitBillResponse `json:"split_bill"`
}

func toTransactionResponses(plan []planner.Transaction, codec money.Codec) []*TransactionResponse {
	out := make([]*TransactionResponse, len(plan))
	for i, tx := range plan {
		out[i] = &TransactionResponse{
			From:          tx.From,
			To:            tx.To,
			Amount:        tx.Amount,
			AmountDisplay: codec.Format(tx.Amount),
		}
	}
	return out
}

// ToResponse converts GroupBalances to a GroupBalancesResponse DTO
func (g *GroupBalances) ToResponse(codec money.Codec) *GroupBalancesResponse {
	balances := make([]*BalanceResponse, len(g.Balances))
	for i, e := range g.Balances {
		balances[i] = toBalanceResponse(e, codec)
	}
	return &GroupBalancesResponse{
		Balances:          balances,
		TotalSpent:        g.TotalSpent,
		TotalSpentDisplay: codec.Format(g.TotalSpent),
	}
}

func toBalanceResponse(e ledger.Entry, codec money.Codec) *BalanceResponse {
	return &BalanceResponse{
		UserID:         e.UserID,
		Balance:        e.Balance,
		BalanceDisplay: codec.Format(e.Balance),
	}
}

// ToResponse converts a PaymentSummary to a PaymentSummaryResponse DTO
func (p *PaymentSummary) ToResponse(codec money.Codec) *PaymentSummaryResponse {
	participants := make([]*splitbill.ParticipantResponse, len(p.Participants))
	for i, part := range p.Participants {
		participants[i] = part.ToResponse(codec)
	}

	return &PaymentSummaryResponse{
		Summary: &SummaryResponse{
			TotalPaid:        p.TotalPaid,
			TotalPaidDisplay: codec.Format(p.TotalPaid),
			TotalOwed:        p.TotalOwed,
			TotalOwedDisplay: codec.Format(p.TotalOwed),
			Balance:          p.Balance,
			BalanceDisplay:   codec.Format(p.Balance),
			Settled:          p.Settled,
			Participants:     participants,
		},
		Debts:     toTransactionResponses(p.Debts, codec),
		SplitBill: p.SplitBill.ToResponse(codec),
	}
}
