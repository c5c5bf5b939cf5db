package expense

import "time"

// Expense is a payment recorded against a group. Expenses are immutable
// once created and never move balances on their own: shared costs are
// settled through split bills, which may link back via SplitBillID.
type Expense struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	PayerID     string    `json:"payer_id"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"` // minor units
	Category    string    `json:"category"`
	SplitBillID *string   `json:"split_bill_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsShared reports whether the expense is backed by a split bill
func (e *Expense) IsShared() bool {
	return e.SplitBillID != nil && *e.SplitBillID != ""
}
