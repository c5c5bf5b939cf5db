package expense

import "github.com/fkhayef/splitsettle/internal/money"

// CreateExpenseRequest represents the request to create an expense.
// Amount is a decimal string ("12.50"); AmountMinor is the same value in
// minor units. Exactly one must be set.
type CreateExpenseRequest struct {
	GroupID     string  `json:"group_id" validate:"required"`
	Description string  `json:"description" validate:"required,min=1,max=255"`
	Amount      *string `json:"amount,omitempty"`
	AmountMinor *int64  `json:"amount_minor,omitempty"`
	Category    string  `json:"category"`
	SplitBillID *string `json:"split_bill_id,omitempty"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID            string  `json:"id"`
	GroupID       string  `json:"group_id"`
	PayerID       string  `json:"payer_id"`
	Description   string  `json:"description"`
	Amount        int64   `json:"amount"`
	AmountDisplay string  `json:"amount_display"`
	Category      string  `json:"category"`
	SplitBillID   *string `json:"split_bill_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse(codec money.Codec) *ExpenseResponse {
	return &ExpenseResponse{
		ID:            e.ID,
		GroupID:       e.GroupID,
		PayerID:       e.PayerID,
		Description:   e.Description,
		Amount:        e.Amount,
		AmountDisplay: codec.Format(e.Amount),
		Category:      e.Category,
		SplitBillID:   e.SplitBillID,
		CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
