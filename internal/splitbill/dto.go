package splitbill

import (
	"time"

	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/splitbill/split"
)

// CreateSplitBillRequest represents the request to create a split bill.
// Monetary fields accept either a decimal string or integer minor units.
type CreateSplitBillRequest struct {
	GroupID          string              `json:"group_id" validate:"required"`
	Description      string              `json:"description" validate:"required,min=1,max=255"`
	TotalAmount      *string             `json:"total_amount,omitempty"`
	TotalAmountMinor *int64              `json:"total_amount_minor,omitempty"`
	SplitType        string              `json:"split_type" validate:"required,oneof=EVEN PERCENTAGE EXACT"`
	Participants     []*ParticipantInput `json:"participants" validate:"required,min=1"`
}

// ParticipantInput is one participant of a new split bill
type ParticipantInput struct {
	UserID      string  `json:"user_id"`
	Percentage  *string `json:"percentage,omitempty"` // For PERCENTAGE split, e.g. "33.33"
	Amount      *string `json:"amount,omitempty"`     // For EXACT split, decimal
	AmountMinor *int64  `json:"amount_minor,omitempty"`
}

// MarkPaidRequest is the body of POST /split-bills/{id}/participants/{userId}/paid
type MarkPaidRequest struct {
	Method string `json:"method"`
	Note   string `json:"note"`
}

// SplitBillResponse represents the response for a split bill
type SplitBillResponse struct {
	ID                 string                 `json:"id"`
	GroupID            string                 `json:"group_id"`
	CreatedByID        string                 `json:"created_by_id"`
	Description        string                 `json:"description"`
	TotalAmount        int64                  `json:"total_amount"`
	TotalAmountDisplay string                 `json:"total_amount_display"`
	SplitType          split.SplitType        `json:"split_type"`
	CreatedAt          string                 `json:"created_at"`
	Participants       []*ParticipantResponse `json:"participants"`
}

// ParticipantResponse represents one participant's share
type ParticipantResponse struct {
	SplitBillID       string            `json:"split_bill_id"`
	UserID            string            `json:"user_id"`
	AmountOwed        int64             `json:"amount_owed"`
	AmountOwedDisplay string            `json:"amount_owed_display"`
	Status            ParticipantStatus `json:"status"`
	PaidAt            *string           `json:"paid_at,omitempty"`
	PaymentMethod     *string           `json:"payment_method,omitempty"`
	Note              *string           `json:"note,omitempty"`
}

// ToResponse converts a SplitBill model to a SplitBillResponse DTO
func (b *SplitBill) ToResponse(codec money.Codec) *SplitBillResponse {
	participants := make([]*ParticipantResponse, len(b.Participants))
	for i, p := range b.Participants {
		participants[i] = p.ToResponse(codec)
	}

	return &SplitBillResponse{
		ID:                 b.ID,
		GroupID:            b.GroupID,
		CreatedByID:        b.CreatedByID,
		Description:        b.Description,
		TotalAmount:        b.TotalAmount,
		TotalAmountDisplay: codec.Format(b.TotalAmount),
		SplitType:          b.SplitType,
		CreatedAt:          b.CreatedAt.Format(time.RFC3339),
		Participants:       participants,
	}
}

// ToResponse converts a Participant model to a ParticipantResponse DTO
func (p *Participant) ToResponse(codec money.Codec) *ParticipantResponse {
	resp := &ParticipantResponse{
		SplitBillID:       p.SplitBillID,
		UserID:            p.UserID,
		AmountOwed:        p.AmountOwed,
		AmountOwedDisplay: codec.Format(p.AmountOwed),
		Status:            p.Status,
		PaymentMethod:     p.PaymentMethod,
		Note:              p.Note,
	}
	if p.PaidAt != nil {
		paidAt := p.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	return resp
}
