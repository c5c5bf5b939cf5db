package splitbill

import (
	"time"

	"github.com/fkhayef/splitsettle/internal/splitbill/split"
)

// ParticipantStatus is the payment state of one participant's share.
// PENDING moves to PAID or REJECTED; both are terminal.
type ParticipantStatus string

const (
	StatusPending  ParticipantStatus = "PENDING"
	StatusPaid     ParticipantStatus = "PAID"
	StatusRejected ParticipantStatus = "REJECTED"
)

// PayerMethod marks the bill creator's own share, which is paid up front.
const PayerMethod = "bill_payer"

// SplitBill is a shared expense divided among named participants
type SplitBill struct {
	ID           string          `json:"id"`
	GroupID      string          `json:"group_id"`
	CreatedByID  string          `json:"created_by_id"`
	Description  string          `json:"description"`
	TotalAmount  int64           `json:"total_amount"` // minor units
	SplitType    split.SplitType `json:"split_type"`
	Participants []*Participant  `json:"participants"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Participant is one user's share of a split bill. AmountOwed is fixed at
// creation; only the status and payment details change.
type Participant struct {
	SplitBillID   string            `json:"split_bill_id"`
	UserID        string            `json:"user_id"`
	AmountOwed    int64             `json:"amount_owed"` // minor units
	Status        ParticipantStatus `json:"status"`
	PaidAt        *time.Time        `json:"paid_at,omitempty"`
	PaymentMethod *string           `json:"payment_method,omitempty"`
	Note          *string           `json:"note,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Participant returns the share of userID, or nil
func (b *SplitBill) Participant(userID string) *Participant {
	for _, p := range b.Participants {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// CheckTransition reports why the status cannot move to next, or nil when
// the transition is allowed.
func (s ParticipantStatus) CheckTransition(next ParticipantStatus) error {
	switch next {
	case StatusPaid:
		switch s {
		case StatusPending:
			return nil
		case StatusPaid:
			return ErrAlreadySettled
		default:
			return ErrInvalidTransition
		}
	case StatusRejected:
		switch s {
		case StatusPending:
			return nil
		case StatusPaid:
			return ErrRejectionOfPaidBill
		case StatusRejected:
			return ErrAlreadyRejected
		default:
			return ErrInvalidTransition
		}
	default:
		return ErrInvalidTransition
	}
}

// StatusChange describes a transition out of PENDING
type StatusChange struct {
	To     ParticipantStatus
	At     time.Time
	Method *string
	Note   *string
}

// TransitionEvent is handed to the recorder inside the transition's
// database transaction.
type TransitionEvent struct {
	SplitBillID string
	GroupID     string
	UserID      string
	ActorID     string
	Status      ParticipantStatus
	Method      *string
	Note        *string
	At          time.Time
}
