package activity

import (
	"time"
)

// Action is what happened to a participant's share
type Action string

const (
	ActionPaid     Action = "PAID"
	ActionRejected Action = "REJECTED"
)

// Event is one entry of a split bill's activity log. UserID is the
// participant whose share changed; ActorID is who made the change.
type Event struct {
	ID            string    `json:"id"`
	SplitBillID   string    `json:"split_bill_id"`
	GroupID       string    `json:"group_id"`
	UserID        string    `json:"user_id"`
	ActorID       string    `json:"actor_id"`
	Action        Action    `json:"action"`
	PaymentMethod *string   `json:"payment_method,omitempty"`
	Note          *string   `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventResponse represents an activity event in API responses
type EventResponse struct {
	ID            string  `json:"id"`
	SplitBillID   string  `json:"split_bill_id"`
	UserID        string  `json:"user_id"`
	ActorID       string  `json:"actor_id"`
	Action        Action  `json:"action"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	Note          *string `json:"note,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func (e *Event) ToResponse() *EventResponse {
	return &EventResponse{
		ID:            e.ID,
		SplitBillID:   e.SplitBillID,
		UserID:        e.UserID,
		ActorID:       e.ActorID,
		Action:        e.Action,
		PaymentMethod: e.PaymentMethod,
		Note:          e.Note,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}
