package splitbill

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fkhayef/splitsettle/internal/database"
	"github.com/fkhayef/splitsettle/internal/metrics"
	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/splitbill/split"
)

// percentCodec reads "33.33" as 3333 basis points
var percentCodec = money.NewCodec(2)

// GroupChecker answers group existence and membership questions
type GroupChecker interface {
	Exists(ctx context.Context, groupID string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// Invalidator brackets a ledger write of a group. BeginWrite runs inside
// the write's transaction and its failure aborts the write; EndWrite runs
// once the transaction is over, whatever its outcome.
type Invalidator interface {
	BeginWrite(ctx context.Context, groupID string) error
	EndWrite(ctx context.Context, groupID string) error
}

// Recorder persists a transition event inside the transition's transaction
type Recorder interface {
	RecordTransition(ctx context.Context, tx *database.Tx, event TransitionEvent) error
}

// Hooks are the optional collaborators notified of ledger changes
type Hooks struct {
	Recorder    Recorder
	Invalidator Invalidator
	Metrics     *metrics.Metrics
}

// Service handles split bill business logic
type Service struct {
	repo    *Repository
	groups  GroupChecker
	factory *split.Factory
	codec   money.Codec
	hooks   Hooks
	now     func() time.Time
}

// NewService creates a new split bill service
func NewService(repo *Repository, groups GroupChecker, factory *split.Factory, codec money.Codec, hooks Hooks) *Service {
	return &Service{
		repo:    repo,
		groups:  groups,
		factory: factory,
		codec:   codec,
		hooks:   hooks,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Create builds a split bill paid by creatorID. Every participant and the
// creator must belong to the group. The creator's own share, if any, is
// recorded as already paid.
func (s *Service) Create(ctx context.Context, creatorID string, req *CreateSplitBillRequest) (*SplitBill, error) {
	if strings.TrimSpace(req.Description) == "" || req.GroupID == "" {
		return nil, fmt.Errorf("%w: group_id and description are required", ErrInvalidSplitBill)
	}

	total, err := s.codec.Resolve(req.TotalAmount, req.TotalAmountMinor)
	if err != nil {
		return nil, err
	}

	strategy, err := s.factory.CreateFromString(strings.ToUpper(req.SplitType))
	if err != nil {
		return nil, err
	}

	inputs, err := s.splitInputs(strategy.Type(), req.Participants)
	if err != nil {
		return nil, err
	}

	if err := s.groups.Exists(ctx, req.GroupID); err != nil {
		return nil, err
	}
	if err := s.requireMembers(ctx, req.GroupID, creatorID, inputs); err != nil {
		return nil, err
	}

	if err := strategy.Validate(total, inputs); err != nil {
		return nil, err
	}
	outputs, err := strategy.Calculate(total, split.RemainderHolder(creatorID, inputs), inputs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	bill := &SplitBill{
		GroupID:     req.GroupID,
		CreatedByID: creatorID,
		Description: strings.TrimSpace(req.Description),
		TotalAmount: total,
		SplitType:   strategy.Type(),
		CreatedAt:   now,
	}

	var sum int64
	for _, out := range outputs {
		if sum, err = money.Add(sum, out.AmountOwed); err != nil {
			return nil, err
		}
		p := &Participant{
			UserID:     out.UserID,
			AmountOwed: out.AmountOwed,
			Status:     StatusPending,
			UpdatedAt:  now,
		}
		if out.UserID == creatorID {
			method := PayerMethod
			p.Status = StatusPaid
			p.PaidAt = &now
			p.PaymentMethod = &method
		}
		bill.Participants = append(bill.Participants, p)
	}
	if sum != total {
		return nil, fmt.Errorf("%w: shares sum to %d, total is %d", ErrInvalidSplitBill, sum, total)
	}

	begun := false
	err = s.repo.Create(ctx, bill, func(*database.Tx) error {
		if err := s.beginWrite(ctx, bill.GroupID); err != nil {
			return err
		}
		begun = true
		return nil
	})
	if begun {
		s.endWrite(ctx, bill.GroupID)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("split bill created",
		"split_bill_id", bill.ID,
		"group_id", bill.GroupID,
		"split_type", bill.SplitType,
		"participants", len(bill.Participants),
	)
	return bill, nil
}

// GetByID retrieves a split bill with its participants
func (s *Service) GetByID(ctx context.Context, id string) (*SplitBill, error) {
	bill, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, ErrSplitBillNotFound
	}
	return bill, nil
}

// ListByGroup retrieves every split bill of a group
func (s *Service) ListByGroup(ctx context.Context, groupID string) ([]*SplitBill, error) {
	if err := s.groups.Exists(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.ListByGroupID(ctx, groupID)
}

// MarkAsPaid settles the share of userID on a split bill. A repeated call
// returns ErrAlreadySettled and changes nothing.
func (s *Service) MarkAsPaid(ctx context.Context, splitBillID, userID, method, note string) (*Participant, error) {
	return s.transition(ctx, userID, splitBillID, userID, StatusChange{
		To:     StatusPaid,
		Method: optional(method),
		Note:   optional(note),
	})
}

// Reject declines the share of userID on a split bill
func (s *Service) Reject(ctx context.Context, splitBillID, userID string) (*Participant, error) {
	return s.transition(ctx, userID, splitBillID, userID, StatusChange{To: StatusRejected})
}

// MarkAsPaidBy is MarkAsPaid on behalf of actorID, who must be the
// participant or the bill's creator confirming receipt.
func (s *Service) MarkAsPaidBy(ctx context.Context, actorID, splitBillID, userID, method, note string) (*Participant, error) {
	return s.transition(ctx, actorID, splitBillID, userID, StatusChange{
		To:     StatusPaid,
		Method: optional(method),
		Note:   optional(note),
	})
}

func (s *Service) transition(ctx context.Context, actorID, splitBillID, userID string, change StatusChange) (*Participant, error) {
	bill, err := s.GetByID(ctx, splitBillID)
	if err != nil {
		return nil, err
	}
	current := bill.Participant(userID)
	if current == nil {
		return nil, ErrParticipantNotFound
	}
	if actorID != userID && !(change.To == StatusPaid && actorID == bill.CreatedByID) {
		return nil, ErrNotAllowed
	}
	if err := current.Status.CheckTransition(change.To); err != nil {
		s.hooks.Metrics.ObserveTransition(string(change.To), metrics.OutcomeConflict)
		return nil, err
	}

	change.At = s.now()
	begun := false
	applied, err := s.repo.Transition(ctx, splitBillID, userID, change, func(tx *database.Tx) error {
		if s.hooks.Recorder != nil {
			event := TransitionEvent{
				SplitBillID: splitBillID,
				GroupID:     bill.GroupID,
				UserID:      userID,
				ActorID:     actorID,
				Status:      change.To,
				Method:      change.Method,
				Note:        change.Note,
				At:          change.At,
			}
			if err := s.hooks.Recorder.RecordTransition(ctx, tx, event); err != nil {
				return fmt.Errorf("failed to record transition: %w", err)
			}
		}
		if err := s.beginWrite(ctx, bill.GroupID); err != nil {
			return err
		}
		begun = true
		return nil
	})
	if begun {
		s.endWrite(ctx, bill.GroupID)
	}
	if err != nil {
		return nil, err
	}

	if !applied {
		// Lost the race: another caller moved the row out of PENDING.
		s.hooks.Metrics.ObserveTransition(string(change.To), metrics.OutcomeConflict)
		latest, err := s.repo.GetParticipant(ctx, splitBillID, userID)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return nil, ErrParticipantNotFound
		}
		if err := latest.Status.CheckTransition(change.To); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	s.hooks.Metrics.ObserveTransition(string(change.To), metrics.OutcomeApplied)

	slog.Info("participant status changed",
		"split_bill_id", splitBillID,
		"user_id", userID,
		"actor_id", actorID,
		"status", change.To,
	)

	updated, err := s.repo.GetParticipant(ctx, splitBillID, userID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrParticipantNotFound
	}
	return updated, nil
}

// beginWrite runs before commit; a failure aborts the write so no plan
// computed from the old ledger can be cached.
func (s *Service) beginWrite(ctx context.Context, groupID string) error {
	if s.hooks.Invalidator == nil {
		return nil
	}
	if err := s.hooks.Invalidator.BeginWrite(ctx, groupID); err != nil {
		return fmt.Errorf("failed to invalidate settlement cache: %w", err)
	}
	return nil
}

// endWrite lets the group's plans be cached again. On failure the group
// stays uncacheable until the write lease runs out.
func (s *Service) endWrite(ctx context.Context, groupID string) {
	if s.hooks.Invalidator == nil {
		return
	}
	if err := s.hooks.Invalidator.EndWrite(ctx, groupID); err != nil {
		slog.Error("failed to end settlement cache write", "group_id", groupID, "error", err)
	}
}

func (s *Service) splitInputs(splitType split.SplitType, participants []*ParticipantInput) ([]split.SplitInput, error) {
	inputs := make([]split.SplitInput, 0, len(participants))
	for _, p := range participants {
		if p == nil {
			continue
		}
		in := split.SplitInput{UserID: strings.TrimSpace(p.UserID)}
		switch splitType {
		case split.SplitTypePercentage:
			if p.Percentage != nil {
				bp, err := percentCodec.Parse(*p.Percentage)
				if err != nil {
					return nil, fmt.Errorf("%w: %s", split.ErrPercentageOutOfRange, *p.Percentage)
				}
				in.BasisPoints = &bp
			}
		case split.SplitTypeExact:
			if p.Amount != nil || p.AmountMinor != nil {
				amount, err := s.codec.Resolve(p.Amount, p.AmountMinor)
				if err != nil {
					return nil, err
				}
				in.Amount = &amount
			}
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func (s *Service) requireMembers(ctx context.Context, groupID, creatorID string, inputs []split.SplitInput) error {
	check := func(userID string) error {
		ok, err := s.groups.IsMember(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotGroupMember, userID)
		}
		return nil
	}

	if err := check(creatorID); err != nil {
		return err
	}
	for _, in := range inputs {
		if in.UserID == "" {
			continue
		}
		if err := check(in.UserID); err != nil {
			return err
		}
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
