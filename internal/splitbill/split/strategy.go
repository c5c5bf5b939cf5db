package split

import (
	"errors"
	"fmt"

	"github.com/fkhayef/splitsettle/internal/money"
)

// SplitType defines the type of split strategy
type SplitType string

const (
	SplitTypeEven       SplitType = "EVEN"
	SplitTypePercentage SplitType = "PERCENTAGE"
	SplitTypeExact      SplitType = "EXACT"
)

// BasisPointsTotal is 100% expressed in basis points.
const BasisPointsTotal = 10000

// SplitInput represents a participant in a split with optional values
type SplitInput struct {
	UserID      string `json:"user_id"`
	BasisPoints *int64 `json:"basis_points,omitempty"` // For PERCENTAGE split, 1% = 100
	Amount      *int64 `json:"amount,omitempty"`       // For EXACT split, minor units
}

// SplitOutput represents the calculated share of a single participant
type SplitOutput struct {
	UserID     string `json:"user_id"`
	AmountOwed int64  `json:"amount_owed"`
}

// Strategy is the interface that all split strategies must implement.
// Outputs are returned in input order and always sum to totalAmount.
type Strategy interface {
	// Calculate computes the share of every participant. holderID absorbs
	// rounding remainders and must be one of the participants.
	Calculate(totalAmount int64, holderID string, participants []SplitInput) ([]SplitOutput, error)

	// Type returns the type identifier for this strategy
	Type() SplitType

	// Validate checks if the inputs are valid for this strategy
	Validate(totalAmount int64, participants []SplitInput) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEven:
		return &EvenStrategy{}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{}, nil
	case SplitTypeExact:
		return &ExactStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSplitType, splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(SplitType(splitType))
}

var (
	ErrUnknownSplitType     = errors.New("unknown split type")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrDuplicateParticipant = errors.New("participant listed more than once")
	ErrUnknownHolder        = errors.New("remainder holder is not a participant")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrInvalidExactAmounts  = errors.New("exact amounts must sum to total amount")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrMissingExactAmount   = errors.New("exact amount required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
)

// RemainderHolder picks who absorbs rounding: the creator when they take
// part in the bill, otherwise the first listed participant.
func RemainderHolder(creatorID string, participants []SplitInput) string {
	for _, p := range participants {
		if p.UserID == creatorID {
			return creatorID
		}
	}
	if len(participants) == 0 {
		return ""
	}
	return participants[0].UserID
}

// validateParticipants checks the shared preconditions of every strategy.
func validateParticipants(totalAmount int64, participants []SplitInput) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if err := money.Validate(totalAmount); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if p.UserID == "" {
			return fmt.Errorf("%w: empty user id", ErrNoParticipants)
		}
		if _, dup := seen[p.UserID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, p.UserID)
		}
		seen[p.UserID] = struct{}{}
	}
	return nil
}

// absorbRemainder adds remainder to the holder's share.
func absorbRemainder(outputs []SplitOutput, holderID string, remainder int64) error {
	if remainder == 0 {
		return nil
	}
	for i := range outputs {
		if outputs[i].UserID != holderID {
			continue
		}
		adjusted, err := money.Add(outputs[i].AmountOwed, remainder)
		if err != nil {
			return err
		}
		if adjusted < 0 {
			return fmt.Errorf("%w: remainder leaves %s with a negative share", money.ErrInvalidAmount, holderID)
		}
		outputs[i].AmountOwed = adjusted
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownHolder, holderID)
}
