package split

import (
	"fmt"

	"github.com/fkhayef/splitsettle/internal/money"
)

// maxExactDrift is the largest mismatch between the exact amounts and the
// total that the remainder holder may absorb.
const maxExactDrift = 1

// ExactStrategy uses the amount each participant was assigned.
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() SplitType {
	return SplitTypeExact
}

// Validate checks that every participant has an amount and that they sum to the total.
func (s *ExactStrategy) Validate(totalAmount int64, participants []SplitInput) error {
	if err := validateParticipants(totalAmount, participants); err != nil {
		return err
	}

	var sum int64
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingExactAmount
		}
		if err := money.Validate(*p.Amount); err != nil {
			return err
		}
		next, err := money.Add(sum, *p.Amount)
		if err != nil {
			return err
		}
		sum = next
	}

	drift := totalAmount - sum
	if drift > maxExactDrift || drift < -maxExactDrift {
		return fmt.Errorf("%w: shares sum to %d, total is %d", ErrInvalidExactAmounts, sum, totalAmount)
	}
	return nil
}

// Calculate returns the exact amounts; a one-unit drift goes to the holder.
func (s *ExactStrategy) Calculate(totalAmount int64, holderID string, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	outputs := make([]SplitOutput, len(participants))
	var sum int64
	for i, p := range participants {
		sum += *p.Amount
		outputs[i] = SplitOutput{UserID: p.UserID, AmountOwed: *p.Amount}
	}

	if err := absorbRemainder(outputs, holderID, totalAmount-sum); err != nil {
		return nil, err
	}
	return outputs, nil
}
