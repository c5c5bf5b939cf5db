package split

import (
	"fmt"
	"math"

	"github.com/fkhayef/splitsettle/internal/money"
)

// PercentageStrategy divides the bill by basis points (1% = 100).
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

// Validate checks that every participant has a percentage and that they sum to 100%.
func (s *PercentageStrategy) Validate(totalAmount int64, participants []SplitInput) error {
	if err := validateParticipants(totalAmount, participants); err != nil {
		return err
	}
	if totalAmount > math.MaxInt64/BasisPointsTotal {
		return fmt.Errorf("%w: %d is too large for a percentage split", money.ErrInvalidAmount, totalAmount)
	}

	var total int64
	for _, p := range participants {
		if p.BasisPoints == nil {
			return ErrMissingPercentage
		}
		if *p.BasisPoints < 0 || *p.BasisPoints > BasisPointsTotal {
			return ErrPercentageOutOfRange
		}
		total += *p.BasisPoints
	}

	if total != BasisPointsTotal {
		return ErrInvalidPercentages
	}
	return nil
}

// Calculate floors every share and hands the leftover minor units to the holder.
func (s *PercentageStrategy) Calculate(totalAmount int64, holderID string, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	outputs := make([]SplitOutput, len(participants))
	var distributed int64
	for i, p := range participants {
		amount := totalAmount * *p.BasisPoints / BasisPointsTotal
		distributed += amount
		outputs[i] = SplitOutput{UserID: p.UserID, AmountOwed: amount}
	}

	if err := absorbRemainder(outputs, holderID, totalAmount-distributed); err != nil {
		return nil, err
	}
	return outputs, nil
}
