package split

import "github.com/fkhayef/splitsettle/internal/money"

// EvenStrategy divides the bill equally among all participants
type EvenStrategy struct{}

// Type returns the split type identifier
func (s *EvenStrategy) Type() SplitType {
	return SplitTypeEven
}

// Validate checks if the inputs are valid for an even split
func (s *EvenStrategy) Validate(totalAmount int64, participants []SplitInput) error {
	return validateParticipants(totalAmount, participants)
}

// Calculate gives every participant total/n; the holder also takes the
// total%n minor units that cannot be divided evenly.
func (s *EvenStrategy) Calculate(totalAmount int64, holderID string, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	share, remainder, err := money.SplitEven(totalAmount, len(participants))
	if err != nil {
		return nil, err
	}

	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		outputs[i] = SplitOutput{UserID: p.UserID, AmountOwed: share}
	}

	if err := absorbRemainder(outputs, holderID, remainder); err != nil {
		return nil, err
	}
	return outputs, nil
}
