package splitbill

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		from ParticipantStatus
		to   ParticipantStatus
		want error
	}{
		{StatusPending, StatusPaid, nil},
		{StatusPending, StatusRejected, nil},
		{StatusPaid, StatusPaid, ErrAlreadySettled},
		{StatusRejected, StatusPaid, ErrInvalidTransition},
		{StatusPaid, StatusRejected, ErrRejectionOfPaidBill},
		{StatusRejected, StatusRejected, ErrInvalidTransition},
		{StatusPaid, StatusPending, ErrInvalidTransition},
		{StatusPending, StatusPending, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := tt.from.CheckTransition(tt.to)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAlreadyRejectedIsInvalidTransition(t *testing.T) {
	assert.True(t, errors.Is(ErrAlreadyRejected, ErrInvalidTransition))
	assert.False(t, errors.Is(ErrAlreadySettled, ErrInvalidTransition))
}
