package splitbill

import (
	"errors"
	"fmt"
)

var (
	ErrSplitBillNotFound   = errors.New("split bill not found")
	ErrParticipantNotFound = errors.New("participant not found on split bill")
	ErrInvalidSplitBill    = errors.New("invalid split bill")
	ErrNotGroupMember      = errors.New("user is not a member of the group")
	ErrNotAllowed          = errors.New("not allowed to change this participant")

	// ErrAlreadySettled is the "already done" answer to a repeated
	// mark-as-paid; retries may treat it as success.
	ErrAlreadySettled      = errors.New("participant share already settled")
	ErrRejectionOfPaidBill = errors.New("cannot reject a share that is already paid")
	ErrInvalidTransition   = errors.New("invalid participant status transition")

	// ErrAlreadyRejected is the "already done" answer to a repeated reject.
	ErrAlreadyRejected = fmt.Errorf("%w: share already rejected", ErrInvalidTransition)
)
