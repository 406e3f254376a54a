package voting

import "errors"

// RejectionError marks an expected business-rule rejection. Callers
// translate it into a 400-class response; every other error is a storage
// fault that surfaces as 500. Returning one from a transaction closure
// still rolls the transaction back, so a rejection never leaves partial
// writes behind.
type RejectionError struct {
	Reason string
}

// Error implements the error interface.
func (e *RejectionError) Error() string { return e.Reason }

// Rejections returned by the assignment and voting engines.
var (
	ErrNotFound        = &RejectionError{Reason: "entity not found"}
	ErrNotAssigned     = &RejectionError{Reason: "user is not assigned to this form"}
	ErrAlreadyAssigned = &RejectionError{Reason: "user is already assigned to this form"}
	ErrAlreadyVoted    = &RejectionError{Reason: "user has already voted on this form"}
	ErrWeightMismatch  = &RejectionError{Reason: "ballot total does not equal the proxy amount"}
	ErrUnknownDecision = &RejectionError{Reason: "decision does not belong to this form"}
	ErrInvalidBallot   = &RejectionError{Reason: "ballot is empty or contains invalid entries"}
	ErrGroupNotEmpty   = &RejectionError{Reason: "group still has members"}
)

// IsRejection reports whether err is an expected business rejection.
func IsRejection(err error) bool {
	var reject *RejectionError
	return errors.As(err, &reject)
}
