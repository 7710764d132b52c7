package applications

import "errors"

var (
	ErrNotFound        = errors.New("application not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrAlreadyDecided  = errors.New("application already decided")
	ErrSelfApproval    = errors.New("approver must differ from analyst")
	ErrInvalidDecision = errors.New("decision must be approved or rejected")
)
