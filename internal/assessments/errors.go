package assessments

import "errors"

var ErrNotFound = errors.New("not found")

const (
	ErrorCodeValidation = "VALIDATION_ERROR"
	ErrorCodeScoring    = "SCORING_ERROR"
	ErrorCodeStorage    = "STORAGE_ERROR"
	ErrorCodeInternal   = "INTERNAL_ERROR"
)
