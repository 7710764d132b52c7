package clients

import "errors"

var (
	ErrNotFound     = errors.New("client not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("member number already registered")
)
