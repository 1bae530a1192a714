package domain

import "errors"

// ErrInvalidInput is returned when a request body fails validation.
var ErrInvalidInput = errors.New("invalid input")
