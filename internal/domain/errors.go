package domain

import "errors"

var (
	ErrMalformedInput = errors.New("malformed input")
	ErrNotFound       = errors.New("entity not found")
)
