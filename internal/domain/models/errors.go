package models

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrDivisionByZero = errors.New("division by zero: monthly income must be greater than zero")
	ErrModelNotReady  = errors.New("model not ready")
)
