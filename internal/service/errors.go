package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrBillingLocked    = errors.New("billing is locked; pass allow_locked to override it explicitly")
	ErrAlreadyFinalized = errors.New("billing already confirmed or locked for this month")
)
