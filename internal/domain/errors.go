package domain

import "github.com/cockroachdb/errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrSeatBlocked    = errors.New("seat blocked")
	ErrConflict       = errors.New("conflict")
	ErrNotConfirmable = errors.New("reservation expired or already processed")
)
