package errors

import (
	"errors"
)

var (
	ErrEmptyAuth       = errors.New("missing authorization")
	ErrEmptySubject    = errors.New("missing subject")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrFailedHashToken = errors.New("failed hashing token")

	ErrNotFound     = errors.New("not found")
	ErrOutOfStock   = errors.New("item is out of stock")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrExpired      = errors.New("expired")
	ErrUnexpected   = errors.New("unexpected error")
)

// Kind returns the taxonomy error err wraps, or ErrUnexpected when it wraps none.
func Kind(err error) error {
	for _, kind := range []error{
		ErrNotFound,
		ErrOutOfStock,
		ErrConflict,
		ErrInvalidInput,
		ErrExpired,
		ErrEmptyAuth,
		ErrEmptySubject,
		ErrTokenInvalid,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrUnexpected
}

// InvalidInput marks a decoding or validation failure as ErrInvalidInput.
func InvalidInput(err error) error {
	return errors.Join(ErrInvalidInput, err)
}
