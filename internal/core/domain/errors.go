package domain

import (
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidToken    = errors.New("invalid token")
	ErrForbidden       = errors.New("forbidden")
	ErrEmptyCart       = errors.New("cart is empty")
)

type validationError struct {
	reason string
}

func (e validationError) Error() string {
	return ErrValidation.Error() + ": " + e.reason
}

func (e validationError) Unwrap() error {
	return ErrValidation
}

// ValidationError returns an error carrying reason that matches [ErrValidation].
func ValidationError(reason string) error {
	return validationError{reason}
}

// ValidationReasons collects the reasons of every validation error in err's
// tree, in the order they were joined.
func ValidationReasons(err error) []string {
	var reasons []string
	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case validationError:
			reasons = append(reasons, e.reason)
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(e.Unwrap())
		}
	}
	walk(err)
	return reasons
}
