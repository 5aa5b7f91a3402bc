package models

import "errors"

var (
	// ErrNotAuthenticated is returned when no owner is attached to the request.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotFound is returned when a record or shared report is absent for the
	// caller. Expired shared reports are reported the same way.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when user-supplied measurements fail validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists is returned when registering a login that is taken.
	ErrAlreadyExists = errors.New("already exists")
)
