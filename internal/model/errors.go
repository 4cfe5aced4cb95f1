package model

import "errors"

var (
	// Session related errors
	ErrNoToken = errors.New("no bearer token stored")

	// Positions related errors
	ErrPositionNotFound = errors.New("position not found")
	ErrNotConfirmed     = errors.New("action not confirmed")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
