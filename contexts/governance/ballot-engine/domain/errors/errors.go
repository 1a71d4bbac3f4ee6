package errors

import "errors"

// Every error here is a terminal business-rule violation: retrying the same
// operation with the same input against unchanged state reproduces it.
var (
	ErrUnauthorized     = errors.New("caller is not authorized")
	ErrLengthMismatch   = errors.New("accounts and powers must have the same length")
	ErrInvalidOptions   = errors.New("at least 2 non-empty options required")
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrPollNotFound     = errors.New("poll not found")
	ErrInvalidOption    = errors.New("invalid option index")
	ErrNoVotingPower    = errors.New("no voting power")
	ErrAlreadyVoted     = errors.New("already voted")
	ErrPollNotActive    = errors.New("poll is not active")
	ErrAlreadyCanceled  = errors.New("poll is already canceled")
)
