// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import "errors"

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrPollNotOpen      = errors.New("the poll is not open yet")
	ErrPollClosed       = errors.New("the poll is closed")
	ErrInvalidSelection = errors.New("the selected option does not exist")
	ErrAlreadyVoted     = errors.New("participant has already voted")
)
