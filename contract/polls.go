// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/bitvote/ledger"
	"github.com/danielhkuo/bitvote/models"
)

// MinOptions is the smallest number of options a poll can offer.
const MinOptions = 2

// CreatePoll creates a poll with an ordered list of options, open between
// open and closed inclusive. Only organizers may call it.
func (c *Contract) CreatePoll(ctx TxContext, options []string, open, closed time.Time) (*models.Poll, error) {
	caller, err := authorize(ctx, CreatePolls)
	if err != nil {
		return nil, err
	}

	if err := validateOptions(options); err != nil {
		return nil, err
	}
	if open.IsZero() || closed.IsZero() {
		return nil, fmt.Errorf("%w: open and closed are required", ErrInvalidArgument)
	}
	if closed.Before(open) {
		return nil, fmt.Errorf("%w: poll closes before it opens", ErrInvalidArgument)
	}

	poll := &models.Poll{
		ID:          ctx.NewID(),
		OrganizerID: caller.ID,
		Options:     append([]string(nil), options...),
		Open:        open.UTC(),
		Closed:      closed.UTC(),
	}

	st := ctx.State()
	key := pollKey(poll.ID)
	found, err := exists(st, key)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, fmt.Errorf("%w: poll %s", ErrAlreadyExists, poll.ID)
	}

	if err := putJSON(st, key, poll); err != nil {
		return nil, fmt.Errorf("failed to store poll: %w", err)
	}

	c.log.Info("poll created",
		"poll_id", poll.ID,
		"organizer", caller.ID,
		"options", len(poll.Options),
		"window", humanize.RelTime(poll.Open, poll.Closed, "long", "long"),
	)
	return poll, nil
}

func validateOptions(options []string) error {
	if len(options) < MinOptions {
		return fmt.Errorf("%w: a poll needs at least %d options", ErrInvalidArgument, MinOptions)
	}
	seen := make(map[string]bool, len(options))
	for i, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: option %d is empty", ErrInvalidArgument, i)
		}
		// Results are summarized by label, so labels must be unique.
		if seen[opt] {
			return fmt.Errorf("%w: duplicate option %q", ErrInvalidArgument, opt)
		}
		seen[opt] = true
	}
	return nil
}

// GetPoll returns a poll to any registered participant.
func (c *Contract) GetPoll(ctx TxContext, pollID string) (*models.Poll, error) {
	if _, err := ctx.Caller(); err != nil {
		return nil, err
	}
	return loadPoll(ctx.State(), pollID)
}

// ListPolls returns every poll in key order.
func (c *Contract) ListPolls(ctx TxContext) ([]models.Poll, error) {
	if _, err := ctx.Caller(); err != nil {
		return nil, err
	}

	cur, err := ctx.State().Scan(pollPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to scan polls: %w", err)
	}

	polls := []models.Poll{}
	err = ledger.Collect(cur, func(key string, value []byte) error {
		var p models.Poll
		if err := json.Unmarshal(value, &p); err != nil {
			return fmt.Errorf("corrupt record %s: %w", key, err)
		}
		polls = append(polls, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return polls, nil
}

func loadPoll(st ledger.Reader, pollID string) (*models.Poll, error) {
	if pollID == "" {
		return nil, fmt.Errorf("%w: poll id is required", ErrInvalidArgument)
	}
	var p models.Poll
	err := getJSON(st, pollKey(pollID), &p)
	if errors.Is(err, ledger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: poll with ID %s does not exist", ErrNotFound, pollID)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
