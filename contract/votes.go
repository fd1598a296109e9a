// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/bitvote/ledger"
	"github.com/danielhkuo/bitvote/models"
)

// errFound stops a scan as soon as a match is seen.
var errFound = errors.New("found")

// CreateVote records the caller's vote on a poll. The checks run in a fixed
// order: role, poll existence, selection, poll window, previous vote.
func (c *Contract) CreateVote(ctx TxContext, pollID string, timestamp time.Time, selection int) (*models.Vote, error) {
	caller, err := authorize(ctx, CastVotes)
	if err != nil {
		return nil, err
	}
	if caller.ID == "" {
		return nil, fmt.Errorf("%w: participant id not found", ErrUnauthorized)
	}

	st := ctx.State()
	poll, err := loadPoll(st, pollID)
	if err != nil {
		return nil, err
	}

	if selection < 0 || selection >= len(poll.Options) {
		return nil, fmt.Errorf("%w: selection %d, poll has %d options",
			ErrInvalidSelection, selection, len(poll.Options))
	}

	if timestamp.Before(poll.Open) {
		return nil, ErrPollNotOpen
	}
	if timestamp.After(poll.Closed) {
		return nil, ErrPollClosed
	}

	voted, err := hasVoted(st, pollID, caller.ID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, fmt.Errorf("%w: participant with ID %s", ErrAlreadyVoted, caller.ID)
	}

	vote := &models.Vote{
		ID:        ctx.NewID(),
		VoterID:   caller.ID,
		PollID:    pollID,
		Timestamp: timestamp.UTC(),
		Selection: selection,
	}
	if err := putJSON(st, voteKey(pollID, vote.ID), vote); err != nil {
		return nil, fmt.Errorf("failed to store vote: %w", err)
	}

	c.log.Info("vote cast", "poll_id", pollID, "vote_id", vote.ID)
	return vote, nil
}

// hasVoted scans the poll's votes for one by voterID. The cursor is released
// before returning, so callers may write afterwards.
func hasVoted(st ledger.Reader, pollID, voterID string) (bool, error) {
	cur, err := st.Scan(votePollPrefix(pollID))
	if err != nil {
		return false, fmt.Errorf("failed to scan votes: %w", err)
	}

	err = ledger.Collect(cur, func(key string, value []byte) error {
		var v models.Vote
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("corrupt record %s: %w", key, err)
		}
		if v.PollID == pollID && v.VoterID == voterID {
			return errFound
		}
		return nil
	})
	if errors.Is(err, errFound) {
		return true, nil
	}
	return false, err
}
