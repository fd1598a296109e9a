// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"encoding/json"
	"fmt"

	"github.com/danielhkuo/bitvote/ledger"
	"github.com/danielhkuo/bitvote/models"
)

// ReportResults tallies every vote cast on a poll. Only organizers may call it.
//
// The winner is the option with the strictly highest count. When several
// options share that count the one seen first during the scan wins and the
// report is marked as tied. Options nobody voted for are left out of the
// summary, and a poll without votes has no winner.
func (c *Contract) ReportResults(ctx TxContext, pollID string) (*models.Report, error) {
	caller, err := authorize(ctx, ReportResults)
	if err != nil {
		return nil, err
	}

	st := ctx.State()
	poll, err := loadPoll(st, pollID)
	if err != nil {
		return nil, err
	}

	cur, err := st.Scan(votePollPrefix(pollID))
	if err != nil {
		return nil, fmt.Errorf("failed to scan votes: %w", err)
	}

	t := newTally()
	err = ledger.Collect(cur, func(key string, value []byte) error {
		var v models.Vote
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("corrupt record %s: %w", key, err)
		}
		if v.PollID != pollID {
			return nil
		}
		if v.Selection < 0 || v.Selection >= len(poll.Options) {
			return fmt.Errorf("vote %s selects option %d of %d", v.ID, v.Selection, len(poll.Options))
		}
		t.add(poll.Options[v.Selection], v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := t.report(pollID)
	c.log.Info("results reported",
		"poll_id", pollID,
		"by", caller.ID,
		"total_votes", report.TotalVotes,
		"winner", report.Winner,
	)
	return report, nil
}

type tally struct {
	summary map[string]models.OptionResult
	order   []string // options in first-seen order
	total   int
}

func newTally() *tally {
	return &tally{summary: make(map[string]models.OptionResult)}
}

func (t *tally) add(option string, v models.Vote) {
	r, ok := t.summary[option]
	if !ok {
		t.order = append(t.order, option)
	}
	r.Count++
	r.Votes = append(r.Votes, v)
	t.summary[option] = r
	t.total++
}

func (t *tally) report(pollID string) *models.Report {
	rep := &models.Report{
		PollID:        pollID,
		TotalVotes:    t.total,
		ResultSummary: t.summary,
	}

	highest := 0
	for _, option := range t.order {
		count := t.summary[option].Count
		switch {
		case count > highest:
			highest = count
			rep.Winner = option
			rep.Tied = false
		case count == highest:
			rep.Tied = true
		}
	}
	return rep
}
