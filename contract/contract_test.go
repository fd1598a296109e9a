// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/danielhkuo/bitvote/ledger"
	"github.com/danielhkuo/bitvote/ledger/ledgerdb"
	"github.com/danielhkuo/bitvote/models"
)

// testCtx is a TxContext over a single ledger transaction.
type testCtx struct {
	RandomIDs
	tx     ledger.Tx
	caller Caller
	err    error
}

func (c *testCtx) State() ledger.Store { return c.tx }

func (c *testCtx) Caller() (Caller, error) { return c.caller, c.err }

type harness struct {
	t  *testing.T
	db ledger.Database
	c  *Contract
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		t:  t,
		db: ledgerdb.NewTest(t, ledger.TypePebble),
		c:  New(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

// as runs fn in its own transaction on behalf of caller, committing only
// when fn succeeds.
func (h *harness) as(caller Caller, fn func(ctx TxContext) error) error {
	h.t.Helper()
	tx, err := h.db.Begin()
	if err != nil {
		h.t.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Discard()

	if err := fn(&testCtx{tx: tx, caller: caller}); err != nil {
		return err
	}
	return tx.Commit()
}

var (
	admin     = Caller{ID: "admin", Role: models.RoleAdmin}
	organizer = Caller{ID: "org1", Role: models.RoleOrganizer}
	voter1    = Caller{ID: "voter1", Role: models.RoleVoter}
	voter2    = Caller{ID: "voter2", Role: models.RoleVoter}
	voter3    = Caller{ID: "voter3", Role: models.RoleVoter}
)

func (h *harness) register(callers ...Caller) {
	h.t.Helper()
	for _, c := range callers {
		err := h.as(admin, func(ctx TxContext) error {
			_, err := h.c.CreateParticipant(ctx, c.ID, "Name "+c.ID, c.Role)
			return err
		})
		if err != nil {
			h.t.Fatalf("Failed to register %s: %v", c.ID, err)
		}
	}
}

func (h *harness) createPoll(options []string, open, closed time.Time) *models.Poll {
	h.t.Helper()
	var poll *models.Poll
	err := h.as(organizer, func(ctx TxContext) error {
		var err error
		poll, err = h.c.CreatePoll(ctx, options, open, closed)
		return err
	})
	if err != nil {
		h.t.Fatalf("Failed to create poll: %v", err)
	}
	return poll
}

func (h *harness) vote(caller Caller, pollID string, at time.Time, selection int) (*models.Vote, error) {
	var vote *models.Vote
	err := h.as(caller, func(ctx TxContext) error {
		var err error
		vote, err = h.c.CreateVote(ctx, pollID, at, selection)
		return err
	})
	return vote, err
}

func (h *harness) results(caller Caller, pollID string) (*models.Report, error) {
	var report *models.Report
	err := h.as(caller, func(ctx TxContext) error {
		var err error
		report, err = h.c.ReportResults(ctx, pollID)
		return err
	})
	return report, err
}

var (
	pollOpen   = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	pollClosed = time.Date(2025, 5, 1, 17, 0, 0, 0, time.UTC)
	duringPoll = pollOpen.Add(time.Hour)
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		role models.Role
		cap  Capability
		ok   bool
	}{
		{models.RoleAdmin, RegisterParticipants, true},
		{models.RoleOrganizer, RegisterParticipants, false},
		{models.RoleVoter, RegisterParticipants, false},
		{models.RoleOrganizer, CreatePolls, true},
		{models.RoleAdmin, CreatePolls, false},
		{models.RoleVoter, CastVotes, true},
		{models.RoleOrganizer, CastVotes, false},
		{models.RoleAdmin, CastVotes, false},
		{models.RoleOrganizer, ReportResults, true},
		{models.RoleVoter, ReportResults, false},
		{models.RoleAdmin, ReadAnyParticipant, true},
		{models.RoleVoter, ReadAnyParticipant, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.role, tt.cap), func(t *testing.T) {
			err := Authorize(tt.role, tt.cap)
			if tt.ok && err != nil {
				t.Errorf("Expected authorized, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrUnauthorized) {
				t.Errorf("Expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestCreateParticipant(t *testing.T) {
	h := newHarness(t)

	var got *models.Participant
	err := h.as(admin, func(ctx TxContext) error {
		var err error
		got, err = h.c.CreateParticipant(ctx, "alice", "Alice", models.RoleVoter)
		return err
	})
	if err != nil {
		t.Fatalf("CreateParticipant failed: %v", err)
	}
	if got.ID != "alice" || got.Name != "Alice" || got.Role != models.RoleVoter {
		t.Errorf("Unexpected participant: %+v", got)
	}

	stored, err := LoadParticipant(h.db, "alice")
	if err != nil {
		t.Fatalf("Failed to load participant: %v", err)
	}
	if *stored != *got {
		t.Errorf("Stored %+v, returned %+v", stored, got)
	}
}

func TestCreateParticipantErrors(t *testing.T) {
	h := newHarness(t)
	h.register(voter1)
	original, err := LoadParticipant(h.db, voter1.ID)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		caller Caller
		id     string
		pname  string
		role   models.Role
		want   error
	}{
		{"organizer cannot register", organizer, "bob", "Bob", models.RoleVoter, ErrUnauthorized},
		{"voter cannot register", voter1, "bob", "Bob", models.RoleVoter, ErrUnauthorized},
		{"role checked before arguments", voter1, "", "", "Nobody", ErrUnauthorized},
		{"duplicate id", admin, voter1.ID, "Again", models.RoleVoter, ErrAlreadyExists},
		{"duplicate id with new role", admin, voter1.ID, "Mallory", models.RoleAdmin, ErrAlreadyExists},
		{"missing id", admin, "", "Bob", models.RoleVoter, ErrInvalidArgument},
		{"missing name", admin, "bob", " ", models.RoleVoter, ErrInvalidArgument},
		{"invalid role", admin, "bob", "Bob", "Superuser", ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.as(tt.caller, func(ctx TxContext) error {
				_, err := h.c.CreateParticipant(ctx, tt.id, tt.pname, tt.role)
				return err
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := LoadParticipant(h.db, "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rejected participant was stored: %v", err)
	}
	stored, err := LoadParticipant(h.db, voter1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if *stored != *original {
		t.Errorf("Re-registration changed %s: was %+v, now %+v", voter1.ID, original, stored)
	}
}

func TestGetParticipant(t *testing.T) {
	h := newHarness(t)
	h.register(voter1, voter2)

	get := func(caller Caller, id string) (*models.Participant, error) {
		var p *models.Participant
		err := h.as(caller, func(ctx TxContext) error {
			var err error
			p, err = h.c.GetParticipant(ctx, id)
			return err
		})
		return p, err
	}

	if p, err := get(voter1, voter1.ID); err != nil || p.ID != voter1.ID {
		t.Errorf("Self lookup: got %+v, %v", p, err)
	}
	if p, err := get(admin, voter2.ID); err != nil || p.ID != voter2.ID {
		t.Errorf("Admin lookup: got %+v, %v", p, err)
	}
	if _, err := get(voter1, voter2.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized reading another voter, got %v", err)
	}
	if _, err := get(admin, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUnknownCaller(t *testing.T) {
	h := newHarness(t)

	tx, err := h.db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Discard()

	ctx := &testCtx{tx: tx, err: fmt.Errorf("%w: unknown identity", ErrUnauthorized)}
	if _, err := h.c.ListPolls(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("ListPolls: expected ErrUnauthorized, got %v", err)
	}
	if _, err := h.c.CreateVote(ctx, "p", duringPoll, 0); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("CreateVote: expected ErrUnauthorized, got %v", err)
	}
}

func TestCreatePoll(t *testing.T) {
	h := newHarness(t)
	h.register(organizer)

	poll := h.createPoll([]string{"red", "green", "blue"}, pollOpen, pollClosed)
	if poll.ID == "" {
		t.Fatal("Expected a poll ID")
	}
	if poll.OrganizerID != organizer.ID {
		t.Errorf("Expected organizer %s, got %s", organizer.ID, poll.OrganizerID)
	}

	var got *models.Poll
	err := h.as(voter1, func(ctx TxContext) error {
		var err error
		got, err = h.c.GetPoll(ctx, poll.ID)
		return err
	})
	if err != nil {
		t.Fatalf("GetPoll failed: %v", err)
	}
	if len(got.Options) != 3 || got.Options[0] != "red" || got.Options[2] != "blue" {
		t.Errorf("Options not preserved in order: %v", got.Options)
	}
	if !got.Open.Equal(pollOpen) || !got.Closed.Equal(pollClosed) {
		t.Errorf("Window not preserved: %v - %v", got.Open, got.Closed)
	}
}

func TestCreatePollErrors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name    string
		caller  Caller
		options []string
		open    time.Time
		closed  time.Time
		want    error
	}{
		{"voter cannot create", voter1, []string{"a", "b"}, pollOpen, pollClosed, ErrUnauthorized},
		{"admin cannot create", admin, []string{"a", "b"}, pollOpen, pollClosed, ErrUnauthorized},
		{"role checked before arguments", voter1, nil, time.Time{}, time.Time{}, ErrUnauthorized},
		{"single option", organizer, []string{"a"}, pollOpen, pollClosed, ErrInvalidArgument},
		{"empty option", organizer, []string{"a", ""}, pollOpen, pollClosed, ErrInvalidArgument},
		{"duplicate option", organizer, []string{"a", "a"}, pollOpen, pollClosed, ErrInvalidArgument},
		{"closes before open", organizer, []string{"a", "b"}, pollClosed, pollOpen, ErrInvalidArgument},
		{"missing window", organizer, []string{"a", "b"}, time.Time{}, pollClosed, ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.as(tt.caller, func(ctx TxContext) error {
				_, err := h.c.CreatePoll(ctx, tt.options, tt.open, tt.closed)
				return err
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGetPollNotFound(t *testing.T) {
	h := newHarness(t)
	err := h.as(voter1, func(ctx TxContext) error {
		_, err := h.c.GetPoll(ctx, "missing")
		return err
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListPolls(t *testing.T) {
	h := newHarness(t)

	var empty []models.Poll
	err := h.as(voter1, func(ctx TxContext) error {
		var err error
		empty, err = h.c.ListPolls(ctx)
		return err
	})
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("Expected an empty non-nil list, got %v, %v", empty, err)
	}

	want := map[string]bool{}
	for i := 0; i < 3; i++ {
		p := h.createPoll([]string{"yes", "no"}, pollOpen, pollClosed)
		want[p.ID] = true
	}

	var polls []models.Poll
	err = h.as(voter1, func(ctx TxContext) error {
		var err error
		polls, err = h.c.ListPolls(ctx)
		return err
	})
	if err != nil {
		t.Fatalf("ListPolls failed: %v", err)
	}
	if len(polls) != 3 {
		t.Fatalf("Expected 3 polls, got %d", len(polls))
	}
	for i, p := range polls {
		if !want[p.ID] {
			t.Errorf("Unexpected poll %s", p.ID)
		}
		if i > 0 && polls[i-1].ID > p.ID {
			t.Errorf("Polls not in key order: %s before %s", polls[i-1].ID, p.ID)
		}
	}
}

func TestCreateVote(t *testing.T) {
	h := newHarness(t)
	poll := h.createPoll([]string{"red", "green"}, pollOpen, pollClosed)

	vote, err := h.vote(voter1, poll.ID, duringPoll, 1)
	if err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}
	if vote.ID == "" || vote.VoterID != voter1.ID || vote.PollID != poll.ID || vote.Selection != 1 {
		t.Errorf("Unexpected vote: %+v", vote)
	}
	if !vote.Timestamp.Equal(duringPoll) {
		t.Errorf("Expected timestamp %v, got %v", duringPoll, vote.Timestamp)
	}

	if _, err := h.vote(voter1, poll.ID, duringPoll.Add(time.Minute), 0); !errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("Expected ErrAlreadyVoted, got %v", err)
	}

	report, err := h.results(organizer, poll.ID)
	if err != nil {
		t.Fatalf("ReportResults failed: %v", err)
	}
	if report.TotalVotes != 1 {
		t.Errorf("Rejected vote was stored: total %d", report.TotalVotes)
	}
}

func TestCreateVoteWindowBoundaries(t *testing.T) {
	h := newHarness(t)
	poll := h.createPoll([]string{"a", "b"}, pollOpen, pollClosed)

	tests := []struct {
		name   string
		caller Caller
		at     time.Time
		want   error
	}{
		{"exactly at open", voter1, pollOpen, nil},
		{"exactly at close", voter2, pollClosed, nil},
		{"before open", voter3, pollOpen.Add(-time.Nanosecond), ErrPollNotOpen},
		{"after close", voter3, pollClosed.Add(time.Nanosecond), ErrPollClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.vote(tt.caller, poll.ID, tt.at, 0)
			if tt.want == nil && err != nil {
				t.Errorf("Expected vote accepted, got %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateVoteErrors(t *testing.T) {
	h := newHarness(t)
	poll := h.createPoll([]string{"a", "b"}, pollOpen, pollClosed)
	late := pollClosed.Add(time.Hour)

	tests := []struct {
		name      string
		caller    Caller
		pollID    string
		at        time.Time
		selection int
		want      error
	}{
		{"organizer cannot vote", organizer, poll.ID, duringPoll, 0, ErrUnauthorized},
		{"admin cannot vote", admin, poll.ID, duringPoll, 0, ErrUnauthorized},
		{"role checked before poll", organizer, "missing", late, 9, ErrUnauthorized},
		{"unknown poll", voter1, "missing", duringPoll, 0, ErrNotFound},
		{"poll checked before selection", voter1, "missing", duringPoll, 9, ErrNotFound},
		{"selection too large", voter1, poll.ID, duringPoll, 2, ErrInvalidSelection},
		{"negative selection", voter1, poll.ID, duringPoll, -1, ErrInvalidSelection},
		{"selection checked before window", voter1, poll.ID, late, 5, ErrInvalidSelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.vote(tt.caller, tt.pollID, tt.at, tt.selection)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateVoteWindowBeforeDuplicate(t *testing.T) {
	h := newHarness(t)
	poll := h.createPoll([]string{"a", "b"}, pollOpen, pollClosed)

	if _, err := h.vote(voter1, poll.ID, duringPoll, 0); err != nil {
		t.Fatalf("First vote failed: %v", err)
	}
	if _, err := h.vote(voter1, poll.ID, pollClosed.Add(time.Second), 0); !errors.Is(err, ErrPollClosed) {
		t.Errorf("Expected ErrPollClosed, got %v", err)
	}
}

func TestVoteOnePerPoll(t *testing.T) {
	h := newHarness(t)
	first := h.createPoll([]string{"a", "b"}, pollOpen, pollClosed)
	second := h.createPoll([]string{"a", "b"}, pollOpen, pollClosed)

	if _, err := h.vote(voter1, first.ID, duringPoll, 0); err != nil {
		t.Fatalf("Vote on first poll failed: %v", err)
	}
	if _, err := h.vote(voter1, second.ID, duringPoll, 1); err != nil {
		t.Errorf("Vote on second poll should be independent, got %v", err)
	}
}

func TestReportResults(t *testing.T) {
	h := newHarness(t)
	poll := h.createPoll([]string{"red", "green", "blue"}, pollOpen, pollClosed)

	for _, v := range []struct {
		caller    Caller
		selection int
	}{
		{voter1, 1},
		{voter2, 1},
		{voter3, 0},
	} {
		if _, err := h.vote(v.caller, poll.ID, duringPoll, v.selection); err != nil {
			t.Fatalf("Vote by %s failed: %v", v.caller.ID, err)
		}
	}

	report, err := h.results(organizer, poll.ID)
	if err != nil {
		t.Fatalf("ReportResults failed: %v", err)
	}

	if report.PollID != poll.ID {
		t.Errorf("Expected poll %s, got %s", poll.ID, report.PollID)
	}
	if report.Winner != "green" || report.Tied {
		t.Errorf("Expected green to win outright, got %q (tied=%v)", report.Winner, report.Tied)
	}
	if report.TotalVotes != 3 {
		t.Errorf("Expected 3 votes, got %d", report.TotalVotes)
	}
	if got := report.ResultSummary["green"].Count; got != 2 {
		t.Errorf("Expected 2 votes for green, got %d", got)
	}
	if got := len(report.ResultSummary["green"].Votes); got != 2 {
		t.Errorf("Expected 2 vote records for green, got %d", got)
	}
	if got := report.ResultSummary["red"].Count; got != 1 {
		t.Errorf("Expected 1 vote for red, got %d", got)
	}
	if _, ok := report.ResultSummary["blue"]; ok {
		t.Error("Options without votes should not appear in the summary")
	}
}

func TestReportResultsTie(t *testing.T) {
	h := newHarness(t)
	poll := h.createPoll([]string{"a", "b"}, pollOpen, pollClosed)

	if _, err := h.vote(voter1, poll.ID, duringPoll, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := h.vote(voter2, poll.ID, duringPoll, 1); err != nil {
		t.Fatal(err)
	}

	report, err := h.results(organizer, poll.ID)
	if err != nil {
		t.Fatalf("ReportResults failed: %v", err)
	}
	if !report.Tied {
		t.Error("Expected a tie")
	}
	if report.Winner != "a" && report.Winner != "b" {
		t.Errorf("Expected a tied option as winner, got %q", report.Winner)
	}
}

func TestReportResultsNoVotes(t *testing.T) {
	h := newHarness(t)
	poll := h.createPoll([]string{"a", "b"}, pollOpen, pollClosed)

	report, err := h.results(organizer, poll.ID)
	if err != nil {
		t.Fatalf("ReportResults failed: %v", err)
	}
	if report.Winner != "" || report.TotalVotes != 0 || len(report.ResultSummary) != 0 {
		t.Errorf("Expected an empty report, got %+v", report)
	}
}

func TestReportResultsErrors(t *testing.T) {
	h := newHarness(t)
	poll := h.createPoll([]string{"a", "b"}, pollOpen, pollClosed)

	if _, err := h.results(voter1, poll.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for voter, got %v", err)
	}
	if _, err := h.results(admin, poll.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for admin, got %v", err)
	}
	if _, err := h.results(organizer, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReportResultsIgnoresOtherPolls(t *testing.T) {
	h := newHarness(t)
	target := h.createPoll([]string{"a", "b"}, pollOpen, pollClosed)
	other := h.createPoll([]string{"a", "b"}, pollOpen, pollClosed)

	if _, err := h.vote(voter1, target.ID, duringPoll, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := h.vote(voter2, other.ID, duringPoll, 1); err != nil {
		t.Fatal(err)
	}

	report, err := h.results(organizer, target.ID)
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalVotes != 1 || report.Winner != "a" {
		t.Errorf("Expected only the target poll's vote, got %+v", report)
	}
}

func TestTxIDsDeterministic(t *testing.T) {
	a := &TxIDs{TxID: "tx-1"}
	b := &TxIDs{TxID: "tx-1"}
	c := &TxIDs{TxID: "tx-2"}

	first, second := a.NewID(), a.NewID()
	if first == second {
		t.Error("Successive IDs in one transaction must differ")
	}
	if b.NewID() != first || b.NewID() != second {
		t.Error("Same transaction ID must derive the same sequence")
	}
	if c.NewID() == first {
		t.Error("Different transactions must derive different IDs")
	}
}
