// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielhkuo/bitvote/contract"
	"github.com/danielhkuo/bitvote/models"
)

// RegisterParticipant submits CreateParticipant on behalf of subject.
//
// With open sign-up, an unregistered subject may register itself as a Voter
// or Organizer; the transaction is then submitted with the admin identity.
func (g *Gateway) RegisterParticipant(ctx context.Context, subject, id, name, role string) (*models.Participant, error) {
	id = normalizeID(id)
	r, err := models.ParseRole(role)
	if err != nil {
		r = models.Role(role)
	}

	caller, callerErr := g.Resolve(subject)
	if g.selfSignup(subject, id, r, callerErr) {
		g.log.Info("self sign-up", "subject", subject, "role", r)
		caller, callerErr = contract.Caller{ID: g.adminID, Role: models.RoleAdmin}, nil
	}

	var p *models.Participant
	err = g.submit(ctx, "CreateParticipant", caller, callerErr, func(tx contract.TxContext) error {
		var err error
		p, err = g.contract.CreateParticipant(tx, id, name, r)
		return err
	})
	return p, err
}

func (g *Gateway) selfSignup(subject, id string, role models.Role, callerErr error) bool {
	if !g.openSignup || subject == g.adminID || subject != id {
		return false
	}
	if !errors.Is(callerErr, contract.ErrUnauthorized) {
		return false
	}
	return role == models.RoleVoter || role == models.RoleOrganizer
}

// normalizeID lowercases email-shaped ids, since sign-in subjects are
// lowercased verified emails.
func normalizeID(id string) string {
	if strings.Contains(id, "@") {
		return strings.ToLower(strings.TrimSpace(id))
	}
	return id
}

// Participant evaluates GetParticipant.
func (g *Gateway) Participant(ctx context.Context, subject, id string) (*models.Participant, error) {
	id = normalizeID(id)
	var p *models.Participant
	err := g.evaluate(ctx, "GetParticipant", subject, func(tx contract.TxContext) error {
		var err error
		p, err = g.contract.GetParticipant(tx, id)
		return err
	})
	return p, err
}

// CreatePoll submits CreatePoll.
func (g *Gateway) CreatePoll(ctx context.Context, subject string, options []string, open, closed time.Time) (*models.Poll, error) {
	caller, callerErr := g.Resolve(subject)

	var poll *models.Poll
	err := g.submit(ctx, "CreatePoll", caller, callerErr, func(tx contract.TxContext) error {
		var err error
		poll, err = g.contract.CreatePoll(tx, options, open, closed)
		return err
	})
	return poll, err
}

// Poll evaluates GetPoll.
func (g *Gateway) Poll(ctx context.Context, subject, pollID string) (*models.Poll, error) {
	var poll *models.Poll
	err := g.evaluate(ctx, "GetPoll", subject, func(tx contract.TxContext) error {
		var err error
		poll, err = g.contract.GetPoll(tx, pollID)
		return err
	})
	return poll, err
}

// Polls evaluates ListPolls.
func (g *Gateway) Polls(ctx context.Context, subject string) ([]models.Poll, error) {
	var polls []models.Poll
	err := g.evaluate(ctx, "ListPolls", subject, func(tx contract.TxContext) error {
		var err error
		polls, err = g.contract.ListPolls(tx)
		return err
	})
	return polls, err
}

// CastVote submits CreateVote, timestamped with the gateway clock.
func (g *Gateway) CastVote(ctx context.Context, subject, pollID string, selection int) (*models.Vote, error) {
	caller, callerErr := g.Resolve(subject)
	at := g.now()

	var vote *models.Vote
	err := g.submit(ctx, "CreateVote", caller, callerErr, func(tx contract.TxContext) error {
		var err error
		vote, err = g.contract.CreateVote(tx, pollID, at, selection)
		return err
	})
	return vote, err
}

// Results evaluates ReportResults.
func (g *Gateway) Results(ctx context.Context, subject, pollID string) (*models.Report, error) {
	var report *models.Report
	err := g.evaluate(ctx, "ReportResults", subject, func(tx contract.TxContext) error {
		var err error
		report, err = g.contract.ReportResults(tx, pollID)
		return err
	})
	return report, err
}
