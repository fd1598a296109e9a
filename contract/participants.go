// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/bitvote/ledger"
	"github.com/danielhkuo/bitvote/models"
)

// CreateParticipant registers a new participant. Only admins may call it
// and an id can be registered once.
func (c *Contract) CreateParticipant(ctx TxContext, id, name string, role models.Role) (*models.Participant, error) {
	caller, err := authorize(ctx, RegisterParticipants)
	if err != nil {
		return nil, err
	}

	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return nil, fmt.Errorf("%w: id and name are required", ErrInvalidArgument)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, models.ErrInvalidRole)
	}

	st := ctx.State()
	key := participantKey(id)
	found, err := exists(st, key)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, fmt.Errorf("%w: participant %s", ErrAlreadyExists, id)
	}

	p := &models.Participant{ID: id, Name: name, Role: role}
	if err := putJSON(st, key, p); err != nil {
		return nil, fmt.Errorf("failed to store participant: %w", err)
	}

	c.log.Info("participant created", "participant_id", id, "role", role, "by", caller.ID)
	return p, nil
}

// GetParticipant returns a participant. Participants can read their own
// record; admins can read any.
func (c *Contract) GetParticipant(ctx TxContext, id string) (*models.Participant, error) {
	caller, err := ctx.Caller()
	if err != nil {
		return nil, err
	}
	if caller.ID != id {
		if err := Authorize(caller.Role, ReadAnyParticipant); err != nil {
			return nil, err
		}
	}

	return LoadParticipant(ctx.State(), id)
}

// LoadParticipant reads a participant without authorization checks. It is
// meant for identity resolution, which happens before a caller exists.
func LoadParticipant(st ledger.Reader, id string) (*models.Participant, error) {
	var p models.Participant
	err := getJSON(st, participantKey(id), &p)
	if errors.Is(err, ledger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: participant %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
