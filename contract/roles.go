// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"fmt"

	"github.com/danielhkuo/bitvote/models"
)

// Capability is a class of transaction gated by role.
type Capability int

const (
	RegisterParticipants Capability = iota
	CreatePolls
	CastVotes
	ReportResults
	ReadAnyParticipant
)

func (c Capability) String() string {
	switch c {
	case RegisterParticipants:
		return "register participants"
	case CreatePolls:
		return "create polls"
	case CastVotes:
		return "cast votes"
	case ReportResults:
		return "report poll results"
	case ReadAnyParticipant:
		return "query other participants"
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

var capabilities = map[Capability]models.Role{
	RegisterParticipants: models.RoleAdmin,
	CreatePolls:          models.RoleOrganizer,
	CastVotes:            models.RoleVoter,
	ReportResults:        models.RoleOrganizer,
	ReadAnyParticipant:   models.RoleAdmin,
}

// Authorize returns an error wrapping ErrUnauthorized unless role holds the
// capability. Each capability belongs to exactly one role.
func Authorize(role models.Role, c Capability) error {
	want, ok := capabilities[c]
	if !ok || role != want {
		return fmt.Errorf("%w: only %s role can %s", ErrUnauthorized, want, c)
	}
	return nil
}
