package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Role tags a participant with the transactions it may invoke.
type Role string

// Participant roles
const (
	RoleVoter     Role = "Voter"
	RoleOrganizer Role = "Organizer"
	RoleAdmin     Role = "Admin"
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole accepts the canonical role names case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "voter":
		return RoleVoter, nil
	case "organizer":
		return RoleOrganizer, nil
	case "admin":
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

func (r Role) Valid() bool {
	return r == RoleVoter || r == RoleOrganizer || r == RoleAdmin
}

// Domain types

type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

type Poll struct {
	ID          string    `json:"pollID"`
	OrganizerID string    `json:"organizerID"`
	Options     []string  `json:"options"`
	Open        time.Time `json:"open"`
	Closed      time.Time `json:"closed"`
}

// Contains reports whether t lies inside the poll window, bounds included.
func (p *Poll) Contains(t time.Time) bool {
	return !t.Before(p.Open) && !t.After(p.Closed)
}

type Vote struct {
	ID        string    `json:"voteID"`
	VoterID   string    `json:"voterID"`
	PollID    string    `json:"pollID"`
	Timestamp time.Time `json:"timestamp"`
	Selection int       `json:"selection"`
}

// OptionResult is the tally of a single option.
type OptionResult struct {
	Count int    `json:"count"`
	Votes []Vote `json:"votes"`
}

type Report struct {
	PollID        string                  `json:"pollID"`
	Winner        string                  `json:"winner,omitempty"`
	Tied          bool                    `json:"tied,omitempty"`
	TotalVotes    int                     `json:"totalVotes"`
	ResultSummary map[string]OptionResult `json:"resultSummary"`
}

// ParseTimestamp accepts RFC 3339, a plain YYYY-MM-DD date (UTC midnight)
// or Unix milliseconds.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Request types

type CreateParticipantRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type CreatePollRequest struct {
	Options []string `json:"options"`
	Open    string   `json:"open"`
	Closed  string   `json:"closed"`
}

type CastVoteRequest struct {
	Selection *int `json:"selection"`
}

type ValidateCodeRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// Response types

type AuthURLResponse struct {
	URL string `json:"url"`
}

type ValidateCodeResponse struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PollListResponse struct {
	Polls []Poll `json:"polls"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
