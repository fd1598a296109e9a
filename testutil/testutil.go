// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/bitvote/auth"
	"github.com/danielhkuo/bitvote/cliparse"
	"github.com/danielhkuo/bitvote/gateway"
	"github.com/danielhkuo/bitvote/ledger"
	"github.com/danielhkuo/bitvote/ledger/ledgerdb"
	"github.com/danielhkuo/bitvote/models"
)

// AdminID is the bootstrap admin used by GetTestConfig
const AdminID = "admin"

// Poll window used by CreateTestPoll; the test clock sits inside it.
var (
	PollOpen   = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	PollClosed = time.Date(2025, 5, 1, 17, 0, 0, 0, time.UTC)
	Now        = PollOpen.Add(time.Hour)
)

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              3318,
		DatabaseType:      ledger.TypePebble,
		SessionSecret:     "test-session-secret",
		SessionTTL:        time.Hour,
		AdminID:           AdminID,
		IdentityCacheSize: 64,
	}
}

// SetupTestGateway opens a fresh Pebble ledger in a temp dir and returns a
// gateway over it whose clock is fixed at Now.
func SetupTestGateway(t *testing.T, cfg cliparse.Config) *gateway.Gateway {
	t.Helper()

	gw, err := gateway.New(ledgerdb.NewTest(t, cfg.DatabaseType), gateway.Options{
		AdminID:    cfg.AdminID,
		OpenSignup: cfg.OpenSignup,
		CacheSize:  cfg.IdentityCacheSize,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:        func() time.Time { return Now },
	})
	if err != nil {
		t.Fatalf("Failed to create gateway: %v", err)
	}
	return gw
}

// TestSessions returns the session issuer for cfg
func TestSessions(t *testing.T, cfg cliparse.Config) *auth.Sessions {
	t.Helper()
	s, err := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		t.Fatalf("Failed to create sessions: %v", err)
	}
	return s
}

// BearerFor issues a session token for subject and returns the header map
// for MakeRequest.
func BearerFor(t *testing.T, sessions *auth.Sessions, subject string) map[string]string {
	t.Helper()
	token, _, err := sessions.Issue(subject, "", time.Now())
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// CreateTestParticipant registers a participant through the admin identity
func CreateTestParticipant(t *testing.T, gw *gateway.Gateway, id string, role models.Role) {
	t.Helper()
	_, err := gw.RegisterParticipant(context.Background(), gw.AdminID(), id, "Test "+id, string(role))
	if err != nil {
		t.Fatalf("Failed to create test participant %s: %v", id, err)
	}
}

// CreateTestPoll creates a poll open from PollOpen to PollClosed and returns its ID
func CreateTestPoll(t *testing.T, gw *gateway.Gateway, organizerID string, options ...string) string {
	t.Helper()
	if len(options) == 0 {
		options = []string{"Option A", "Option B"}
	}
	poll, err := gw.CreatePoll(context.Background(), organizerID, options, PollOpen, PollClosed)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return poll.ID
}

// CastTestVote casts a vote for voterID
func CastTestVote(t *testing.T, gw *gateway.Gateway, voterID, pollID string, selection int) string {
	t.Helper()
	vote, err := gw.CastVote(context.Background(), voterID, pollID, selection)
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
	return vote.ID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
