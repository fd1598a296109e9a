// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/danielhkuo/bitvote/ledger"
	"github.com/danielhkuo/bitvote/models"
)

// World state key prefixes
const (
	participantPrefix = "Participant:"
	pollPrefix        = "Poll:"
	votePrefix        = "Vote:"
)

func participantKey(id string) string { return participantPrefix + id }
func pollKey(pollID string) string    { return pollPrefix + pollID }

// Votes are grouped under their poll so a tally is a single prefix scan.
func votePollPrefix(pollID string) string { return votePrefix + pollID + ":" }
func voteKey(pollID, voteID string) string {
	return votePollPrefix(pollID) + voteID
}

// Caller is the authenticated identity submitting a transaction.
type Caller struct {
	ID   string
	Role models.Role
}

// TxContext is what a single transaction sees of its environment.
type TxContext interface {
	// State is the world state the transaction reads and writes.
	State() ledger.Store

	// Caller resolves the submitting identity. Unknown identities must
	// return an error wrapping ErrUnauthorized.
	Caller() (Caller, error)

	// NewID returns a fresh collision-resistant identifier.
	NewID() string
}

// Contract implements the voting transactions. It holds no per-transaction
// state and is safe for concurrent use.
type Contract struct {
	log *slog.Logger
}

func New(logger *slog.Logger) *Contract {
	if logger == nil {
		logger = slog.Default()
	}
	return &Contract{log: logger}
}

// RandomIDs generates random (version 4) UUIDs.
type RandomIDs struct{}

func (RandomIDs) NewID() string { return uuid.NewString() }

// TxIDs derives identifiers from a ledger transaction id. Every endorser
// executing the same transaction derives the same sequence, which random
// identifiers would break.
type TxIDs struct {
	TxID string

	mu sync.Mutex
	n  int
}

// txNamespace scopes derived identifiers to this application.
var txNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:bitvote:tx"))

func (t *TxIDs) NewID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := uuid.NewSHA1(txNamespace, []byte(t.TxID+":"+strconv.Itoa(t.n)))
	t.n++
	return id.String()
}

func getJSON(st ledger.Reader, key string, v any) error {
	data, err := st.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("corrupt record %s: %w", key, err)
	}
	return nil
}

func putJSON(st ledger.Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return st.Put(key, data)
}

func exists(st ledger.Reader, key string) (bool, error) {
	_, err := st.Get(key)
	if errors.Is(err, ledger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// authorize resolves the caller and checks it holds capability.
func authorize(ctx TxContext, capability Capability) (Caller, error) {
	caller, err := ctx.Caller()
	if err != nil {
		return Caller{}, err
	}
	if err := Authorize(caller.Role, capability); err != nil {
		return Caller{}, err
	}
	return caller, nil
}
