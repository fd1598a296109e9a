// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chaincode

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperledger/fabric-contract-api-go/v2/contractapi"

	"github.com/danielhkuo/bitvote/contract"
	"github.com/danielhkuo/bitvote/ledger"
	"github.com/danielhkuo/bitvote/models"
)

// ContractName is the name the contract is installed under.
const ContractName = "bitvote"

// Chaincode events
const (
	EventParticipantCreated = "ParticipantCreated"
	EventPollCreated        = "PollCreated"
	EventVoteCast           = "VoteCast"
)

// VotingContract is the Fabric binding of the voting transactions.
// Every transaction returns its result as a JSON string.
type VotingContract struct {
	contractapi.Contract
	core *contract.Contract
}

func NewVotingContract(logger *slog.Logger) *VotingContract {
	vc := &VotingContract{core: contract.New(logger)}
	vc.Name = ContractName
	return vc
}

// GetEvaluateTransactions lists the read-only transactions, which clients
// should evaluate on a single peer rather than submit for ordering.
func (vc *VotingContract) GetEvaluateTransactions() []string {
	return []string{"GetParticipant", "GetPoll", "ListPolls", "ReportResults"}
}

// txContext adapts a Fabric transaction context to contract.TxContext.
type txContext struct {
	*contract.TxIDs
	ctx contractapi.TransactionContextInterface
}

func newTxContext(ctx contractapi.TransactionContextInterface) *txContext {
	return &txContext{
		TxIDs: &contract.TxIDs{TxID: ctx.GetStub().GetTxID()},
		ctx:   ctx,
	}
}

func (t *txContext) State() ledger.Store {
	return stubStore{stub: t.ctx.GetStub()}
}

func (t *txContext) Caller() (contract.Caller, error) {
	return callerFrom(t.ctx.GetClientIdentity())
}

// CreateParticipant registers a participant. Admin only.
func (vc *VotingContract) CreateParticipant(ctx contractapi.TransactionContextInterface, id, name, role string) (string, error) {
	r, err := models.ParseRole(role)
	if err != nil {
		r = models.Role(role)
	}
	p, err := vc.core.CreateParticipant(newTxContext(ctx), id, name, r)
	if err != nil {
		return "", err
	}
	return emit(ctx, EventParticipantCreated, p)
}

// GetParticipant returns a participant record.
func (vc *VotingContract) GetParticipant(ctx contractapi.TransactionContextInterface, id string) (string, error) {
	p, err := vc.core.GetParticipant(newTxContext(ctx), id)
	if err != nil {
		return "", err
	}
	return marshal(p)
}

// CreatePoll creates a poll. optionsJSON is a JSON array of option labels;
// open and closed accept RFC 3339, YYYY-MM-DD or Unix milliseconds.
func (vc *VotingContract) CreatePoll(ctx contractapi.TransactionContextInterface, optionsJSON, open, closed string) (string, error) {
	if err := authorize(ctx, contract.CreatePolls); err != nil {
		return "", err
	}
	var options []string
	if err := json.Unmarshal([]byte(optionsJSON), &options); err != nil {
		return "", fmt.Errorf("%w: options must be a JSON array of strings", contract.ErrInvalidArgument)
	}
	openAt, err := models.ParseTimestamp(open)
	if err != nil {
		return "", fmt.Errorf("%w: open: %v", contract.ErrInvalidArgument, err)
	}
	closedAt, err := models.ParseTimestamp(closed)
	if err != nil {
		return "", fmt.Errorf("%w: closed: %v", contract.ErrInvalidArgument, err)
	}

	poll, err := vc.core.CreatePoll(newTxContext(ctx), options, openAt, closedAt)
	if err != nil {
		return "", err
	}
	return emit(ctx, EventPollCreated, poll)
}

// GetPoll returns a poll.
func (vc *VotingContract) GetPoll(ctx contractapi.TransactionContextInterface, pollID string) (string, error) {
	poll, err := vc.core.GetPoll(newTxContext(ctx), pollID)
	if err != nil {
		return "", err
	}
	return marshal(poll)
}

// ListPolls returns every poll.
func (vc *VotingContract) ListPolls(ctx contractapi.TransactionContextInterface) (string, error) {
	polls, err := vc.core.ListPolls(newTxContext(ctx))
	if err != nil {
		return "", err
	}
	return marshal(polls)
}

// CreateVote casts the caller's vote. An empty timestamp means the
// transaction timestamp, which all endorsers agree on.
func (vc *VotingContract) CreateVote(ctx contractapi.TransactionContextInterface, pollID, timestamp string, selection int) (string, error) {
	if err := authorize(ctx, contract.CastVotes); err != nil {
		return "", err
	}
	at, err := voteTime(ctx, timestamp)
	if err != nil {
		return "", err
	}

	vote, err := vc.core.CreateVote(newTxContext(ctx), pollID, at, selection)
	if err != nil {
		return "", err
	}
	return emit(ctx, EventVoteCast, vote)
}

// ReportResults tallies a poll. Organizer only.
func (vc *VotingContract) ReportResults(ctx contractapi.TransactionContextInterface, pollID string) (string, error) {
	report, err := vc.core.ReportResults(newTxContext(ctx), pollID)
	if err != nil {
		return "", err
	}
	return marshal(report)
}

// authorize checks the caller's role before arguments are decoded, so
// malformed arguments from an unauthorized caller still fail as unauthorized.
func authorize(ctx contractapi.TransactionContextInterface, c contract.Capability) error {
	caller, err := callerFrom(ctx.GetClientIdentity())
	if err != nil {
		return err
	}
	return contract.Authorize(caller.Role, c)
}

func voteTime(ctx contractapi.TransactionContextInterface, timestamp string) (time.Time, error) {
	if timestamp != "" {
		t, err := models.ParseTimestamp(timestamp)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: timestamp: %v", contract.ErrInvalidArgument, err)
		}
		return t, nil
	}

	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read transaction timestamp: %w", err)
	}
	return ts.AsTime(), nil
}

func marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// emit publishes v as the transaction's event and returns it as JSON.
func emit(ctx contractapi.TransactionContextInterface, event string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if err := ctx.GetStub().SetEvent(event, data); err != nil {
		return "", fmt.Errorf("failed to set %s event: %w", event, err)
	}
	return string(data), nil
}
