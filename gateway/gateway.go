// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/bitvote/contract"
	"github.com/danielhkuo/bitvote/ledger"
	"github.com/danielhkuo/bitvote/models"
)

// DefaultCacheSize is the number of resolved identities kept in memory.
const DefaultCacheSize = 1024

// Options configures a Gateway. The zero value is usable.
type Options struct {
	// AdminID is the subject treated as the bootstrap Admin.
	AdminID string

	// OpenSignup lets authenticated subjects register themselves as a
	// Voter or Organizer under their own id.
	OpenSignup bool

	CacheSize int

	Logger *slog.Logger

	// Registerer receives the gateway metrics. Nil skips registration.
	Registerer prometheus.Registerer

	// Now is the clock used to timestamp votes.
	Now func() time.Time
}

// Gateway submits contract transactions against a local world state.
//
// Write transactions are serialized so that each one observes every write
// committed before it. Reads run concurrently in transactions that are
// always discarded.
type Gateway struct {
	db         ledger.Database
	contract   *contract.Contract
	adminID    string
	openSignup bool
	identities *lru.Cache
	metrics    *metrics
	now        func() time.Time
	log        *slog.Logger

	mu sync.Mutex
}

func New(database ledger.Database, opts Options) (*Gateway, error) {
	if opts.AdminID == "" {
		opts.AdminID = "admin"
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity cache: %w", err)
	}

	m := newMetrics()
	if opts.Registerer != nil {
		if err := m.register(opts.Registerer); err != nil {
			return nil, err
		}
	}

	return &Gateway{
		db:         database,
		contract:   contract.New(opts.Logger),
		adminID:    opts.AdminID,
		openSignup: opts.OpenSignup,
		identities: cache,
		metrics:    m,
		now:        opts.Now,
		log:        opts.Logger,
	}, nil
}

// AdminID returns the subject of the bootstrap admin.
func (g *Gateway) AdminID() string { return g.adminID }

// Authorize checks that subject holds capability without running a
// transaction.
func (g *Gateway) Authorize(subject string, c contract.Capability) error {
	caller, err := g.Resolve(subject)
	if err != nil {
		return err
	}
	return contract.Authorize(caller.Role, c)
}

// Resolve maps an authenticated subject to a caller. The admin subject is
// always Admin; anyone else must be a registered participant.
func (g *Gateway) Resolve(subject string) (contract.Caller, error) {
	if subject == "" {
		return contract.Caller{}, fmt.Errorf("%w: no subject", contract.ErrUnauthorized)
	}
	if subject == g.adminID {
		return contract.Caller{ID: subject, Role: models.RoleAdmin}, nil
	}

	if v, ok := g.identities.Get(subject); ok {
		return v.(contract.Caller), nil
	}

	p, err := contract.LoadParticipant(g.db, subject)
	if errors.Is(err, contract.ErrNotFound) {
		return contract.Caller{}, fmt.Errorf("%w: %s is not a registered participant", contract.ErrUnauthorized, subject)
	}
	if err != nil {
		return contract.Caller{}, err
	}

	// Participants are never modified, so a cached caller cannot go stale.
	caller := contract.Caller{ID: p.ID, Role: p.Role}
	g.identities.Add(subject, caller)
	return caller, nil
}

// txContext is one gateway transaction as seen by the contract.
type txContext struct {
	contract.RandomIDs
	tx        ledger.Tx
	caller    contract.Caller
	callerErr error
}

func (c *txContext) State() ledger.Store { return c.tx }

func (c *txContext) Caller() (contract.Caller, error) { return c.caller, c.callerErr }

// submit runs op as a write transaction: committed if op succeeds,
// discarded otherwise.
func (g *Gateway) submit(ctx context.Context, fn string, caller contract.Caller, callerErr error, op func(contract.TxContext) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return g.observe(fn, func() error {
		tx, err := g.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Discard()

		if err := op(&txContext{tx: tx, caller: caller, callerErr: callerErr}); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// evaluate runs op against the current state without committing anything.
func (g *Gateway) evaluate(ctx context.Context, fn, subject string, op func(contract.TxContext) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	caller, callerErr := g.Resolve(subject)

	return g.observe(fn, func() error {
		tx, err := g.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Discard()

		return op(&txContext{tx: tx, caller: caller, callerErr: callerErr})
	})
}

func (g *Gateway) observe(fn string, run func() error) error {
	start := time.Now()
	err := run()
	g.metrics.observe(fn, err, time.Since(start))
	if err != nil {
		g.log.Debug("transaction failed", "fn", fn, "error", err)
	}
	return err
}
