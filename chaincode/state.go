// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chaincode

import (
	"fmt"

	"github.com/hyperledger/fabric-chaincode-go/v2/shim"
	"github.com/hyperledger/fabric-protos-go-apiv2/ledger/queryresult"

	"github.com/danielhkuo/bitvote/ledger"
)

// stubStore exposes the transaction's world state as a ledger.Store.
// Writes are buffered by the peer and only applied once the transaction
// is endorsed and committed.
type stubStore struct {
	stub shim.ChaincodeStubInterface
}

func (s stubStore) Get(key string) ([]byte, error) {
	value, err := s.stub.GetState(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read from world state: %w", err)
	}
	if value == nil {
		return nil, ledger.ErrKeyNotFound
	}
	return value, nil
}

func (s stubStore) Put(key string, value []byte) error {
	return s.stub.PutState(key, value)
}

func (s stubStore) Scan(prefix string) (ledger.Cursor, error) {
	it, err := s.stub.GetStateByRange(prefix, ledger.PrefixEnd(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to query world state: %w", err)
	}
	return &stubCursor{it: it}, nil
}

type stubCursor struct {
	it  shim.StateQueryIteratorInterface
	kv  *queryresult.KV
	err error
}

func (c *stubCursor) Next() bool {
	if c.err != nil || !c.it.HasNext() {
		return false
	}
	c.kv, c.err = c.it.Next()
	return c.err == nil
}

func (c *stubCursor) Key() string   { return c.kv.GetKey() }
func (c *stubCursor) Value() []byte { return c.kv.GetValue() }
func (c *stubCursor) Err() error    { return c.err }
func (c *stubCursor) Close() error  { return c.it.Close() }
