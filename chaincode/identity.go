// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chaincode

import (
	"fmt"

	"github.com/hyperledger/fabric-chaincode-go/v2/pkg/cid"

	"github.com/danielhkuo/bitvote/contract"
	"github.com/danielhkuo/bitvote/models"
)

// Certificate attributes set by the CA when a participant is enrolled.
const (
	AttrID   = "id"
	AttrRole = "role"
)

// AdminCommonName is the certificate CN of the bootstrap admin identity.
const AdminCommonName = "admin"

// callerFrom resolves the submitting client. The bootstrap admin is
// recognized by certificate CN; everyone else carries id and role attributes.
func callerFrom(ci cid.ClientIdentity) (contract.Caller, error) {
	if ci == nil {
		return contract.Caller{}, fmt.Errorf("%w: no client identity", contract.ErrUnauthorized)
	}

	cert, err := ci.GetX509Certificate()
	if err != nil {
		return contract.Caller{}, fmt.Errorf("%w: %v", contract.ErrUnauthorized, err)
	}
	if cert != nil && cert.Subject.CommonName == AdminCommonName {
		return contract.Caller{ID: AdminCommonName, Role: models.RoleAdmin}, nil
	}

	id, found, err := ci.GetAttributeValue(AttrID)
	if err != nil {
		return contract.Caller{}, fmt.Errorf("%w: %v", contract.ErrUnauthorized, err)
	}
	if !found || id == "" {
		return contract.Caller{}, fmt.Errorf("%w: participant id not found", contract.ErrUnauthorized)
	}

	value, found, err := ci.GetAttributeValue(AttrRole)
	if err != nil {
		return contract.Caller{}, fmt.Errorf("%w: %v", contract.ErrUnauthorized, err)
	}
	if !found {
		return contract.Caller{}, fmt.Errorf("%w: participant %s has no role", contract.ErrUnauthorized, id)
	}
	role, err := models.ParseRole(value)
	if err != nil {
		return contract.Caller{}, fmt.Errorf("%w: %v", contract.ErrUnauthorized, err)
	}

	return contract.Caller{ID: id, Role: role}, nil
}
