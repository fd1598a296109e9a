// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command chaincode starts the bitvote contract as a Fabric chaincode
// process. Set CHAINCODE_SERVER_ADDRESS and CHAINCODE_ID to run it as an
// external chaincode service; otherwise it connects to its peer.
package main

import (
	"os"

	"github.com/hyperledger/fabric-chaincode-go/v2/shim"
	"github.com/hyperledger/fabric-contract-api-go/v2/contractapi"

	"github.com/danielhkuo/bitvote/chaincode"
	"github.com/danielhkuo/bitvote/logging"
)

func main() {
	logger, err := logging.Setup(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logger.Warn("using default log level", "error", err)
	}

	cc, err := contractapi.NewChaincode(chaincode.NewVotingContract(logger))
	if err != nil {
		logger.Error("failed to create chaincode", "error", err)
		os.Exit(1)
	}
	cc.Info.Title = "bitvote"
	cc.Info.Version = "1.0.0"

	if addr := os.Getenv("CHAINCODE_SERVER_ADDRESS"); addr != "" {
		server := &shim.ChaincodeServer{
			CCID:     os.Getenv("CHAINCODE_ID"),
			Address:  addr,
			CC:       cc,
			TLSProps: shim.TLSProperties{Disabled: true},
		}
		logger.Info("chaincode server listening", "address", addr)
		if err := server.Start(); err != nil {
			logger.Error("chaincode server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := cc.Start(); err != nil {
		logger.Error("failed to start chaincode", "error", err)
		os.Exit(1)
	}
}
