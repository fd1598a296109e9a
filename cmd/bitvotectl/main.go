// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command bitvotectl runs bitvote transactions directly against a local
// ledger, without the REST gateway or sign-in. It is meant for bootstrapping
// participants and inspecting a ledger.
//
//	bitvotectl --db ./ledger participant add --id org1 --name Olivia --role Organizer
//	bitvotectl --db ./ledger --as org1 poll create -o Yes -o No --open 2025-05-01 --closed 2025-05-02
//	bitvotectl --db ./ledger --as alice vote POLL_ID 0
//	bitvotectl --db ./ledger --as org1 results POLL_ID
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "bitvotectl:", err)
		os.Exit(1)
	}
}
