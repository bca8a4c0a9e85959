// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
)

func main() {
	fmt.Println("💧 go-watersync - WaterWise Session & Property Synchronizer")
	fmt.Println("===========================================================")
	fmt.Println()
	fmt.Println("go-watersync keeps a producer's session and property data consistent")
	fmt.Println("between the WaterWise remote service and a durable local store, with")
	fmt.Println("offline-first registration, login fallback and pending-sync replay.")
	fmt.Println()

	fmt.Println("📦 Packages:")
	fmt.Println()
	fmt.Println("  waterapi    - typed HTTP client for the remote service (resty)")
	fmt.Println("  waterstore  - durable SQLite key/value session store")
	fmt.Println("  watersync   - the synchronizer: probe, remote-first ops, local fallback")
	fmt.Println()

	fmt.Println("📚 Available Examples:")
	fmt.Println()
	fmt.Println("1. 📱 Offline Flow Walkthrough (examples/offline_flow/)")
	fmt.Println("   Register while unreachable, then replay the queued registration")
	fmt.Println("   Features: offline fallback, pending-sync replay, id reconciliation")
	fmt.Println("   Run: cd examples/offline_flow && go run .")
	fmt.Println()
}
