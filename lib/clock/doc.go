// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock interface parameter instead of calling
// time.Now or time.Sleep directly. In production, Real() provides the
// standard library behavior. In tests, Fake() provides a deterministic
// clock that advances only when Advance is called.
//
// # Wiring Pattern
//
// Add a Clock field to structs that pace work with real time:
//
//	type Pump struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	p := &Pump{clock: clock.Real()}
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	p := &Pump{clock: c}
//	// ... start the pump goroutine ...
//	c.WaitForTimers(1)                     // wait for it to reach Sleep
//	c.Advance(5 * time.Millisecond)        // fire the sleep deterministically
//
// # FakeClock Synchronization
//
// When a goroutine calls Sleep on a FakeClock, it registers a pending
// waiter. Use WaitForTimers to block until a specific number of waiters
// are registered before calling Advance. This eliminates the race
// between sleep registration and time advancement that plagues tests
// using time.Sleep for synchronization.
package clock
