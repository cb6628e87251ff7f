//go:build deadlock

// Package syncutil provides the mutex type used to guard sink state.
// This file is compiled when building with -tags=deadlock so that a flush
// holding the lock too long is reported with both goroutine stacks.
package syncutil

import deadlock "github.com/sasha-s/go-deadlock"

// Mutex wraps deadlock.Mutex for deadlock detection.
type Mutex struct {
	deadlock.Mutex
}
