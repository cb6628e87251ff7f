//go:build !deadlock

// Package syncutil provides the mutex type used to guard sink state.
// Build with -tags=deadlock to swap in github.com/sasha-s/go-deadlock.
package syncutil

import "sync"

// Mutex wraps sync.Mutex.
//
//nolint:gocritic // embedding exposes Lock/Unlock
type Mutex struct {
	sync.Mutex
}
