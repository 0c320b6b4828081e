// Package locker provides the dataset read/write lock with the
// assertion API used by backend primitives as a programming-error
// guard: lock acquisition happens only at the public dataset API
// boundary, and every primitive asserts the lock it requires is held.
package locker

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// RW is a read/write lock over one dataset. Any number of readers may
// hold it concurrently; a writer is exclusive.
//
// The state counter exists solely for the Assert methods; it is not a
// substitute for the mutex.
type RW struct {
	mu sync.RWMutex
	// state is the number of read holders, or -1 while written.
	state atomic.Int64
}

// BeginRead acquires the lock for reading.
func (l *RW) BeginRead() {
	l.mu.RLock()
	l.state.Add(1)
}

// EndRead releases a read acquisition.
func (l *RW) EndRead() {
	l.state.Add(-1)
	l.mu.RUnlock()
}

// BeginWrite acquires the lock exclusively.
func (l *RW) BeginWrite() {
	l.mu.Lock()
	l.state.Store(-1)
}

// EndWrite releases a write acquisition.
func (l *RW) EndWrite() {
	l.state.Store(0)
	l.mu.Unlock()
}

// AssertRead panics unless the lock is held (for reading or writing).
// A failure signals a caller bug, never a runtime condition.
func (l *RW) AssertRead(what string) {
	if l.state.Load() == 0 {
		panic(fmt.Sprintf("locker: %s called without holding the dataset lock", what))
	}
}

// AssertWrite panics unless the lock is held exclusively.
func (l *RW) AssertWrite(what string) {
	if l.state.Load() != -1 {
		panic(fmt.Sprintf("locker: %s called without holding the dataset write lock", what))
	}
}
