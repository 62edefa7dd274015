// Package memory provides the memory-reclaim hint run between batches.
package memory

import (
	"runtime/debug"
	"sync/atomic"
)

// Reclaimer implements ports.MemoryReclaimer by returning freed heap to the OS.
//
// Fetched source images and thumbnails are garbage once their batch is
// persisted. FreeOSMemory forces a collection and returns the pages.
type Reclaimer struct {
	enabled bool
	free    func()
	calls   atomic.Int64
}

// NewReclaimer creates a reclaimer. When enabled is false Reclaim is a no-op.
func NewReclaimer(enabled bool) *Reclaimer {
	return &Reclaimer{enabled: enabled, free: debug.FreeOSMemory}
}

// Reclaim requests a collection. It never fails.
func (r *Reclaimer) Reclaim() {
	if !r.enabled {
		return
	}
	r.calls.Add(1)
	r.free()
}

// Calls returns how many times memory was reclaimed.
func (r *Reclaimer) Calls() int64 {
	return r.calls.Load()
}
