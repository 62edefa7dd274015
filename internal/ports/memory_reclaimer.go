package ports

// MemoryReclaimer is an advisory hint to release memory between batches.
// Implementations are best-effort; a no-op is always valid.
type MemoryReclaimer interface {
	Reclaim()
}

// MemoryReclaimerFunc adapts a function to MemoryReclaimer.
type MemoryReclaimerFunc func()

// Reclaim calls f.
func (f MemoryReclaimerFunc) Reclaim() { f() }
