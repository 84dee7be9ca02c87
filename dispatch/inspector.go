package dispatch

// TypeStats counts dispatch outcomes for one event type.
type TypeStats struct {
	Dispatched uint64
	Published  uint64
	Cancelled  uint64
	Dropped    uint64
}

// An Inspector is the read-only view of a scheduler that monitors consume
// from other goroutines. All methods are safe to call while the scheduler
// goroutine keeps stepping; the numbers are snapshots and may lag by one
// event.
type Inspector interface {
	// PendingEpochs returns the number of epochs waiting in the queue.
	PendingEpochs() int

	// PendingEvents returns the total number of queued events.
	PendingEvents() int

	// StepCount returns how many epochs have been processed so far.
	StepCount() uint64

	// EventTypes lists the names of all event types that have a registry
	// entry or have been seen in dispatch.
	EventTypes() []string

	// Stats returns a copy of the per-type outcome counters, keyed by
	// type name.
	Stats() map[string]TypeStats
}

// PendingEpochs returns the number of epochs waiting in the queue.
func (s *Scheduler[W]) PendingEpochs() int {
	return int(s.pendingEpochs.Load())
}

// PendingEvents returns the total number of queued events.
func (s *Scheduler[W]) PendingEvents() int {
	return int(s.pendingEvents.Load())
}

// StepCount returns how many epochs have been processed so far.
func (s *Scheduler[W]) StepCount() uint64 {
	return s.stepCount.Load()
}

// EventTypes lists the names of all event types known to the scheduler, in
// the order they were first seen.
func (s *Scheduler[W]) EventTypes() []string {
	s.statsLock.RLock()
	defer s.statsLock.RUnlock()

	names := make([]string, len(s.typeNames))
	copy(names, s.typeNames)
	return names
}

// Stats returns a copy of the per-type outcome counters.
func (s *Scheduler[W]) Stats() map[string]TypeStats {
	s.statsLock.RLock()
	defer s.statsLock.RUnlock()

	stats := make(map[string]TypeStats, len(s.stats))
	for t, st := range s.stats {
		stats[t.String()] = *st
	}
	return stats
}
