// Package dispatch implements a typed, epoch-based event dispatch engine.
//
// A Scheduler routes each event to the chain of handlers registered for the
// event's type. Events are grouped into epochs: all events of one epoch are
// processed by a single Step call before any later epoch starts. Handlers can
// stage follow-up events through a Context, either for the very next epoch or
// for a fresh epoch at the tail of the queue. Events that run their whole
// chain are republished on a per-type observable queue that other goroutines
// can drain through Observers.
package dispatch

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// A Scheduler maps event types to handler chains and drives dispatch. The
// type parameter W is the world state handed to every handler; the scheduler
// never inspects it.
//
// A Scheduler is single-threaded: registration, sending, and Step must all
// happen on one goroutine. The observable queues returned by Observe are the
// only cross-goroutine surface.
type Scheduler[W any] struct {
	HookableBase

	registry map[reflect.Type]handlerSet[W]
	queue    []epoch
	sender   sender

	stepCount     atomic.Uint64
	pendingEpochs atomic.Int64
	pendingEvents atomic.Int64

	statsLock sync.RWMutex
	typeNames []string
	stats     map[reflect.Type]*TypeStats
}

// NewScheduler creates an empty scheduler for world type W.
func NewScheduler[W any]() *Scheduler[W] {
	s := new(Scheduler[W])
	s.registry = make(map[reflect.Type]handlerSet[W])
	s.stats = make(map[reflect.Type]*TypeStats)
	return s
}

// An epoch is a batch of events that are processed by one Step call.
type epoch []scheduledEvent

// A scheduledEvent is an event boxed together with its type tag. The tag is
// always derived from the static type parameter at the boxing site, so a
// boxed value can never reach the handler chain of another type.
type scheduledEvent struct {
	id    string
	typ   reflect.Type
	value any
}

func newScheduledEvent(t reflect.Type, value any) scheduledEvent {
	return scheduledEvent{
		id:    GetIDGenerator().Generate(),
		typ:   t,
		value: value,
	}
}

// AddSystem registers a handler for events of type T at priority 0. The same
// handler may be registered multiple times; every registration adds another
// chain entry.
func AddSystem[T any, W any](s *Scheduler[W], h Handler[T, W]) {
	AddSystemWithPriority(s, h, 0)
}

// AddSystemWithPriority registers a handler for events of type T. Chains run
// in ascending priority order; handlers at equal priority run in registration
// order.
func AddSystemWithPriority[T any, W any](
	s *Scheduler[W],
	h Handler[T, W],
	priority int,
) {
	entryFor[T](s).add(h, priority)
}

// Send appends a new single-event epoch at the tail of the queue.
func Send[T any, W any](s *Scheduler[W], event T) {
	s.enqueue(epoch{newScheduledEvent(reflect.TypeFor[T](), event)})
}

// SendMany appends one epoch holding all the given events, in the given
// order.
func SendMany[T any, W any](s *Scheduler[W], events []T) {
	t := reflect.TypeFor[T]()

	ep := make(epoch, 0, len(events))
	for _, event := range events {
		ep = append(ep, newScheduledEvent(t, event))
	}

	s.enqueue(ep)
}

// Observe subscribes to the events of type T that complete their handler
// chain. No handler needs to be registered for T; a type with an empty chain
// still publishes every instance, so the scheduler degrades to a broadcast
// bus for types nobody handles.
//
// The subscription only sees events published after this call.
func Observe[T any, W any](s *Scheduler[W]) *Observer[T] {
	return entryFor[T](s).observable.subscribe()
}

// Step pops the front epoch and dispatches every event in it against world.
// It returns false, without doing anything, when the queue is empty.
//
// After the epoch finishes, all events staged with SendImmediate during it
// form one new epoch at the front of the queue, and each event staged with
// SendDelayed forms its own epoch at the back.
func (s *Scheduler[W]) Step(world *W) bool {
	if len(s.queue) == 0 {
		return false
	}

	ep := s.queue[0]
	s.queue = s.queue[1:]
	s.pendingEpochs.Add(-1)
	s.pendingEvents.Add(-int64(len(ep)))
	s.stepCount.Add(1)

	for _, evt := range ep {
		s.dispatch(evt, world)
	}

	s.mergeStaged()

	return true
}

// IsEmpty returns true when no epochs are pending.
func (s *Scheduler[W]) IsEmpty() bool {
	return len(s.queue) == 0
}

func (s *Scheduler[W]) enqueue(ep epoch) {
	s.queue = append(s.queue, ep)
	s.pendingEpochs.Add(1)
	s.pendingEvents.Add(int64(len(ep)))
}

func (s *Scheduler[W]) dispatch(evt scheduledEvent, world *W) {
	info := EventInfo{
		ID:   evt.id,
		Type: evt.typ,
		Step: s.stepCount.Load(),
	}

	set, ok := s.registry[evt.typ]
	if !ok {
		// No registry entry at all: the event is discarded, never
		// observed, never retried.
		info.Outcome = OutcomeDropped
		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosEventDropped,
			Item:   evt.value,
			Detail: info,
		})
		s.recordOutcome(evt.typ, OutcomeDropped)
		return
	}

	hookCtx := HookCtx{
		Domain: s,
		Pos:    HookPosBeforeEvent,
		Item:   evt.value,
		Detail: info,
	}
	s.InvokeHook(hookCtx)

	outcome := set.dispatch(evt.value, world, &s.sender)

	info.Outcome = outcome
	hookCtx.Pos = HookPosAfterEvent
	hookCtx.Detail = info
	s.InvokeHook(hookCtx)

	s.recordOutcome(evt.typ, outcome)
}

func (s *Scheduler[W]) mergeStaged() {
	if len(s.sender.immediate) > 0 {
		next := make(epoch, len(s.sender.immediate))
		copy(next, s.sender.immediate)
		s.sender.immediate = s.sender.immediate[:0]

		s.queue = append([]epoch{next}, s.queue...)
		s.pendingEpochs.Add(1)
		s.pendingEvents.Add(int64(len(next)))
	}

	for _, evt := range s.sender.delayed {
		s.enqueue(epoch{evt})
	}
	s.sender.delayed = s.sender.delayed[:0]
}

// entryFor returns the registry entry for T, materializing it on first use.
// Once created an entry persists for the scheduler's lifetime.
func entryFor[T any, W any](s *Scheduler[W]) *typedHandlerSet[T, W] {
	t := reflect.TypeFor[T]()

	set, ok := s.registry[t]
	if !ok {
		typed := newTypedHandlerSet[T, W]()
		s.registry[t] = typed
		s.registerType(t)
		return typed
	}

	return set.(*typedHandlerSet[T, W])
}

func (s *Scheduler[W]) registerType(t reflect.Type) {
	s.statsLock.Lock()
	defer s.statsLock.Unlock()

	if _, ok := s.stats[t]; !ok {
		s.stats[t] = new(TypeStats)
		s.typeNames = append(s.typeNames, t.String())
	}
}

func (s *Scheduler[W]) recordOutcome(t reflect.Type, outcome Outcome) {
	s.statsLock.Lock()
	defer s.statsLock.Unlock()

	st, ok := s.stats[t]
	if !ok {
		st = new(TypeStats)
		s.stats[t] = st
		s.typeNames = append(s.typeNames, t.String())
	}

	st.Dispatched++
	switch outcome {
	case OutcomePublished:
		st.Published++
	case OutcomeCancelled:
		st.Cancelled++
	case OutcomeDropped:
		st.Dropped++
	}
}
