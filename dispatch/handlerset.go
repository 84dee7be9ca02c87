package dispatch

import (
	"errors"
	"sort"
)

// Outcome describes what happened to one dispatched event.
type Outcome int

const (
	// OutcomePublished means the event ran its whole chain and was
	// appended to the observable queue.
	OutcomePublished Outcome = iota

	// OutcomeCancelled means a handler returned ErrBreak; the rest of the
	// chain did not run and Observers never see the event.
	OutcomeCancelled

	// OutcomeDropped means no registry entry existed for the event's type.
	OutcomeDropped
)

func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "published"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// handlerSet is the type-erased face of one registry entry. The registry maps
// a reflect.Type to the handlerSet for that exact type, so the downcast
// inside dispatch can never fail.
type handlerSet[W any] interface {
	dispatch(event any, world *W, snd *sender) Outcome
	handlerCount() int
}

type handlerEntry[T any, W any] struct {
	priority int
	handler  Handler[T, W]
}

// typedHandlerSet is the registry entry for one event type: its sorted
// handler chain and its observable queue.
type typedHandlerSet[T any, W any] struct {
	entries    []handlerEntry[T, W]
	observable *ObservableQueue[T]
}

func newTypedHandlerSet[T any, W any]() *typedHandlerSet[T, W] {
	h := new(typedHandlerSet[T, W])
	h.observable = NewObservableQueue[T]()
	return h
}

func (h *typedHandlerSet[T, W]) add(handler Handler[T, W], priority int) {
	h.entries = append(h.entries, handlerEntry[T, W]{
		priority: priority,
		handler:  handler,
	})

	// Stable, so equal priorities keep registration order.
	sort.SliceStable(h.entries, func(i, j int) bool {
		return h.entries[i].priority < h.entries[j].priority
	})
}

func (h *typedHandlerSet[T, W]) dispatch(
	event any,
	world *W,
	snd *sender,
) Outcome {
	ev := event.(T)
	ctx := &Context{sender: snd}

	for _, entry := range h.entries {
		err := entry.handler(&ev, world, ctx)
		if err == nil || errors.Is(err, ErrContinue) {
			continue
		}

		// ErrBreak, or any unexpected error, cancels the event.
		return OutcomeCancelled
	}

	h.observable.push(ev)

	return OutcomePublished
}

func (h *typedHandlerSet[T, W]) handlerCount() int {
	return len(h.entries)
}
