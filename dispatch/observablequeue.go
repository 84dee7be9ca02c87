package dispatch

import (
	"math"
	"sync"
	"sync/atomic"
	"weak"
)

// An ObservableQueue is an append-only buffer of published events that any
// number of Observers drain independently, each at its own pace. The buffer
// is guarded by a read-write lock: the scheduler goroutine is the single
// writer, observers may read from arbitrary goroutines.
//
// The queue only keeps the suffix of items some live observer has not read
// yet. Space is reclaimed lazily, during push, never eagerly.
type ObservableQueue[T any] struct {
	mu    sync.RWMutex
	items []T

	// Touched only by the scheduler goroutine.
	observers []weak.Pointer[observerCursor]
}

// observerCursor is the per-observer read position, relative to the current
// front of the buffer. The queue holds it weakly so a dropped Observer does
// not keep history alive; it is purged on the next push after collection, or
// immediately after Release.
type observerCursor struct {
	front    atomic.Int64
	released atomic.Bool
}

// NewObservableQueue creates an empty queue with no observers.
func NewObservableQueue[T any]() *ObservableQueue[T] {
	return new(ObservableQueue[T])
}

// push appends an item and trims the consumed prefix. When no observer has
// ever subscribed, or all known cursors have already been purged, the item is
// dropped on the floor so unobserved types never buffer anything.
func (q *ObservableQueue[T]) push(item T) {
	if len(q.observers) == 0 {
		return
	}

	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	q.synchronize()
}

// subscribe returns a fresh Observer whose cursor starts at the current end
// of the buffer, so it only sees items pushed after this call.
func (q *ObservableQueue[T]) subscribe() *Observer[T] {
	q.mu.RLock()
	end := int64(len(q.items))
	q.mu.RUnlock()

	cursor := new(observerCursor)
	cursor.front.Store(end)
	q.observers = append(q.observers, weak.Make(cursor))

	o := new(Observer[T])
	o.cursor = cursor
	o.queue = weak.Make(q)
	return o
}

// synchronize purges dead cursors and discards the prefix of the buffer that
// every remaining observer has consumed, rebasing the live cursors onto the
// new front.
func (q *ObservableQueue[T]) synchronize() {
	q.mu.Lock()
	defer q.mu.Unlock()

	live := q.observers[:0]
	cursors := make([]*observerCursor, 0, len(q.observers))
	for _, ref := range q.observers {
		cursor := ref.Value()
		if cursor == nil || cursor.released.Load() {
			continue
		}
		live = append(live, ref)
		cursors = append(cursors, cursor)
	}
	q.observers = live

	newFront := int64(math.MaxInt64)
	for _, cursor := range cursors {
		if front := cursor.front.Load(); front < newFront {
			newFront = front
		}
	}
	if n := int64(len(q.items)); newFront > n {
		newFront = n
	}

	for _, cursor := range cursors {
		cursor.front.Add(-newFront)
	}

	q.items = q.items[newFront:]
}

// An Observer is a read-only cursor into an ObservableQueue. It holds the
// queue weakly: once the scheduler that owns the queue is gone, reads simply
// report that nothing is available.
//
// A single Observer may be handed to another goroutine, but reading the same
// Observer from two goroutines concurrently is not exactly-once: the
// load-read-advance sequence is not one atomic transaction, so two concurrent
// readers can both receive the same item.
type Observer[T any] struct {
	cursor *observerCursor
	queue  weak.Pointer[ObservableQueue[T]]
}

// Next returns a copy of the next unread item and advances the cursor. It
// returns false, without blocking or advancing, when no item is available or
// the queue no longer exists, so it can be polled repeatedly.
func (o *Observer[T]) Next() (T, bool) {
	var zero T

	q := o.queue.Value()
	if q == nil || o.cursor.released.Load() {
		return zero, false
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	i := o.cursor.front.Load()
	if i >= int64(len(q.items)) {
		return zero, false
	}
	o.cursor.front.Add(1)

	return q.items[i], true
}

// Release detaches the observer deterministically: the queue stops retaining
// items on its behalf at the next push, and further reads report nothing
// available. A dropped Observer is purged without Release too, but only after
// the garbage collector has run.
func (o *Observer[T]) Release() {
	o.cursor.released.Store(true)
}

// MapNext applies fn to the next unread item in place and advances the
// cursor, avoiding the copy Next makes. The pointer handed to fn is only
// valid during the call. Returns false when nothing is available.
func MapNext[T any, U any](o *Observer[T], fn func(item *T) U) (U, bool) {
	var zero U

	q := o.queue.Value()
	if q == nil || o.cursor.released.Load() {
		return zero, false
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	i := o.cursor.front.Load()
	if i >= int64(len(q.items)) {
		return zero, false
	}
	o.cursor.front.Add(1)

	return fn(&q.items[i]), true
}
