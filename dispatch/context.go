package dispatch

import "reflect"

// sender is the scheduler-owned staging buffer for handler-emitted events.
type sender struct {
	immediate []scheduledEvent
	delayed   []scheduledEvent
}

// A Context lets a handler stage follow-up events while one event is being
// dispatched. It is borrowed for the duration of a single handler call and
// must not be retained.
type Context struct {
	sender *sender
}

// SendImmediate stages an event for the very next epoch. All events staged
// this way during one epoch, by any handler for any event, are merged into a
// single epoch at the front of the queue, in staging order.
func SendImmediate[T any](ctx *Context, event T) {
	ctx.sender.immediate = append(ctx.sender.immediate,
		newScheduledEvent(reflect.TypeFor[T](), event))
}

// SendDelayed stages an event as its own new epoch at the tail of the queue.
func SendDelayed[T any](ctx *Context, event T) {
	ctx.sender.delayed = append(ctx.sender.delayed,
		newScheduledEvent(reflect.TypeFor[T](), event))
}
