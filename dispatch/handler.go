package dispatch

import "errors"

// Control-flow signals handlers can return. Both are ordinary signals, not
// failures.
var (
	// ErrBreak aborts the rest of the chain for the current event. The
	// event is dropped and never reaches Observers.
	ErrBreak = errors.New("dispatch: break")

	// ErrContinue signals that the handler declined to act. The chain
	// proceeds exactly as if the handler returned nil.
	ErrContinue = errors.New("dispatch: continue")
)

// A Handler processes one event of type T against the world state W. It is
// the canonical three-argument form every registered handler is adapted into.
//
// Returning nil or ErrContinue lets the chain proceed; ErrBreak (or any
// other non-nil error) aborts the chain and suppresses publication to
// Observers. The ctx is only valid for the duration of the call.
type Handler[T any, W any] func(event *T, world *W, ctx *Context) error

// EventOnly adapts a handler that only inspects or mutates the event itself.
// The world type cannot be inferred from fn, so it is given explicitly:
//
//	dispatch.AddSystem(s, dispatch.EventOnly[World](handleAttack))
func EventOnly[W any, T any](fn func(event *T) error) Handler[T, W] {
	return func(event *T, _ *W, _ *Context) error {
		return fn(event)
	}
}

// WithWorld adapts a handler that reads or writes world state but does not
// emit follow-up events.
func WithWorld[T any, W any](fn func(event *T, world *W) error) Handler[T, W] {
	return func(event *T, world *W, _ *Context) error {
		return fn(event, world)
	}
}

// WithContext adapts a handler that emits follow-up events but ignores the
// world. As with EventOnly, the world type is given explicitly.
func WithContext[W any, T any](fn func(event *T, ctx *Context) error) Handler[T, W] {
	return func(event *T, _ *W, ctx *Context) error {
		return fn(event, ctx)
	}
}

// WithWorldAndContext adapts the full three-argument shape. It exists so all
// four accepted shapes have a named constructor; the function is already in
// canonical form.
func WithWorldAndContext[T any, W any](
	fn func(event *T, world *W, ctx *Context) error,
) Handler[T, W] {
	return Handler[T, W](fn)
}
