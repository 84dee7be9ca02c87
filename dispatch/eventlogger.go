package dispatch

import "log"

// A LogHook is a hook that records information from a running scheduler.
type LogHook interface {
	Hook
}

// LogHookBase provides the common logic for all LogHooks.
type LogHookBase struct {
	*log.Logger
}

// EventLogger is a hook that prints one line per dispatched event.
type EventLogger struct {
	LogHookBase
}

// NewEventLogger returns an EventLogger that writes into the given logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	return h
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosAfterEvent && ctx.Pos != HookPosEventDropped {
		return
	}

	info, ok := ctx.Detail.(EventInfo)
	if !ok {
		return
	}

	h.Logger.Printf("step %d, %s %s, %s",
		info.Step, info.Type, info.ID, info.Outcome)
}
