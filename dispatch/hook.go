package dispatch

import "reflect"

// HookPos defines the enum of possible hooking positions.
type HookPos struct {
	Name string
}

// HookPosBeforeEvent triggers right before an event enters its handler chain.
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent triggers after an event's chain finished, whether the
// event was published or cancelled.
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

// HookPosEventDropped triggers when an event is discarded because no registry
// entry exists for its type.
var HookPosEventDropped = &HookPos{Name: "EventDropped"}

// EventInfo describes the event a hook fires for. It travels in HookCtx's
// Detail field.
type EventInfo struct {
	ID      string
	Type    reflect.Type
	Step    uint64
	Outcome Outcome
}

// HookCtx carries all the information about the site that triggered a hook.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hookable defines an object that accepts Hooks.
type Hookable interface {
	// AcceptHook registers a hook.
	AcceptHook(hook Hook)
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do when the hook is invoked.
	Func(ctx HookCtx)
}

// A HookableBase provides the utility functions for types that implement the
// Hookable interface.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// InvokeHook triggers the registered Hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
