package datarecording

import "github.com/edvall/cascade/dispatch"

// TraceTableName is the table DispatchRecorder writes into.
const TraceTableName = "dispatch_trace"

// TraceEntry is one row of the dispatch trace: one dispatched or dropped
// event.
type TraceEntry struct {
	EventID   string
	EventType string
	Step      uint64
	Outcome   string
}

// DispatchRecorder is a dispatch.Hook that records one trace row per event a
// scheduler processes. Attach it with AcceptHook.
type DispatchRecorder struct {
	recorder DataRecorder
}

// NewDispatchRecorder creates the trace table and returns the hook.
func NewDispatchRecorder(recorder DataRecorder) *DispatchRecorder {
	recorder.CreateTable(TraceTableName, TraceEntry{})

	return &DispatchRecorder{recorder: recorder}
}

// Func records finished and dropped events. Before-event sites are ignored;
// the outcome is only known afterwards.
func (r *DispatchRecorder) Func(ctx dispatch.HookCtx) {
	if ctx.Pos != dispatch.HookPosAfterEvent &&
		ctx.Pos != dispatch.HookPosEventDropped {
		return
	}

	info, ok := ctx.Detail.(dispatch.EventInfo)
	if !ok {
		return
	}

	r.recorder.InsertData(TraceTableName, TraceEntry{
		EventID:   info.ID,
		EventType: info.Type.String(),
		Step:      info.Step,
		Outcome:   info.Outcome.String(),
	})
}
