package core

import "context"

// Workflow is the minimal contract an orchestration engine must satisfy for
// the interactive loop to drive it. It mirrors the start/resume shape of
// hosted workflow engines:
//
//   - RunStream begins a fresh run from a task and returns an ordered event
//     stream for the segment up to completion or the next pause point.
//   - SendReplies resumes a paused run by resolving its pending input
//     requests and returns the stream for the next segment.
//
// Semantics & guarantees:
//   - Event ordering: within one returned segment events arrive in production
//     order. Ordering across a resume boundary is an engine property and is
//     not guaranteed here.
//   - Channel lifecycle: the events channel is closed when the segment ends
//     (terminal event or pause). The error channel is buffered with size 1,
//     carries at most one terminal error and is closed afterwards.
//   - Cancellation: ctx cancellation stops event production; the engine owns
//     any deeper cleanup.
type Workflow interface {
	// RunStream starts a new run for task.
	RunStream(ctx context.Context, task string) (<-chan Event, <-chan error, error)

	// SendReplies resumes a paused run. Calling it on a run with no pending
	// request, or with ids the run is not waiting on, is an error.
	SendReplies(ctx context.Context, replies Replies) (<-chan Event, <-chan error, error)
}
