// Package loop implements the interactive event-stream orchestration loop:
// it consumes the ordered event stream of a workflow run, renders streaming
// participant output, pauses on input requests to collect an operator reply,
// resumes the stream with that reply keyed by request id, and terminates on
// the first terminal event.
//
// The loop holds the single structural invariant of the whole system: at any
// point there is either no pending input request or exactly one, and while
// one is pending the workflow is only ever continued through SendReplies with
// that request's id.
package loop

import (
	"context"
	"fmt"

	"github.com/hupe1980/steerflow/core"
	"github.com/hupe1980/steerflow/logging"
	"github.com/hupe1980/steerflow/operator"
	"github.com/hupe1980/steerflow/render"
)

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// Renderer receives classified events for display.
	Renderer render.Renderer
	// Operator resolves pause points into replies.
	Operator operator.Operator
	// ContextTurns bounds the conversation excerpt shown on a pause point.
	ContextTurns int
	// Logger for loop diagnostics.
	Logger logging.Logger
}

// Loop drives one workflow run to completion. A Loop instance owns its own
// accumulation state and must not be shared across concurrent runs; create
// one per run.
type Loop struct {
	renderer     render.Renderer
	operator     operator.Operator
	contextTurns int
	logger       logging.Logger
}

// Result is the terminal outcome of a run.
type Result struct {
	// Output is set when the run produced a final payload.
	Output *core.OutputEvent
	// State is the last observed run state.
	State core.RunState
}

// Text returns the output payload text, or "" when the run produced none.
func (r *Result) Text() string {
	if r.Output == nil {
		return ""
	}
	return r.Output.Text()
}

// New constructs a Loop with optional overrides. Defaults are headless: Nop
// renderer, auto-approving operator, no logging.
func New(optFns ...func(o *Options)) *Loop {
	opts := Options{
		Renderer:     render.Nop{},
		Operator:     operator.Auto{},
		ContextTurns: 2,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Loop{
		renderer:     opts.Renderer,
		operator:     opts.Operator,
		contextTurns: opts.ContextTurns,
		logger:       opts.Logger,
	}
}

// Run starts the workflow for task and iterates stream segments until a
// terminal event. Pause points are resolved through the configured operator;
// the collected reply is fed back via SendReplies before the next segment is
// consumed.
//
// Errors are surfaced unchanged and without retry: a stream error, an
// operator error (including operator.ErrExit) and a FailureEvent or failed
// status all end the run. On failure the returned Result carries no output.
func (l *Loop) Run(ctx context.Context, wf core.Workflow, task string) (*Result, error) {
	events, errs, err := wf.RunStream(ctx, task)
	if err != nil {
		return nil, err
	}

	defer l.renderer.Close()

	res := &Result{State: core.RunStateRunning}
	for {
		pending, err := l.consumeSegment(ctx, events, errs, res)
		if err != nil {
			return res, err
		}
		if pending == nil {
			return res, nil
		}

		reply, err := l.operator.Resolve(ctx, *pending)
		if err != nil {
			return res, err
		}

		l.logger.Debug("resuming run request_id=%s decision=%s", pending.RequestID, reply.Decision)
		events, errs, err = wf.SendReplies(ctx, core.Replies{pending.RequestID: reply})
		if err != nil {
			return res, err
		}
	}
}

// consumeSegment processes one stream segment. It returns a non-nil pending
// request when the segment ended on a pause point, and nil when the run
// reached a terminal event or the segment closed without one.
func (l *Loop) consumeSegment(
	ctx context.Context,
	events <-chan core.Event,
	errs <-chan error,
	res *Result,
) (*core.RequestForInputEvent, error) {
	for events != nil || errs != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			pending, terminal, err := l.handle(ev, res)
			if err != nil {
				return nil, err
			}
			if pending != nil {
				// Drain the segment's error channel before pausing so a
				// trailing engine error is not lost.
				if err := drainErr(errs); err != nil {
					return nil, err
				}
				return pending, nil
			}
			if terminal {
				if err := drainErr(errs); err != nil {
					return nil, err
				}
				return nil, nil
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}

// handle dispatches a single event. It returns the pending request for pause
// events, terminal=true for terminal events, or an error for failures.
func (l *Loop) handle(ev core.Event, res *Result) (*core.RequestForInputEvent, bool, error) {
	switch e := ev.(type) {
	case core.AgentDeltaEvent:
		l.renderer.Delta(e.Participant, e.Delta)
		return nil, false, nil

	case core.OrchestratorNoteEvent:
		l.renderer.Note(e.Text)
		return nil, false, nil

	case core.RequestForInputEvent:
		l.logger.Debug("input requested request_id=%s participant=%s", e.RequestID, e.Participant)
		l.renderer.Request(e, l.contextTurns)
		return &e, false, nil

	case core.OutputEvent:
		out := e
		res.Output = &out
		res.State = core.RunStateIdle
		return nil, true, nil

	case core.StatusChangeEvent:
		res.State = e.State
		if e.State == core.RunStateFailed {
			return nil, true, fmt.Errorf("workflow run failed")
		}
		return nil, e.State == core.RunStateIdle, nil

	case core.FailureEvent:
		res.State = core.RunStateFailed
		res.Output = nil
		return nil, true, e.Detail

	default:
		// Closed event set; anything else is a programming error upstream.
		return nil, false, fmt.Errorf("unknown event type %T", ev)
	}
}

// drainErr performs a non-blocking read of a segment error channel.
func drainErr(errs <-chan error) error {
	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}
