// Package testutil provides test doubles shared across package tests, most
// importantly a fully scripted Workflow whose stream segments are fixed in
// advance. This makes loop behavior reproducible without a model backend.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/steerflow/core"
)

// Segment is one stream segment of a scripted run: the events to deliver and
// an optional error emitted after them.
type Segment struct {
	Events []core.Event
	Err    error
}

// ScriptedWorkflow replays predefined segments. The first segment is returned
// by RunStream, each subsequent one by a SendReplies call. All calls are
// recorded for assertions.
type ScriptedWorkflow struct {
	mu       sync.Mutex
	segments []Segment
	next     int

	// Tasks records RunStream inputs.
	Tasks []string
	// Resumes records each SendReplies payload in call order.
	Resumes []core.Replies
}

// NewScriptedWorkflow creates a workflow replaying the given segments.
func NewScriptedWorkflow(segments ...Segment) *ScriptedWorkflow {
	return &ScriptedWorkflow{segments: segments}
}

// RunStream implements core.Workflow.
func (w *ScriptedWorkflow) RunStream(_ context.Context, task string) (<-chan core.Event, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Tasks = append(w.Tasks, task)
	return w.playLocked()
}

// SendReplies implements core.Workflow.
func (w *ScriptedWorkflow) SendReplies(_ context.Context, replies core.Replies) (<-chan core.Event, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.next == 0 {
		return nil, nil, fmt.Errorf("no run in progress")
	}
	w.Resumes = append(w.Resumes, replies)
	return w.playLocked()
}

func (w *ScriptedWorkflow) playLocked() (<-chan core.Event, <-chan error, error) {
	if w.next >= len(w.segments) {
		return nil, nil, fmt.Errorf("script exhausted after %d segments", len(w.segments))
	}
	seg := w.segments[w.next]
	w.next++

	events := make(chan core.Event, len(seg.Events))
	errs := make(chan error, 1)
	for _, ev := range seg.Events {
		events <- ev
	}
	if seg.Err != nil {
		errs <- seg.Err
	}
	close(events)
	close(errs)
	return events, errs, nil
}
