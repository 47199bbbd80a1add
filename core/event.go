package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RunState is the coarse lifecycle state of a workflow run as reported by
// StatusChangeEvent.
type RunState string

// Run states emitted by engines. Idle means the run finished normally and the
// engine is waiting for nothing; Failed is terminal.
const (
	RunStateRunning RunState = "running"
	RunStateIdle    RunState = "idle"
	RunStateFailed  RunState = "failed"
)

// Event is the closed sum of workflow lifecycle events delivered over a
// stream. Concrete variants implement the unexported isEvent marker; dispatch
// with a type switch. Events are immutable after emission and must be
// processed in arrival order.
type Event interface{ isEvent() }

// AgentDeltaEvent carries an incremental chunk of streamed text produced by a
// single participant. Consecutive deltas for the same participant compose one
// in-progress line; a participant change closes the previous line.
type AgentDeltaEvent struct {
	Participant string `json:"participant"`
	Delta       string `json:"delta"`
}

func (AgentDeltaEvent) isEvent() {}

// OrchestratorNoteEvent is commentary emitted by the coordinating manager
// rather than by a participant (plan updates, progress ledgers, etc.).
type OrchestratorNoteEvent struct {
	Text string `json:"text"`
}

func (OrchestratorNoteEvent) isEvent() {}

// RequestForInputEvent is a pause point: the engine will not proceed until a
// Reply keyed by RequestID is sent back via Workflow.SendReplies. Participant
// names the executor about to run; Conversation is the context so far.
type RequestForInputEvent struct {
	RequestID    string    `json:"request_id"`
	Participant  string    `json:"participant"`
	Conversation []Message `json:"conversation,omitempty"`
}

func (RequestForInputEvent) isEvent() {}

// OutputEvent carries the final result of a run: the complete conversation
// produced by the workflow. It is a terminal event.
type OutputEvent struct {
	Messages []Message `json:"messages"`
}

func (OutputEvent) isEvent() {}

// Text concatenates the text of all output messages in order. Useful when the
// result is a single synthesized answer rather than a transcript.
func (e OutputEvent) Text() string {
	var b strings.Builder
	for _, m := range e.Messages {
		b.WriteString(m.Text)
	}
	return b.String()
}

// StatusChangeEvent reports a run lifecycle transition. Failed and (after an
// output) Idle are terminal for consumers.
type StatusChangeEvent struct {
	State RunState `json:"state"`
}

func (StatusChangeEvent) isEvent() {}

// FailureDetail is the structured error payload of a FailureEvent: an error
// kind, a human readable message and the participant that caused it (empty
// when the failure is not attributable).
type FailureDetail struct {
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	Participant string `json:"participant,omitempty"`
}

// Error implements the error interface.
func (d FailureDetail) Error() string {
	if d.Participant != "" {
		return fmt.Sprintf("%s: %s (participant %s)", d.Kind, d.Message, d.Participant)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// FailureEvent is emitted when a participant or the engine itself fails. It is
// terminal; the loop surfaces the detail as its returned error.
type FailureEvent struct {
	Detail FailureDetail `json:"detail"`
}

func (FailureEvent) isEvent() {}

// NewFailureEvent builds a FailureEvent from an error, classifying it under
// the given kind and attributing it to participant.
func NewFailureEvent(kind, participant string, err error) FailureEvent {
	return FailureEvent{Detail: FailureDetail{
		Kind:        kind,
		Message:     err.Error(),
		Participant: participant,
	}}
}

// IsTerminal reports whether no further events can follow ev on a stream.
func IsTerminal(ev Event) bool {
	switch e := ev.(type) {
	case OutputEvent, FailureEvent:
		return true
	case StatusChangeEvent:
		return e.State == RunStateIdle || e.State == RunStateFailed
	default:
		return false
	}
}

// NewID generates a unique identifier for runs and input requests.
func NewID() string { return uuid.NewString() }
