package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/steerflow/checkpoint"
	"github.com/hupe1980/steerflow/core"
	"github.com/hupe1980/steerflow/logging"
)

// Failure kinds attached to engine-emitted FailureEvents.
const (
	KindParticipantError = "ParticipantError"
	KindSelectorError    = "SelectorError"
	KindCheckpointError  = "CheckpointError"
)

// segment is one stream window handed to the consumer: RunStream opens the
// first, each SendReplies opens the next.
type segment struct {
	events chan core.Event
	errs   chan error
}

func newSegment(buffer int) *segment {
	return &segment{
		events: make(chan core.Event, buffer),
		errs:   make(chan error, 1),
	}
}

func (s *segment) close() {
	close(s.events)
	close(s.errs)
}

// handoff carries the resolution of a pause from SendReplies to the engine
// goroutine along with the next segment to write into.
type handoff struct {
	reply core.Reply
	seg   *segment
}

// Workflow is a single-use run produced by Builder.Build. It implements
// core.Workflow: RunStream starts the engine goroutine, SendReplies resumes
// it across pause points. Public methods are safe for concurrent use.
type Workflow struct {
	participants []Participant
	requestInfo  bool
	selector     SelectorFunc
	maxRounds    int
	notes        bool
	store        checkpoint.Store
	resume       bool
	runID        string
	eventBuffer  int
	logger       logging.Logger

	mu           sync.Mutex
	started      bool
	done         bool
	pendingID    string
	task         string
	conversation []core.Message
	turn         int

	replyCh chan handoff
}

// RunID returns the stable identifier of this run (also the checkpoint key).
func (w *Workflow) RunID() string { return w.runID }

// RunStream implements core.Workflow. When the run was configured with
// ResumeFrom, the recorded task and conversation win and the task argument is
// ignored.
func (w *Workflow) RunStream(ctx context.Context, task string) (<-chan core.Event, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return nil, nil, fmt.Errorf("run %s already started", w.runID)
	}
	if len(w.participants) == 0 {
		return nil, nil, fmt.Errorf("no participants registered")
	}

	if w.resume {
		state, err := w.store.Load(w.runID)
		if err != nil {
			return nil, nil, fmt.Errorf("resume run %s: %w", w.runID, err)
		}
		w.task = state.Task
		w.conversation = append([]core.Message(nil), state.Conversation...)
		w.turn = state.Turn
		w.logger.Info("resuming run %s from turn %d", w.runID, w.turn)
	} else {
		w.task = task
		w.conversation = []core.Message{core.NewUserMessage(task)}
	}

	w.started = true
	seg := newSegment(w.eventBuffer)
	go w.run(ctx, seg)

	return seg.events, seg.errs, nil
}

// SendReplies implements core.Workflow. The replies map must contain exactly
// the id of the run's pending input request.
func (w *Workflow) SendReplies(ctx context.Context, replies core.Replies) (<-chan core.Event, <-chan error, error) {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil, nil, fmt.Errorf("run %s not started", w.runID)
	}
	if w.done {
		w.mu.Unlock()
		return nil, nil, fmt.Errorf("run %s already finished", w.runID)
	}
	if w.pendingID == "" {
		w.mu.Unlock()
		return nil, nil, fmt.Errorf("run %s has no pending input request", w.runID)
	}
	reply, ok := replies[w.pendingID]
	if !ok || len(replies) != 1 {
		pending := w.pendingID
		w.mu.Unlock()
		return nil, nil, fmt.Errorf("expected exactly one reply for request %s", pending)
	}
	w.pendingID = ""
	w.mu.Unlock()

	seg := newSegment(w.eventBuffer)
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case w.replyCh <- handoff{reply: reply, seg: seg}:
	}

	return seg.events, seg.errs, nil
}

// run is the engine goroutine. It owns the conversation and writes events
// into the active segment, swapping segments across pause points.
func (w *Workflow) run(ctx context.Context, seg *segment) {
	if !w.emit(ctx, seg, core.StatusChangeEvent{State: core.RunStateRunning}) {
		seg.close()
		return
	}

	for {
		p, finished := w.nextParticipant(ctx, seg)
		if finished {
			w.finish(ctx, seg)
			return
		}
		if p == nil {
			// Selector picked an unknown participant; failure already emitted.
			w.fail(ctx, seg)
			return
		}

		if w.requestInfo {
			reply, next, ok := w.pause(ctx, seg, p.Name())
			if !ok {
				// pause closed the segment on its way out.
				return
			}
			seg = next

			if reply.Decision == core.DecisionEdit {
				// Operator supplied the turn content directly; the
				// participant does not run this round.
				w.emit(ctx, seg, core.AgentDeltaEvent{Participant: p.Name(), Delta: reply.Text})
				if !w.completeTurn(ctx, seg, core.NewAssistantMessage(p.Name(), reply.Text)) {
					w.fail(ctx, seg)
					return
				}
				continue
			}
			if reply.Text != "" {
				w.appendMessage(core.NewUserMessage(reply.Text))
			}
		}

		if w.notes {
			note := fmt.Sprintf("Round %d: %s speaking", w.turn+1, p.Name())
			if !w.emit(ctx, seg, core.OrchestratorNoteEvent{Text: note}) {
				seg.close()
				return
			}
		}

		msg, err := p.Respond(ctx, w.snapshotConversation(), func(delta string) {
			w.emit(ctx, seg, core.AgentDeltaEvent{Participant: p.Name(), Delta: delta})
		})
		if err != nil {
			if ctx.Err() != nil {
				seg.close()
				return
			}
			w.logger.Error("participant %s failed: %v", p.Name(), err)
			w.emit(ctx, seg, core.NewFailureEvent(KindParticipantError, p.Name(), err))
			w.fail(ctx, seg)
			return
		}

		if !w.completeTurn(ctx, seg, msg) {
			w.fail(ctx, seg)
			return
		}
	}
}

// nextParticipant picks the next speaker, or reports that the run finished.
// A selector naming an unknown participant emits a failure and returns
// (nil, false).
func (w *Workflow) nextParticipant(ctx context.Context, seg *segment) (Participant, bool) {
	w.mu.Lock()
	turn := w.turn
	w.mu.Unlock()

	if w.maxRounds > 0 && turn >= w.maxRounds {
		return nil, true
	}

	if w.selector == nil {
		if turn >= len(w.participants) {
			return nil, true
		}
		return w.participants[turn], false
	}

	name := w.selector(w.snapshot())
	if name == "" {
		return nil, true
	}
	for _, p := range w.participants {
		if p.Name() == name {
			return p, false
		}
	}
	w.emit(ctx, seg, core.FailureEvent{Detail: core.FailureDetail{
		Kind:    KindSelectorError,
		Message: fmt.Sprintf("selector picked unknown participant %q", name),
	}})
	return nil, false
}

// pause emits a RequestForInputEvent, ends the current segment and blocks
// until SendReplies hands over the reply and the next segment.
func (w *Workflow) pause(ctx context.Context, seg *segment, participant string) (core.Reply, *segment, bool) {
	reqID := core.NewID()
	w.mu.Lock()
	w.pendingID = reqID
	w.mu.Unlock()

	ev := core.RequestForInputEvent{
		RequestID:    reqID,
		Participant:  participant,
		Conversation: w.snapshotConversation(),
	}
	if !w.emit(ctx, seg, ev) {
		w.markDone()
		seg.close()
		return core.Reply{}, nil, false
	}
	seg.close()

	w.logger.Debug("run %s paused request_id=%s participant=%s", w.runID, reqID, participant)

	select {
	case <-ctx.Done():
		w.markDone()
		return core.Reply{}, nil, false
	case h := <-w.replyCh:
		return h.reply, h.seg, true
	}
}

// completeTurn appends the turn message, advances the round counter and
// persists a checkpoint when configured. It reports false when
// checkpointing failed (a failure event is emitted first).
func (w *Workflow) completeTurn(ctx context.Context, seg *segment, msg core.Message) bool {
	w.mu.Lock()
	w.conversation = append(w.conversation, msg)
	w.turn++
	state := checkpoint.State{
		RunID:        w.runID,
		Task:         w.task,
		Turn:         w.turn,
		Conversation: append([]core.Message(nil), w.conversation...),
	}
	w.mu.Unlock()

	if w.store == nil {
		return true
	}
	if err := w.store.Save(state); err != nil {
		w.logger.Error("checkpoint save failed for run %s: %v", w.runID, err)
		w.emit(ctx, seg, core.FailureEvent{Detail: core.FailureDetail{
			Kind:    KindCheckpointError,
			Message: err.Error(),
		}})
		return false
	}
	w.logger.Debug("checkpoint saved run=%s turn=%d", w.runID, state.Turn)
	return true
}

func (w *Workflow) appendMessage(msg core.Message) {
	w.mu.Lock()
	w.conversation = append(w.conversation, msg)
	w.mu.Unlock()
}

func (w *Workflow) finish(ctx context.Context, seg *segment) {
	w.emit(ctx, seg, core.OutputEvent{Messages: w.snapshotConversation()})
	w.emit(ctx, seg, core.StatusChangeEvent{State: core.RunStateIdle})
	w.markDone()
	seg.close()
}

func (w *Workflow) fail(ctx context.Context, seg *segment) {
	w.emit(ctx, seg, core.StatusChangeEvent{State: core.RunStateFailed})
	w.markDone()
	seg.close()
}

func (w *Workflow) markDone() {
	w.mu.Lock()
	w.done = true
	w.mu.Unlock()
}

func (w *Workflow) snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, len(w.participants))
	for i, p := range w.participants {
		names[i] = p.Name()
	}
	return Snapshot{
		Task:         w.task,
		RoundIndex:   w.turn,
		Conversation: append([]core.Message(nil), w.conversation...),
		Participants: names,
	}
}

func (w *Workflow) snapshotConversation() []core.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]core.Message(nil), w.conversation...)
}

// emit delivers an event into the active segment, honoring cancellation.
func (w *Workflow) emit(ctx context.Context, seg *segment, ev core.Event) bool {
	select {
	case <-ctx.Done():
		return false
	case seg.events <- ev:
		return true
	}
}
