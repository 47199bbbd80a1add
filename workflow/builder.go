package workflow

import (
	"github.com/hupe1980/steerflow/checkpoint"
	"github.com/hupe1980/steerflow/core"
	"github.com/hupe1980/steerflow/logging"
)

// Snapshot is the read-only run state handed to a speaker selector before
// each round.
type Snapshot struct {
	// Task is the initial input the run was started with.
	Task string
	// RoundIndex counts completed participant turns in this run.
	RoundIndex int
	// Conversation is the full conversation so far, oldest first.
	Conversation []core.Message
	// Participants lists the registered participant names in order.
	Participants []string
}

// LastSpeaker returns the author of the most recent assistant turn, or "".
func (s Snapshot) LastSpeaker() string {
	for i := len(s.Conversation) - 1; i >= 0; i-- {
		if s.Conversation[i].Role == core.RoleAssistant {
			return s.Conversation[i].Author
		}
	}
	return ""
}

// SelectorFunc picks the next speaking participant by name. Returning ""
// finishes the run. Unknown names fail the run with a failure event.
type SelectorFunc func(s Snapshot) string

// Builder assembles workflow runs. A builder is reusable: each Build call
// produces an independent single-use run over the same configuration.
type Builder struct {
	participants []Participant
	requestInfo  bool
	selector     SelectorFunc
	maxRounds    int
	notes        bool
	store        checkpoint.Store
	runID        string
	resume       bool
	eventBuffer  int
	logger       logging.Logger
}

// NewBuilder creates a builder over the given participants. Without a
// selector the run executes each participant once, in order.
func NewBuilder(participants ...Participant) *Builder {
	return &Builder{
		participants: participants,
		eventBuffer:  64,
		logger:       logging.NoOpLogger{},
	}
}

// WithRequestInfo pauses the run before each participant turn, emitting a
// RequestForInputEvent so external input can steer the agent.
func (b *Builder) WithRequestInfo() *Builder {
	b.requestInfo = true
	return b
}

// WithSelector installs a speaker selection function (group chat style)
// replacing the default sequential one-pass order.
func (b *Builder) WithSelector(fn SelectorFunc) *Builder {
	b.selector = fn
	return b
}

// WithMaxRounds caps the number of participant turns regardless of selection.
func (b *Builder) WithMaxRounds(n int) *Builder {
	b.maxRounds = n
	return b
}

// WithOrchestratorNotes emits an OrchestratorNoteEvent announcing each round.
func (b *Builder) WithOrchestratorNotes() *Builder {
	b.notes = true
	return b
}

// WithCheckpoints persists run state to store after each completed turn. An
// empty runID gets a generated one.
func (b *Builder) WithCheckpoints(store checkpoint.Store, runID string) *Builder {
	b.store = store
	b.runID = runID
	return b
}

// ResumeFrom restores conversation and turn position from the checkpoint
// stored under runID before the run starts. Whether prior participant work is
// re-run is best effort: only recorded workflow state is restored.
func (b *Builder) ResumeFrom(store checkpoint.Store, runID string) *Builder {
	b.store = store
	b.runID = runID
	b.resume = true
	return b
}

// WithLogger sets the engine logger.
func (b *Builder) WithLogger(logger logging.Logger) *Builder {
	b.logger = logger
	return b
}

// WithEventBuffer sets the per-segment event channel buffer size.
func (b *Builder) WithEventBuffer(n int) *Builder {
	if n > 0 {
		b.eventBuffer = n
	}
	return b
}

// Build creates a new single-use run.
func (b *Builder) Build() *Workflow {
	runID := b.runID
	if runID == "" {
		runID = core.NewID()
	}
	return &Workflow{
		participants: b.participants,
		requestInfo:  b.requestInfo,
		selector:     b.selector,
		maxRounds:    b.maxRounds,
		notes:        b.notes,
		store:        b.store,
		resume:       b.resume,
		runID:        runID,
		eventBuffer:  b.eventBuffer,
		logger:       b.logger,
		replyCh:      make(chan handoff),
	}
}
