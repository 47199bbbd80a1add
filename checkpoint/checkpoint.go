// Package checkpoint persists workflow run state so an interrupted run can be
// restarted from its last completed turn. Two stores are provided: a volatile
// in-memory store for tests and demos and a file store keeping one JSON
// document per run.
//
// Restoring a checkpoint reconstructs workflow-level state (task, turn index,
// conversation). Whether a resumed run continues from the exact suspension
// point or re-runs prior steps is an engine property; stores only guarantee
// that the recorded state is returned intact.
package checkpoint

import (
	"errors"
	"time"

	"github.com/hupe1980/steerflow/core"
)

// ErrNotFound is returned when no checkpoint exists for a run id.
var ErrNotFound = errors.New("checkpoint not found")

// State is the persisted snapshot of a run after a completed turn.
type State struct {
	RunID        string         `json:"run_id"`
	Task         string         `json:"task"`
	Turn         int            `json:"turn"`
	Conversation []core.Message `json:"conversation"`
	SavedAt      time.Time      `json:"saved_at"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (s State) Clone() State {
	out := s
	out.Conversation = append([]core.Message(nil), s.Conversation...)
	return out
}

// Store persists run checkpoints keyed by run id. Save overwrites any
// previous checkpoint for the same run.
type Store interface {
	Save(state State) error
	Load(runID string) (State, error)
	List() ([]string, error)
	Delete(runID string) error
}
