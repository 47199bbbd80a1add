// Package workflow is a compact in-process orchestration engine that
// produces the event taxonomy the interactive loop consumes. A Builder
// assembles participants into a run: sequential one-pass by default, or
// driven by a custom speaker selector (group chat style). Runs can pause
// before each participant turn for external steering and can persist
// checkpoints after each completed turn.
package workflow

import (
	"context"
	"fmt"

	"github.com/hupe1980/steerflow/core"
	"github.com/hupe1980/steerflow/model"
)

// Participant is one executor in a workflow: it produces a single
// conversation turn when asked to respond.
type Participant interface {
	// Name identifies the participant in events and transcripts.
	Name() string

	// Respond produces the participant's turn for the given conversation.
	// Implementations stream incremental text through onDelta (may be called
	// zero or more times) and return the completed message.
	Respond(ctx context.Context, conversation []core.Message, onDelta func(string)) (core.Message, error)
}

// ModelParticipant backs a participant with a generation model. Responses are
// streamed so consumers see text as it is produced.
type ModelParticipant struct {
	name         string
	instructions string
	model        model.Model
}

// ModelParticipantOptions configure a ModelParticipant.
type ModelParticipantOptions struct {
	// Instructions is the participant's system prompt.
	Instructions string
}

// NewModelParticipant creates a model-backed participant.
func NewModelParticipant(name string, m model.Model, optFns ...func(o *ModelParticipantOptions)) *ModelParticipant {
	opts := ModelParticipantOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelParticipant{name: name, instructions: opts.Instructions, model: m}
}

// Name implements Participant.
func (p *ModelParticipant) Name() string { return p.name }

// Respond implements Participant. Partial model responses are forwarded to
// onDelta; the final response becomes the turn message.
func (p *ModelParticipant) Respond(
	ctx context.Context,
	conversation []core.Message,
	onDelta func(string),
) (core.Message, error) {
	respCh, errCh := p.model.Generate(ctx, model.Request{
		Instructions: p.instructions,
		Messages:     conversation,
		Stream:       true,
	})

	var final string
	sawFinal := false
	for resp := range respCh {
		if resp.Partial {
			if onDelta != nil {
				onDelta(resp.Text)
			}
			continue
		}
		final = resp.Text
		sawFinal = true
	}
	if err := <-errCh; err != nil {
		return core.Message{}, err
	}
	if !sawFinal {
		if err := ctx.Err(); err != nil {
			return core.Message{}, err
		}
		return core.Message{}, fmt.Errorf("model %s closed stream without a final response", p.model.Info().Name)
	}
	return core.NewAssistantMessage(p.name, final), nil
}

// ParticipantFunc adapts a plain function into a Participant. The returned
// text is forwarded once through onDelta so renderers still see it live.
type ParticipantFunc struct {
	name string
	fn   func(ctx context.Context, conversation []core.Message) (string, error)
}

// NewParticipantFunc creates a function-backed participant.
func NewParticipantFunc(name string, fn func(ctx context.Context, conversation []core.Message) (string, error)) *ParticipantFunc {
	return &ParticipantFunc{name: name, fn: fn}
}

// Name implements Participant.
func (p *ParticipantFunc) Name() string { return p.name }

// Respond implements Participant.
func (p *ParticipantFunc) Respond(
	ctx context.Context,
	conversation []core.Message,
	onDelta func(string),
) (core.Message, error) {
	text, err := p.fn(ctx, conversation)
	if err != nil {
		return core.Message{}, err
	}
	if onDelta != nil {
		onDelta(text)
	}
	return core.NewAssistantMessage(p.name, text), nil
}
