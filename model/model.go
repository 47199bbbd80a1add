// Package model defines the minimal generation backend contract used by
// workflow participants, plus a deterministic mock for tests and demos.
// Provider adapters live in the openai and anthropic subpackages. Adapters
// exchange plain text conversations; tool transport is owned by the hosting
// engine, not by this layer.
package model

import (
	"context"
	"fmt"

	"github.com/hupe1980/steerflow/core"
)

// Request captures the normalized model input produced by a participant.
type Request struct {
	// Instructions is the system prompt for the turn.
	Instructions string `json:"instructions"`
	// Messages is the conversation so far, oldest first.
	Messages []core.Message `json:"messages"`
	// Stream requests incremental partial responses.
	Stream bool `json:"stream,omitempty"`
}

// Response is a (partial or final) chunk emitted by a model. For streaming
// requests, partial chunks carry deltas and a final chunk carries the full
// text with a finish reason.
type Response struct {
	Partial      bool   `json:"partial"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"` // "stop", "length", etc.
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required to drive generation.
type Model interface {
	// Generate produces a response stream for req. The response channel is
	// closed on completion; the error channel is buffered size 1 and carries
	// at most one terminal error.
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Mock is a lightweight in-memory Model useful for tests & examples.
type Mock struct {
	info      Info
	responses map[string]string
	failOn    map[string]error
}

// NewMock constructs a Mock model.
func NewMock(name string) *Mock {
	return &Mock{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
		failOn:    make(map[string]error),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *Mock) AddResponse(prompt, response string) { m.responses[prompt] = response }

// FailOn registers an error returned when prompt is the latest message.
func (m *Mock) FailOn(prompt string, err error) { m.failOn[prompt] = err }

// Generate implements Model; emits optional streaming char chunks then the final response.
func (m *Mock) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}
		inputText := req.Messages[len(req.Messages)-1].Text

		if err, ok := m.failOn[inputText]; ok {
			errCh <- err
			return
		}

		full := m.responses[inputText]
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", inputText)
		}
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Text: string(r)}:
				}
			}
		}
		respCh <- Response{Partial: false, Text: full, FinishReason: "stop"}
	}()

	return respCh, errCh
}

// Info implements Model.
func (m *Mock) Info() Info { return m.info }
