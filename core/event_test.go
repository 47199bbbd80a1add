package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputEvent_Text(t *testing.T) {
	ev := OutputEvent{Messages: []Message{
		NewAssistantMessage("A", "Hello "),
		NewAssistantMessage("A", "world"),
	}}

	assert.Equal(t, "Hello world", ev.Text())
}

func TestOutputEvent_Text_Empty(t *testing.T) {
	assert.Equal(t, "", OutputEvent{}.Text())
}

func TestFailureDetail_Error(t *testing.T) {
	d := FailureDetail{Kind: "ToolError", Message: "db down", Participant: "OrderAgent"}
	assert.Equal(t, "ToolError: db down (participant OrderAgent)", d.Error())

	d.Participant = ""
	assert.Equal(t, "ToolError: db down", d.Error())
}

func TestNewFailureEvent(t *testing.T) {
	ev := NewFailureEvent("ParticipantError", "CatalogAgent", errors.New("product not found"))

	assert.Equal(t, "ParticipantError", ev.Detail.Kind)
	assert.Equal(t, "product not found", ev.Detail.Message)
	assert.Equal(t, "CatalogAgent", ev.Detail.Participant)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(OutputEvent{}))
	assert.True(t, IsTerminal(FailureEvent{}))
	assert.True(t, IsTerminal(StatusChangeEvent{State: RunStateIdle}))
	assert.True(t, IsTerminal(StatusChangeEvent{State: RunStateFailed}))

	assert.False(t, IsTerminal(StatusChangeEvent{State: RunStateRunning}))
	assert.False(t, IsTerminal(AgentDeltaEvent{Participant: "A", Delta: "hi"}))
	assert.False(t, IsTerminal(OrchestratorNoteEvent{Text: "plan"}))
	assert.False(t, IsTerminal(RequestForInputEvent{RequestID: "r1"}))
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
