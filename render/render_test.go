package render

import (
	"bytes"
	"testing"

	"github.com/hupe1980/steerflow/core"
	"github.com/stretchr/testify/assert"
)

func TestConsole_Delta_CoalescesSameParticipant(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Delta("MathAgent", "Hello ")
	c.Delta("MathAgent", "world")
	c.Close()

	assert.Contains(t, buf.String(), "[MathAgent]: Hello world")
}

func TestConsole_Delta_ParticipantSwitchOpensNewLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Delta("MathAgent", "15 x 7 = 105")
	c.Delta("TemperatureAgent", "25C is 77F")
	c.Close()

	out := buf.String()
	assert.Contains(t, out, "[MathAgent]: 15 x 7 = 105\n")
	assert.Contains(t, out, "[TemperatureAgent]: 25C is 77F")
}

func TestConsole_Note_ClosesOpenLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Delta("A", "partial")
	c.Note("plan updated")

	out := buf.String()
	assert.Contains(t, out, "partial\n")
	assert.Contains(t, out, "[orchestrator]\nplan updated")
}

func TestConsole_Request_BoundedContext(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	ev := core.RequestForInputEvent{
		RequestID:   "r1",
		Participant: "OrderAgent",
		Conversation: []core.Message{
			core.NewUserMessage("first"),
			core.NewAssistantMessage("CatalogAgent", "second"),
			core.NewAssistantMessage("CatalogAgent", "third"),
		},
	}
	c.Request(ev, 2)

	out := buf.String()
	assert.Contains(t, out, "About to call: OrderAgent")
	assert.NotContains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.Contains(t, out, "third")
}

func TestConsole_Request_TruncatesLongMessages(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, func(o *ConsoleOptions) { o.ExcerptRunes = 5 })

	ev := core.RequestForInputEvent{
		Participant:  "X",
		Conversation: []core.Message{core.NewUserMessage("0123456789")},
	}
	c.Request(ev, 2)

	assert.Contains(t, buf.String(), "01234...")
	assert.NotContains(t, buf.String(), "0123456789")
}

func TestConsole_DeterministicOutput(t *testing.T) {
	run := func() string {
		var buf bytes.Buffer
		c := NewConsole(&buf)
		c.Delta("A", "Hello ")
		c.Delta("A", "world")
		c.Note("done")
		c.Close()
		return buf.String()
	}

	assert.Equal(t, run(), run())
}

func TestNop_ImplementsRenderer(t *testing.T) {
	var r Renderer = Nop{}
	r.Delta("A", "x")
	r.Note("x")
	r.Request(core.RequestForInputEvent{}, 2)
	r.Close()
}
