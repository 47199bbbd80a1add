package loop

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/steerflow/core"
	"github.com/hupe1980/steerflow/internal/testutil"
	"github.com/hupe1980/steerflow/operator"
	"github.com/hupe1980/steerflow/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func output(text string) core.OutputEvent {
	return core.OutputEvent{Messages: []core.Message{core.NewAssistantMessage("A", text)}}
}

func TestRun_DeltasThenOutput(t *testing.T) {
	wf := testutil.NewScriptedWorkflow(testutil.Segment{Events: []core.Event{
		core.AgentDeltaEvent{Participant: "A", Delta: "Hello "},
		core.AgentDeltaEvent{Participant: "A", Delta: "world"},
		output("Hello world"),
	}})

	res, err := New().Run(context.Background(), wf, "say hello")

	require.NoError(t, err)
	require.NotNil(t, res.Output)
	assert.Equal(t, "Hello world", res.Text())
	assert.Equal(t, core.RunStateIdle, res.State)
	assert.Equal(t, []string{"say hello"}, wf.Tasks)
	assert.Empty(t, wf.Resumes)
}

func TestRun_OutputPayloadUnchanged(t *testing.T) {
	out := core.OutputEvent{Messages: []core.Message{
		core.NewUserMessage("task"),
		core.NewAssistantMessage("CatalogAgent", "PRODUCT: Apple, CODE: 93"),
		core.NewAssistantMessage("InvoiceAgent", "GRAND TOTAL: $9.00"),
	}}
	wf := testutil.NewScriptedWorkflow(testutil.Segment{Events: []core.Event{out}})

	res, err := New().Run(context.Background(), wf, "task")

	require.NoError(t, err)
	assert.Equal(t, out.Messages, res.Output.Messages)
}

func TestRun_PauseAndResume(t *testing.T) {
	wf := testutil.NewScriptedWorkflow(
		testutil.Segment{Events: []core.Event{
			core.RequestForInputEvent{RequestID: "r1", Participant: "X"},
		}},
		testutil.Segment{Events: []core.Event{output("done")}},
	)

	l := New(func(o *Options) {
		o.Operator = operator.Auto{}
	})
	res, err := l.Run(context.Background(), wf, "task")

	require.NoError(t, err)
	assert.Equal(t, "done", res.Text())
	require.Len(t, wf.Resumes, 1)
	require.Len(t, wf.Resumes[0], 1)
	assert.Equal(t, core.DecisionApprove, wf.Resumes[0]["r1"].Decision)
}

func TestRun_ReplyCarriesOperatorGuidance(t *testing.T) {
	wf := testutil.NewScriptedWorkflow(
		testutil.Segment{Events: []core.Event{
			core.RequestForInputEvent{RequestID: "r1", Participant: "OrderAgent"},
		}},
		testutil.Segment{Events: []core.Event{output("done")}},
	)

	l := New(func(o *Options) {
		o.Operator = operator.Func(func(_ context.Context, ev core.RequestForInputEvent) (core.Reply, error) {
			return core.Reply{Decision: core.DecisionRevise, Text: "add tax"}, nil
		})
	})
	_, err := l.Run(context.Background(), wf, "task")

	require.NoError(t, err)
	require.Len(t, wf.Resumes, 1)
	assert.Equal(t, core.Reply{Decision: core.DecisionRevise, Text: "add tax"}, wf.Resumes[0]["r1"])
}

func TestRun_MultiplePausesResolvedInOrder(t *testing.T) {
	wf := testutil.NewScriptedWorkflow(
		testutil.Segment{Events: []core.Event{
			core.RequestForInputEvent{RequestID: "r1", Participant: "CatalogAgent"},
		}},
		testutil.Segment{Events: []core.Event{
			core.AgentDeltaEvent{Participant: "CatalogAgent", Delta: "codes"},
			core.RequestForInputEvent{RequestID: "r2", Participant: "OrderAgent"},
		}},
		testutil.Segment{Events: []core.Event{output("done")}},
	)

	_, err := New().Run(context.Background(), wf, "task")

	require.NoError(t, err)
	require.Len(t, wf.Resumes, 2)
	assert.Contains(t, wf.Resumes[0], "r1")
	assert.Len(t, wf.Resumes[0], 1)
	assert.Contains(t, wf.Resumes[1], "r2")
	assert.Len(t, wf.Resumes[1], 1)
}

func TestRun_FailureEventSurfacesDetail(t *testing.T) {
	wf := testutil.NewScriptedWorkflow(testutil.Segment{Events: []core.Event{
		core.FailureEvent{Detail: core.FailureDetail{
			Kind:        "ToolError",
			Message:     "db down",
			Participant: "OrderAgent",
		}},
	}})

	res, err := New().Run(context.Background(), wf, "task")

	require.Error(t, err)
	var detail core.FailureDetail
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, "ToolError", detail.Kind)
	assert.Equal(t, "db down", detail.Message)
	assert.Equal(t, "OrderAgent", detail.Participant)
	assert.Nil(t, res.Output)
	assert.Equal(t, core.RunStateFailed, res.State)
}

func TestRun_FailedStatusIsTerminalError(t *testing.T) {
	wf := testutil.NewScriptedWorkflow(testutil.Segment{Events: []core.Event{
		core.StatusChangeEvent{State: core.RunStateFailed},
	}})

	res, err := New().Run(context.Background(), wf, "task")

	require.Error(t, err)
	assert.Nil(t, res.Output)
	assert.Equal(t, core.RunStateFailed, res.State)
}

func TestRun_IdleStatusEndsWithoutOutput(t *testing.T) {
	wf := testutil.NewScriptedWorkflow(testutil.Segment{Events: []core.Event{
		core.StatusChangeEvent{State: core.RunStateRunning},
		core.StatusChangeEvent{State: core.RunStateIdle},
	}})

	res, err := New().Run(context.Background(), wf, "task")

	require.NoError(t, err)
	assert.Nil(t, res.Output)
	assert.Equal(t, core.RunStateIdle, res.State)
}

func TestRun_StreamErrorPropagatedUnchanged(t *testing.T) {
	streamErr := errors.New("engine connection reset")
	wf := testutil.NewScriptedWorkflow(testutil.Segment{Err: streamErr})

	res, err := New().Run(context.Background(), wf, "task")

	assert.ErrorIs(t, err, streamErr)
	assert.Nil(t, res.Output)
}

func TestRun_StartErrorPropagated(t *testing.T) {
	wf := testutil.NewScriptedWorkflow() // script exhausted immediately

	res, err := New().Run(context.Background(), wf, "task")

	require.Error(t, err)
	assert.Nil(t, res)
}

func TestRun_OperatorErrorStopsRun(t *testing.T) {
	wf := testutil.NewScriptedWorkflow(
		testutil.Segment{Events: []core.Event{
			core.RequestForInputEvent{RequestID: "r1", Participant: "X"},
		}},
		testutil.Segment{Events: []core.Event{output("never reached")}},
	)

	l := New(func(o *Options) {
		o.Operator = operator.Func(func(context.Context, core.RequestForInputEvent) (core.Reply, error) {
			return core.Reply{}, operator.ErrExit
		})
	})
	res, err := l.Run(context.Background(), wf, "task")

	assert.ErrorIs(t, err, operator.ErrExit)
	assert.Nil(t, res.Output)
	assert.Empty(t, wf.Resumes)
}

func TestRun_RenderedOutputIdempotent(t *testing.T) {
	script := func() *testutil.ScriptedWorkflow {
		return testutil.NewScriptedWorkflow(testutil.Segment{Events: []core.Event{
			core.AgentDeltaEvent{Participant: "A", Delta: "Hello "},
			core.AgentDeltaEvent{Participant: "A", Delta: "world"},
			core.OrchestratorNoteEvent{Text: "wrapping up"},
			output("Hello world"),
		}})
	}

	run := func() string {
		var buf bytes.Buffer
		l := New(func(o *Options) { o.Renderer = render.NewConsole(&buf) })
		_, err := l.Run(context.Background(), script(), "task")
		require.NoError(t, err)
		return buf.String()
	}

	assert.Equal(t, run(), run())
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wf := testutil.NewScriptedWorkflow(testutil.Segment{Events: []core.Event{
		output("late"),
	}})

	_, err := New().Run(ctx, wf, "task")

	assert.ErrorIs(t, err, context.Canceled)
}
