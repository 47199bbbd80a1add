package steerflow

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hupe1980/steerflow/core"
	"github.com/hupe1980/steerflow/model"
	"github.com/hupe1980/steerflow/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildOrderPipeline(requestInfo bool) *workflow.Workflow {
	catalog := model.NewMock("catalog")
	catalog.AddResponse("process the order", "PRODUCT: Apple, CODE: 93")
	// In steered runs the injected guidance is the latest message.
	catalog.AddResponse("Please continue.", "PRODUCT: Apple, CODE: 93")

	b := workflow.NewBuilder(
		workflow.NewModelParticipant("CatalogAgent", catalog),
		workflow.NewParticipantFunc("InvoiceAgent", func(_ context.Context, conv []core.Message) (string, error) {
			return "GRAND TOTAL: $4.50", nil
		}),
	)
	if requestInfo {
		b = b.WithRequestInfo()
	}
	return b.Build()
}

func TestRunAuto_EndToEnd(t *testing.T) {
	wf := buildOrderPipeline(false)

	res, err := RunAuto(context.Background(), wf, "process the order")

	require.NoError(t, err)
	require.NotNil(t, res.Output)
	assert.Equal(t, core.RunStateIdle, res.State)
	require.Len(t, res.Output.Messages, 3)
	assert.Equal(t, "PRODUCT: Apple, CODE: 93", res.Output.Messages[1].Text)
	assert.Equal(t, "GRAND TOTAL: $4.50", res.Output.Messages[2].Text)
}

func TestRunAuto_ResolvesEveryPause(t *testing.T) {
	wf := buildOrderPipeline(true)

	res, err := RunAuto(context.Background(), wf, "process the order")

	require.NoError(t, err)
	require.NotNil(t, res.Output)
	// The auto policy guidance is injected as user turns around each pause.
	var guidance int
	for _, m := range res.Output.Messages {
		if m.Role == core.RoleUser && m.Text == "Please continue." {
			guidance++
		}
	}
	assert.Equal(t, 2, guidance)
}

func TestRun_InteractiveSession(t *testing.T) {
	wf := buildOrderPipeline(true)

	// Approve both pauses by pressing enter (decision + guidance per pause).
	in := strings.NewReader("\n\n\n\n")
	var out bytes.Buffer

	res, err := Run(context.Background(), wf, "process the order", func(o *Options) {
		o.In = in
		o.Out = &out
	})

	require.NoError(t, err)
	require.NotNil(t, res.Output)

	rendered := out.String()
	assert.Contains(t, rendered, "INPUT REQUESTED")
	assert.Contains(t, rendered, "About to call: CatalogAgent")
	assert.Contains(t, rendered, "Final conversation:")
	assert.Contains(t, rendered, "CatalogAgent: PRODUCT: Apple, CODE: 93")
}

func TestRun_FailurePropagates(t *testing.T) {
	broken := model.NewMock("broken")
	broken.FailOn("task", assert.AnError)

	wf := workflow.NewBuilder(
		workflow.NewModelParticipant("OrderAgent", broken),
	).Build()

	res, err := RunAuto(context.Background(), wf, "task")

	require.Error(t, err)
	var detail core.FailureDetail
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, workflow.KindParticipantError, detail.Kind)
	assert.Equal(t, "OrderAgent", detail.Participant)
	assert.Nil(t, res.Output)
}
