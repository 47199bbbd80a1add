// Package steerflow provides a high-level façade over the interactive
// event-stream orchestration loop. Most applications interact with this
// package by:
//  1. Building a workflow (the workflow package, or any core.Workflow)
//  2. Calling Run for an interactive console session, or RunAuto for a
//     fully automated one
//
// The façade delegates event handling to loop.Loop while keeping setup and
// usage ergonomics concise: Run wires a console renderer and a console
// operator to stdin/stdout and prints the deferred final output; RunAuto
// substitutes the default continue policy for the human without changing the
// loop's contract.
package steerflow

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/steerflow/core"
	"github.com/hupe1980/steerflow/loop"
	"github.com/hupe1980/steerflow/operator"
	"github.com/hupe1980/steerflow/render"
)

// Options configures a façade run.
type Options struct {
	// In is the operator input source.
	In io.Reader
	// Out receives rendered events and the final transcript.
	Out io.Writer
	// ContextTurns bounds the conversation excerpt shown on pause points.
	ContextTurns int
}

// Run drives wf interactively: streamed participant output, orchestrator
// notes and pause prompts go to Out, replies are read from In, and the final
// transcript is printed once the run completes.
func Run(ctx context.Context, wf core.Workflow, task string, optFns ...func(o *Options)) (*loop.Result, error) {
	opts := Options{In: os.Stdin, Out: os.Stdout, ContextTurns: 2}
	for _, fn := range optFns {
		fn(&opts)
	}

	l := loop.New(func(o *loop.Options) {
		o.Renderer = render.NewConsole(opts.Out)
		o.Operator = operator.NewConsole(opts.In, opts.Out)
		o.ContextTurns = opts.ContextTurns
	})

	res, err := l.Run(ctx, wf, task)
	if err != nil {
		return res, err
	}

	if res.Output != nil {
		fmt.Fprintln(opts.Out, "\nFinal conversation:")
		for _, m := range res.Output.Messages {
			fmt.Fprintf(opts.Out, "%s: %s\n", m.DisplayName(), m.Text)
		}
	}
	return res, nil
}

// RunAuto drives wf headlessly, approving every pause with the default
// continue policy. It returns the terminal result.
func RunAuto(ctx context.Context, wf core.Workflow, task string) (*loop.Result, error) {
	l := loop.New(func(o *loop.Options) {
		o.Operator = operator.Auto{Guidance: "Please continue."}
	})
	return l.Run(ctx, wf, task)
}
