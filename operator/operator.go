// Package operator contains reply sources for pause points: the component
// that turns a RequestForInputEvent into a Reply. A human-facing Console
// implementation prompts on a terminal; the Auto policy substitutes a default
// continue reply for fully automated deployments without changing the loop's
// contract.
package operator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/steerflow/core"
)

// ErrExit signals that the operator chose to stop the run. The loop treats it
// as caller-initiated termination, not as a stream failure.
var ErrExit = errors.New("operator requested exit")

// Operator resolves a single pending input request into a Reply. Resolve may
// block (e.g. waiting for a human); implementations should honor ctx.
type Operator interface {
	Resolve(ctx context.Context, ev core.RequestForInputEvent) (core.Reply, error)
}

// Func adapts a plain function to the Operator interface.
type Func func(ctx context.Context, ev core.RequestForInputEvent) (core.Reply, error)

// Resolve implements Operator.
func (f Func) Resolve(ctx context.Context, ev core.RequestForInputEvent) (core.Reply, error) {
	return f(ctx, ev)
}

// Auto is a non-interactive policy that approves every request with a fixed
// guidance text.
type Auto struct {
	// Guidance is sent with each approval. Empty means plain approval.
	Guidance string
}

// Resolve implements Operator.
func (a Auto) Resolve(_ context.Context, _ core.RequestForInputEvent) (core.Reply, error) {
	return core.Approve(a.Guidance), nil
}

// Console prompts a human on an io.Reader / io.Writer pair. Malformed
// decisions are re-prompted locally and never escalate; "exit" returns
// ErrExit.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	// DefaultGuidance is used when the operator just presses enter.
	DefaultGuidance string
}

// NewConsole creates a Console operator reading from in and writing to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:              bufio.NewReader(in),
		out:             out,
		DefaultGuidance: "Please continue.",
	}
}

// Resolve implements Operator. The prompt accepts a decision keyword
// (approve/revise/edit, empty defaults to approve) followed by an optional
// guidance line, or "exit" to stop.
func (c *Console) Resolve(ctx context.Context, ev core.RequestForInputEvent) (core.Reply, error) {
	for {
		if err := ctx.Err(); err != nil {
			return core.Reply{}, err
		}

		fmt.Fprintf(c.out, "Decision for %s [approve/revise/edit/exit] (enter = approve): ", ev.Participant)
		line, err := c.readLine()
		if err != nil {
			return core.Reply{}, err
		}

		if strings.EqualFold(line, "exit") {
			return core.Reply{}, ErrExit
		}

		decision, err := core.ParseDecision(strings.ToLower(line))
		if err != nil {
			fmt.Fprintf(c.out, "%v\n", err)
			continue
		}

		text, err := c.readGuidance(decision)
		if err != nil {
			return core.Reply{}, err
		}
		return core.Reply{Decision: decision, Text: text}, nil
	}
}

func (c *Console) readGuidance(decision core.Decision) (string, error) {
	switch decision {
	case core.DecisionApprove:
		fmt.Fprint(c.out, "Your guidance (enter to continue): ")
	case core.DecisionRevise:
		fmt.Fprint(c.out, "Feedback for revision: ")
	case core.DecisionEdit:
		fmt.Fprint(c.out, "Replacement content: ")
	}
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	if line == "" && decision == core.DecisionApprove {
		return c.DefaultGuidance, nil
	}
	return line, nil
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			// EOF with nothing typed behaves like an exit request.
			return "", ErrExit
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
