// Package render contains the downstream presentation side of the
// interactive loop: implementations receive classified stream events and
// produce operator-facing text. The Console renderer reproduces the familiar
// live view of a multi-agent run (one coalesced line per speaking
// participant, delimited orchestrator blocks, bounded context excerpts on
// pause points).
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/steerflow/core"
)

// Renderer receives classified events from the loop. Implementations are used
// from a single goroutine; no internal synchronization is required.
type Renderer interface {
	// Delta appends streamed text for a participant. Implementations own the
	// line state: a participant change closes the previous line.
	Delta(participant, text string)

	// Note renders coordinator commentary as a clearly delimited block.
	Note(text string)

	// Request presents a pause point with at most contextTurns trailing
	// conversation messages.
	Request(ev core.RequestForInputEvent, contextTurns int)

	// Close flushes any open line. Called once when the loop terminates.
	Close()
}

// Console renders to an io.Writer. It keeps per-run line state so consecutive
// deltas from the same participant stay on one line.
type Console struct {
	w           io.Writer
	current     string
	lineOpen    bool
	excerptRune int
}

// ConsoleOptions configure a Console renderer.
type ConsoleOptions struct {
	// ExcerptRunes truncates each context message shown on a pause point.
	ExcerptRunes int
}

// NewConsole creates a Console renderer writing to w.
func NewConsole(w io.Writer, optFns ...func(o *ConsoleOptions)) *Console {
	opts := ConsoleOptions{ExcerptRunes: 200}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Console{w: w, excerptRune: opts.ExcerptRunes}
}

// Delta implements Renderer. A participant switch emits a fresh header line.
func (c *Console) Delta(participant, text string) {
	if c.current != participant {
		if c.lineOpen {
			fmt.Fprintln(c.w)
		}
		fmt.Fprintf(c.w, "\n[%s]: ", participant)
		c.current = participant
		c.lineOpen = true
	}
	fmt.Fprint(c.w, text)
}

// Note implements Renderer.
func (c *Console) Note(text string) {
	c.closeLine()
	sep := strings.Repeat("=", 60)
	fmt.Fprintf(c.w, "\n%s\n[orchestrator]\n%s\n%s\n", sep, text, sep)
}

// Request implements Renderer. It shows which participant is about to run and
// the trailing conversation context.
func (c *Console) Request(ev core.RequestForInputEvent, contextTurns int) {
	c.closeLine()
	sep := strings.Repeat("-", 40)
	fmt.Fprintf(c.w, "\n%s\nINPUT REQUESTED\nAbout to call: %s\n%s\n", sep, ev.Participant, sep)
	if len(ev.Conversation) == 0 {
		return
	}
	fmt.Fprintln(c.w, "Conversation context:")
	for _, m := range core.LastTurns(ev.Conversation, contextTurns) {
		fmt.Fprintf(c.w, "  [%s]: %s\n", m.DisplayName(), c.excerpt(m.Text))
	}
	fmt.Fprintln(c.w, sep)
}

// Close implements Renderer.
func (c *Console) Close() { c.closeLine() }

func (c *Console) closeLine() {
	if c.lineOpen {
		fmt.Fprintln(c.w)
		c.lineOpen = false
		c.current = ""
	}
}

func (c *Console) excerpt(text string) string {
	runes := []rune(text)
	if c.excerptRune <= 0 || len(runes) <= c.excerptRune {
		return text
	}
	return string(runes[:c.excerptRune]) + "..."
}

// Nop discards all rendering. Useful for headless / fully automated runs.
type Nop struct{}

// Delta implements Renderer.
func (Nop) Delta(string, string) {}

// Note implements Renderer.
func (Nop) Note(string) {}

// Request implements Renderer.
func (Nop) Request(core.RequestForInputEvent, int) {}

// Close implements Renderer.
func (Nop) Close() {}
