package core

import "fmt"

// Decision is the operator's verdict on a RequestForInputEvent.
type Decision string

// Supported decisions. Approve continues with optional guidance, Revise asks
// the engine to incorporate feedback before proceeding, Edit replaces the
// staged content outright.
const (
	DecisionApprove Decision = "approve"
	DecisionRevise  Decision = "revise"
	DecisionEdit    Decision = "edit"
)

// ParseDecision maps user input to a Decision. The empty string defaults to
// approve so "press enter to continue" flows work.
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case "", DecisionApprove:
		return DecisionApprove, nil
	case DecisionRevise:
		return DecisionRevise, nil
	case DecisionEdit:
		return DecisionEdit, nil
	default:
		return "", fmt.Errorf("unknown decision %q (want approve, revise or edit)", s)
	}
}

// Reply is the operator answer to a single RequestForInputEvent. Text carries
// guidance (approve/revise) or replacement content (edit); it may be empty.
type Reply struct {
	Decision Decision `json:"decision"`
	Text     string   `json:"text,omitempty"`
}

// Approve is shorthand for an approval reply with optional guidance text.
func Approve(text string) Reply { return Reply{Decision: DecisionApprove, Text: text} }

// Replies maps pending request ids to their resolutions. A resume call must
// contain exactly the ids the engine is waiting on.
type Replies map[string]Reply
