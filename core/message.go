package core

// Role identifies the conversational origin of a Message.
type Role string

// Conversation roles used across the framework.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single conversation turn. Author carries the participant name
// for assistant turns; it may be empty for user or system messages.
type Message struct {
	Role   Role   `json:"role"`
	Author string `json:"author,omitempty"`
	Text   string `json:"text"`
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// NewAssistantMessage creates an assistant message attributed to a participant.
func NewAssistantMessage(author, text string) Message {
	return Message{Role: RoleAssistant, Author: author, Text: text}
}

// DisplayName returns the author if set, otherwise the role.
func (m Message) DisplayName() string {
	if m.Author != "" {
		return m.Author
	}
	return string(m.Role)
}

// LastTurns returns the trailing n messages of a conversation. It returns the
// slice unchanged when it already fits.
func LastTurns(conversation []Message, n int) []Message {
	if n <= 0 || len(conversation) <= n {
		return conversation
	}
	return conversation[len(conversation)-n:]
}
