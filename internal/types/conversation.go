package types

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ConversationMessage is a single turn fragment in the follow-up dialog.
type ConversationMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ConversationLog is the append-only dialog history. It is never mutated in
// place: Append returns a fresh log and the caller keeps the authoritative
// copy between turns. Every completed QA turn adds exactly one user message
// and one assistant message, so a valid log always has even length.
type ConversationLog []ConversationMessage

// Append returns a new log extended with the given messages. The receiver
// is left untouched even when it has spare capacity.
func (l ConversationLog) Append(msgs ...ConversationMessage) ConversationLog {
	out := make(ConversationLog, 0, len(l)+len(msgs))
	out = append(out, l...)
	out = append(out, msgs...)
	return out
}
