package domain

import "time"

// Role identifies the author of a chat message.
type Role string

// Chat roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry in the conversation log.
type ChatMessage struct {
	Role      Role
	Content   string
	Timestamp time.Time

	// Sources lists distinct document names that grounded an assistant answer.
	Sources []string
}

// Fixed user-facing answers.
const (
	// NoContextMessage is returned when retrieval finds nothing.
	NoContextMessage = "I couldn't find any relevant information in the document to answer your question."

	// ApologyMessage is returned when answering fails.
	ApologyMessage = "I'm sorry, I encountered an error while processing your question. Please try again."
)

// TurnState tracks the progress of a single question.
type TurnState string

// Turn states.
const (
	TurnIdle              TurnState = "idle"
	TurnQueryReceived     TurnState = "query_received"
	TurnRetrieving        TurnState = "retrieving"
	TurnComposing         TurnState = "composing"
	TurnNoContextFallback TurnState = "no_context_fallback"
	TurnResponded         TurnState = "responded"
)

// String returns the string representation.
func (s TurnState) String() string {
	return string(s)
}
