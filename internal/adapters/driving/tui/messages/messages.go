// Package messages defines Bubbletea message types for the chat TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// QuestionSubmitted is sent when the user presses enter on a non-empty input.
type QuestionSubmitted struct {
	Question string
}

// AnswerReceived carries the assistant's reply back to the model.
type AnswerReceived struct {
	Message domain.ChatMessage
	Err     error
}

// ContextRequested asks for the chunks relevant to a question.
type ContextRequested struct {
	Query string
}

// ContextLoaded carries retrieved chunks back to the model.
type ContextLoaded struct {
	Query   string
	Results []domain.RetrievalResult
	Err     error
}

// HistoryCleared is sent after the conversation log was emptied.
type HistoryCleared struct{}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the transcript and question input.
	ViewChat ViewType = iota
	// ViewContext lists the chunks retrieved for the last question.
	ViewContext
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewContext:
		return "context"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred is sent when an error needs to be displayed.
type ErrorOccurred struct {
	Err error
}

// Quit is sent to exit the application.
type Quit struct{}
