package tui

import "errors"

// ErrMissingChatSession is returned when the chat session is not provided.
var ErrMissingChatSession = errors.New("tui: chat session is required")
