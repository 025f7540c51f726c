package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

func TestChatCmd_Flags(t *testing.T) {
	assert.NotNil(t, chatCmd.Flags().Lookup("plain"))
	assert.Equal(t, "chat [file.pdf]", chatCmd.Use)
}

func TestChatCmd_REPLAnswersEachLine(t *testing.T) {
	mock := &mockChatSession{loaded: true, document: "manual.pdf"}
	cleanup := setupTestServices(mock)
	defer cleanup()

	out, _, err := executeCommandWithInput("first question\n\nsecond question\n", "chat")

	require.NoError(t, err)
	assert.Equal(t, []string{"first question", "second question"}, mock.asked)
	assert.Contains(t, out, "Chatting about manual.pdf")
	assert.Contains(t, out, "answer: first question")
	assert.Contains(t, out, "answer: second question")
}

func TestChatCmd_REPLCommands(t *testing.T) {
	mock := &mockChatSession{loaded: true}
	cleanup := setupTestServices(mock)
	defer cleanup()

	input := strings.Join([]string{"/history", "hello", "/history", "/clear", "/help", "/quit", "never asked"}, "\n")
	out, _, err := executeCommandWithInput(input, "chat")

	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, mock.asked)
	assert.Contains(t, out, "No messages yet.")
	assert.Contains(t, out, "user: hello")
	assert.Contains(t, out, "assistant: answer: hello")
	assert.Contains(t, out, "Conversation cleared.")
	assert.Contains(t, out, "/history  show the conversation")
	assert.True(t, mock.cleared)
}

func TestChatCmd_REPLPrintsErrors(t *testing.T) {
	mock := &mockChatSession{loaded: true, askErr: domain.ErrProvider}
	cleanup := setupTestServices(mock)
	defer cleanup()

	out, errOut, err := executeCommandWithInput("question\n", "chat")

	require.NoError(t, err)
	assert.Contains(t, out, domain.ApologyMessage)
	assert.Contains(t, errOut, "Error:")
	assert.Contains(t, errOut, "pdfchat settings check")
}

func TestChatCmd_IndexesGivenPDF(t *testing.T) {
	mock := &mockChatSession{}
	cleanup := setupTestServices(mock)
	defer cleanup()

	out, _, err := executeCommandWithInput("/exit\n", "chat", "manual.pdf")

	require.NoError(t, err)
	assert.Equal(t, []string{"manual.pdf"}, mock.processed)
	assert.Contains(t, out, "Indexed manual.pdf")
}

func TestChatCmd_NoIndex(t *testing.T) {
	cleanup := setupTestServices(&mockChatSession{})
	defer cleanup()

	_, _, err := executeCommandWithInput("", "chat")

	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

func TestRunREPL_StopsWhenCancelled(t *testing.T) {
	mock := &mockChatSession{loaded: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	cmd.SetIn(strings.NewReader("question\n"))
	cmd.SetOut(new(strings.Builder))

	require.NoError(t, runREPL(cmd, mock))
	assert.Empty(t, mock.asked)
}
