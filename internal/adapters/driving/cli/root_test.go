package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
	"github.com/custodia-labs/pdfchat/internal/core/services"
)

func TestMain(m *testing.M) {
	// Keep bootstrap away from the real application directory.
	settingsService = newTestSettings()
	os.Exit(m.Run())
}

func newTestSettings() *services.SettingsService {
	svc := services.NewSettingsService(memory.NewConfigStore(), "")
	svc.SetEnvLookup(func(string) (string, bool) { return "", false })
	return svc
}

// mockChatSession implements driving.ChatSession for testing.
type mockChatSession struct {
	mu        sync.Mutex
	loaded    bool
	loadErr   error
	processed []string
	procErr   error
	failPath  string
	asked     []string
	reply     domain.ChatMessage
	askErr    error
	results   []domain.RetrievalResult
	lastK     int
	history   []domain.ChatMessage
	document  string
	cleared   bool
	closed    bool
}

var _ driving.ChatSession = (*mockChatSession)(nil)

func (m *mockChatSession) Process(_ context.Context, path string) (*driving.IndexSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed = append(m.processed, path)
	if m.procErr != nil && (m.failPath == "" || m.failPath == path) {
		return nil, m.procErr
	}
	m.document = path
	return &driving.IndexSummary{Document: path, Pages: 3, Chunks: 12, Dimension: 768, Saved: true}, nil
}

func (m *mockChatSession) Load(context.Context) (bool, error) { return m.loaded, m.loadErr }

func (m *mockChatSession) Ask(_ context.Context, question string) (domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.asked = append(m.asked, question)
	if m.askErr != nil {
		return domain.ChatMessage{Role: domain.RoleAssistant, Content: domain.ApologyMessage}, m.askErr
	}
	reply := m.reply
	if reply.Content == "" {
		reply = domain.ChatMessage{Role: domain.RoleAssistant, Content: "answer: " + question, Sources: []string{"doc.pdf"}}
	}
	reply.Timestamp = time.Now()
	m.history = append(m.history,
		domain.ChatMessage{Role: domain.RoleUser, Content: question, Timestamp: reply.Timestamp}, reply)
	return reply, nil
}

func (m *mockChatSession) Search(_ context.Context, _ string, k int) ([]domain.RetrievalResult, error) {
	m.lastK = k
	return m.results, nil
}

func (m *mockChatSession) History() []domain.ChatMessage { return m.history }

func (m *mockChatSession) ClearHistory() {
	m.history = nil
	m.cleared = true
}

func (m *mockChatSession) State() domain.TurnState { return domain.TurnIdle }
func (m *mockChatSession) Ready() bool             { return m.loaded || m.document != "" }
func (m *mockChatSession) Document() string        { return m.document }

// setupTestServices installs a fresh settings service and a session factory
// returning mock. It returns a cleanup that restores globals and flags.
func setupTestServices(mock *mockChatSession) func() {
	oldSettings := settingsService
	oldValidator := aiValidator
	oldSession := newChatSession
	oldTerminal := isTerminal

	settingsService = newTestSettings()
	newChatSession = func(context.Context) (driving.ChatSession, func(), error) {
		return mock, func() { mock.closed = true }, nil
	}
	isTerminal = func(*cobra.Command) bool { return false }

	return func() {
		settingsService = oldSettings
		aiValidator = oldValidator
		newChatSession = oldSession
		isTerminal = oldTerminal
		searchLimit = domain.DefaultTopK
		searchJSON = false
		askPDF = ""
		chatPlain = false
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
}

// executeCommand runs rootCmd with args and returns stdout, stderr and the error.
func executeCommand(args ...string) (string, string, error) {
	return executeCommandWithInput("", args...)
}

func executeCommandWithInput(input string, args ...string) (string, string, error) {
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "pdfchat", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	v := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, v)
	assert.Equal(t, "v", v.Shorthand)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config-dir"))
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"index", "ask", "search", "chat", "watch", "settings", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestBootstrap_CreatesSettingsAndLog(t *testing.T) {
	oldSettings := settingsService
	oldDir := configDir
	oldBase := baseDir
	defer func() {
		closeLog()
		settingsService = oldSettings
		configDir = oldDir
		baseDir = oldBase
		aiValidator = nil
	}()

	dir := t.TempDir()
	settingsService = nil
	configDir = dir

	err := bootstrap(rootCmd, nil)

	require.NoError(t, err)
	require.NotNil(t, settingsService)
	assert.NotNil(t, aiValidator)
	assert.Equal(t, dir, baseDir)
	require.NotNil(t, logFile)
	assert.True(t, strings.HasPrefix(logFile.Path(), dir))

	settings, err := settingsService.Get()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(settings.Index.Dir, dir))
}

func TestBootstrap_FallsBackToMemoryConfig(t *testing.T) {
	oldSettings := settingsService
	oldDir := configDir
	oldBase := baseDir
	defer func() {
		closeLog()
		settingsService = oldSettings
		configDir = oldDir
		baseDir = oldBase
		aiValidator = nil
	}()

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	settingsService = nil
	configDir = filepath.Join(blocker, "pdfchat")

	require.NoError(t, bootstrap(rootCmd, nil))
	require.NotNil(t, settingsService)

	require.NoError(t, settingsService.Set("retrieval.top_k", "7"))
	settings, err := settingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, settings.Retrieval.TopK)
}

func TestExecute_ClosesLogWhenCommandFails(t *testing.T) {
	oldSettings := settingsService
	oldDir := configDir
	oldBase := baseDir
	defer func() {
		closeLog()
		settingsService = oldSettings
		configDir = oldDir
		baseDir = oldBase
		aiValidator = nil
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	dir := t.TempDir()
	settingsService = nil
	rootCmd.SetArgs([]string{"--config-dir", dir, "settings", "reset", "no.such.key"})
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))

	err := Execute(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, logFile)
}

func TestBootstrap_KeepsInjectedServices(t *testing.T) {
	injected := newTestSettings()
	old := settingsService
	settingsService = injected
	defer func() { settingsService = old }()

	require.NoError(t, bootstrap(rootCmd, nil))
	assert.Same(t, injected, settingsService)
}

func TestLoadSession_NoSavedIndex(t *testing.T) {
	mock := &mockChatSession{}
	cleanup := setupTestServices(mock)
	defer cleanup()

	_, _, err := loadSession(context.Background())

	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
	assert.True(t, mock.closed)
}

func TestLoadSession_LoadError(t *testing.T) {
	mock := &mockChatSession{loadErr: domain.ErrDimensionMismatch}
	cleanup := setupTestServices(mock)
	defer cleanup()

	_, _, err := loadSession(context.Background())

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.True(t, mock.closed)
}

func TestPrepareSession_IndexesGivenPDF(t *testing.T) {
	mock := &mockChatSession{}
	cleanup := setupTestServices(mock)
	defer cleanup()

	var reported *driving.IndexSummary
	session, done, err := prepareSession(context.Background(), "a.pdf", func(s *driving.IndexSummary) {
		reported = s
	})

	require.NoError(t, err)
	defer done()
	assert.Same(t, mock, session)
	assert.Equal(t, []string{"a.pdf"}, mock.processed)
	require.NotNil(t, reported)
	assert.Equal(t, 12, reported.Chunks)
}

func TestPrepareSession_ProcessError(t *testing.T) {
	mock := &mockChatSession{procErr: domain.ErrEmptyDocument}
	cleanup := setupTestServices(mock)
	defer cleanup()

	_, _, err := prepareSession(context.Background(), "a.pdf", nil)

	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
	assert.True(t, mock.closed)
}

func TestOpenChatSession_InvalidSettings(t *testing.T) {
	old := settingsService
	defer func() { settingsService = old }()

	svc := newTestSettings()
	require.NoError(t, svc.Set("retrieval.top_k", "0"))
	settingsService = svc

	_, _, err := openChatSession(context.Background())

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestOpenChatSession_NoSettings(t *testing.T) {
	old := settingsService
	settingsService = nil
	defer func() { settingsService = old }()

	_, _, err := openChatSession(context.Background())

	assert.ErrorIs(t, err, errSettingsNotConfigured)
}
