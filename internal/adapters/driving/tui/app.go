package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pdfchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

const defaultContextSize = 5

// errNoQuestionYet is shown when the context view is opened before any question.
var errNoQuestionYet = errors.New("ask a question first")

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	transcript *transcript.Transcript
	input      *input.QuestionInput
	context    *list.ContextList
	status     *status.Bar
	spinner    spinner.Model

	currentView messages.ViewType

	// busy is set while a question is being answered.
	busy bool

	// lastQuestion feeds the context view.
	lastQuestion string

	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if ports.ContextSize <= 0 {
		ports.ContextSize = defaultContextSize
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Warning

	a := &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		transcript:  transcript.New(s),
		input:       input.NewQuestionInput(s),
		context:     list.NewContextList(s),
		status:      status.NewBar(s, km),
		spinner:     sp,
		currentView: messages.ViewChat,
	}
	a.status.SetDocument(ports.Chat.Document())
	a.transcript.SetMessages(ports.Chat.History())
	return a, nil
}

// WithContext sets the context used for provider calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	title := "pdfchat"
	if doc := a.ports.Chat.Document(); doc != "" {
		title += " - " + doc
	}
	return tea.Batch(
		tea.SetWindowTitle(title),
		a.input.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case messages.QuestionSubmitted:
		return a, a.submit(msg.Question)

	case messages.AnswerReceived:
		a.busy = false
		a.transcript.SetPending("", "")
		a.transcript.SetMessages(a.ports.Chat.History())
		if msg.Err != nil {
			a.err = msg.Err
			a.status.SetError(msg.Err)
			return a, nil
		}
		a.err = nil
		if msg.Message.Content == domain.NoContextMessage {
			a.status.SetTurn(domain.TurnNoContextFallback)
		} else {
			a.status.SetTurn(domain.TurnResponded)
		}
		return a, nil

	case messages.ContextRequested:
		return a, a.searchCmd(msg.Query)

	case messages.ContextLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			a.status.SetError(msg.Err)
			a.context.SetResults(nil)
			return a, nil
		}
		a.context.SetResults(msg.Results)
		return a, nil

	case messages.HistoryCleared:
		a.lastQuestion = ""
		a.context.SetResults(nil)
		a.transcript.SetMessages(nil)
		a.status.SetTurn(domain.TurnIdle)
		return a, nil

	case messages.ViewChanged:
		a.switchView(msg.View)
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.status.SetError(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.transcript.SetPending(a.transcript.Pending(), a.spinner.View())
		a.status.SetTurn(a.ports.Chat.State())
		return a, cmd
	}

	var cmd tea.Cmd
	a.transcript, cmd = a.transcript.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewHelp:
		if keymap.Matches(k, a.keymap.Back) || keymap.Matches(k, a.keymap.Help) {
			a.switchView(messages.ViewChat)
		}
		return a, nil

	case messages.ViewContext:
		if keymap.Matches(k, a.keymap.Back) || keymap.Matches(k, a.keymap.Context) {
			a.switchView(messages.ViewChat)
			return a, nil
		}
		a.context, cmd = a.context.Update(msg)
		return a, cmd

	case messages.ViewChat:
	}

	switch {
	case keymap.Matches(k, a.keymap.Send):
		question := a.input.Question()
		if question == "" || a.busy {
			return a, nil
		}
		a.input.Reset()
		return a, a.submit(question)

	case keymap.Matches(k, a.keymap.Context):
		a.switchView(messages.ViewContext)
		if a.lastQuestion == "" {
			a.status.SetError(errNoQuestionYet)
			return a, nil
		}
		return a, a.searchCmd(a.lastQuestion)

	case keymap.Matches(k, a.keymap.Clear):
		if a.busy {
			return a, nil
		}
		a.ports.Chat.ClearHistory()
		return a, func() tea.Msg { return messages.HistoryCleared{} }

	case keymap.Matches(k, a.keymap.Help):
		a.switchView(messages.ViewHelp)
		return a, nil

	case keymap.Matches(k, a.keymap.PageUp), keymap.Matches(k, a.keymap.PageDown):
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd
	}

	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit starts answering a question in the background.
func (a *App) submit(question string) tea.Cmd {
	if a.busy {
		return nil
	}
	a.busy = true
	a.lastQuestion = question
	a.transcript.SetPending(question, a.spinner.View())
	a.status.SetTurn(domain.TurnQueryReceived)
	return tea.Batch(a.askCmd(question), a.spinner.Tick)
}

func (a *App) askCmd(question string) tea.Cmd {
	chat := a.ports.Chat
	ctx := a.ctx
	return func() tea.Msg {
		reply, err := chat.Ask(ctx, question)
		return messages.AnswerReceived{Message: reply, Err: err}
	}
}

func (a *App) searchCmd(query string) tea.Cmd {
	chat := a.ports.Chat
	ctx := a.ctx
	k := a.ports.ContextSize
	return func() tea.Msg {
		results, err := chat.Search(ctx, query, k)
		return messages.ContextLoaded{Query: query, Results: results, Err: err}
	}
}

func (a *App) switchView(view messages.ViewType) {
	a.currentView = view
	switch view {
	case messages.ViewContext:
		a.status.SetHints(a.keymap.ContextHelp())
		a.input.Blur()
	case messages.ViewHelp:
		a.status.SetHints([]key.Binding{a.keymap.Back})
		a.input.Blur()
	case messages.ViewChat:
		a.status.SetHints(a.keymap.ShortHelp())
		a.input.Focus()
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewContext:
		body = a.context.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	case messages.ViewChat:
		body = lipgloss.JoinVertical(lipgloss.Left, a.transcript.View(), "", a.input.View())
	}

	header := a.styles.Title.Render("pdfchat")
	if doc := a.ports.Chat.Document(); doc != "" {
		header += a.styles.Muted.Render("  " + doc)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, a.status.View())
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Subtitle.Render("Keys"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("Answers are grounded in the indexed document; sources are listed under each answer."))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// SetDimensions sizes the app and its components.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	// header, blank, blank, input box (3), status bar
	transcriptHeight := height - 8
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}
	a.transcript.SetDimensions(width, transcriptHeight)
	a.input.SetWidth(width)
	a.context.SetDimensions(width, height-4)
	a.status.SetWidth(width)
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Busy reports whether a question is being answered.
func (a *App) Busy() bool {
	return a.busy
}

// LastQuestion returns the most recently submitted question.
func (a *App) LastQuestion() string {
	return a.lastQuestion
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}
