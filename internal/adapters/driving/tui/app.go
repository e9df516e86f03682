package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/views/collections"
	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/views/sources"
)

// App is the main TUI application following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView        *menu.View
	chatView        *chat.View
	collectionsView *collections.View
	sourcesView     *sources.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:           ports,
		ctx:             context.Background(),
		styles:          s,
		keymap:          km,
		menuView:        menu.NewView(s),
		chatView:        chat.NewView(s, km, ports.Assistant),
		collectionsView: collections.NewView(s, ports.Collections),
		sourcesView:     sources.NewView(s, ports.Updates),
		currentView:     messages.ViewMenu,
	}, nil
}

// WithContext sets the context questions run under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// StartInChat opens the chat view instead of the menu.
func (a *App) StartInChat() *App {
	a.currentView = messages.ViewChat
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("netassist")}
	if a.currentView == messages.ViewChat {
		cmds = append(cmds, a.chatView.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewChat:
			a.chatView.Reset()
			return a, a.chatView.Init()
		case messages.ViewCollections:
			return a, a.collectionsView.Init()
		case messages.ViewSources:
			return a, a.sourcesView.Init()
		case messages.ViewMenu, messages.ViewHelp:
		}
		return a, nil

	case messages.AnswerReceived:
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.StatsLoaded:
		a.err = msg.Err
		a.collectionsView, cmd = a.collectionsView.Update(msg)
		return a, cmd

	case messages.SourcesLoaded, messages.UpdateChecked:
		a.sourcesView, cmd = a.sourcesView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewCollections:
		a.collectionsView, cmd = a.collectionsView.Update(msg)
	case messages.ViewSources:
		a.sourcesView, cmd = a.sourcesView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewCollections:
		return a.collectionsView.View()
	case messages.ViewSources:
		return a.sourcesView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return `Help

Global:
  ctrl+c      Quit
  esc         Back to menu

Ask:
  enter       Send question
  ↑/↓         Recall previous questions
  ctrl+t      Toggle topology diagrams
  pgup/pgdn   Scroll the conversation

Collections:
  r           Refresh counts

Sources:
  j/k         Select source
  c           Check the selected source for new documents

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.collectionsView.SetDimensions(width, height)
	a.sourcesView.SetDimensions(width, height)
}
