// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driving"
)

// ErrNoAssistant indicates that no assistant was provided.
var ErrNoAssistant = errors.New("assistant is required")

// Turn is one question and, once it arrives, its answer.
type Turn struct {
	Query  string
	Answer *domain.Answer
}

// View is the chat view: a scrolling transcript above a question input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript viewport.Model
	statusbar  *status.Bar

	assistant driving.Assistant
	ctx       context.Context

	turns    []Turn
	pending  bool
	topology bool

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, assistant driving.Assistant) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(km.ChatHelp())

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: viewport.New(80, 14),
		statusbar:  bar,
		assistant:  assistant,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.pending = false
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		v.refresh()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case msg.Type == tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(key, v.keymap.Topology):
		v.topology = !v.topology
		v.statusbar.SetTopology(v.topology)
		return v, nil

	case keymap.Matches(key, v.keymap.ScrollUp):
		v.transcript.SetYOffset(v.transcript.YOffset - v.transcript.Height)
		return v, nil

	case keymap.Matches(key, v.keymap.ScrollDown):
		v.transcript.SetYOffset(v.transcript.YOffset + v.transcript.Height)
		return v, nil

	case msg.Type == tea.KeyUp:
		v.input.Previous()
		return v, nil

	case msg.Type == tea.KeyDown:
		v.input.Next()
		return v, nil

	case msg.Type == tea.KeyEnter:
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question unless one is already in flight.
func (v *View) submit() tea.Cmd {
	if v.pending {
		return nil
	}
	query := strings.TrimSpace(v.input.Value())
	if query == "" {
		return nil
	}

	v.input.Commit(query)
	v.turns = append(v.turns, Turn{Query: query})
	v.pending = true
	v.err = nil
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")
	v.refresh()

	return v.ask(query, v.topology)
}

func (v *View) ask(query string, topology bool) tea.Cmd {
	assistant, ctx := v.assistant, v.ctx
	return func() tea.Msg {
		if assistant == nil {
			return messages.ErrorOccurred{Err: ErrNoAssistant}
		}
		answer := assistant.Ask(ctx, domain.AskRequest{Query: query, IncludeTopology: topology})
		return messages.AnswerReceived{Query: query, Answer: answer}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = false
	for i := len(v.turns) - 1; i >= 0; i-- {
		if v.turns[i].Answer == nil && v.turns[i].Query == msg.Query {
			answer := msg.Answer
			v.turns[i].Answer = &answer
			break
		}
	}

	v.statusbar.SetState(status.StateAnswered)
	switch {
	case msg.Answer.Degraded:
		v.statusbar.SetMessage("Answered without a language model")
	case msg.Answer.UsedWebSearch:
		v.statusbar.SetMessage("Answered with web search")
	default:
		v.statusbar.SetMessage("Answered from local documentation")
	}
	v.refresh()
}

// refresh re-renders the transcript and keeps the newest turn in view.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask about integrating, configuring or troubleshooting network equipment.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	blocks := make([]string, 0, len(v.turns))
	for i, turn := range v.turns {
		var b strings.Builder
		b.WriteString(v.styles.User.Render("You: "))
		b.WriteString(wrap.Render(turn.Query))
		b.WriteString("\n")

		switch {
		case turn.Answer != nil:
			b.WriteString(v.renderAnswer(turn.Answer, wrap))
		case i == len(v.turns)-1 && v.pending:
			b.WriteString(v.styles.Muted.Render("Assistant is thinking..."))
		case i == len(v.turns)-1 && v.err != nil:
			b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		default:
			b.WriteString(v.styles.Muted.Render("(no answer)"))
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func (v *View) renderAnswer(answer *domain.Answer, wrap lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(v.styles.Assistant.Render("Assistant:"))
	if answer.UsedWebSearch {
		b.WriteString(" " + v.styles.Badge.Render("web"))
	}
	if answer.Degraded {
		b.WriteString(" " + v.styles.Badge.Render("degraded"))
	}
	b.WriteString("\n")

	if a := answer.Analysis; a != nil {
		line := fmt.Sprintf("intent: %s", a.Intent)
		if vendors := a.Vendors(); len(vendors) > 0 {
			line += "  vendors: " + strings.Join(vendors, " -> ")
		}
		if products := a.Products(); len(products) > 0 {
			line += "  products: " + strings.Join(products, ", ")
		}
		b.WriteString(v.styles.Muted.Render(line))
		b.WriteString("\n")
	}

	b.WriteString(wrap.Render(answer.Response))
	if answer.Topology != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Diagram.Render(answer.Topology))
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("netassist"),
		"",
		v.transcript.View(),
		"",
		v.input.View(),
		v.statusbar.View(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Title, spacers, bordered input and status bar take eight lines.
	v.transcript.Width = width
	v.transcript.Height = max(height-8, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Reset clears the input and keeps the transcript.
func (v *View) Reset() {
	v.input.Reset()
	v.input.Focus()
	v.err = nil
	v.statusbar.Clear()
}

// Clear drops the transcript.
func (v *View) Clear() {
	v.turns = nil
	v.pending = false
	v.err = nil
	v.statusbar.Clear()
	v.refresh()
}

// Query returns the text currently typed.
func (v *View) Query() string {
	return v.input.Value()
}

// Turns returns the transcript.
func (v *View) Turns() []Turn {
	return v.turns
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}

// Topology reports whether diagrams are requested.
func (v *View) Topology() bool {
	return v.topology
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
