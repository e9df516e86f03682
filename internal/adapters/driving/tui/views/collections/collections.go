// Package collections provides the vector store overview for the TUI.
package collections

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driving"
)

// View lists collections with their document counts.
type View struct {
	styles      *styles.Styles
	collections driving.CollectionService
	rows        *list.Rows

	stats   []domain.CollectionStats
	loading bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a new collections view.
func NewView(s *styles.Styles, collections driving.CollectionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:      s,
		collections: collections,
		rows:        list.NewRows(s, "Collections", "No collections yet. Run `netassist ingest` first."),
		width:       80,
		height:      24,
	}
}

// Init loads the statistics.
func (v *View) Init() tea.Cmd {
	v.loading = true
	collections := v.collections
	return func() tea.Msg {
		if collections == nil {
			return messages.StatsLoaded{Err: fmt.Errorf("collection service not available")}
		}
		stats, err := collections.Stats(context.Background())
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

// Update handles messages for the collections view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.StatsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.setStats(msg.Stats)
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case "r":
			return v, v.Init()
		}
		v.rows, _ = v.rows.Update(msg)
	}
	return v, nil
}

func (v *View) setStats(stats []domain.CollectionStats) {
	v.stats = stats
	rows := make([]list.Row, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, list.Row{
			Title:  fmt.Sprintf("%-28s %6d docs", s.Name, s.Documents),
			Detail: fmt.Sprintf("type=%s model=%s dim=%d", s.Type, s.Model, s.Dimension),
		})
	}
	v.rows.SetRows(rows)
}

// View renders the collections view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Collections"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	default:
		b.WriteString(v.rows.View())
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d documents in total", v.Total())))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [r] Refresh  [esc] Back"))
	return b.String()
}

// Total returns the number of documents across collections.
func (v *View) Total() int {
	total := 0
	for _, s := range v.stats {
		total += s.Documents
	}
	return total
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.rows.SetDimensions(width, height-8)
}

// Stats returns the loaded statistics.
func (v *View) Stats() []domain.CollectionStats {
	return v.stats
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
