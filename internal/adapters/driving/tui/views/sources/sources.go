// Package sources provides the watched documentation sources view for the TUI.
package sources

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

// View lists watched sources and runs update checks on demand.
type View struct {
	styles  *styles.Styles
	updates driving.UpdateService
	rows    *list.Rows

	sources  []domain.WatchedSource
	reports  map[string]domain.UpdateReport
	errs     map[string]error
	checking string
	width    int
	height   int
	ready    bool
}

// NewView creates a new sources view. A nil update service shows an empty list.
func NewView(s *styles.Styles, updates driving.UpdateService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		updates: updates,
		rows:    list.NewRows(s, "Watched sources", "No watched sources configured."),
		reports: make(map[string]domain.UpdateReport),
		errs:    make(map[string]error),
		width:   80,
		height:  24,
	}
}

// Init loads the source list.
func (v *View) Init() tea.Cmd {
	updates := v.updates
	return func() tea.Msg {
		if updates == nil {
			return messages.SourcesLoaded{}
		}
		return messages.SourcesLoaded{Sources: updates.Sources()}
	}
}

// Update handles messages for the sources view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SourcesLoaded:
		v.sources = msg.Sources
		v.render()
		return v, nil

	case messages.UpdateChecked:
		if v.checking == msg.Key {
			v.checking = ""
		}
		if msg.Err != nil {
			v.errs[msg.Key] = msg.Err
		} else {
			delete(v.errs, msg.Key)
			v.reports[msg.Key] = msg.Report
		}
		v.render()
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case "c":
			return v, v.check()
		}
		v.rows, _ = v.rows.Update(msg)
	}
	return v, nil
}

// check runs an update check on the selected source, one at a time.
func (v *View) check() tea.Cmd {
	if v.updates == nil || v.checking != "" || len(v.sources) == 0 {
		return nil
	}
	src := v.sources[v.rows.Selected()]
	v.checking = src.Key()
	v.render()

	updates := v.updates
	return func() tea.Msg {
		report, err := updates.Check(context.Background(), src)
		return messages.UpdateChecked{Key: src.Key(), Report: report, Err: err}
	}
}

func (v *View) render() {
	rows := make([]list.Row, 0, len(v.sources))
	for _, src := range v.sources {
		key := src.Key()
		every := "default interval"
		if src.Interval > 0 {
			every = "every " + src.Interval.Std().String()
		}
		rows = append(rows, list.Row{
			Title:  fmt.Sprintf("%-32s %s", key, every),
			Detail: v.detail(key, src.URL),
		})
	}
	v.rows.SetRows(rows)
}

func (v *View) detail(key, url string) string {
	switch {
	case v.checking == key:
		return "checking " + url
	case v.errs[key] != nil:
		return "check failed: " + v.errs[key].Error()
	}
	r, ok := v.reports[key]
	if !ok {
		return url
	}
	if r.FirstCheck {
		return fmt.Sprintf("baseline recorded: %d documents", r.Discovered)
	}
	return fmt.Sprintf("%d new, %d changed, %d chunks ingested", r.New, r.Changed, r.Ingest.Chunks)
}

// View renders the sources view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Sources"))
	b.WriteString("\n\n")
	b.WriteString(v.rows.View())
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [c] Check now  [esc] Back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.rows.SetDimensions(width, height-6)
}

// Sources returns the listed sources.
func (v *View) Sources() []domain.WatchedSource {
	return v.sources
}

// Checking returns the key of the source being checked, if any.
func (v *View) Checking() string {
	return v.checking
}
