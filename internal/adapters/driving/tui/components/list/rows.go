// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/styles"
)

// Row is one entry in a list: a title with an optional detail line.
type Row struct {
	Title  string
	Detail string
}

// Rows displays rows in a navigable list.
type Rows struct {
	heading  string
	rows     []Row
	selected int
	styles   *styles.Styles
	width    int
	height   int
	empty    string
}

// NewRows creates a list with a heading and a placeholder for no rows.
func NewRows(s *styles.Styles, heading, empty string) *Rows {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &Rows{
		heading: heading,
		styles:  s,
		width:   80,
		height:  10,
		empty:   empty,
	}
}

// Init initialises the list.
func (r *Rows) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *Rows) Update(msg tea.Msg) (*Rows, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the list.
func (r *Rows) View() string {
	if len(r.rows) == 0 {
		return r.styles.Muted.Render(r.empty)
	}

	lines := make([]string, 0, len(r.rows)*2+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("%s (%d)", r.heading, len(r.rows))), "")

	// Each row takes two lines.
	visible := max((r.height-2)/2, 1)
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.rows))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderRow(i))
	}
	return strings.Join(lines, "\n")
}

func (r *Rows) renderRow(i int) string {
	row := r.rows[i]
	title := truncate(row.Title, max(r.width-4, 10))

	var line string
	if i == r.selected {
		line = r.styles.Selected.Render("> " + title)
	} else {
		line = r.styles.Normal.Render("  " + title)
	}
	if row.Detail == "" {
		return line
	}
	return line + "\n" + r.styles.Muted.Render("    "+truncate(row.Detail, max(r.width-6, 20)))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetRows replaces the rows, keeping the selection in range.
func (r *Rows) SetRows(rows []Row) {
	r.rows = rows
	if r.selected >= len(rows) {
		r.selected = max(len(rows)-1, 0)
	}
}

// Rows returns the current rows.
func (r *Rows) Rows() []Row {
	return r.rows
}

// Selected returns the index of the selected row.
func (r *Rows) Selected() int {
	return r.selected
}

// MoveUp moves selection up.
func (r *Rows) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *Rows) MoveDown() {
	if r.selected < len(r.rows)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *Rows) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of rows.
func (r *Rows) Count() int {
	return len(r.rows)
}
