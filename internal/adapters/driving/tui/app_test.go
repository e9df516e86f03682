package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/netassist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/netassist/internal/core/domain"
)

type mockAssistant struct {
	answer domain.Answer
	asked  []string
}

func (m *mockAssistant) Ask(_ context.Context, req domain.AskRequest) domain.Answer {
	m.asked = append(m.asked, req.Query)
	return m.answer
}

func (m *mockAssistant) Analyze(query string) domain.QueryAnalysis {
	return domain.QueryAnalysis{OriginalQuery: query}
}

type mockCollections struct {
	stats []domain.CollectionStats
	err   error
}

func (m *mockCollections) InitializeCollections(context.Context) error { return nil }
func (m *mockCollections) ResolveCollection(key string) string { return key }
func (m *mockCollections) AddDocuments(context.Context, string, []domain.Chunk) (int, error) {
	return 0, nil
}
func (m *mockCollections) Query(_ context.Context, key, _ string, _ int, _ map[string]string) domain.ResultSet {
	return domain.EmptyResultSet(key)
}
func (m *mockCollections) QueryAll(context.Context, string, int) []domain.ResultSet { return nil }
func (m *mockCollections) ResetDatabase(context.Context) error { return nil }
func (m *mockCollections) Stats(context.Context) ([]domain.CollectionStats, error) {
	return m.stats, m.err
}

func newTestApp(t *testing.T) (*App, *mockAssistant) {
	t.Helper()
	a := &mockAssistant{answer: domain.Answer{Response: "Use LACP on both ends."}}
	app, err := NewApp(&Ports{
		Assistant:   a,
		Collections: &mockCollections{stats: []domain.CollectionStats{{Name: domain.CollectionAllVendorDocs, Documents: 4}}},
	})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app, a
}

// navigate switches view and runs the view's init command.
func navigate(app *App, view messages.ViewType) {
	_, cmd := app.Update(messages.ViewChanged{View: view})
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		app.Update(msg)
	}
}

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.True(t, app.Ready())
	assert.NotNil(t, app.Init())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		err   error
	}{
		{"nil", nil, ErrInvalidPorts},
		{"no assistant", &Ports{Collections: &mockCollections{}}, ErrMissingAssistant},
		{"no collections", &Ports{Assistant: &mockAssistant{}}, ErrMissingCollections},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewApp(tt.ports)

			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, app)
		})
	}
}

func TestApp_NotReady(t *testing.T) {
	app, err := NewApp(&Ports{Assistant: &mockAssistant{}, Collections: &mockCollections{}})
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_WithContext(t *testing.T) {
	app, _ := newTestApp(t)

	assert.Equal(t, app, app.WithContext(context.Background()))
}

func TestApp_CtrlCQuits(t *testing.T) {
	app, _ := newTestApp(t)
	navigate(app, messages.ViewChat)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_MenuToChat(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.Contains(t, app.View(), "Ask:")
}

func TestApp_ChatRoundTrip(t *testing.T) {
	app, a := newTestApp(t)
	navigate(app, messages.ViewChat)

	for _, r := range "bond two links" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, []string{"bond two links"}, a.asked)
	assert.Contains(t, app.View(), "Use LACP on both ends.")
}

func TestApp_QTypesInChat(t *testing.T) {
	app, _ := newTestApp(t)
	navigate(app, messages.ViewChat)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.Equal(t, "q", app.chatView.Query())
}

func TestApp_Collections(t *testing.T) {
	app, _ := newTestApp(t)

	navigate(app, messages.ViewCollections)

	assert.Equal(t, messages.ViewCollections, app.CurrentView())
	assert.Contains(t, app.View(), domain.CollectionAllVendorDocs)
	assert.NoError(t, app.Err())
}

func TestApp_CollectionsError(t *testing.T) {
	app, err := NewApp(&Ports{
		Assistant:   &mockAssistant{},
		Collections: &mockCollections{err: errors.New("disk gone")},
	})
	require.NoError(t, err)
	app.SetDimensions(100, 30)

	navigate(app, messages.ViewCollections)

	assert.Error(t, app.Err())
	assert.Contains(t, app.View(), "disk gone")
}

func TestApp_SourcesWithoutUpdates(t *testing.T) {
	app, _ := newTestApp(t)

	navigate(app, messages.ViewSources)

	assert.Contains(t, app.View(), "No watched sources")
}

func TestApp_Help(t *testing.T) {
	app, _ := newTestApp(t)
	navigate(app, messages.ViewHelp)

	assert.Contains(t, app.View(), "Toggle topology")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_EscReturnsToMenu(t *testing.T) {
	app, _ := newTestApp(t)
	navigate(app, messages.ViewCollections)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_StartInChat(t *testing.T) {
	app, _ := newTestApp(t)

	app.StartInChat()

	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app, _ := newTestApp(t)
	boom := errors.New("boom")

	app.Update(messages.ErrorOccurred{Err: boom})

	assert.ErrorIs(t, app.Err(), boom)
}

func TestApp_QuitMessage(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
