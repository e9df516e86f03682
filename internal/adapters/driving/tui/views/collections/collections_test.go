package collections

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

func load(t *testing.T, v *View) {
	t.Helper()
	cmd := v.Init()
	require.NotNil(t, cmd)
	v.Update(cmd())
}

func TestView_LoadsStats(t *testing.T) {
	v := NewView(nil, &mockCollections{stats: []domain.CollectionStats{
		{Name: domain.CollectionAllVendorDocs, Type: "vendor", Documents: 12, Dimension: 768, Model: "feature-hash-768"},
		{Name: domain.CollectionErrorCodes, Type: "error_codes", Documents: 3, Dimension: 768, Model: "feature-hash-768"},
	}})
	v.SetDimensions(100, 30)

	load(t, v)

	require.NoError(t, v.Err())
	assert.Len(t, v.Stats(), 2)
	assert.Equal(t, 15, v.Total())

	view := v.View()
	assert.Contains(t, view, domain.CollectionAllVendorDocs)
	assert.Contains(t, view, "model=feature-hash-768")
	assert.Contains(t, view, "15 documents in total")
}

func TestView_LoadError(t *testing.T) {
	v := NewView(nil, &mockCollections{err: errors.New("store closed")})
	v.SetDimensions(100, 30)

	load(t, v)

	assert.Error(t, v.Err())
	assert.Contains(t, v.View(), "store closed")
}

func TestView_NilService(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(100, 30)

	load(t, v)

	assert.Error(t, v.Err())
}

func TestView_Loading(t *testing.T) {
	v := NewView(nil, &mockCollections{})
	v.SetDimensions(100, 30)

	v.Init()

	assert.Contains(t, v.View(), "Loading...")
}

func TestView_Empty(t *testing.T) {
	v := NewView(nil, &mockCollections{})
	v.SetDimensions(100, 30)

	load(t, v)

	assert.Contains(t, v.View(), "No collections yet")
}

func TestView_Keys(t *testing.T) {
	v := NewView(nil, &mockCollections{})
	v.SetDimensions(100, 30)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	assert.IsType(t, messages.StatsLoaded{}, cmd())
}

func TestView_NotReady(t *testing.T) {
	assert.Equal(t, "Initialising...", NewView(nil, nil).View())
}
