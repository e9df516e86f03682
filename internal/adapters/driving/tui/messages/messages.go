// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/netassist/internal/core/domain"
)

// AskRequested is a command to put a question to the assistant.
type AskRequested struct {
	Query           string
	IncludeTopology bool
}

// AnswerReceived carries the assistant's reply back to the model.
type AnswerReceived struct {
	Query  string
	Answer domain.Answer
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer view.
	ViewChat
	// ViewCollections lists vector store collections.
	ViewCollections
	// ViewSources lists watched documentation sources.
	ViewSources
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewCollections:
		return "collections"
	case ViewSources:
		return "sources"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// StatsLoaded carries collection statistics.
type StatsLoaded struct {
	Stats []domain.CollectionStats
	Err   error
}

// SourcesLoaded carries the watched sources.
type SourcesLoaded struct {
	Sources []domain.WatchedSource
}

// UpdateChecked signals a manual update check finished.
type UpdateChecked struct {
	Key    string
	Report domain.UpdateReport
	Err    error
}
