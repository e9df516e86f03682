// Package tui provides an interactive terminal user interface for netassist.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/netassist/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Assistant answers questions.
	Assistant driving.Assistant

	// Collections reports what is indexed.
	Collections driving.CollectionService

	// Updates checks watched sources. Optional.
	Updates driving.UpdateService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	if p.Collections == nil {
		return ErrMissingCollections
	}
	return nil
}
