package tui

import "errors"

// ErrMissingAssistant is returned when the assistant is not provided.
var ErrMissingAssistant = errors.New("tui: assistant is required")

// ErrMissingCollections is returned when the collection service is not provided.
var ErrMissingCollections = errors.New("tui: collection service is required")

// ErrInvalidPorts is returned when no ports are provided.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
