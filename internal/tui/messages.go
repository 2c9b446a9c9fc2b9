package tui

import (
	"recap/internal/model"
	"recap/internal/workflow"
)

// Async message types for Bubble Tea commands.

type fileDecodedMsg struct {
	path string
	text string
	err  error
}

type summarizeResultMsg struct {
	ticket workflow.Ticket
	env    model.Envelope
	err    error
}

type sendResultMsg struct {
	ticket     workflow.Ticket
	recipients []string
	env        model.Envelope
	err        error
}

type historyLoadedMsg struct {
	suggestions []string
	lastDir     string
	err         error
}

type historySavedMsg struct {
	err error
}
