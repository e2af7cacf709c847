package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avkor/shelltrack/internal/i18n"
	"github.com/avkor/shelltrack/internal/session"
	"github.com/avkor/shelltrack/internal/tracker"
	"github.com/avkor/shelltrack/internal/tui"
)

// PlayCmd runs a local interactive tracking session.
type PlayCmd struct {
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"error"`
}

func (c *PlayCmd) Run() error {
	logger := newLogger(c.LogLevel)

	bundle, err := i18n.Load()
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	svc := tracker.New(session.NewMemoryStore(), logger)
	model := tui.NewModel(svc, bundle, logger)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
