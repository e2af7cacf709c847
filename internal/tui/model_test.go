package tui

import (
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkor/shelltrack/internal/game"
	"github.com/avkor/shelltrack/internal/i18n"
	"github.com/avkor/shelltrack/internal/session"
	"github.com/avkor/shelltrack/internal/tracker"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	svc := tracker.New(session.NewMemoryStore(), logger)
	return NewModel(svc, i18n.MustLoad(), logger)
}

func press(m *Model, keys ...string) *Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(*Model)
	}
	return m
}

func TestModelSetupThenTrack(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, game.PhaseSetup, m.view.Phase)

	m = press(m, "2", "/", "2", "enter")
	require.Equal(t, game.PhaseTracking, m.view.Phase)
	assert.Empty(t, m.errText)
	assert.Equal(t, 1, m.view.CurrentShot)
	assert.InDelta(t, 0.5, m.view.ProbLive, 1e-9)
}

func TestModelRejectsBadSetup(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "0", "/", "2", "enter")
	assert.Equal(t, game.PhaseSetup, m.view.Phase)
	assert.NotEmpty(t, m.errText)
}

func TestModelFireShots(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "1", "/", "1", "enter")

	m = press(m, "l")
	require.Equal(t, 2, m.view.CurrentShot)

	m = press(m, "b")
	assert.True(t, m.view.Completed)
}

func TestModelPeekFlow(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "3", "/", "1", "enter")

	m = press(m, "p")
	require.Equal(t, game.PhasePredicting, m.view.Phase)
	assert.Zero(t, m.view.PendingShot)

	m = press(m, "4", "enter")
	require.Equal(t, 4, m.view.PendingShot)

	m = press(m, "l")
	assert.Equal(t, game.PhaseTracking, m.view.Phase)
	assert.Equal(t, game.ShotPredicted, m.view.Shots[3].State)
	assert.Equal(t, game.Live, m.view.Shots[3].Outcome)
}

func TestModelCancelPeek(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "2", "/", "2", "enter", "p", "esc")
	assert.Equal(t, game.PhaseTracking, m.view.Phase)
}

func TestModelExhaustedShotShowsError(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "1", "/", "1", "enter", "b", "b")

	// Second blank is rejected; error text is shown and state holds.
	assert.NotEmpty(t, m.errText)
	assert.Equal(t, 2, m.view.CurrentShot)
}

func TestModelViewRenders(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	assert.Contains(t, out, "shelltrack")

	m = press(m, "2", "/", "2", "enter")
	out = m.View()
	assert.Contains(t, out, "№1")
	assert.Contains(t, out, "№4")
}
