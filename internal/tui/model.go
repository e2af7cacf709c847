// Package tui is the local interactive client: a bubbletea program
// driving the tracker service directly, playing the role the chat
// keyboards play for remote transports.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/avkor/shelltrack/internal/game"
	"github.com/avkor/shelltrack/internal/i18n"
	"github.com/avkor/shelltrack/internal/tracker"
)

// localUser keys the single session a play run owns.
const localUser = "local"

// Model is the bubbletea model for a local tracking session.
type Model struct {
	svc    *tracker.Service
	bundle *i18n.Bundle
	logger *log.Logger

	input   textinput.Model
	view    game.View
	lang    string
	errText string

	// ascii disables emoji glyphs on dumb terminals.
	ascii    bool
	quitting bool
}

// NewModel creates the play model over a tracker service.
func NewModel(svc *tracker.Service, bundle *i18n.Bundle, logger *log.Logger) *Model {
	ti := textinput.New()
	ti.Placeholder = "live/blank, e.g. 3/2"
	ti.PromptStyle = PromptStyle
	ti.CharLimit = 8
	ti.Width = 20
	ti.Focus()

	m := &Model{
		svc:    svc,
		bundle: bundle,
		logger: logger.WithPrefix("tui"),
		input:  ti,
		lang:   i18n.DefaultLanguage,
		ascii:  termenv.EnvColorProfile() == termenv.Ascii,
	}
	m.view, _ = svc.View(context.Background(), localUser)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if keyMsg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// The summary screen holds until the next key press, then the
	// session (already cleared) shows the setup prompt again.
	if m.view.Completed {
		if view, err := m.svc.View(context.Background(), localUser); err == nil {
			m.view = view
		}
		m.input.SetValue("")
		return m, nil
	}

	switch m.view.Phase {
	case game.PhaseSetup:
		return m.updateSetup(keyMsg)
	case game.PhaseTracking:
		return m.updateTracking(keyMsg)
	case game.PhasePredicting:
		return m.updatePredicting(keyMsg)
	}
	return m, nil
}

func (m *Model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		live, blank, err := parseCounts(m.input.Value())
		if err != nil {
			m.fail(game.ErrValidation)
			return m, nil
		}
		m.do(func(ctx context.Context) (game.View, error) {
			return m.svc.Setup(ctx, localUser, &blank, &live)
		})
		m.input.SetValue("")
		return m, nil
	}
	if msg.String() == "t" && m.input.Value() == "" {
		return m.toggleLanguage()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateTracking(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "b":
		m.do(func(ctx context.Context) (game.View, error) {
			return m.svc.RecordShot(ctx, localUser, game.Blank)
		})
	case "l":
		m.do(func(ctx context.Context) (game.View, error) {
			return m.svc.RecordShot(ctx, localUser, game.Live)
		})
	case "p":
		m.do(func(ctx context.Context) (game.View, error) {
			return m.svc.EnterPredicting(ctx, localUser)
		})
	case "r":
		m.do(func(ctx context.Context) (game.View, error) {
			return m.svc.Reset(ctx, localUser)
		})
	case "t":
		return m.toggleLanguage()
	}
	return m, nil
}

func (m *Model) updatePredicting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending peek wants its outcome next; otherwise the player is
	// still picking a shot number.
	if m.view.PendingShot != 0 {
		switch msg.String() {
		case "b":
			m.do(func(ctx context.Context) (game.View, error) {
				return m.svc.ResolvePrediction(ctx, localUser, game.Blank)
			})
		case "l":
			m.do(func(ctx context.Context) (game.View, error) {
				return m.svc.ResolvePrediction(ctx, localUser, game.Live)
			})
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.do(func(ctx context.Context) (game.View, error) {
			return m.svc.CancelPredicting(ctx, localUser)
		})
		m.input.SetValue("")
		return m, nil
	case "enter":
		index, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
		if err != nil {
			m.fail(game.ErrOutOfRange)
			m.input.SetValue("")
			return m, nil
		}
		m.do(func(ctx context.Context) (game.View, error) {
			return m.svc.LockShot(ctx, localUser, index)
		})
		m.input.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// do runs one tracker operation and folds the result into the model.
func (m *Model) do(op func(context.Context) (game.View, error)) {
	view, err := op(context.Background())
	if err != nil {
		m.fail(err)
		return
	}
	m.errText = ""
	m.view = view
}

func (m *Model) fail(err error) {
	m.errText = m.bundle.Get(m.lang, errorKey(err))
	m.logger.Debug("input rejected", "err", err)
}

func (m *Model) toggleLanguage() (tea.Model, tea.Cmd) {
	next := "ru"
	if m.lang == "ru" {
		next = "en"
	}
	m.lang = next
	m.do(func(ctx context.Context) (game.View, error) {
		return m.svc.SetLanguage(ctx, localUser, next)
	})
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("shelltrack"))
	b.WriteString("\n\n")

	if m.view.Completed {
		b.WriteString(m.bundle.Get(m.lang, "game_over"))
		b.WriteString("\n")
		b.WriteString(m.renderShots())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render(m.bundle.Get(m.lang, "ask_setup")))
		b.WriteString("\n")
		return b.String()
	}

	switch m.view.Phase {
	case game.PhaseSetup:
		b.WriteString(m.bundle.Get(m.lang, "ask_setup"))
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case game.PhaseTracking:
		b.WriteString(m.renderProbabilities())
		b.WriteString("\n")
		b.WriteString(m.renderShots())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[b] blank  [l] live  [p] peek  [r] reset  [t] language  [ctrl+c] quit"))
		b.WriteString("\n")
	case game.PhasePredicting:
		if m.view.PendingShot != 0 {
			b.WriteString(m.bundle.Get(m.lang, "choose_shot_type", m.view.PendingShot))
			b.WriteString("\n\n")
			b.WriteString(HelpStyle.Render("[b] blank  [l] live"))
		} else {
			b.WriteString(m.bundle.Get(m.lang, "use_phone"))
			b.WriteString("\n")
			b.WriteString(m.renderShots())
			b.WriteString("\n\n")
			b.WriteString(m.input.View())
			b.WriteString("\n")
			b.WriteString(HelpStyle.Render("[enter] lock  [esc] cancel"))
		}
		b.WriteString("\n")
	}

	if m.errText != "" {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(m.errText))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderProbabilities() string {
	return fmt.Sprintf("%s %.0f%%   %s %.0f%%",
		BlankStyle.Render(m.bundle.Get(m.lang, "outcome_blank")),
		m.view.ProbBlank*100,
		LiveStyle.Render(m.bundle.Get(m.lang, "outcome_live")),
		m.view.ProbLive*100,
	)
}

func (m *Model) renderShots() string {
	parts := make([]string, 0, len(m.view.Shots))
	for _, shot := range m.view.Shots {
		glyph := m.glyph(shot)
		text := fmt.Sprintf("№%d:%s", shot.Index, glyph)
		if shot.Current {
			text = CurrentShotStyle.Render(text)
		} else if shot.State == game.ShotUnknown {
			text = UnknownStyle.Render(text)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " | ")
}

func (m *Model) glyph(shot game.ShotStatus) string {
	if shot.State == game.ShotUnknown {
		if m.ascii {
			return "?"
		}
		return "❓"
	}
	if shot.Outcome == game.Blank {
		if m.ascii {
			return "B"
		}
		return "✅"
	}
	if m.ascii {
		return "L"
	}
	return "💥"
}

// parseCounts reads the combined "live/blank" entry.
func parseCounts(s string) (live, blank int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want live/blank, got %q", s)
	}
	live, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	blank, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return live, blank, nil
}

// errorKey maps tagged engine errors to i18n keys for the local
// client.
func errorKey(err error) string {
	switch {
	case errors.Is(err, game.ErrValidation):
		return "err_validation"
	case errors.Is(err, game.ErrExhaustedType):
		return "err_exhausted"
	case errors.Is(err, game.ErrOutOfRange):
		return "err_out_of_range"
	case errors.Is(err, game.ErrAlreadyFired):
		return "err_already_fired"
	case errors.Is(err, game.ErrAlreadyLocked):
		return "err_already_locked"
	case errors.Is(err, game.ErrNoPendingPrediction):
		return "err_no_pending"
	case errors.Is(err, game.ErrInvariantViolation):
		return "err_invariant"
	default:
		return "err_wrong_phase"
	}
}
