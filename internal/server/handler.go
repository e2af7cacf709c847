package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/avkor/shelltrack/internal/game"
	"github.com/avkor/shelltrack/internal/i18n"
	"github.com/avkor/shelltrack/internal/tracker"
)

// Handler maps inbound messages onto tracker operations and renders
// the results. It owns no per-connection state beyond the user ID the
// connection passes in; all game state lives behind the tracker.
type Handler struct {
	svc    *tracker.Service
	bundle *i18n.Bundle
	logger *log.Logger
}

// NewHandler creates a message handler.
func NewHandler(svc *tracker.Service, bundle *i18n.Bundle, logger *log.Logger) *Handler {
	return &Handler{
		svc:    svc,
		bundle: bundle,
		logger: logger.WithPrefix("handler"),
	}
}

// Hello registers a client, assigning a user ID when it brings none,
// and derives the session language from the locale hint on first
// contact.
func (h *Handler) Hello(ctx context.Context, data HelloData) (userID string, reply *Message, err error) {
	userID = data.UserID
	if userID == "" {
		userID = uuid.NewString()
		lang := h.bundle.Match(data.Locale)
		if _, err := h.svc.SetLanguage(ctx, userID, lang); err != nil {
			return "", nil, fmt.Errorf("init session: %w", err)
		}
		h.logger.Info("new session", "user", userID, "lang", lang)
	}

	lang := h.svc.Language(ctx, userID)
	reply, err = NewMessage(TypeWelcome, WelcomeData{
		UserID:   userID,
		Language: lang,
		Text:     h.bundle.Get(lang, "welcome"),
	})
	return userID, reply, err
}

// Handle dispatches one client message for an identified user and
// returns the reply. Engine rejections come back as error messages to
// the client, not as Go errors; only transport-level problems error.
func (h *Handler) Handle(ctx context.Context, userID string, msg *Message) (*Message, error) {
	lang := h.svc.Language(ctx, userID)

	view, opErr := h.dispatch(ctx, userID, msg)
	if opErr != nil {
		return h.errorMessage(lang, opErr)
	}
	return h.stateMessage(lang, view)
}

func (h *Handler) dispatch(ctx context.Context, userID string, msg *Message) (game.View, error) {
	switch msg.Type {
	case TypeSetup:
		var data SetupData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return game.View{}, game.ErrValidation
		}
		return h.svc.Setup(ctx, userID, data.Blank, data.Live)

	case TypeShot:
		var data ShotData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return game.View{}, game.ErrValidation
		}
		outcome, err := game.ParseOutcome(data.Outcome)
		if err != nil {
			return game.View{}, game.ErrValidation
		}
		return h.svc.RecordShot(ctx, userID, outcome)

	case TypePeek:
		return h.svc.EnterPredicting(ctx, userID)

	case TypeLock:
		var data LockData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return game.View{}, game.ErrValidation
		}
		return h.svc.LockShot(ctx, userID, data.Shot)

	case TypeResolve:
		var data ResolveData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return game.View{}, game.ErrValidation
		}
		outcome, err := game.ParseOutcome(data.Outcome)
		if err != nil {
			return game.View{}, game.ErrValidation
		}
		return h.svc.ResolvePrediction(ctx, userID, outcome)

	case TypeCancelPeek:
		return h.svc.CancelPredicting(ctx, userID)

	case TypeReset:
		return h.svc.Reset(ctx, userID)

	case TypeLanguage:
		var data LanguageData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return game.View{}, game.ErrValidation
		}
		return h.svc.SetLanguage(ctx, userID, h.bundle.Match(data.Language))

	default:
		return game.View{}, fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// stateMessage renders a view with a localized status line.
func (h *Handler) stateMessage(lang string, view game.View) (*Message, error) {
	data := StateData{
		Phase:       view.Phase.String(),
		ProbBlank:   view.ProbBlank,
		ProbLive:    view.ProbLive,
		CurrentShot: view.CurrentShot,
		PendingShot: view.PendingShot,
		Completed:   view.Completed,
		SetupBlank:  view.SetupBlank,
		SetupLive:   view.SetupLive,
	}
	for _, shot := range view.Shots {
		info := ShotInfo{
			Index:   shot.Index,
			State:   shot.State.String(),
			Current: shot.Current,
		}
		if shot.State != game.ShotUnknown {
			info.Outcome = shot.Outcome.String()
		}
		data.Shots = append(data.Shots, info)
	}

	switch {
	case view.Completed:
		data.Text = h.bundle.Get(lang, "game_over")
	case view.Phase == game.PhaseSetup:
		data.Text = h.bundle.Get(lang, "ask_setup")
	case view.Phase == game.PhasePredicting && view.PendingShot != 0:
		data.Text = h.bundle.Get(lang, "choose_shot_type", view.PendingShot)
	case view.Phase == game.PhasePredicting:
		data.Text = h.bundle.Get(lang, "use_phone")
	default:
		data.Text = h.bundle.Get(lang, "current_shot", view.CurrentShot)
	}

	return NewMessage(TypeState, data)
}

// errorMessage maps a tagged engine error to a stable code and
// localized text.
func (h *Handler) errorMessage(lang string, err error) (*Message, error) {
	code, key := errorCode(err)
	if code == "" {
		return nil, err
	}
	return NewMessage(TypeError, ErrorData{
		Code:    code,
		Message: h.bundle.Get(lang, key),
	})
}

// errorCode returns the wire code and i18n key for a tagged engine
// error, or empty strings for errors that are not game events.
func errorCode(err error) (code, key string) {
	switch {
	case errors.Is(err, game.ErrValidation):
		return "validation", "err_validation"
	case errors.Is(err, game.ErrExhaustedType):
		return "exhausted_type", "err_exhausted"
	case errors.Is(err, game.ErrOutOfRange):
		return "out_of_range", "err_out_of_range"
	case errors.Is(err, game.ErrAlreadyFired):
		return "already_fired", "err_already_fired"
	case errors.Is(err, game.ErrAlreadyLocked):
		return "already_locked", "err_already_locked"
	case errors.Is(err, game.ErrNoPendingPrediction):
		return "no_pending_prediction", "err_no_pending"
	case errors.Is(err, game.ErrInvariantViolation):
		return "invariant_violation", "err_invariant"
	case errors.Is(err, game.ErrWrongPhase):
		return "wrong_phase", "err_wrong_phase"
	default:
		return "", ""
	}
}
