// Package tracker ties the game engine to the session store. Every
// public operation is one read-mutate-write cycle against the store,
// serialized per user key so a rapid double-tap cannot race two
// transitions over the same snapshot. Different users never contend.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/avkor/shelltrack/internal/game"
	"github.com/avkor/shelltrack/internal/session"
)

// DefaultLanguage is applied when a client gives no usable locale hint.
const DefaultLanguage = "en"

// Service exposes the game operations keyed by user identity.
type Service struct {
	store  session.Store
	logger *log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a tracker service over the given store.
func New(store session.Store, logger *log.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.WithPrefix("tracker"),
		locks:  make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex guarding one user's read-mutate-write
// cycle, creating it on first use. Lock entries are never removed;
// the per-user footprint is a single mutex.
func (t *Service) userLock(userID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[userID] = l
	}
	return l
}

// load returns the user's session, creating a fresh one when absent.
func (t *Service) load(ctx context.Context, userID string) (*game.Session, error) {
	sess, ok, err := t.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		sess = game.NewSession(DefaultLanguage)
	}
	return sess, nil
}

// apply runs op against the user's session under their lock and
// commits the result only when op succeeds, keeping each operation
// atomic from the store's point of view.
func (t *Service) apply(ctx context.Context, userID string, op func(*game.Session) (game.View, error)) (game.View, error) {
	l := t.userLock(userID)
	l.Lock()
	defer l.Unlock()

	sess, err := t.load(ctx, userID)
	if err != nil {
		return game.View{}, err
	}

	view, err := op(sess)
	if err != nil {
		if errors.Is(err, game.ErrInvariantViolation) {
			// Not a normal game event: someone resolved more shells of a
			// type than were declared. Logged apart from the rest.
			t.logger.Error("invariant violation rejected", "user", userID)
		}
		return game.View{}, err
	}

	if err := t.store.Put(ctx, userID, sess); err != nil {
		return game.View{}, fmt.Errorf("store session: %w", err)
	}
	return view, nil
}

// Setup records declared shell counts. Either count may be omitted
// (nil); the pair commits once both are present. Supplying both at
// once is the combined-entry path.
func (t *Service) Setup(ctx context.Context, userID string, blank, live *int) (game.View, error) {
	return t.apply(ctx, userID, func(s *game.Session) (game.View, error) {
		switch {
		case blank != nil && live != nil:
			if err := s.SetCounts(*blank, *live); err != nil {
				return game.View{}, err
			}
		case blank != nil:
			if err := s.SetBlankCount(*blank); err != nil {
				return game.View{}, err
			}
		case live != nil:
			if err := s.SetLiveCount(*live); err != nil {
				return game.View{}, err
			}
		default:
			return game.View{}, game.ErrValidation
		}
		t.logger.Debug("setup applied", "user", userID, "phase", s.Phase)
		return s.Project(), nil
	})
}

// RecordShot fires the next shot with the declared type.
func (t *Service) RecordShot(ctx context.Context, userID string, declared game.Outcome) (game.View, error) {
	return t.apply(ctx, userID, func(s *game.Session) (game.View, error) {
		view, err := s.RecordShot(declared)
		if err != nil {
			t.logger.Warn("shot rejected", "user", userID, "declared", declared, "err", err)
			return game.View{}, err
		}
		if view.Completed {
			t.logger.Info("game completed", "user", userID)
		}
		return view, nil
	})
}

// EnterPredicting starts the peek flow.
func (t *Service) EnterPredicting(ctx context.Context, userID string) (game.View, error) {
	return t.apply(ctx, userID, func(s *game.Session) (game.View, error) {
		if err := s.EnterPredicting(); err != nil {
			return game.View{}, err
		}
		return s.Project(), nil
	})
}

// CancelPredicting leaves the peek flow.
func (t *Service) CancelPredicting(ctx context.Context, userID string) (game.View, error) {
	return t.apply(ctx, userID, func(s *game.Session) (game.View, error) {
		if err := s.CancelPredicting(); err != nil {
			return game.View{}, err
		}
		return s.Project(), nil
	})
}

// LockShot places a pending peek on a future shot.
func (t *Service) LockShot(ctx context.Context, userID string, index int) (game.View, error) {
	return t.apply(ctx, userID, func(s *game.Session) (game.View, error) {
		if err := s.LockShot(index); err != nil {
			t.logger.Warn("lock rejected", "user", userID, "shot", index, "err", err)
			return game.View{}, err
		}
		t.logger.Debug("shot locked", "user", userID, "shot", index)
		return s.Project(), nil
	})
}

// ResolvePrediction reveals the oldest pending peek.
func (t *Service) ResolvePrediction(ctx context.Context, userID string, outcome game.Outcome) (game.View, error) {
	return t.apply(ctx, userID, func(s *game.Session) (game.View, error) {
		view, err := s.ResolvePrediction(outcome)
		if err != nil {
			return game.View{}, err
		}
		if view.Completed {
			t.logger.Info("game completed by resolve", "user", userID)
		}
		return view, nil
	})
}

// Reset abandons any game in progress and returns the session to the
// setup phase, keeping the language. Users with no stored session get
// a fresh one.
func (t *Service) Reset(ctx context.Context, userID string) (game.View, error) {
	l := t.userLock(userID)
	l.Lock()
	defer l.Unlock()

	err := t.store.ClearPreserving(ctx, userID)
	switch {
	case errors.Is(err, session.ErrNotFound):
		sess := game.NewSession(DefaultLanguage)
		if err := t.store.Put(ctx, userID, sess); err != nil {
			return game.View{}, fmt.Errorf("store session: %w", err)
		}
		return sess.Project(), nil
	case err != nil:
		return game.View{}, fmt.Errorf("reset session: %w", err)
	}

	t.logger.Debug("session reset", "user", userID)
	sess, err := t.load(ctx, userID)
	if err != nil {
		return game.View{}, err
	}
	return sess.Project(), nil
}

// SetLanguage clears the session like Reset and stores the new
// language tag.
func (t *Service) SetLanguage(ctx context.Context, userID, lang string) (game.View, error) {
	return t.apply(ctx, userID, func(s *game.Session) (game.View, error) {
		s.ClearGame()
		s.Language = lang
		return s.Project(), nil
	})
}

// Language returns the user's stored language, or the default.
func (t *Service) Language(ctx context.Context, userID string) string {
	sess, ok, err := t.store.Get(ctx, userID)
	if err != nil || !ok || sess.Language == "" {
		return DefaultLanguage
	}
	return sess.Language
}

// View projects the user's current session without mutating it.
func (t *Service) View(ctx context.Context, userID string) (game.View, error) {
	l := t.userLock(userID)
	l.Lock()
	defer l.Unlock()

	sess, err := t.load(ctx, userID)
	if err != nil {
		return game.View{}, err
	}
	return sess.Project(), nil
}
