// Package game implements the shell-tracking engine: session setup,
// the shot-recording state machine, phone-peek predictions, and the
// probability projection.
//
// A Session is a plain value owned by exactly one user. All operations
// are synchronous and atomic: they either fully apply or leave the
// session unchanged. Serializing concurrent access to the same user's
// session is the caller's job (see internal/tracker).
package game

import "fmt"

// Shot is one fired shell in the history.
type Shot struct {
	Index   int     `json:"index"`
	Outcome Outcome `json:"outcome"`
}

// Prediction is a phone peek at a future shot. It starts pending
// (shot picked, type not yet revealed) and becomes resolved once the
// type is known. A resolved outcome is never reassigned.
type Prediction struct {
	Index    int     `json:"index"`
	Outcome  Outcome `json:"outcome"`
	Resolved bool    `json:"resolved"`
}

// Session is one user's game state. The zero value is a fresh session
// in the setup phase with no language set.
type Session struct {
	Language string `json:"language,omitempty"`
	Phase    Phase  `json:"phase"`

	// Declared at setup, immutable until the game is cleared.
	TotalBlank int `json:"total_blank"`
	TotalLive  int `json:"total_live"`
	TotalShots int `json:"total_shots"`

	// The undetermined pool. Decremented when an unknown shot is fired
	// or a prediction is resolved.
	RemainingBlank int `json:"remaining_blank"`
	RemainingLive  int `json:"remaining_live"`

	// CurrentShot is the 1-based index of the next shot to fire.
	CurrentShot int `json:"current_shot"`

	History     []Shot       `json:"history,omitempty"`
	Predictions []Prediction `json:"predictions,omitempty"`

	// Partial setup selections, 0 = not chosen yet.
	SetupBlank int `json:"setup_blank,omitempty"`
	SetupLive  int `json:"setup_live,omitempty"`
}

// NewSession returns a fresh session in the setup phase.
func NewSession(language string) *Session {
	return &Session{Language: language, Phase: PhaseSetup}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	out := *s
	if s.History != nil {
		out.History = append([]Shot(nil), s.History...)
	}
	if s.Predictions != nil {
		out.Predictions = append([]Prediction(nil), s.Predictions...)
	}
	return &out
}

// ClearGame resets every game field back to the setup phase, keeping
// only the language tag.
func (s *Session) ClearGame() {
	*s = Session{Language: s.Language, Phase: PhaseSetup}
}

// Active reports whether a game is configured and in progress.
func (s *Session) Active() bool {
	return s.Phase == PhaseTracking || s.Phase == PhasePredicting
}

func (s *Session) remaining(o Outcome) int {
	if o == Blank {
		return s.RemainingBlank
	}
	return s.RemainingLive
}

func (s *Session) decrement(o Outcome) {
	if o == Blank {
		s.RemainingBlank--
	} else {
		s.RemainingLive--
	}
}

// fired reports whether the shot index is already in the history.
func (s *Session) fired(index int) bool {
	for _, shot := range s.History {
		if shot.Index == index {
			return true
		}
	}
	return false
}

// predictionAt returns the prediction for the index, or nil. Linear
// scan: shot counts stay in the low teens.
func (s *Session) predictionAt(index int) *Prediction {
	for i := range s.Predictions {
		if s.Predictions[i].Index == index {
			return &s.Predictions[i]
		}
	}
	return nil
}

// resolvedUnfired counts predictions whose outcome is known but whose
// shot has not been fired yet. These have already left the
// undetermined pool.
func (s *Session) resolvedUnfired() int {
	n := 0
	for _, p := range s.Predictions {
		if p.Resolved && !s.fired(p.Index) {
			n++
		}
	}
	return n
}

// CheckInvariants verifies the accounting identities that must hold
// after every completed transition. It returns nil for sessions in the
// setup phase, which carry no game state.
func (s *Session) CheckInvariants() error {
	if !s.Active() {
		return nil
	}
	if s.RemainingBlank < 0 || s.RemainingLive < 0 {
		return fmt.Errorf("negative remaining counts: blank=%d live=%d", s.RemainingBlank, s.RemainingLive)
	}
	if got := s.RemainingBlank + s.RemainingLive + len(s.History) + s.resolvedUnfired(); got != s.TotalShots {
		return fmt.Errorf("count identity broken: remaining+fired+resolved=%d, total=%d", got, s.TotalShots)
	}
	for i, shot := range s.History {
		if shot.Index != i+1 {
			return fmt.Errorf("history not contiguous at position %d: shot index %d", i, shot.Index)
		}
	}
	seen := make(map[int]bool, len(s.Predictions))
	for _, p := range s.Predictions {
		if seen[p.Index] {
			return fmt.Errorf("duplicate prediction for shot %d", p.Index)
		}
		seen[p.Index] = true
		if !p.Resolved && s.fired(p.Index) {
			return fmt.Errorf("pending prediction for already-fired shot %d", p.Index)
		}
	}
	return nil
}
