package game

// EnterPredicting switches the session into the peek flow. Only valid
// from tracking with shots still to fire.
func (s *Session) EnterPredicting() error {
	if s.Phase != PhaseTracking || s.CurrentShot > s.TotalShots {
		return ErrWrongPhase
	}
	s.Phase = PhasePredicting
	return nil
}

// CancelPredicting leaves the peek flow without touching the ledger.
// Any lock already placed stays pending.
func (s *Session) CancelPredicting() error {
	if s.Phase != PhasePredicting {
		return ErrWrongPhase
	}
	s.Phase = PhaseTracking
	return nil
}

// LockShot places a pending prediction on a future shot. Validation
// order: range, already fired, already locked. Failure leaves the
// ledger unchanged.
func (s *Session) LockShot(index int) error {
	if s.Phase != PhasePredicting {
		return ErrWrongPhase
	}
	if index < 1 || index > s.TotalShots {
		return ErrOutOfRange
	}
	if s.fired(index) {
		return ErrAlreadyFired
	}
	if s.predictionAt(index) != nil {
		return ErrAlreadyLocked
	}
	s.Predictions = append(s.Predictions, Prediction{Index: index})
	return nil
}

// ResolvePrediction reveals the outcome of the oldest pending
// prediction and removes that shell from the undetermined pool
// immediately. The caller does not pick which pending lock resolves:
// resolution is first-in-first-out, and in practice only one peek is
// ever pending.
//
// Resolving a type with nothing left in the pool would break the
// remaining-count invariant, so it fails before any mutation. If the
// resolve empties the pool the outcome of every shot is now known and
// the game completes on the spot, same terminal path as the recorder.
func (s *Session) ResolvePrediction(outcome Outcome) (View, error) {
	if !s.Active() {
		return View{}, ErrWrongPhase
	}

	var pending *Prediction
	for i := range s.Predictions {
		if !s.Predictions[i].Resolved {
			pending = &s.Predictions[i]
			break
		}
	}
	if pending == nil {
		return View{}, ErrNoPendingPrediction
	}
	if s.remaining(outcome) <= 0 {
		return View{}, ErrInvariantViolation
	}

	pending.Outcome = outcome
	pending.Resolved = true
	s.decrement(outcome)
	s.Phase = PhaseTracking

	if s.RemainingBlank+s.RemainingLive == 0 {
		view := s.terminalView()
		s.ClearGame()
		return view, nil
	}
	return s.Project(), nil
}
