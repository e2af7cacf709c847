package game

// RecordShot fires the next shot with the declared type and returns
// the resulting view.
//
// Reconciliation: a resolved prediction for the current index forces
// the recorded outcome, overriding the declared type; the shell was
// already removed from the undetermined pool when the prediction
// resolved, so no count changes. A pending prediction for the current
// index does not force anything: the shot fires with the declared type
// and the pending lock resolves to that same outcome in the same step,
// so no prediction stays pending for a fired shot.
//
// Firing the last shot completes the game: the returned view is the
// terminal summary and the session's game fields are cleared back to
// the setup phase, keeping the language. The undetermined pool can
// reach zero before the last shot when later shots are locked; those
// shots still fire through here, each forced to its revealed outcome.
func (s *Session) RecordShot(declared Outcome) (View, error) {
	if s.Phase != PhaseTracking {
		return View{}, ErrWrongPhase
	}

	i := s.CurrentShot
	outcome := declared

	if p := s.predictionAt(i); p != nil && p.Resolved {
		outcome = p.Outcome
	} else {
		if s.remaining(declared) <= 0 {
			return View{}, ErrExhaustedType
		}
		s.decrement(declared)
		if p != nil {
			p.Outcome = declared
			p.Resolved = true
		}
	}

	s.History = append(s.History, Shot{Index: i, Outcome: outcome})

	if i == s.TotalShots {
		view := s.terminalView()
		s.ClearGame()
		return view, nil
	}

	s.CurrentShot = i + 1
	return s.Project(), nil
}
