package game

// SetBlankCount records the declared blank count during setup. If the
// live count is already chosen the game starts; otherwise the value is
// stored and the session keeps waiting. Re-submitting before the pair
// completes simply overwrites the previous pick.
func (s *Session) SetBlankCount(n int) error {
	if s.Phase != PhaseSetup {
		return ErrWrongPhase
	}
	if n < 1 {
		return ErrValidation
	}
	s.SetupBlank = n
	if s.SetupLive >= 1 {
		s.commitSetup(s.SetupBlank, s.SetupLive)
	}
	return nil
}

// SetLiveCount records the declared live count during setup, mirroring
// SetBlankCount.
func (s *Session) SetLiveCount(n int) error {
	if s.Phase != PhaseSetup {
		return ErrWrongPhase
	}
	if n < 1 {
		return ErrValidation
	}
	s.SetupLive = n
	if s.SetupBlank >= 1 {
		s.commitSetup(s.SetupBlank, s.SetupLive)
	}
	return nil
}

// SetCounts commits both counts in one step, the equivalent of the
// "live/blank" combined text entry. Invalid input leaves any partial
// selections untouched.
func (s *Session) SetCounts(blank, live int) error {
	if s.Phase != PhaseSetup {
		return ErrWrongPhase
	}
	if blank < 1 || live < 1 {
		return ErrValidation
	}
	s.commitSetup(blank, live)
	return nil
}

func (s *Session) commitSetup(blank, live int) {
	s.TotalBlank = blank
	s.TotalLive = live
	s.TotalShots = blank + live
	s.RemainingBlank = blank
	s.RemainingLive = live
	s.CurrentShot = 1
	s.History = nil
	s.Predictions = nil
	s.SetupBlank = 0
	s.SetupLive = 0
	s.Phase = PhaseTracking
}
