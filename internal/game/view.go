package game

// ShotState classifies a shot index for display.
type ShotState int

const (
	// ShotUnknown is a future shot nothing is known about.
	ShotUnknown ShotState = iota
	// ShotFired is a shot present in the history.
	ShotFired
	// ShotPredicted is an unfired shot with a resolved peek.
	ShotPredicted
)

// String returns the state name
func (st ShotState) String() string {
	switch st {
	case ShotFired:
		return "fired"
	case ShotPredicted:
		return "predicted"
	default:
		return "unknown"
	}
}

// ShotStatus is one entry of the per-shot display sequence.
type ShotStatus struct {
	Index   int       `json:"index"`
	State   ShotState `json:"state"`
	Outcome Outcome   `json:"outcome"` // meaningful when State != ShotUnknown
	Current bool      `json:"current,omitempty"`
}

// View is the presentation projection of a session: probabilities for
// the next draw, the per-shot status sequence, and the completion
// flag. It is derived fresh on every render and never cached.
type View struct {
	Phase       Phase        `json:"phase"`
	ProbBlank   float64      `json:"prob_blank"`
	ProbLive    float64      `json:"prob_live"`
	Shots       []ShotStatus `json:"shots,omitempty"`
	CurrentShot int          `json:"current_shot"`
	Completed   bool         `json:"completed"`

	// PendingShot is the index of the oldest unresolved peek, 0 when
	// none. A pending peek wants a ResolvePrediction next.
	PendingShot int `json:"pending_shot,omitempty"`

	// Partial setup selections, surfaced so transports can highlight
	// the already-chosen button. Zero when not in setup.
	SetupBlank int `json:"setup_blank,omitempty"`
	SetupLive  int `json:"setup_live,omitempty"`
}

// Project computes the current view. Pure with respect to the session:
// no mutation, no caching.
func (s *Session) Project() View {
	v := View{
		Phase:       s.Phase,
		CurrentShot: s.CurrentShot,
		SetupBlank:  s.SetupBlank,
		SetupLive:   s.SetupLive,
	}
	if !s.Active() {
		return v
	}
	if pool := s.RemainingBlank + s.RemainingLive; pool > 0 {
		v.ProbBlank = float64(s.RemainingBlank) / float64(pool)
		v.ProbLive = float64(s.RemainingLive) / float64(pool)
	}
	v.Shots = s.shotStatuses(s.CurrentShot)
	for _, p := range s.Predictions {
		if !p.Resolved {
			v.PendingShot = p.Index
			break
		}
	}
	return v
}

// terminalView is the completion summary: full history plus resolved
// peeks, zero probabilities, no current shot.
func (s *Session) terminalView() View {
	return View{
		Phase:       s.Phase,
		Shots:       s.shotStatuses(0),
		CurrentShot: s.CurrentShot,
		Completed:   true,
	}
}

func (s *Session) shotStatuses(current int) []ShotStatus {
	statuses := make([]ShotStatus, 0, s.TotalShots)
	for i := 1; i <= s.TotalShots; i++ {
		st := ShotStatus{Index: i, Current: i == current}
		switch {
		case s.fired(i):
			shot := s.historyAt(i)
			st.State = ShotFired
			st.Outcome = shot.Outcome
		default:
			if p := s.predictionAt(i); p != nil && p.Resolved {
				st.State = ShotPredicted
				st.Outcome = p.Outcome
			}
		}
		statuses = append(statuses, st)
	}
	return statuses
}

func (s *Session) historyAt(index int) Shot {
	for _, shot := range s.History {
		if shot.Index == index {
			return shot
		}
	}
	return Shot{}
}
