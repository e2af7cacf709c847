package game

import "fmt"

// Outcome is the type of a single shell: blank or live.
type Outcome int

const (
	Blank Outcome = iota
	Live
)

// String returns the wire/display name of the outcome
func (o Outcome) String() string {
	switch o {
	case Blank:
		return "blank"
	case Live:
		return "live"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ParseOutcome converts a wire name back into an Outcome
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "blank":
		return Blank, nil
	case "live", "combat", "not_blank":
		return Live, nil
	default:
		return 0, fmt.Errorf("unknown outcome %q", s)
	}
}

// Phase identifies where a session is in its lifecycle
type Phase int

const (
	// PhaseSetup collects the declared blank/live counts.
	PhaseSetup Phase = iota
	// PhaseTracking is the normal shot-by-shot state.
	PhaseTracking
	// PhasePredicting is entered while the player picks a shot to peek at.
	PhasePredicting
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseTracking:
		return "tracking"
	case PhasePredicting:
		return "predicting"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}
