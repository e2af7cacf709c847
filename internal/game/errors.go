package game

import "errors"

// Tagged errors returned by session operations. Callers match with
// errors.Is and map each tag to user-facing text themselves; the engine
// never produces display strings.
var (
	// ErrValidation reports a non-positive setup count.
	ErrValidation = errors.New("setup counts must be at least 1")

	// ErrExhaustedType reports a declared shot type with zero shells left.
	ErrExhaustedType = errors.New("no remaining shells of declared type")

	// ErrOutOfRange reports a lock index outside [1, totalShots].
	ErrOutOfRange = errors.New("shot index out of range")

	// ErrAlreadyFired reports a lock on a shot already in the history.
	ErrAlreadyFired = errors.New("shot already fired")

	// ErrAlreadyLocked reports a second lock on the same shot index.
	ErrAlreadyLocked = errors.New("shot already locked")

	// ErrNoPendingPrediction reports a resolve with nothing pending.
	ErrNoPendingPrediction = errors.New("no pending prediction")

	// ErrInvariantViolation reports a resolve that would drive a
	// remaining count negative. The session is left untouched.
	ErrInvariantViolation = errors.New("resolve would break remaining-count invariant")

	// ErrWrongPhase reports an operation called outside its phase.
	ErrWrongPhase = errors.New("operation not valid in current phase")
)
