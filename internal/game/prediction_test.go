package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockShotValidation(t *testing.T) {
	t.Parallel()

	s := newTracking(t, 2, 2)
	_, err := s.RecordShot(Blank)
	require.NoError(t, err)
	require.NoError(t, s.EnterPredicting())

	t.Run("out of range", func(t *testing.T) {
		assert.ErrorIs(t, s.LockShot(0), ErrOutOfRange)
		assert.ErrorIs(t, s.LockShot(5), ErrOutOfRange)
	})

	t.Run("already fired", func(t *testing.T) {
		assert.ErrorIs(t, s.LockShot(1), ErrAlreadyFired)
	})

	t.Run("already locked", func(t *testing.T) {
		require.NoError(t, s.LockShot(3))
		assert.ErrorIs(t, s.LockShot(3), ErrAlreadyLocked)
	})

	// Failures left exactly one lock behind.
	assert.Len(t, s.Predictions, 1)
	require.NoError(t, s.CheckInvariants())
}

func TestLockShotRequiresPredictingPhase(t *testing.T) {
	t.Parallel()

	s := newTracking(t, 2, 2)
	assert.ErrorIs(t, s.LockShot(2), ErrWrongPhase)
}

func TestEnterPredictingOnlyWhileTracking(t *testing.T) {
	t.Parallel()

	s := NewSession("")
	assert.ErrorIs(t, s.EnterPredicting(), ErrWrongPhase)

	s = newTracking(t, 1, 1)
	require.NoError(t, s.EnterPredicting())
	assert.ErrorIs(t, s.EnterPredicting(), ErrWrongPhase)

	require.NoError(t, s.CancelPredicting())
	assert.Equal(t, PhaseTracking, s.Phase)
}

func TestResolveNoPendingPrediction(t *testing.T) {
	t.Parallel()

	s := newTracking(t, 2, 2)
	require.NoError(t, s.EnterPredicting())

	before := s.Clone()
	_, err := s.ResolvePrediction(Live)
	require.ErrorIs(t, err, ErrNoPendingPrediction)
	assert.Equal(t, before, s)
}

func TestResolveFIFO(t *testing.T) {
	t.Parallel()

	s := newTracking(t, 2, 2)
	require.NoError(t, s.EnterPredicting())
	require.NoError(t, s.LockShot(3))
	require.NoError(t, s.CancelPredicting())
	require.NoError(t, s.EnterPredicting())
	require.NoError(t, s.LockShot(4))

	// The engine resolves the oldest pending lock, not the newest.
	_, err := s.ResolvePrediction(Live)
	require.NoError(t, err)

	three := s.predictionAt(3)
	four := s.predictionAt(4)
	require.NotNil(t, three)
	require.NotNil(t, four)
	assert.True(t, three.Resolved)
	assert.Equal(t, Live, three.Outcome)
	assert.False(t, four.Resolved)
}

func TestResolveInvariantViolationRollsBack(t *testing.T) {
	t.Parallel()

	s := newTracking(t, 1, 2)
	_, err := s.RecordShot(Blank)
	require.NoError(t, err)
	require.NoError(t, s.EnterPredicting())
	require.NoError(t, s.LockShot(3))

	before := s.Clone()
	_, err = s.ResolvePrediction(Blank)
	require.ErrorIs(t, err, ErrInvariantViolation)

	// Both remaining counts and the ledger are untouched.
	assert.Equal(t, before, s)

	// The same lock still resolves fine with a type that has shells left.
	_, err = s.ResolvePrediction(Live)
	require.NoError(t, err)
}

func TestResolveCompletesGameWhenPoolEmpties(t *testing.T) {
	t.Parallel()

	s := newTracking(t, 1, 1)
	_, err := s.RecordShot(Blank)
	require.NoError(t, err)
	require.NoError(t, s.EnterPredicting())
	require.NoError(t, s.LockShot(2))

	// Revealing the last undetermined shell settles every shot.
	view, err := s.ResolvePrediction(Live)
	require.NoError(t, err)

	require.True(t, view.Completed)
	require.Len(t, view.Shots, 2)
	assert.Equal(t, ShotFired, view.Shots[0].State)
	assert.Equal(t, ShotPredicted, view.Shots[1].State)
	assert.Equal(t, Live, view.Shots[1].Outcome)
	assert.Equal(t, PhaseSetup, s.Phase)
}

func TestResolvedOutcomeNeverReassigned(t *testing.T) {
	t.Parallel()

	s := newTracking(t, 1, 3)
	require.NoError(t, s.EnterPredicting())
	require.NoError(t, s.LockShot(4))
	_, err := s.ResolvePrediction(Live)
	require.NoError(t, err)

	// A second resolve has nothing pending to act on.
	_, err = s.ResolvePrediction(Blank)
	assert.ErrorIs(t, err, ErrNoPendingPrediction)
	assert.Equal(t, Live, s.predictionAt(4).Outcome)
}

// The end-to-end peek scenario: lock the final shot up front, resolve
// it live, burn through the rest, then fire the locked shot with the
// wrong declared type and get the locked outcome plus completion.
func TestPeekEndToEnd(t *testing.T) {
	t.Parallel()

	s := newTracking(t, 1, 3)
	require.NoError(t, s.EnterPredicting())
	require.NoError(t, s.LockShot(4))

	_, err := s.ResolvePrediction(Live)
	require.NoError(t, err)
	assert.Equal(t, 2, s.RemainingLive, "resolve decrements immediately")
	assert.Equal(t, 1, s.RemainingBlank)

	for _, outcome := range []Outcome{Live, Blank, Live} {
		_, err := s.RecordShot(outcome)
		require.NoError(t, err)
		require.NoError(t, s.CheckInvariants())
	}

	view, err := s.RecordShot(Blank)
	require.NoError(t, err)
	require.True(t, view.Completed)
	assert.Equal(t, Live, view.Shots[3].Outcome, "locked outcome wins over the declared type")
	assert.Equal(t, ShotFired, view.Shots[3].State)
}
