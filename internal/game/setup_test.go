package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupPartialPair(t *testing.T) {
	t.Parallel()

	s := NewSession("en")

	require.NoError(t, s.SetBlankCount(3))
	assert.Equal(t, PhaseSetup, s.Phase, "one value alone must not start the game")
	assert.Equal(t, 3, s.SetupBlank)

	// Resubmitting before the pair completes overwrites the partial.
	require.NoError(t, s.SetBlankCount(2))
	assert.Equal(t, 2, s.SetupBlank)

	require.NoError(t, s.SetLiveCount(4))
	assert.Equal(t, PhaseTracking, s.Phase)
	assert.Equal(t, 2, s.TotalBlank)
	assert.Equal(t, 4, s.TotalLive)
	assert.Equal(t, 6, s.TotalShots)
	assert.Equal(t, 2, s.RemainingBlank)
	assert.Equal(t, 4, s.RemainingLive)
	assert.Equal(t, 1, s.CurrentShot)
	assert.Empty(t, s.History)
	assert.Empty(t, s.Predictions)
	require.NoError(t, s.CheckInvariants())
}

func TestSetupCombined(t *testing.T) {
	t.Parallel()

	s := NewSession("")
	require.NoError(t, s.SetCounts(1, 3))

	assert.Equal(t, PhaseTracking, s.Phase)
	assert.Equal(t, 4, s.TotalShots)
	assert.Equal(t, s.TotalShots, s.RemainingBlank+s.RemainingLive)
	assert.Empty(t, s.History)
}

func TestSetupValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		apply func(s *Session) error
	}{
		{"zero blank", func(s *Session) error { return s.SetBlankCount(0) }},
		{"negative live", func(s *Session) error { return s.SetLiveCount(-2) }},
		{"combined zero live", func(s *Session) error { return s.SetCounts(2, 0) }},
		{"combined zero blank", func(s *Session) error { return s.SetCounts(0, 2) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("en")
			require.NoError(t, s.SetLiveCount(3))

			err := tt.apply(s)
			require.ErrorIs(t, err, ErrValidation)

			// Prior partial state stays untouched.
			assert.Equal(t, PhaseSetup, s.Phase)
			assert.Equal(t, 3, s.SetupLive)
		})
	}
}

func TestSetupRejectedMidGame(t *testing.T) {
	t.Parallel()

	s := NewSession("")
	require.NoError(t, s.SetCounts(2, 2))

	assert.ErrorIs(t, s.SetBlankCount(1), ErrWrongPhase)
	assert.ErrorIs(t, s.SetCounts(1, 1), ErrWrongPhase)
}

func TestClearGamePreservesLanguage(t *testing.T) {
	t.Parallel()

	s := NewSession("ru")
	require.NoError(t, s.SetCounts(2, 2))

	s.ClearGame()
	assert.Equal(t, "ru", s.Language)
	assert.Equal(t, PhaseSetup, s.Phase)
	assert.Zero(t, s.TotalShots)
	assert.Empty(t, s.History)
}
