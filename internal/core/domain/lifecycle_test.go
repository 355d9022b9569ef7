package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus(t *testing.T) {
	cases := []struct {
		from   Status
		action Action
		want   Status
	}{
		{StatusPendingApproval, ActionApprove, StatusActive},
		{StatusPendingApproval, ActionReject, StatusEnded},
		{StatusActive, ActionPause, StatusPaused},
		{StatusPaused, ActionResume, StatusActive},
		{StatusPendingApproval, ActionExpire, StatusEnded},
		{StatusActive, ActionExpire, StatusEnded},
		{StatusPaused, ActionExpire, StatusEnded},
	}
	for _, tc := range cases {
		got, err := NextStatus(tc.from, tc.action)
		require.NoError(t, err, "%s %s", tc.from, tc.action)
		assert.Equal(t, tc.want, got)
	}
}

func TestNextStatusRejectsIllegalPairs(t *testing.T) {
	illegal := []struct {
		from   Status
		action Action
	}{
		{StatusActive, ActionApprove},
		{StatusActive, ActionResume},
		{StatusPaused, ActionPause},
		{StatusPaused, ActionApprove},
		{StatusPendingApproval, ActionPause},
		{StatusEnded, ActionResume},
		{StatusEnded, ActionApprove},
		{StatusEnded, ActionExpire},
		{StatusActive, ActionDelete},
	}
	for _, tc := range illegal {
		_, err := NextStatus(tc.from, tc.action)
		assert.ErrorIs(t, err, ErrInvalidState, "%s %s", tc.from, tc.action)
	}
}

func TestCanDelete(t *testing.T) {
	for _, s := range []Status{StatusPendingApproval, StatusActive, StatusPaused} {
		assert.NoError(t, CanDelete(s), s)
	}
	assert.ErrorIs(t, CanDelete(StatusEnded), ErrInvalidState)
	assert.ErrorIs(t, CanDelete("ARCHIVED"), ErrInvalidState)
}

func TestLegalTransition(t *testing.T) {
	assert.True(t, LegalTransition("", StatusPendingApproval))
	assert.False(t, LegalTransition("", StatusActive))
	assert.True(t, LegalTransition(StatusPaused, StatusEnded))
	assert.False(t, LegalTransition(StatusEnded, StatusActive))
	assert.False(t, LegalTransition(StatusPaused, StatusPaused))
}
