package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "warehouse-manager/pkg/errors"
)

func newTestSigner(t *testing.T, clock *fakeClock) *ResetTokenSigner {
	t.Helper()
	s, err := NewResetTokenSigner("test-secret", "password-reset", clock.Now)
	require.NoError(t, err)
	return s
}

func TestResetToken_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: epoch}
	s := newTestSigner(t, clock)

	token, err := s.GenerateResetToken("a@x.com")
	require.NoError(t, err)

	email, err := s.VerifyResetToken(token, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestResetToken_Window(t *testing.T) {
	tests := []struct {
		name    string
		age     time.Duration
		wantErr error
	}{
		{name: "fresh", age: 0},
		{name: "one second before max age", age: time.Hour - time.Second},
		{name: "exactly max age", age: time.Hour},
		{name: "one second past max age", age: time.Hour + time.Second, wantErr: appErrors.ErrTokenExpired},
		{name: "issued in the future", age: -time.Minute, wantErr: appErrors.ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{t: epoch}
			s := newTestSigner(t, clock)

			token, err := s.GenerateResetToken("a@x.com")
			require.NoError(t, err)

			clock.Advance(tt.age)
			email, err := s.VerifyResetToken(token, time.Hour)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "a@x.com", email)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResetToken_KeySeparation(t *testing.T) {
	clock := &fakeClock{t: epoch}
	s := newTestSigner(t, clock)
	tm := newTestManager(clock)

	session, _, err := tm.IssueAccessToken(1, "alice", "a@x.com")
	require.NoError(t, err)
	_, err = s.VerifyResetToken(session, time.Hour)
	assert.ErrorIs(t, err, appErrors.ErrTokenInvalid)

	otherSalt, err := NewResetTokenSigner("test-secret", "another-salt", clock.Now)
	require.NoError(t, err)
	token, err := otherSalt.GenerateResetToken("a@x.com")
	require.NoError(t, err)
	_, err = s.VerifyResetToken(token, time.Hour)
	assert.ErrorIs(t, err, appErrors.ErrTokenInvalid)

	reset, err := s.GenerateResetToken("a@x.com")
	require.NoError(t, err)
	_, err = tm.Verify(reset, KindAccess)
	assert.ErrorIs(t, err, appErrors.ErrTokenInvalid)
}

func TestResetToken_MissingEmail(t *testing.T) {
	s := newTestSigner(t, &fakeClock{t: epoch})

	token, err := s.GenerateResetToken("")
	require.NoError(t, err)

	_, err = s.VerifyResetToken(token, time.Hour)
	assert.ErrorIs(t, err, appErrors.ErrTokenInvalid)
}

func TestNewResetTokenSigner_EmptySecret(t *testing.T) {
	_, err := NewResetTokenSigner("", "salt", nil)
	assert.Error(t, err)
}
