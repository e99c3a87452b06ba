package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "warehouse-manager/pkg/errors"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(clock *fakeClock) *TokenManager {
	return NewTokenManager("test-secret", "warehouse-manager", time.Hour, 30*24*time.Hour, WithClock(clock.Now))
}

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	clock := &fakeClock{t: epoch}
	tm := newTestManager(clock)

	raw, exp, err := tm.IssueAccessToken(42, "alice", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(time.Hour), exp)

	claims, err := tm.Verify(raw, KindAccess)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_ExpiryBoundary(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		ttl     time.Duration
		offset  time.Duration
		wantErr error
	}{
		{name: "access one second before expiry", kind: KindAccess, ttl: time.Hour, offset: -time.Second},
		{name: "access one second after expiry", kind: KindAccess, ttl: time.Hour, offset: time.Second, wantErr: appErrors.ErrTokenExpired},
		{name: "refresh one second before expiry", kind: KindRefresh, ttl: 30 * 24 * time.Hour, offset: -time.Second},
		{name: "refresh one second after expiry", kind: KindRefresh, ttl: 30 * 24 * time.Hour, offset: time.Second, wantErr: appErrors.ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{t: epoch}
			tm := newTestManager(clock)

			var raw string
			var err error
			if tt.kind == KindAccess {
				raw, _, err = tm.IssueAccessToken(1, "alice", "a@x.com")
			} else {
				raw, _, err = tm.IssueRefreshToken(1, "alice")
			}
			require.NoError(t, err)

			clock.Advance(tt.ttl + tt.offset)
			_, err = tm.Verify(raw, tt.kind)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenManager_KindSeparation(t *testing.T) {
	tm := newTestManager(&fakeClock{t: epoch})

	access, _, err := tm.IssueAccessToken(1, "alice", "a@x.com")
	require.NoError(t, err)
	refresh, _, err := tm.IssueRefreshToken(1, "alice")
	require.NoError(t, err)

	_, err = tm.Verify(refresh, KindAccess)
	assert.ErrorIs(t, err, appErrors.ErrTokenInvalid)

	_, err = tm.Verify(access, KindRefresh)
	assert.ErrorIs(t, err, appErrors.ErrTokenInvalid)
}

func TestTokenManager_Rejects(t *testing.T) {
	clock := &fakeClock{t: epoch}
	tm := newTestManager(clock)

	valid, _, err := tm.IssueAccessToken(1, "alice", "a@x.com")
	require.NoError(t, err)

	otherKey := NewTokenManager("other-secret", "warehouse-manager", time.Hour, time.Hour, WithClock(clock.Now))
	foreign, _, err := otherKey.IssueAccessToken(1, "alice", "a@x.com")
	require.NoError(t, err)

	otherIssuer := NewTokenManager("test-secret", "someone-else", time.Hour, time.Hour, WithClock(clock.Now))
	wrongIssuer, _, err := otherIssuer.IssueAccessToken(1, "alice", "a@x.com")
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Kind: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "warehouse-manager",
			ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Kind: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "warehouse-manager",
			ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Kind: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "warehouse-manager",
			ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Kind: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "1",
			Issuer:  "warehouse-manager",
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"garbage":      "not-a-token",
		"empty":        "",
		"foreign key":  foreign,
		"wrong issuer": wrongIssuer,
		"tampered":     tampered,
		"alg none":     noneToken,
		"alg hs512":    hs512,
		"bad subject":  badSubject,
		"no expiry":    noExpiry,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tm.Verify(raw, KindAccess)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrTokenInvalid), "got %v", err)
		})
	}
}
