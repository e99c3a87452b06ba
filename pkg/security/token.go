package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	appErrors "warehouse-manager/pkg/errors"
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Kind     string `json:"kind"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.ErrTokenInvalid
	}
	return id, nil
}

// TokenManager issues and verifies HS256 session tokens. It holds no state
// besides the key and the clock.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*TokenManager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

func NewTokenManager(secret, issuer string, accessTTL, refreshTTL time.Duration, opts ...Option) *TokenManager {
	tm := &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

func (tm *TokenManager) IssueAccessToken(userID int64, username, email string) (string, time.Time, error) {
	return tm.issue(userID, username, email, KindAccess, tm.accessTTL)
}

func (tm *TokenManager) IssueRefreshToken(userID int64, username string) (string, time.Time, error) {
	return tm.issue(userID, username, "", KindRefresh, tm.refreshTTL)
}

func (tm *TokenManager) issue(userID int64, username, email, kind string, ttl time.Duration) (string, time.Time, error) {
	now := tm.now()
	claims := Claims{
		Username: username,
		Email:    email,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}

	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks signature, algorithm, issuer, expiry and kind. Expired tokens
// with a good signature yield ErrTokenExpired; every other failure is ErrTokenInvalid.
func (tm *TokenManager) Verify(raw, expectedKind string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenInvalidIssuer) {
			return nil, fmt.Errorf("%w: %v", appErrors.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", appErrors.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, appErrors.ErrTokenInvalid
	}

	if claims.Kind != expectedKind {
		return nil, fmt.Errorf("%w: expected %s token, got %q", appErrors.ErrTokenInvalid, expectedKind, claims.Kind)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", appErrors.ErrTokenInvalid)
	}

	return claims, nil
}
