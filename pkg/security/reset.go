package security

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	appErrors "warehouse-manager/pkg/errors"
)

const (
	resetKeyInfo = "password-reset"
	// tolerated clock drift for an iat slightly in the future
	resetClockSkew = 5 * time.Second
)

type resetClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ResetTokenSigner produces self-contained password-reset tokens. The signing
// key is derived from the session secret and a salt, so session tokens never
// verify as reset tokens and vice versa.
type ResetTokenSigner struct {
	key []byte
	now func() time.Time
}

func NewResetTokenSigner(secret, salt string, now func() time.Time) (*ResetTokenSigner, error) {
	if secret == "" {
		return nil, errors.New("reset signer: empty secret")
	}
	if now == nil {
		now = time.Now
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), []byte(salt), []byte(resetKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive reset key: %w", err)
	}

	return &ResetTokenSigner{key: key, now: now}, nil
}

func (s *ResetTokenSigner) GenerateResetToken(email string) (string, error) {
	claims := resetClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// VerifyResetToken returns the embedded email when the signature holds and
// now - iat <= maxAge.
func (s *ResetTokenSigner) VerifyResetToken(raw string, maxAge time.Duration) (string, error) {
	claims := &resetClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// age is checked below against maxAge
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", appErrors.ErrTokenInvalid, err)
	}

	if claims.Email == "" || claims.IssuedAt == nil {
		return "", fmt.Errorf("%w: missing email or iat", appErrors.ErrTokenInvalid)
	}

	age := s.now().Sub(claims.IssuedAt.Time)
	if age < -resetClockSkew {
		return "", fmt.Errorf("%w: issued in the future", appErrors.ErrTokenInvalid)
	}
	if age > maxAge {
		return "", appErrors.ErrTokenExpired
	}

	return claims.Email, nil
}
