package security

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"

	appErrors "warehouse-manager/pkg/errors"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"

	argon2idPrefix = "$argon2id$"
)

// PasswordHasher hashes and verifies plaintext passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

var argonParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher writes new hashes with the configured algorithm but verifies hashes
// from either algorithm, chosen by the stored hash prefix.
type Hasher struct {
	algorithm  string
	bcryptCost int
	argon      *argon2id.Params
}

func NewHasher(algorithm string, bcryptCost int) (*Hasher, error) {
	switch algorithm {
	case "", AlgorithmBcrypt:
		algorithm = AlgorithmBcrypt
		if bcryptCost == 0 {
			bcryptCost = bcrypt.DefaultCost
		}
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case AlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("unsupported password hash algorithm %q", algorithm)
	}

	return &Hasher{algorithm: algorithm, bcryptCost: bcryptCost, argon: argonParams}, nil
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	if h.algorithm == AlgorithmArgon2id {
		hash, err := argon2id.CreateHash(plaintext, h.argon)
		if err != nil {
			return "", fmt.Errorf("argon2id hash: %w", err)
		}
		return hash, nil
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", appErrors.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(bytes), nil
}

// Verify never errors: a malformed stored hash simply does not match.
func (h *Hasher) Verify(plaintext, hash string) bool {
	if strings.HasPrefix(hash, argon2idPrefix) {
		ok, err := argon2id.ComparePasswordAndHash(plaintext, hash)
		return err == nil && ok
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
