// Package security implements the credential hasher.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

const (
	saltLen = 16 // bytes
	keyLen  = 32 // bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// Params is the argon2id work factor. It is fixed at process start.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultParams follows the OWASP argon2id recommendation.
var DefaultParams = Params{Time: 1, MemoryKiB: 64 * 1024, Threads: 4}

// Argon2idHasher derives password hashes with argon2id and an explicit salt.
type Argon2idHasher struct {
	params Params
}

// NewArgon2idHasher creates a hasher; zero fields fall back to DefaultParams.
func NewArgon2idHasher(p Params) *Argon2idHasher {
	if p.Time == 0 {
		p.Time = DefaultParams.Time
	}
	if p.MemoryKiB == 0 {
		p.MemoryKiB = DefaultParams.MemoryKiB
	}
	if p.Threads == 0 {
		p.Threads = DefaultParams.Threads
	}
	return &Argon2idHasher{params: p}
}

// GenerateSalt returns a fresh random salt, base64 encoded.
func (h *Argon2idHasher) GenerateSalt() (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}
	return base64.RawStdEncoding.EncodeToString(salt), nil
}

// Hash derives the key for password and salt. The result is deterministic for
// a given password, salt and Params.
func (h *Argon2idHasher) Hash(password, salt string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	key, err := h.derive(password, salt)
	if err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(key), nil
}

// Verify reports whether password hashed with salt equals hash.
func (h *Argon2idHasher) Verify(password, salt, hash string) (bool, error) {
	expected, err := base64.RawStdEncoding.DecodeString(hash)
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	computed, err := h.derive(password, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

func (h *Argon2idHasher) derive(password, salt string) ([]byte, error) {
	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_SALT").Wrap(err)
	}
	return argon2.IDKey([]byte(password), rawSalt, h.params.Time, h.params.MemoryKiB, h.params.Threads, keyLen), nil
}
