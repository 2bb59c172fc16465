package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/budgetbook/backend/internal/config"
)

// Hasher derives and verifies argon2id password hashes. The stored format is
// "base64(salt)$base64(hash)", so each hash carries its own salt.
type Hasher struct {
	cfg config.Argon2Config
}

func NewHasher(cfg config.Argon2Config) *Hasher {
	return &Hasher{cfg: cfg}
}

func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.cfg.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt,
		h.cfg.Time, h.cfg.Memory, h.cfg.Threads, h.cfg.KeyLength)
	return fmt.Sprintf("%s$%s",
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(hash)), nil
}

// Verify reports whether password matches the stored hash. It never reveals
// why a mismatch occurred; the comparison itself is constant time.
func (h *Hasher) Verify(password, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt,
		h.cfg.Time, h.cfg.Memory, h.cfg.Threads, h.cfg.KeyLength)
	return subtle.ConstantTimeCompare(hash, computed) == 1
}
