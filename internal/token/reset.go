package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultResetTTL is how long a password-reset token stays valid.
const DefaultResetTTL = 1800 * time.Second

// Service issues and verifies signed password-reset tokens. Verification is
// stateless: there is no server-side token table and no revocation list, which
// is acceptable because tokens are short-lived and single-purpose.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token service. A zero ttl falls back to DefaultResetTTL;
// a negative ttl is kept as-is so tokens can be issued already expired.
func NewService(secret string, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = DefaultResetTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue produces a signed token binding the account id and an expiry.
func (s *Service) Issue(accountID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": accountID,
		"iat":     now.Unix(),
		"exp":     now.Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the bound account id.
// Any failure (malformed, expired, forged) degrades to a lookup miss.
func (s *Service) Verify(tokenString string) (int, bool) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false
	}
	return int(id), true
}
