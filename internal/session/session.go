package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/budgetbook/backend/internal/config"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "session"

	flashCookieName = "flash"
	flashTTL        = 10 * time.Minute
)

// Flash message categories.
const (
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashWarning = "warning"
)

// Flash is a one-shot notification shown to the user after a redirect.
type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// Manager stores sessions and flash messages in Redis. A session maps a
// random token to an account id with a TTL; "remember me" gets a longer TTL
// and a persistent cookie instead of a browser-session cookie.
type Manager struct {
	redis       *redis.Client
	ttl         time.Duration
	rememberTTL time.Duration
	secure      bool
}

func NewManager(rdb *redis.Client, cfg config.SessionConfig) *Manager {
	return &Manager{
		redis:       rdb,
		ttl:         cfg.TTL,
		rememberTTL: cfg.RememberTTL,
		secure:      cfg.Secure,
	}
}

func sessionKey(token string) string { return "session:" + token }
func flashKey(key string) string     { return "flash:" + key }

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Create establishes a session for the account and returns its token.
func (m *Manager) Create(ctx context.Context, accountID int, remember bool) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	ttl := m.ttl
	if remember {
		ttl = m.rememberTTL
	}

	if err := m.redis.Set(ctx, sessionKey(token), accountID, ttl).Err(); err != nil {
		return "", fmt.Errorf("error storing session: %w", err)
	}
	return token, nil
}

// AccountID resolves a session token to the account it belongs to.
func (m *Manager) AccountID(ctx context.Context, token string) (int, bool) {
	if token == "" {
		return 0, false
	}
	id, err := m.redis.Get(ctx, sessionKey(token)).Int()
	if err != nil {
		return 0, false
	}
	return id, true
}

// Destroy removes the session. A missing token is not an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.redis.Del(ctx, sessionKey(token)).Err()
}

// SetCookie writes the session cookie. Without remember-me the cookie has no
// MaxAge and ends with the browser session.
func (m *Manager) SetCookie(w http.ResponseWriter, token string, remember bool) {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.MaxAge = int(m.rememberTTL.Seconds())
	}
	http.SetCookie(w, cookie)
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest extracts the session token from the request cookie.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// AddFlash queues a one-shot message for the client. Messages are keyed by a
// random id carried in a short-lived cookie, so anonymous flows (registration,
// password reset) get flashes too.
func (m *Manager) AddFlash(ctx context.Context, w http.ResponseWriter, r *http.Request, message, category string) {
	key := ""
	if cookie, err := r.Cookie(flashCookieName); err == nil {
		key = cookie.Value
	}
	if key == "" {
		generated, err := generateToken()
		if err != nil {
			return
		}
		key = generated
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookieName,
			Value:    key,
			Path:     "/",
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	payload, err := json.Marshal(Flash{Message: message, Category: category})
	if err != nil {
		return
	}
	m.redis.RPush(ctx, flashKey(key), payload)
	m.redis.Expire(ctx, flashKey(key), flashTTL)
}

// PopFlashes returns and clears any queued messages for the client.
func (m *Manager) PopFlashes(ctx context.Context, w http.ResponseWriter, r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	values, err := m.redis.LRange(ctx, flashKey(cookie.Value), 0, -1).Result()
	if err != nil || len(values) == 0 {
		return nil
	}
	m.redis.Del(ctx, flashKey(cookie.Value))

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	flashes := make([]Flash, 0, len(values))
	for _, v := range values {
		var f Flash
		if err := json.Unmarshal([]byte(v), &f); err == nil {
			flashes = append(flashes, f)
		}
	}
	return flashes
}
