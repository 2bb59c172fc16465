package handlers

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"

	"github.com/budgetbook/backend/internal/auth"
	"github.com/budgetbook/backend/internal/config"
	"github.com/budgetbook/backend/internal/images"
	mW "github.com/budgetbook/backend/internal/middleware"
	"github.com/budgetbook/backend/internal/session"
	"github.com/budgetbook/backend/internal/store"
	"github.com/budgetbook/backend/internal/token"
)

const templateDir = "../../web/templates"

type testApp struct {
	handlers *Handlers
	router   *chi.Mux
	dbMock   sqlmock.Sqlmock
	rdbMock  redismock.ClientMock
	mailer   *MockMailer
	hasher   *auth.Hasher
	tokens   *token.Service
}

func testHasher() *auth.Hasher {
	// Small argon2 parameters keep the tests fast.
	return auth.NewHasher(config.Argon2Config{
		Time:       1,
		Memory:     1024,
		Threads:    1,
		KeyLength:  32,
		SaltLength: 16,
	})
}

// newTestApp wires the handlers against sqlmock and redismock and mounts them
// on the same routes the server uses.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rdb, rdbMock := redismock.NewClientMock()

	accounts := store.NewAccountStore(db)
	entries := store.NewEntryStore(db)
	sessions := session.NewManager(rdb, config.SessionConfig{
		TTL:         24 * time.Hour,
		RememberTTL: 30 * 24 * time.Hour,
	})
	tokens := token.NewService("test-secret", time.Hour)
	hasher := testHasher()
	mail := &MockMailer{}

	imageStore, err := images.NewStore(t.TempDir())
	assert.NoError(t, err)

	h := New(accounts, entries, sessions, tokens, hasher, mail, imageStore,
		templateDir, config.ServerConfig{BaseURL: "http://localhost:8080"})

	r := chi.NewRouter()
	r.Use(h.Recoverer)

	r.Get("/", h.SignInForm)
	r.Post("/", h.SignIn)
	r.Get("/registration", h.RegistrationForm)
	r.Post("/registration", h.Register)
	r.Get("/logout", h.Logout)
	r.Get("/reset_password", h.ResetRequestForm)
	r.Post("/reset_password", h.ResetRequest)
	r.Get("/reset_password/{token}", h.ResetPasswordForm)
	r.Post("/reset_password/{token}", h.ResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(mW.RequireAccount(sessions, accounts))

		r.Get("/entries", h.ListEntries)
		r.Get("/new_entries", h.NewEntryForm)
		r.Post("/new_entries", h.CreateEntry)
		r.Get("/update/{id}", h.EditEntryForm)
		r.Post("/update/{id}", h.UpdateEntry)
		r.Get("/delete/{id}", h.DeleteEntry)
		r.Get("/account", h.ShowAccount)
		r.Get("/account_update", h.AccountUpdateForm)
		r.Post("/account_update", h.UpdateAccount)
	})

	r.NotFound(h.NotFound)

	return &testApp{
		handlers: h,
		router:   r,
		dbMock:   dbMock,
		rdbMock:  rdbMock,
		mailer:   mail,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// expectSession queues the mocks that resolve a session cookie to account 1.
func (a *testApp) expectSession(sessionToken string, accountID int, name, email string) {
	a.rdbMock.ExpectGet("session:" + sessionToken).SetVal(strconv.Itoa(accountID))
	a.dbMock.ExpectQuery("SELECT id, name, email, password_hash, image, created_at FROM accounts WHERE id").
		WithArgs(accountID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "image", "created_at"}).
			AddRow(accountID, name, email, "hash", "default.jpg", time.Now()))
}

// expectFlash queues the mocks for a single AddFlash on a fresh client.
func (a *testApp) expectFlash() {
	a.rdbMock.Regexp().ExpectRPush(`flash:[0-9a-f]{64}`, `.*`).SetVal(1)
	a.rdbMock.Regexp().ExpectExpire(`flash:[0-9a-f]{64}`, 10*time.Minute).SetVal(true)
}

func sessionCookie(token string) *http.Cookie {
	return &http.Cookie{Name: session.CookieName, Value: token}
}
