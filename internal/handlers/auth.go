package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/budgetbook/backend/internal/models"
	"github.com/budgetbook/backend/internal/session"
)

type registrationForm struct {
	Name            string `validate:"required,max=20"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

type registrationView struct {
	Name   string
	Email  string
	Errors map[string]string
}

type loginView struct {
	Email string
	Next  string
}

// currentAccount resolves the session cookie outside the auth middleware,
// for routes that behave differently when the caller is already signed in.
func (h *Handlers) currentAccount(r *http.Request) *models.Account {
	token := session.TokenFromRequest(r)
	id, ok := h.sessions.AccountID(r.Context(), token)
	if !ok {
		return nil
	}
	account, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		return nil
	}
	return account
}

// RegistrationForm renders the sign-up page.
func (h *Handlers) RegistrationForm(w http.ResponseWriter, r *http.Request) {
	if h.currentAccount(r) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, "registration.html", http.StatusOK, registrationView{})
}

// Register creates a new account from the sign-up form.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if h.currentAccount(r) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.render(w, r, "registration.html", http.StatusBadRequest,
			registrationView{Errors: map[string]string{"Form": "Invalid form submission"}})
		return
	}

	form := registrationForm{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	view := registrationView{Name: form.Name, Email: form.Email}

	if err := h.validator.Struct(&form); err != nil {
		view.Errors = h.fieldErrors(err)
		h.render(w, r, "registration.html", http.StatusBadRequest, view)
		return
	}

	hash, err := h.hasher.Hash(form.Password)
	if err != nil {
		log.Printf("[AUTH] Password hashing failed: %v", err)
		h.sessions.AddFlash(r.Context(), w, r, "An error occurred. Please try again.", session.FlashDanger)
		h.render(w, r, "registration.html", http.StatusInternalServerError, view)
		return
	}

	if _, err := h.accounts.Create(r.Context(), form.Name, form.Email, hash); err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateName):
			view.Errors = map[string]string{"Name": "This name has been used. Choose another."}
		case errors.Is(err, models.ErrDuplicateEmail):
			view.Errors = map[string]string{"Email": "This email has been used. Choose another."}
		default:
			log.Printf("[AUTH] Registration failed: %v", err)
			view.Errors = map[string]string{"Form": "An error occurred. Please try again."}
			h.render(w, r, "registration.html", http.StatusInternalServerError, view)
			return
		}
		h.render(w, r, "registration.html", http.StatusBadRequest, view)
		return
	}

	log.Printf("[AUTH] Account registered for %s", form.Email)
	h.sessions.AddFlash(r.Context(), w, r, "You have successfully registered! You can log in!", session.FlashSuccess)
	http.Redirect(w, r, "/", http.StatusFound)
}

// SignInForm renders the sign-in page.
func (h *Handlers) SignInForm(w http.ResponseWriter, r *http.Request) {
	if h.currentAccount(r) != nil {
		http.Redirect(w, r, "/entries", http.StatusFound)
		return
	}
	h.render(w, r, "login.html", http.StatusOK, loginView{Next: r.URL.Query().Get("next")})
}

// SignIn authenticates a credential pair and establishes a session. The
// failure message is identical for an unknown email and a wrong password.
func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	if h.currentAccount(r) != nil {
		http.Redirect(w, r, "/entries", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", http.StatusBadRequest, loginView{})
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	remember := r.PostFormValue("remember") != ""
	next := r.URL.Query().Get("next")

	account, err := h.accounts.GetByEmail(r.Context(), email)
	if err != nil || !h.hasher.Verify(password, account.PasswordHash) {
		log.Printf("[AUTH] Failed sign-in attempt from %s", r.RemoteAddr)
		h.sessions.AddFlash(r.Context(), w, r, "Login failed. Check your email and password", session.FlashDanger)
		h.render(w, r, "login.html", http.StatusUnauthorized, loginView{Email: email, Next: next})
		return
	}

	sessionToken, err := h.sessions.Create(r.Context(), account.ID, remember)
	if err != nil {
		log.Printf("[AUTH] Session creation failed for account %d: %v", account.ID, err)
		h.sessions.AddFlash(r.Context(), w, r, "An error occurred. Please try again.", session.FlashDanger)
		h.render(w, r, "login.html", http.StatusInternalServerError, loginView{Email: email, Next: next})
		return
	}
	h.sessions.SetCookie(w, sessionToken, remember)

	log.Printf("[AUTH] Sign-in successful for account %d", account.ID)
	http.Redirect(w, r, safeNext(next), http.StatusFound)
}

// Logout tears down the session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	token := session.TokenFromRequest(r)
	if err := h.sessions.Destroy(r.Context(), token); err != nil {
		log.Printf("[AUTH] Session teardown failed: %v", err)
	}
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}
