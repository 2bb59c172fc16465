package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/budgetbook/backend/internal/session"
)

type resetRequestForm struct {
	Email string `validate:"required,email"`
}

type resetRequestView struct {
	Email  string
	Errors map[string]string
}

type passwordUpdateForm struct {
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

type passwordUpdateView struct {
	Token  string
	Errors map[string]string
}

// ResetRequestForm renders the "send me a reset link" page.
func (h *Handlers) ResetRequestForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "reset_request.html", http.StatusOK, resetRequestView{})
}

// ResetRequest issues a signed reset token and mails it to the account.
func (h *Handlers) ResetRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "reset_request.html", http.StatusBadRequest,
			resetRequestView{Errors: map[string]string{"Form": "Invalid form submission"}})
		return
	}

	form := resetRequestForm{Email: r.PostFormValue("email")}
	view := resetRequestView{Email: form.Email}

	if err := h.validator.Struct(&form); err != nil {
		view.Errors = h.fieldErrors(err)
		h.render(w, r, "reset_request.html", http.StatusBadRequest, view)
		return
	}

	account, err := h.accounts.GetByEmail(r.Context(), form.Email)
	if err != nil {
		view.Errors = map[string]string{"Email": "There is no account registered with this email address. Sign up."}
		h.render(w, r, "reset_request.html", http.StatusBadRequest, view)
		return
	}

	resetToken, err := h.tokens.Issue(account.ID)
	if err != nil {
		log.Printf("[MAIL] Reset token issuance failed for account %d: %v", account.ID, err)
		h.sessions.AddFlash(r.Context(), w, r, "An error occurred. Please try again.", session.FlashDanger)
		h.render(w, r, "reset_request.html", http.StatusInternalServerError, view)
		return
	}

	// Delivery is fire and forget: a failed send is logged but the caller
	// sees the same generic confirmation either way.
	resetURL := h.baseURL + "/reset_password/" + resetToken
	if err := h.mail.SendPasswordReset(account.Email, resetURL); err != nil {
		log.Printf("[MAIL] Reset mail delivery failed for account %d: %v", account.ID, err)
	}

	h.sessions.AddFlash(r.Context(), w, r,
		"An email has been sent to you with instructions on how to reset your password.", session.FlashInfo)
	http.Redirect(w, r, "/", http.StatusFound)
}

// ResetPasswordForm verifies the token from the mailed link and renders the
// new-password form. Any verification failure sends the caller back to the
// request flow with a generic message.
func (h *Handlers) ResetPasswordForm(w http.ResponseWriter, r *http.Request) {
	resetToken := chi.URLParam(r, "token")
	if _, ok := h.tokens.Verify(resetToken); !ok {
		h.sessions.AddFlash(r.Context(), w, r, "The request is invalid or has expired", session.FlashWarning)
		http.Redirect(w, r, "/reset_password", http.StatusFound)
		return
	}
	h.render(w, r, "reset_token.html", http.StatusOK, passwordUpdateView{Token: resetToken})
}

// ResetPassword replaces the account's password. The token is the sole
// authorization; no old password and no session are required.
func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	resetToken := chi.URLParam(r, "token")
	accountID, ok := h.tokens.Verify(resetToken)
	if !ok {
		h.sessions.AddFlash(r.Context(), w, r, "The request is invalid or has expired", session.FlashWarning)
		http.Redirect(w, r, "/reset_password", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.render(w, r, "reset_token.html", http.StatusBadRequest,
			passwordUpdateView{Token: resetToken, Errors: map[string]string{"Form": "Invalid form submission"}})
		return
	}

	form := passwordUpdateForm{
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	if err := h.validator.Struct(&form); err != nil {
		h.render(w, r, "reset_token.html", http.StatusBadRequest,
			passwordUpdateView{Token: resetToken, Errors: h.fieldErrors(err)})
		return
	}

	hash, err := h.hasher.Hash(form.Password)
	if err != nil {
		log.Printf("[AUTH] Password hashing failed: %v", err)
		h.render(w, r, "errors.html", http.StatusInternalServerError, errorData{Code: http.StatusInternalServerError})
		return
	}

	if err := h.accounts.SetPassword(r.Context(), accountID, hash); err != nil {
		log.Printf("[AUTH] Password replacement failed for account %d: %v", accountID, err)
		h.render(w, r, "errors.html", http.StatusInternalServerError, errorData{Code: http.StatusInternalServerError})
		return
	}

	log.Printf("[AUTH] Password reset completed for account %d", accountID)
	h.sessions.AddFlash(r.Context(), w, r, "Your password has been updated! Can log in", session.FlashSuccess)
	http.Redirect(w, r, "/", http.StatusFound)
}
