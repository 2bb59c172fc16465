package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/budgetbook/backend/internal/images"
	"github.com/budgetbook/backend/internal/middleware"
	"github.com/budgetbook/backend/internal/models"
	"github.com/budgetbook/backend/internal/session"
)

const maxUploadBytes = 10 << 20

type accountUpdateForm struct {
	Name  string `validate:"required,max=20"`
	Email string `validate:"required,email"`
}

type accountView struct {
	Name   string
	Email  string
	Image  string
	Errors map[string]string
}

// ShowAccount renders the profile page.
func (h *Handlers) ShowAccount(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r)
	h.render(w, r, "account.html", http.StatusOK, accountView{
		Name:  account.Name,
		Email: account.Email,
		Image: account.Image,
	})
}

// AccountUpdateForm renders the profile update form pre-filled with the
// account's current values.
func (h *Handlers) AccountUpdateForm(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r)
	h.render(w, r, "account_update.html", http.StatusOK, accountView{
		Name:  account.Name,
		Email: account.Email,
		Image: account.Image,
	})
}

// UpdateAccount changes name, email and optionally the profile image.
func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.render(w, r, "account_update.html", http.StatusBadRequest, accountView{
			Name:   account.Name,
			Email:  account.Email,
			Image:  account.Image,
			Errors: map[string]string{"Form": "Invalid form submission"},
		})
		return
	}

	form := accountUpdateForm{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
	}
	view := accountView{Name: form.Name, Email: form.Email, Image: account.Image}

	if err := h.validator.Struct(&form); err != nil {
		view.Errors = h.fieldErrors(err)
		h.render(w, r, "account_update.html", http.StatusBadRequest, view)
		return
	}

	image := account.Image
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		saved, err := h.images.SaveProfileImage(file, header.Filename)
		if err != nil {
			if errors.Is(err, images.ErrUnsupportedFormat) {
				view.Errors = map[string]string{"Image": "Only jpg and png images are allowed"}
				h.render(w, r, "account_update.html", http.StatusBadRequest, view)
				return
			}
			log.Printf("[ACCOUNT] Image upload failed for account %d: %v", account.ID, err)
			view.Errors = map[string]string{"Image": "Could not process the uploaded image"}
			h.render(w, r, "account_update.html", http.StatusInternalServerError, view)
			return
		}
		image = saved
	}

	if err := h.accounts.UpdateProfile(r.Context(), account.ID, form.Name, form.Email, image); err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateName):
			view.Errors = map[string]string{"Name": "This name has been used. Choose another."}
		case errors.Is(err, models.ErrDuplicateEmail):
			view.Errors = map[string]string{"Email": "This email has been used. Choose another."}
		default:
			log.Printf("[ACCOUNT] Profile update failed for account %d: %v", account.ID, err)
			view.Errors = map[string]string{"Form": "An error occurred. Please try again."}
			h.render(w, r, "account_update.html", http.StatusInternalServerError, view)
			return
		}
		h.render(w, r, "account_update.html", http.StatusBadRequest, view)
		return
	}

	log.Printf("[ACCOUNT] Profile updated for account %d", account.ID)
	h.sessions.AddFlash(r.Context(), w, r, "Your account has been updated!", session.FlashSuccess)
	http.Redirect(w, r, "/account", http.StatusFound)
}
