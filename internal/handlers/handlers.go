package handlers

import (
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/budgetbook/backend/internal/auth"
	"github.com/budgetbook/backend/internal/config"
	"github.com/budgetbook/backend/internal/images"
	"github.com/budgetbook/backend/internal/mailer"
	"github.com/budgetbook/backend/internal/middleware"
	"github.com/budgetbook/backend/internal/models"
	"github.com/budgetbook/backend/internal/session"
	"github.com/budgetbook/backend/internal/store"
	"github.com/budgetbook/backend/internal/token"
)

// Handlers holds the dependencies for all HTTP handlers. Everything is
// injected once at process start; there are no package-level singletons.
type Handlers struct {
	accounts  *store.AccountStore
	entries   *store.EntryStore
	sessions  *session.Manager
	tokens    *token.Service
	hasher    *auth.Hasher
	mail      mailer.Sender
	images    *images.Store
	validator *validator.Validate

	templateDir string
	baseURL     string
}

func New(
	accounts *store.AccountStore,
	entries *store.EntryStore,
	sessions *session.Manager,
	tokens *token.Service,
	hasher *auth.Hasher,
	mail mailer.Sender,
	imageStore *images.Store,
	templateDir string,
	server config.ServerConfig,
) *Handlers {
	return &Handlers{
		accounts:    accounts,
		entries:     entries,
		sessions:    sessions,
		tokens:      tokens,
		hasher:      hasher,
		mail:        mail,
		images:      imageStore,
		validator:   validator.New(),
		templateDir: templateDir,
		baseURL:     strings.TrimRight(server.BaseURL, "/"),
	}
}

// page is the envelope passed to every template.
type page struct {
	Account *models.Account
	Flashes []session.Flash
	Data    any
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, view string, status int, data any) {
	tmpl, err := template.ParseFiles(
		filepath.Join(h.templateDir, "base.html"),
		filepath.Join(h.templateDir, view),
	)
	if err != nil {
		log.Printf("[RENDER] Template %s failed to parse: %v", view, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	p := page{
		Account: middleware.AccountFromContext(r),
		Flashes: h.sessions.PopFlashes(r.Context(), w, r),
		Data:    data,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", p); err != nil {
		log.Printf("[RENDER] Template %s failed to execute: %v", view, err)
	}
}

// errorData is what the error page template renders.
type errorData struct {
	Code int
}

// NotFound renders the 404 page; it is mounted as the router's fallback.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "errors.html", http.StatusNotFound, errorData{Code: http.StatusNotFound})
}

// Recoverer converts panics into a rendered 500 page without leaking any
// internal detail to the caller.
func (h *Handlers) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[PANIC] %s %s: %v", r.Method, r.URL.Path, rec)
				h.render(w, r, "errors.html", http.StatusInternalServerError,
					errorData{Code: http.StatusInternalServerError})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// fieldErrors maps validator failures to user-facing, per-field messages.
func (h *Handlers) fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["Form"] = "Invalid form submission"
		return out
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "This field is required"
		case "email":
			out[fe.Field()] = "Invalid address"
		case "eqfield":
			out[fe.Field()] = "Password must match."
		case "min":
			out[fe.Field()] = "Value is too small"
		case "max":
			out[fe.Field()] = "Value is too long"
		default:
			out[fe.Field()] = "Invalid value"
		}
	}
	return out
}

// safeNext returns the post-login redirect target, accepting only relative
// paths so the parameter cannot be abused as an open redirect. Browsers treat
// a backslash after the leading slash like "//", so that is rejected too.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") &&
		!strings.HasPrefix(next, "//") &&
		!strings.HasPrefix(next, "/\\") {
		return next
	}
	return "/entries"
}
