package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/budgetbook/backend/internal/models"
	"github.com/budgetbook/backend/internal/session"
	"github.com/budgetbook/backend/internal/store"
)

// Context key type to avoid collisions.
type contextKey string

const accountContextKey contextKey = "account"

// AccountFromContext returns the authenticated account, or nil.
func AccountFromContext(r *http.Request) *models.Account {
	if account, ok := r.Context().Value(accountContextKey).(*models.Account); ok {
		return account
	}
	return nil
}

// RequireAccount gates handlers behind an authenticated session. Anonymous
// callers are redirected to the sign-in page with the original path preserved
// in the next parameter, so sign-in can send them back.
func RequireAccount(sessions *session.Manager, accounts *store.AccountStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.TokenFromRequest(r)
			id, ok := sessions.AccountID(r.Context(), token)
			if !ok {
				redirectToSignIn(w, r)
				return
			}

			account, err := accounts.GetByID(r.Context(), id)
			if err != nil {
				// Session points at a vanished account; tear it down.
				sessions.Destroy(r.Context(), token)
				sessions.ClearCookie(w)
				redirectToSignIn(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), accountContextKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func redirectToSignIn(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/?next="+url.QueryEscape(target), http.StatusFound)
}
