package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/budgetbook/backend/internal/middleware"
	"github.com/budgetbook/backend/internal/models"
	"github.com/budgetbook/backend/internal/session"
	"github.com/budgetbook/backend/internal/store"
)

type entriesView struct {
	Entries []models.Entry
	Balance int64
	Page    store.Pagination
}

type entryFormView struct {
	Entry  *models.Entry
	IsEdit bool
	Errors map[string]string
}

type entryForm struct {
	Income bool
	Costs  bool
	Amount int64
}

// parseEntryForm reads the entry form. The income/costs checkboxes are taken
// as-is: the model deliberately allows any combination of the two flags.
func parseEntryForm(r *http.Request) (entryForm, map[string]string) {
	form := entryForm{
		Income: r.PostFormValue("income") != "",
		Costs:  r.PostFormValue("costs") != "",
	}

	raw := strings.TrimSpace(r.PostFormValue("amount"))
	if raw == "" {
		return form, map[string]string{"Amount": "This field is required"}
	}
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return form, map[string]string{"Amount": "Amount must be a whole number"}
	}
	if amount < 0 {
		return form, map[string]string{"Amount": "Amount must not be negative"}
	}
	form.Amount = amount
	return form, nil
}

// ListEntries renders one page of the ledger plus the full running balance.
func (h *Handlers) ListEntries(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r)

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	entries, pagination, err := h.entries.ListPage(r.Context(), account.ID, page)
	if err != nil {
		log.Printf("[LEDGER] Listing entries failed for account %d: %v", account.ID, err)
		h.render(w, r, "errors.html", http.StatusInternalServerError, errorData{Code: http.StatusInternalServerError})
		return
	}

	balance, err := h.entries.Balance(r.Context(), account.ID)
	if err != nil {
		log.Printf("[LEDGER] Balance computation failed for account %d: %v", account.ID, err)
		h.render(w, r, "errors.html", http.StatusInternalServerError, errorData{Code: http.StatusInternalServerError})
		return
	}

	h.render(w, r, "entries.html", http.StatusOK, entriesView{
		Entries: entries,
		Balance: balance,
		Page:    pagination,
	})
}

// NewEntryForm renders the entry creation form.
func (h *Handlers) NewEntryForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "new_entries.html", http.StatusOK, entryFormView{})
}

// CreateEntry records a new ledger movement owned by the caller.
func (h *Handlers) CreateEntry(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r)

	if err := r.ParseForm(); err != nil {
		h.render(w, r, "new_entries.html", http.StatusBadRequest,
			entryFormView{Errors: map[string]string{"Form": "Invalid form submission"}})
		return
	}

	form, fieldErrs := parseEntryForm(r)
	if fieldErrs != nil {
		h.render(w, r, "new_entries.html", http.StatusBadRequest, entryFormView{Errors: fieldErrs})
		return
	}

	if _, err := h.entries.Create(r.Context(), account.ID, form.Income, form.Costs, form.Amount); err != nil {
		log.Printf("[LEDGER] Entry creation failed for account %d: %v", account.ID, err)
		h.render(w, r, "errors.html", http.StatusInternalServerError, errorData{Code: http.StatusInternalServerError})
		return
	}

	h.sessions.AddFlash(r.Context(), w, r, "Entries created", session.FlashSuccess)
	http.Redirect(w, r, "/entries", http.StatusFound)
}

// EditEntryForm renders the edit form for one of the caller's entries.
func (h *Handlers) EditEntryForm(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, r)
		return
	}

	entry, err := h.entries.Get(r.Context(), id, account.ID)
	if err != nil {
		h.NotFound(w, r)
		return
	}
	h.render(w, r, "update.html", http.StatusOK, entryFormView{Entry: entry, IsEdit: true})
}

// UpdateEntry rewrites the flags and amount of one of the caller's entries.
func (h *Handlers) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		entry, getErr := h.entries.Get(r.Context(), id, account.ID)
		if getErr != nil {
			h.NotFound(w, r)
			return
		}
		h.render(w, r, "update.html", http.StatusBadRequest,
			entryFormView{Entry: entry, IsEdit: true, Errors: map[string]string{"Form": "Invalid form submission"}})
		return
	}

	form, fieldErrs := parseEntryForm(r)
	if fieldErrs != nil {
		entry, getErr := h.entries.Get(r.Context(), id, account.ID)
		if getErr != nil {
			h.NotFound(w, r)
			return
		}
		h.render(w, r, "update.html", http.StatusBadRequest,
			entryFormView{Entry: entry, IsEdit: true, Errors: fieldErrs})
		return
	}

	err = h.entries.Update(r.Context(), id, account.ID, form.Income, form.Costs, form.Amount)
	if errors.Is(err, models.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("[LEDGER] Entry update failed for account %d: %v", account.ID, err)
		h.render(w, r, "errors.html", http.StatusInternalServerError, errorData{Code: http.StatusInternalServerError})
		return
	}

	http.Redirect(w, r, "/entries", http.StatusFound)
}

// DeleteEntry removes one of the caller's entries.
func (h *Handlers) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.NotFound(w, r)
		return
	}

	err = h.entries.Delete(r.Context(), id, account.ID)
	if errors.Is(err, models.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("[LEDGER] Entry delete failed for account %d: %v", account.ID, err)
		h.render(w, r, "errors.html", http.StatusInternalServerError, errorData{Code: http.StatusInternalServerError})
		return
	}

	http.Redirect(w, r, "/entries", http.StatusFound)
}
