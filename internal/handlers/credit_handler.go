package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/talentboard/backend/internal/middleware"
	"github.com/talentboard/backend/internal/models"
	"github.com/talentboard/backend/internal/repository"
	"github.com/talentboard/backend/internal/services"
)

// BalanceUserStore resolves the caller's account for balance reads.
type BalanceUserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// LedgerReader lists and counts ledger entries.
type LedgerReader interface {
	List(ctx context.Context, f repository.TransactionFilter) ([]*models.CreditTransaction, error)
	Count(ctx context.Context, f repository.TransactionFilter) (int, error)
}

// SettingsStore reads and updates the platform settings singleton. Update
// returns the stamped row so handlers don't need a follow-up read.
type SettingsStore interface {
	Get(ctx context.Context) (*models.PlatformSettings, error)
	Update(ctx context.Context, patch models.PlatformSettingsUpdate, adminID uuid.UUID) (*models.PlatformSettings, error)
}

// CreditHandler serves balance, ledger history, admin adjustments, and
// platform settings endpoints.
type CreditHandler struct {
	Users        BalanceUserStore
	Transactions LedgerReader
	Admin        *services.AdminCreditService
	Settings     SettingsStore
	Logger       *slog.Logger
}

type balanceResponse struct {
	CreditsFree  int `json:"credits_free"`
	CreditsPaid  int `json:"credits_paid"`
	TotalCredits int `json:"total_credits"`
}

// GetBalance handles GET /v1/credits/balance.
func (h *CreditHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	user, err := h.Users.GetByID(r.Context(), id.UserID)
	if err != nil {
		h.Logger.Error("get balance", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		CreditsFree:  user.CreditsFree,
		CreditsPaid:  user.CreditsPaid,
		TotalCredits: user.TotalCredits(),
	})
}

type transactionListResponse struct {
	Transactions []*models.CreditTransaction `json:"transactions"`
	Total        int                         `json:"total"`
}

// ListTransactions handles GET /v1/credits/transactions: the caller's own
// ledger history, newest first.
func (h *CreditHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	f := filterFromQuery(r)
	f.UserID = &id.UserID
	h.respondTransactions(w, r, f)
}

// AdminListTransactions handles GET /v1/admin/credits/transactions. An
// optional user_id query parameter narrows the list to one account.
func (h *CreditHandler) AdminListTransactions(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r)
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, `{"error":"invalid user_id"}`, http.StatusBadRequest)
			return
		}
		f.UserID = &userID
	}
	h.respondTransactions(w, r, f)
}

func (h *CreditHandler) respondTransactions(w http.ResponseWriter, r *http.Request, f repository.TransactionFilter) {
	txs, err := h.Transactions.List(r.Context(), f)
	if err != nil {
		h.Logger.Error("list transactions", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	total, err := h.Transactions.Count(r.Context(), f)
	if err != nil {
		h.Logger.Error("count transactions", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, transactionListResponse{Transactions: txs, Total: total})
}

func filterFromQuery(r *http.Request) repository.TransactionFilter {
	q := r.URL.Query()
	f := repository.TransactionFilter{
		Type:     q.Get("type"),
		Category: q.Get("category"),
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil {
		f.Offset = n
	}
	return f
}

// --- admin credit adjustments ---

type adjustCreditsRequest struct {
	UserID      string `json:"user_id"`
	Amount      int    `json:"amount"`
	Description string `json:"description"`
}

// AdminAddCredits handles POST /v1/admin/credits/add.
func (h *CreditHandler) AdminAddCredits(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.Admin.AddCredits)
}

// AdminDeductCredits handles POST /v1/admin/credits/deduct.
func (h *CreditHandler) AdminDeductCredits(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.Admin.DeductCredits)
}

func (h *CreditHandler) adjust(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, adminID, userID uuid.UUID, amount int, description string) (*models.CreditTransaction, error)) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req adjustCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		http.Error(w, `{"error":"invalid user_id"}`, http.StatusBadRequest)
		return
	}
	entry, err := op(r.Context(), id.UserID, userID, req.Amount, req.Description)
	if err != nil {
		var insufficient *services.InsufficientCreditsError
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		case errors.Is(err, services.ErrInvalidAmount):
			http.Error(w, `{"error":"amount must be positive"}`, http.StatusBadRequest)
		case errors.As(err, &insufficient):
			writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": insufficient.Error()})
		default:
			h.Logger.Error("admin credit adjustment", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// --- platform settings ---

// GetSettings handles GET /v1/admin/settings.
func (h *CreditHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Get(r.Context())
	if err != nil {
		h.Logger.Error("get settings", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PATCH /v1/admin/settings. Partial updates only;
// absent fields keep their current values.
func (h *CreditHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var patch models.PlatformSettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if err := patch.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	settings, err := h.Settings.Update(r.Context(), patch, id.UserID)
	if err != nil {
		h.Logger.Error("update settings", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
