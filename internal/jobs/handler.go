package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentboard/backend/internal/middleware"
)

// Store is the posting repository interface used by the handler.
type Store interface {
	Create(ctx context.Context, p *Posting) error
	GetByID(ctx context.Context, id uuid.UUID) (*Posting, error)
	ListOpen(ctx context.Context, skill string) ([]*Posting, error)
	ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*Posting, error)
	Close(ctx context.Context, id, employerID uuid.UUID) (bool, error)
}

// Handler serves the job posting endpoints.
type Handler struct {
	store Store
	log   *slog.Logger
}

func NewHandler(store Store, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: store, log: log}
}

type createPostingRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"required_skills"`
	Location       string   `json:"location"`
	SalaryMin      *int     `json:"salary_min,omitempty"`
	SalaryMax      *int     `json:"salary_max,omitempty"`
}

// CreatePosting handles POST /api/v1/jobs.
func (h *Handler) CreatePosting(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req createPostingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Description == "" || len(req.RequiredSkills) == 0 {
		http.Error(w, `{"error":"missing required fields"}`, http.StatusBadRequest)
		return
	}
	if req.SalaryMin != nil && req.SalaryMax != nil && *req.SalaryMin > *req.SalaryMax {
		http.Error(w, `{"error":"salary_min exceeds salary_max"}`, http.StatusBadRequest)
		return
	}

	posting := &Posting{
		ID:             uuid.New(),
		EmployerID:     id.UserID,
		Title:          req.Title,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		Location:       req.Location,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		IsOpen:         true,
	}
	if err := h.store.Create(r.Context(), posting); err != nil {
		h.log.Error("create posting", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, posting)
}

// ListPostings handles GET /api/v1/jobs: open postings, optional skill
// query filter. Public.
func (h *Handler) ListPostings(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListOpen(r.Context(), r.URL.Query().Get("skill"))
	if err != nil {
		h.log.Error("list postings", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Posting{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetPosting handles GET /api/v1/jobs/{id}. Public.
func (h *Handler) GetPosting(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid posting id"}`, http.StatusBadRequest)
		return
	}
	posting, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error":"posting not found"}`, http.StatusNotFound)
			return
		}
		h.log.Error("get posting", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, posting)
}

// MyPostings handles GET /api/v1/jobs/mine: the employer's own postings,
// open and closed.
func (h *Handler) MyPostings(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	list, err := h.store.ListByEmployer(r.Context(), id.UserID)
	if err != nil {
		h.log.Error("list my postings", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Posting{}
	}
	writeJSON(w, http.StatusOK, list)
}

// ClosePosting handles POST /api/v1/jobs/{id}/close. Only the owning
// employer can close, and only once.
func (h *Handler) ClosePosting(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	postingID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid posting id"}`, http.StatusBadRequest)
		return
	}
	closed, err := h.store.Close(r.Context(), postingID, id.UserID)
	if err != nil {
		h.log.Error("close posting", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !closed {
		http.Error(w, `{"error":"posting not found or already closed"}`, http.StatusConflict)
		return
	}
	posting, err := h.store.GetByID(r.Context(), postingID)
	if err != nil {
		h.log.Error("reload posting", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, posting)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
