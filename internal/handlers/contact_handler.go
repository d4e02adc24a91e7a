package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/talentboard/backend/internal/middleware"
	"github.com/talentboard/backend/internal/models"
	"github.com/talentboard/backend/internal/services"
)

// AdminContactStore lists every grant for the admin view.
type AdminContactStore interface {
	ListAll(ctx context.Context) ([]*models.ContactAccess, error)
}

// ContactHandler serves the contact reveal endpoints.
type ContactHandler struct {
	Svc      *services.ContactService
	Contacts AdminContactStore
	Logger   *slog.Logger
}

type revealResponse struct {
	Access          *models.ContactAccess `json:"access"`
	AlreadyRevealed bool                  `json:"already_revealed"`
}

// Reveal handles POST /v1/contacts/{job_seeker_id}/reveal. Idempotent for
// the duration of an active grant: a second reveal returns the existing
// grant without charging again.
func (h *ContactHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	jobseekerID, ok := pathUUID(r, "job_seeker_id")
	if !ok {
		http.Error(w, `{"error":"invalid job seeker id"}`, http.StatusBadRequest)
		return
	}

	grant, created, err := h.Svc.Reveal(r.Context(), id.UserID, jobseekerID)
	if err != nil {
		var insufficient *services.InsufficientCreditsError
		switch {
		case errors.Is(err, services.ErrJobSeekerNotFound):
			http.Error(w, `{"error":"job seeker not found"}`, http.StatusNotFound)
		case errors.Is(err, services.ErrNotAJobSeeker):
			http.Error(w, `{"error":"target user is not a job seeker"}`, http.StatusBadRequest)
		case errors.As(err, &insufficient):
			writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": insufficient.Error()})
		default:
			h.Logger.Error("reveal contact", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, revealResponse{Access: grant, AlreadyRevealed: !created})
}

type accessCheckResponse struct {
	HasAccess bool                  `json:"has_access"`
	Access    *models.ContactAccess `json:"access,omitempty"`
}

// CheckAccess handles GET /v1/contacts/{job_seeker_id}/access.
func (h *ContactHandler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	jobseekerID, ok := pathUUID(r, "job_seeker_id")
	if !ok {
		http.Error(w, `{"error":"invalid job seeker id"}`, http.StatusBadRequest)
		return
	}
	grant, hasAccess, err := h.Svc.CheckAccess(r.Context(), id.UserID, jobseekerID)
	if err != nil {
		h.Logger.Error("check contact access", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, accessCheckResponse{HasAccess: hasAccess, Access: grant})
}

// MyAccess handles GET /v1/contacts/my-access, the employer's active grants.
func (h *ContactHandler) MyAccess(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	grants, err := h.Svc.ListAccess(r.Context(), id.UserID)
	if err != nil {
		h.Logger.Error("list contact access", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, grants)
}

// AdminListAll handles GET /v1/admin/contact-access.
func (h *ContactHandler) AdminListAll(w http.ResponseWriter, r *http.Request) {
	grants, err := h.Contacts.ListAll(r.Context())
	if err != nil {
		h.Logger.Error("admin list contact access", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, grants)
}
