package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/talentboard/backend/internal/middleware"
	"github.com/talentboard/backend/internal/models"
	"github.com/talentboard/backend/internal/services"
)

// ProfileStore is the profile repository interface used by the handler.
type ProfileStore interface {
	GetJobSeeker(ctx context.Context, userID uuid.UUID) (*models.JobSeekerProfile, error)
	UpsertJobSeeker(ctx context.Context, p *models.JobSeekerProfile) error
	GetInterviewer(ctx context.Context, userID uuid.UUID) (*models.InterviewerProfile, error)
	UpsertInterviewer(ctx context.Context, p *models.InterviewerProfile) error
	ListInterviewers(ctx context.Context) ([]*models.InterviewerProfile, error)
}

// ProfileHandler serves profile reads and schema-validated writes.
type ProfileHandler struct {
	Profiles  ProfileStore
	Users     BalanceUserStore
	Validator *services.Validator
	Logger    *slog.Logger
}

// UpsertJobSeeker handles PUT /api/v1/profiles/jobseeker. The body is
// validated against the job seeker profile schema before decoding, so a
// malformed skill entry never reaches the matcher.
func (h *ProfileHandler) UpsertJobSeeker(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	if err := h.Validator.Validate(services.DocJobSeekerProfile, body); err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		h.Logger.Error("validate jobseeker profile", "error", err)
		http.Error(w, `{"error":"validation failed"}`, http.StatusBadRequest)
		return
	}

	var profile models.JobSeekerProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	profile.UserID = id.UserID

	user, err := h.Users.GetByID(r.Context(), id.UserID)
	if err != nil {
		h.Logger.Error("resolve user for profile", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	profile.FullName = user.FullName

	if err := h.Profiles.UpsertJobSeeker(r.Context(), &profile); err != nil {
		h.Logger.Error("upsert jobseeker profile", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GetJobSeeker handles GET /api/v1/profiles/jobseeker/{user_id}.
func (h *ProfileHandler) GetJobSeeker(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(r, "user_id")
	if !ok {
		http.Error(w, `{"error":"invalid user id"}`, http.StatusBadRequest)
		return
	}
	profile, err := h.Profiles.GetJobSeeker(r.Context(), userID)
	if err != nil {
		h.Logger.Error("get jobseeker profile", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if profile == nil {
		http.Error(w, `{"error":"profile not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpsertInterviewer handles PUT /api/v1/profiles/interviewer.
func (h *ProfileHandler) UpsertInterviewer(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	if err := h.Validator.Validate(services.DocInterviewerProfile, body); err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		h.Logger.Error("validate interviewer profile", "error", err)
		http.Error(w, `{"error":"validation failed"}`, http.StatusBadRequest)
		return
	}

	var profile models.InterviewerProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	profile.UserID = id.UserID

	// Certification status and conducted count are platform-managed, not
	// self-reported. Preserve existing values across upserts.
	existing, err := h.Profiles.GetInterviewer(r.Context(), id.UserID)
	if err != nil {
		h.Logger.Error("load interviewer profile", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if existing != nil {
		profile.IsCertified = existing.IsCertified
		profile.InterviewsConducted = existing.InterviewsConducted
	} else {
		profile.IsCertified = false
		profile.InterviewsConducted = 0
	}

	user, err := h.Users.GetByID(r.Context(), id.UserID)
	if err != nil {
		h.Logger.Error("resolve user for profile", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	profile.FullName = user.FullName

	if err := h.Profiles.UpsertInterviewer(r.Context(), &profile); err != nil {
		h.Logger.Error("upsert interviewer profile", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GetInterviewer handles GET /api/v1/profiles/interviewer/{user_id}.
func (h *ProfileHandler) GetInterviewer(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(r, "user_id")
	if !ok {
		http.Error(w, `{"error":"invalid user id"}`, http.StatusBadRequest)
		return
	}
	profile, err := h.Profiles.GetInterviewer(r.Context(), userID)
	if err != nil {
		h.Logger.Error("get interviewer profile", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if profile == nil {
		http.Error(w, `{"error":"profile not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// ListInterviewers handles GET /api/v1/interviewers.
func (h *ProfileHandler) ListInterviewers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Profiles.ListInterviewers(r.Context())
	if err != nil {
		h.Logger.Error("list interviewers", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}
