package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/talentboard/backend/internal/middleware"
	"github.com/talentboard/backend/internal/models"
	"github.com/talentboard/backend/internal/services"
)

// InterviewHandler serves the verification workflow endpoints. List reads
// go straight to the request store; anything that moves money or state
// goes through the service.
type InterviewHandler struct {
	Svc      *services.InterviewService
	Requests services.InterviewStore
	Logger   *slog.Logger
}

type createRequestRequest struct {
	SkillsToVerify []string `json:"skills_to_verify"`
	Notes          *string  `json:"notes,omitempty"`
}

// CreateRequest handles POST /v1/interviews/requests.
func (h *InterviewHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req createRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	created, err := h.Svc.CreateRequest(r.Context(), id.UserID, req.SkillsToVerify, req.Notes)
	if err != nil {
		var insufficient *services.InsufficientCreditsError
		switch {
		case errors.Is(err, services.ErrNoSkills):
			http.Error(w, `{"error":"at least one skill to verify is required"}`, http.StatusBadRequest)
		case errors.As(err, &insufficient):
			writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": insufficient.Error()})
		default:
			h.Logger.Error("create interview request", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListAvailable handles GET /v1/interviews/requests/available: pending
// requests an interviewer can pick up.
func (h *InterviewHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	reqs, err := h.Requests.ListAvailable(r.Context(), id.UserID)
	if err != nil {
		h.Logger.Error("list available requests", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// ListMine handles GET /v1/interviews/requests/mine. Job seekers see the
// requests they created; interviewers see the ones assigned to them. An
// optional status query parameter filters either list.
func (h *InterviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	status := r.URL.Query().Get("status")

	var (
		reqs []*models.InterviewRequest
		err  error
	)
	switch id.Role {
	case models.RoleJobSeeker:
		reqs, err = h.Requests.ListByJobSeeker(r.Context(), id.UserID, status)
	case models.RoleInterviewer:
		reqs, err = h.Requests.ListByInterviewer(r.Context(), id.UserID, status)
	default:
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	if err != nil {
		h.Logger.Error("list my requests", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// Accept handles POST /v1/interviews/requests/{id}/accept. First accept
// wins; everyone else gets 409.
func (h *InterviewHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	requestID, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid request id"}`, http.StatusBadRequest)
		return
	}
	req, err := h.Svc.Accept(r.Context(), requestID, id.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			http.Error(w, `{"error":"interview request not found"}`, http.StatusNotFound)
		case errors.Is(err, services.ErrRequestNoLongerAvailable):
			http.Error(w, `{"error":"request is no longer available"}`, http.StatusConflict)
		default:
			h.Logger.Error("accept request", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type submitRatingRequest struct {
	SkillRatings        []models.SkillRating `json:"skill_ratings"`
	Strengths           *string              `json:"strengths,omitempty"`
	AreasForImprovement *string              `json:"areas_for_improvement,omitempty"`
	GeneralFeedback     *string              `json:"general_feedback,omitempty"`
	Recommendation      *string              `json:"recommendation,omitempty"`
}

// SubmitRating handles POST /v1/interviews/requests/{id}/rating. Completes
// the request and pays the interviewer; a duplicate submission gets 409
// and no second payout.
func (h *InterviewHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	requestID, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid request id"}`, http.StatusBadRequest)
		return
	}
	var req submitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	rating, err := h.Svc.SubmitRating(r.Context(), id.UserID, requestID, services.RatingInput{
		SkillRatings:        req.SkillRatings,
		Strengths:           req.Strengths,
		AreasForImprovement: req.AreasForImprovement,
		GeneralFeedback:     req.GeneralFeedback,
		Recommendation:      req.Recommendation,
	})
	if err != nil {
		var (
			invalidRating     *services.InvalidRatingError
			invalidTransition *services.InvalidTransitionError
		)
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			http.Error(w, `{"error":"interview request not found"}`, http.StatusNotFound)
		case errors.Is(err, services.ErrNotAssignedInterviewer):
			http.Error(w, `{"error":"caller is not the assigned interviewer"}`, http.StatusForbidden)
		case errors.Is(err, services.ErrAlreadyRated):
			http.Error(w, `{"error":"rating already submitted for this interview"}`, http.StatusConflict)
		case errors.As(err, &invalidTransition):
			writeJSON(w, http.StatusConflict, map[string]string{"error": invalidTransition.Error()})
		case errors.Is(err, services.ErrNoSkillRatings):
			http.Error(w, `{"error":"at least one skill rating is required"}`, http.StatusBadRequest)
		case errors.As(err, &invalidRating):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": invalidRating.Error()})
		default:
			h.Logger.Error("submit rating", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, rating)
}

// AdminUpdate handles PATCH /v1/admin/interviews/requests/{id}.
func (h *InterviewHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	requestID, ok := pathUUID(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid request id"}`, http.StatusBadRequest)
		return
	}
	var patch models.InterviewRequestPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	req, err := h.Svc.AdminUpdateRequest(r.Context(), id.UserID, requestID, patch)
	if err != nil {
		var invalidTransition *services.InvalidTransitionError
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			http.Error(w, `{"error":"interview request not found"}`, http.StatusNotFound)
		case errors.Is(err, services.ErrRequestChanged):
			http.Error(w, `{"error":"request changed concurrently, retry"}`, http.StatusConflict)
		case errors.As(err, &invalidTransition):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": invalidTransition.Error()})
		default:
			h.Logger.Error("admin update request", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// AdminListAll handles GET /v1/admin/interviews/requests with an optional
// status filter.
func (h *InterviewHandler) AdminListAll(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Requests.ListAll(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.Logger.Error("admin list requests", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// GetVerification handles GET /v1/verification/{job_seeker_id}, a public
// read of a job seeker's verification state.
func (h *InterviewHandler) GetVerification(w http.ResponseWriter, r *http.Request) {
	jobseekerID, ok := pathUUID(r, "job_seeker_id")
	if !ok {
		http.Error(w, `{"error":"invalid job seeker id"}`, http.StatusBadRequest)
		return
	}
	v, err := h.Svc.GetVerification(r.Context(), jobseekerID)
	if err != nil {
		h.Logger.Error("get verification", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
