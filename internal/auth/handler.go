package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/talentboard/backend/internal/models"
)

// Request/response structs use snake_case JSON throughout the API.

type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone,omitempty"`
	Role     string  `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Phone        *string   `json:"phone,omitempty"`
	Role         string    `json:"role"`
	CreditsFree  int       `json:"credits_free"`
	CreditsPaid  int       `json:"credits_paid"`
	TotalCredits int       `json:"total_credits"`
	CreatedAt    time.Time `json:"created_at"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" || req.Role == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	user, err := h.svc.Register(r.Context(), req.Email, req.Password, req.FullName, req.Phone, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			http.Error(w, "email already registered", http.StatusConflict)
		case errors.Is(err, ErrInvalidRole):
			http.Error(w, "invalid role", http.StatusBadRequest)
		default:
			h.log.Error("register failed", "error", err)
			http.Error(w, "registration failed", http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(UserToResponse(user))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "missing email or password", http.StatusBadRequest)
		return
	}
	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.log.Error("login failed", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LoginResponse{Token: token, User: UserToResponse(user)})
}

// UserToResponse is shared with other handlers that return user records.
func UserToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:           u.ID.String(),
		Email:        u.Email,
		FullName:     u.FullName,
		Phone:        u.Phone,
		Role:         u.Role,
		CreditsFree:  u.CreditsFree,
		CreditsPaid:  u.CreditsPaid,
		TotalCredits: u.TotalCredits(),
		CreatedAt:    u.CreatedAt,
	}
}
