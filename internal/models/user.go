package models

import (
	"time"

	"github.com/google/uuid"
)

// User role enums. The ledger trusts role claims supplied by auth but
// enforces its own per-operation role rules.
const (
	RoleJobSeeker   = "job_seeker"
	RoleEmployer    = "employer"
	RoleInterviewer = "interviewer"
	RoleAdmin       = "admin"
)

// ValidRole reports whether role is one of the registerable roles.
// Admin accounts are provisioned out of band.
func ValidRole(role string) bool {
	return role == RoleJobSeeker || role == RoleEmployer || role == RoleInterviewer
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone,omitempty"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreditsFree  int       `json:"credits_free"`
	CreditsPaid  int       `json:"credits_paid"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TotalCredits is the spendable balance across both buckets.
func (u *User) TotalCredits() int { return u.CreditsFree + u.CreditsPaid }
