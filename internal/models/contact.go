package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactAccess is a time-boxed entitlement granting an employer access to
// a job seeker's contact details. The revealed fields are captured once at
// grant time and deliberately not refreshed when the profile changes later;
// they are the historical record of what was purchased.
type ContactAccess struct {
	ID                     uuid.UUID `json:"id"`
	EmployerID             uuid.UUID `json:"employer_id"`
	JobSeekerID            uuid.UUID `json:"jobseeker_id"`
	CreditsSpent           int       `json:"credits_spent"`
	AccessGrantedAt        time.Time `json:"access_granted_at"`
	AccessExpiresAt        time.Time `json:"access_expires_at"`
	IsActive               bool      `json:"is_active"`
	RevealedEmail          string    `json:"revealed_email"`
	RevealedPhone          *string   `json:"revealed_phone,omitempty"`
	RevealedCurrentCompany *string   `json:"revealed_current_company,omitempty"`
}

// Expired reports whether the grant has passed its expiry at the given time.
func (a *ContactAccess) Expired(now time.Time) bool {
	return !a.AccessExpiresAt.After(now)
}
