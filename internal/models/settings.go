package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SettingsKey is the fixed primary key of the platform_settings singleton
// row. A uniqueness constraint on this key makes create-on-first-read safe
// under concurrent access: the first writer wins, racers read the row back.
const SettingsKey = "platform"

type PlatformSettings struct {
	ContactRevealCost          int        `json:"contact_reveal_cost"`
	ContactAccessDurationDays  int        `json:"contact_access_duration_days"`
	InterviewRequestCost       int        `json:"interview_request_cost"`
	InterviewCompletionEarning int        `json:"interview_completion_earning"`
	InterviewerCertCost        int        `json:"interviewer_certification_cost"`
	JobSeekerSignupBonus       int        `json:"jobseeker_signup_bonus"`
	EmployerSignupBonus        int        `json:"employer_signup_bonus"`
	InterviewerSignupBonus     int        `json:"interviewer_signup_bonus"`
	UpdatedAt                  time.Time  `json:"updated_at"`
	UpdatedBy                  *uuid.UUID `json:"updated_by,omitempty"`
}

// DefaultSettings are the values used when the singleton row is created
// lazily on first read.
func DefaultSettings() PlatformSettings {
	return PlatformSettings{
		ContactRevealCost:          10000,
		ContactAccessDurationDays:  365,
		InterviewRequestCost:       5000,
		InterviewCompletionEarning: 500,
		InterviewerCertCost:        0,
		JobSeekerSignupBonus:       200,
		EmployerSignupBonus:        10000,
		InterviewerSignupBonus:     500,
	}
}

// SignupBonus returns the free-credit bonus granted on registration for
// the given role. Unknown roles (and admin) get nothing.
func (s PlatformSettings) SignupBonus(role string) int {
	switch role {
	case RoleJobSeeker:
		return s.JobSeekerSignupBonus
	case RoleEmployer:
		return s.EmployerSignupBonus
	case RoleInterviewer:
		return s.InterviewerSignupBonus
	}
	return 0
}

// PlatformSettingsUpdate is a partial update; nil fields are left untouched.
type PlatformSettingsUpdate struct {
	ContactRevealCost          *int `json:"contact_reveal_cost"`
	ContactAccessDurationDays  *int `json:"contact_access_duration_days"`
	InterviewRequestCost       *int `json:"interview_request_cost"`
	InterviewCompletionEarning *int `json:"interview_completion_earning"`
	InterviewerCertCost        *int `json:"interviewer_certification_cost"`
	JobSeekerSignupBonus       *int `json:"jobseeker_signup_bonus"`
	EmployerSignupBonus        *int `json:"employer_signup_bonus"`
	InterviewerSignupBonus     *int `json:"interviewer_signup_bonus"`
}

// Validate rejects negative values. Zero is allowed; a free reveal or a
// bonus of nothing are both valid configurations.
func (u PlatformSettingsUpdate) Validate() error {
	fields := map[string]*int{
		"contact_reveal_cost":            u.ContactRevealCost,
		"contact_access_duration_days":   u.ContactAccessDurationDays,
		"interview_request_cost":         u.InterviewRequestCost,
		"interview_completion_earning":   u.InterviewCompletionEarning,
		"interviewer_certification_cost": u.InterviewerCertCost,
		"jobseeker_signup_bonus":         u.JobSeekerSignupBonus,
		"employer_signup_bonus":          u.EmployerSignupBonus,
		"interviewer_signup_bonus":       u.InterviewerSignupBonus,
	}
	for name, v := range fields {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}
