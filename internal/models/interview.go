package models

import (
	"time"

	"github.com/google/uuid"
)

// Interview request status enums.
const (
	RequestPending   = "pending"
	RequestAssigned  = "assigned"
	RequestScheduled = "scheduled"
	RequestCompleted = "completed"
	RequestCancelled = "cancelled"
	RequestExpired   = "expired"
)

// requestTransitions is the explicit transition table for the interview
// request state machine. A transition absent from the table is rejected;
// completed/cancelled/expired are terminal.
var requestTransitions = map[string][]string{
	RequestPending:   {RequestAssigned, RequestCancelled, RequestExpired},
	RequestAssigned:  {RequestScheduled, RequestCompleted, RequestCancelled, RequestExpired},
	RequestScheduled: {RequestCompleted, RequestCancelled, RequestExpired},
}

// CanTransition reports whether the state machine allows moving a request
// from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InterviewRequest is one instance of the verification workflow state
// machine. CreditsPaid records the charge taken at creation time even if
// the platform price changes later.
type InterviewRequest struct {
	ID                   uuid.UUID   `json:"id"`
	JobSeekerID          uuid.UUID   `json:"jobseeker_id"`
	JobSeekerEmail       string      `json:"jobseeker_email"`
	SkillsToVerify       []string    `json:"skills_to_verify"`
	Status               string      `json:"status"`
	CreditsPaid          int         `json:"credits_paid"`
	InterviewerID        *uuid.UUID  `json:"interviewer_id,omitempty"`
	AssignedAt           *time.Time  `json:"assigned_at,omitempty"`
	AssignedBy           *uuid.UUID  `json:"assigned_by,omitempty"`
	NotifiedInterviewers []uuid.UUID `json:"notified_interviewers"`
	ScheduledAt          *time.Time  `json:"scheduled_at,omitempty"`
	CompletedAt          *time.Time  `json:"completed_at,omitempty"`
	JobSeekerNotes       *string     `json:"jobseeker_notes,omitempty"`
	AdminNotes           *string     `json:"admin_notes,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// InterviewRequestPatch is the admin's partial update of a request:
// reassignment, scheduling, notes, or a vetted status move. Nil fields
// are left untouched.
type InterviewRequestPatch struct {
	Status        *string    `json:"status,omitempty"`
	InterviewerID *uuid.UUID `json:"interviewer_id,omitempty"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	AdminNotes    *string    `json:"admin_notes,omitempty"`
	AssignedBy    *uuid.UUID `json:"-"`
}

// SkillRating is one interviewer-assessed skill. Rating is in [0.5, 5.0]
// in 0.5 steps.
type SkillRating struct {
	SkillName         string   `json:"skill_name"`
	Rating            float64  `json:"rating"`
	YearsOfExperience *float64 `json:"years_of_experience,omitempty"`
	InterviewerNotes  *string  `json:"interviewer_notes,omitempty"`
}

// InterviewRating is created exactly once per completed request.
// OverallRating is the mean of the skill ratings rounded to one decimal.
type InterviewRating struct {
	ID                  uuid.UUID     `json:"id"`
	InterviewRequestID  uuid.UUID     `json:"interview_request_id"`
	JobSeekerID         uuid.UUID     `json:"jobseeker_id"`
	InterviewerID       uuid.UUID     `json:"interviewer_id"`
	OverallRating       float64       `json:"overall_rating"`
	SkillRatings        []SkillRating `json:"skill_ratings"`
	Strengths           *string       `json:"strengths,omitempty"`
	AreasForImprovement *string       `json:"areas_for_improvement,omitempty"`
	GeneralFeedback     *string       `json:"general_feedback,omitempty"`
	Recommendation      *string       `json:"recommendation,omitempty"`
	Verified            bool          `json:"verified"`
	VerificationDate    time.Time     `json:"verification_date"`
	CreditsEarned       int           `json:"interviewer_credits_earned"`
	CreatedAt           time.Time     `json:"created_at"`
}
