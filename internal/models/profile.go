package models

import (
	"time"

	"github.com/google/uuid"
)

// Skill is one entry in a job seeker's skill list. Matching depends on
// Name and IsPrimary being present and typed, so skills are a fixed schema
// rather than a free-form map.
type Skill struct {
	Name              string  `json:"name"`
	YearsOfExperience float64 `json:"years_of_experience"`
	IsPrimary         bool    `json:"is_primary"`
}

// Experience is one work-history entry. The first entry is the most recent
// one; EndDate nil means current.
type Experience struct {
	Company   string  `json:"company"`
	Position  string  `json:"position"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
	IsCurrent bool    `json:"is_current"`
}

type JobSeekerProfile struct {
	UserID     uuid.UUID    `json:"user_id"`
	FullName   string       `json:"full_name"`
	Headline   *string      `json:"headline,omitempty"`
	Location   string       `json:"location"`
	Skills     []Skill      `json:"skills"`
	Experience []Experience `json:"experience"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// CurrentCompany returns the most recent employer, or nil when the profile
// has no work history.
func (p *JobSeekerProfile) CurrentCompany() *string {
	if len(p.Experience) == 0 {
		return nil
	}
	company := p.Experience[0].Company
	if company == "" {
		return nil
	}
	return &company
}

// PrimarySkills returns the names of the profile's primary skills.
func (p *JobSeekerProfile) PrimarySkills() []string {
	var out []string
	for _, s := range p.Skills {
		if s.IsPrimary {
			out = append(out, s.Name)
		}
	}
	return out
}

// ExpertiseSkill is one area an interviewer can assess. Only primary
// expertise participates in interviewer matching.
type ExpertiseSkill struct {
	Skill             string  `json:"skill"`
	YearsOfExperience float64 `json:"years_of_experience"`
	IsPrimary         bool    `json:"is_primary"`
}

type InterviewerProfile struct {
	UserID              uuid.UUID        `json:"user_id"`
	FullName            string           `json:"full_name"`
	Headline            *string          `json:"headline,omitempty"`
	Location            string           `json:"location"`
	YearsOfExperience   float64          `json:"years_of_experience"`
	Expertise           []ExpertiseSkill `json:"expertise"`
	IsCertified         bool             `json:"is_certified"`
	InterviewsConducted int              `json:"interviews_conducted"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}
