package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/talentboard/backend/internal/models"
)

// MatcherProfileStore lists interviewer profiles for matching scans.
type MatcherProfileStore interface {
	ListInterviewers(ctx context.Context) ([]*models.InterviewerProfile, error)
}

// Matcher selects interviewers for a verification request.
type Matcher struct {
	Profiles MatcherProfileStore
}

func NewMatcher(profiles MatcherProfileStore) *Matcher {
	return &Matcher{Profiles: profiles}
}

// Match returns the ids of interviewers whose primary expertise intersects
// the requested skills on at least one skill. Secondary expertise does not
// qualify. Zero matches is a valid outcome, not an error.
func (m *Matcher) Match(ctx context.Context, skills []string) ([]uuid.UUID, error) {
	profiles, err := m.Profiles.ListInterviewers(ctx)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		wanted[s] = struct{}{}
	}
	var out []uuid.UUID
	for _, p := range profiles {
		for _, e := range p.Expertise {
			if !e.IsPrimary {
				continue
			}
			if _, ok := wanted[e.Skill]; ok {
				out = append(out, p.UserID)
				break
			}
		}
	}
	return out, nil
}
