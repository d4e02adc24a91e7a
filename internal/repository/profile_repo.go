package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentboard/backend/internal/models"
)

// ProfileRepo is the ledger core's read-mostly view of profile data:
// contact snapshots for reveals and expertise lists for matching. Skill
// and expertise lists are JSONB columns validated against the profile
// schemas before write.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetJobSeeker(ctx context.Context, userID uuid.UUID) (*models.JobSeekerProfile, error) {
	var p models.JobSeekerProfile
	var skills, experience []byte
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, full_name, headline, location, skills, experience, created_at, updated_at
		FROM jobseeker_profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.FullName, &p.Headline, &p.Location, &skills, &experience, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(skills, &p.Skills); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(experience, &p.Experience); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) UpsertJobSeeker(ctx context.Context, p *models.JobSeekerProfile) error {
	skills, err := json.Marshal(p.Skills)
	if err != nil {
		return err
	}
	experience, err := json.Marshal(p.Experience)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO jobseeker_profiles (user_id, full_name, headline, location, skills, experience)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			headline = EXCLUDED.headline,
			location = EXCLUDED.location,
			skills = EXCLUDED.skills,
			experience = EXCLUDED.experience,
			updated_at = now()
		RETURNING created_at, updated_at
	`, p.UserID, p.FullName, p.Headline, p.Location, skills, experience).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProfileRepo) GetInterviewer(ctx context.Context, userID uuid.UUID) (*models.InterviewerProfile, error) {
	var p models.InterviewerProfile
	var expertise []byte
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, full_name, headline, location, years_of_experience, expertise, is_certified, interviews_conducted, created_at, updated_at
		FROM interviewer_profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.FullName, &p.Headline, &p.Location, &p.YearsOfExperience, &expertise, &p.IsCertified, &p.InterviewsConducted, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(expertise, &p.Expertise); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) UpsertInterviewer(ctx context.Context, p *models.InterviewerProfile) error {
	expertise, err := json.Marshal(p.Expertise)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO interviewer_profiles (user_id, full_name, headline, location, years_of_experience, expertise)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			headline = EXCLUDED.headline,
			location = EXCLUDED.location,
			years_of_experience = EXCLUDED.years_of_experience,
			expertise = EXCLUDED.expertise,
			updated_at = now()
		RETURNING created_at, updated_at
	`, p.UserID, p.FullName, p.Headline, p.Location, p.YearsOfExperience, expertise).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// ListInterviewers returns every interviewer profile for matching scans.
func (r *ProfileRepo) ListInterviewers(ctx context.Context) ([]*models.InterviewerProfile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, full_name, headline, location, years_of_experience, expertise, is_certified, interviews_conducted, created_at, updated_at
		FROM interviewer_profiles
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.InterviewerProfile
	for rows.Next() {
		var p models.InterviewerProfile
		var expertise []byte
		if err := rows.Scan(&p.UserID, &p.FullName, &p.Headline, &p.Location, &p.YearsOfExperience, &expertise, &p.IsCertified, &p.InterviewsConducted, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(expertise, &p.Expertise); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// IncrementInterviewsConducted bumps the interviewer's completed count in
// the payout transaction.
func (r *ProfileRepo) IncrementInterviewsConducted(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE interviewer_profiles SET interviews_conducted = interviews_conducted + 1, updated_at = now()
		WHERE user_id = $1
	`, userID)
	return err
}
