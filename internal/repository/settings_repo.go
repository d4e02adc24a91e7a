package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentboard/backend/internal/models"
)

type SettingsRepo struct {
	pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

const settingsColumns = `contact_reveal_cost, contact_access_duration_days, interview_request_cost, interview_completion_earning, interviewer_certification_cost, jobseeker_signup_bonus, employer_signup_bonus, interviewer_signup_bonus, updated_at, updated_by`

func scanSettings(row pgx.Row) (*models.PlatformSettings, error) {
	var s models.PlatformSettings
	err := row.Scan(&s.ContactRevealCost, &s.ContactAccessDurationDays, &s.InterviewRequestCost, &s.InterviewCompletionEarning, &s.InterviewerCertCost, &s.JobSeekerSignupBonus, &s.EmployerSignupBonus, &s.InterviewerSignupBonus, &s.UpdatedAt, &s.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get returns the singleton settings row, creating it with defaults if
// absent. The fixed-key upsert makes concurrent first reads converge on a
// single row: the first insert wins, everyone reads it back.
func (r *SettingsRepo) Get(ctx context.Context) (*models.PlatformSettings, error) {
	d := models.DefaultSettings()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO platform_settings (key, contact_reveal_cost, contact_access_duration_days, interview_request_cost, interview_completion_earning, interviewer_certification_cost, jobseeker_signup_bonus, employer_signup_bonus, interviewer_signup_bonus)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (key) DO NOTHING
	`, models.SettingsKey, d.ContactRevealCost, d.ContactAccessDurationDays, d.InterviewRequestCost, d.InterviewCompletionEarning, d.InterviewerCertCost, d.JobSeekerSignupBonus, d.EmployerSignupBonus, d.InterviewerSignupBonus)
	if err != nil {
		return nil, err
	}
	return scanSettings(r.pool.QueryRow(ctx, `SELECT `+settingsColumns+` FROM platform_settings WHERE key = $1`, models.SettingsKey))
}

const settingsUpdateSQL = `
	UPDATE platform_settings SET
		contact_reveal_cost            = COALESCE($2, contact_reveal_cost),
		contact_access_duration_days   = COALESCE($3, contact_access_duration_days),
		interview_request_cost         = COALESCE($4, interview_request_cost),
		interview_completion_earning   = COALESCE($5, interview_completion_earning),
		interviewer_certification_cost = COALESCE($6, interviewer_certification_cost),
		jobseeker_signup_bonus         = COALESCE($7, jobseeker_signup_bonus),
		employer_signup_bonus          = COALESCE($8, employer_signup_bonus),
		interviewer_signup_bonus       = COALESCE($9, interviewer_signup_bonus),
		updated_at = now(),
		updated_by = $10
	WHERE key = $1
	RETURNING ` + settingsColumns

// Update applies only the non-nil fields of the patch, stamps the acting
// admin, and returns the resulting row in the same round trip. A missing
// singleton row is seeded through Get first and the patch re-applied.
func (r *SettingsRepo) Update(ctx context.Context, patch models.PlatformSettingsUpdate, adminID uuid.UUID) (*models.PlatformSettings, error) {
	args := []any{models.SettingsKey, patch.ContactRevealCost, patch.ContactAccessDurationDays, patch.InterviewRequestCost, patch.InterviewCompletionEarning, patch.InterviewerCertCost, patch.JobSeekerSignupBonus, patch.EmployerSignupBonus, patch.InterviewerSignupBonus, adminID}
	s, err := scanSettings(r.pool.QueryRow(ctx, settingsUpdateSQL, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := r.Get(ctx); err != nil {
			return nil, err
		}
		return scanSettings(r.pool.QueryRow(ctx, settingsUpdateSQL, args...))
	}
	return s, err
}
