package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentboard/backend/internal/models"
)

type RatingRepo struct {
	pool *pgxpool.Pool
}

func NewRatingRepo(pool *pgxpool.Pool) *RatingRepo {
	return &RatingRepo{pool: pool}
}

const ratingColumns = `id, interview_request_id, jobseeker_id, interviewer_id, overall_rating, skill_ratings, strengths, areas_for_improvement, general_feedback, recommendation, verified, verification_date, credits_earned, created_at`

func scanRating(row pgx.Row) (*models.InterviewRating, error) {
	var rt models.InterviewRating
	var skills []byte
	err := row.Scan(&rt.ID, &rt.InterviewRequestID, &rt.JobSeekerID, &rt.InterviewerID, &rt.OverallRating, &skills, &rt.Strengths, &rt.AreasForImprovement, &rt.GeneralFeedback, &rt.Recommendation, &rt.Verified, &rt.VerificationDate, &rt.CreditsEarned, &rt.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(skills, &rt.SkillRatings); err != nil {
		return nil, err
	}
	return &rt, nil
}

// CreateTx persists a rating inside the same transaction as the request
// completion and the interviewer payout. The unique index on
// interview_request_id backs the one-rating-per-request guarantee at the
// storage layer too.
func (r *RatingRepo) CreateTx(ctx context.Context, tx pgx.Tx, rt *models.InterviewRating) error {
	skills, err := json.Marshal(rt.SkillRatings)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx, `
		INSERT INTO interview_ratings (id, interview_request_id, jobseeker_id, interviewer_id, overall_rating, skill_ratings, strengths, areas_for_improvement, general_feedback, recommendation, verified, verification_date, credits_earned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`, rt.ID, rt.InterviewRequestID, rt.JobSeekerID, rt.InterviewerID, rt.OverallRating, skills, rt.Strengths, rt.AreasForImprovement, rt.GeneralFeedback, rt.Recommendation, rt.Verified, rt.VerificationDate, rt.CreditsEarned).Scan(&rt.CreatedAt)
}

// ListByJobSeeker returns the job seeker's ratings newest first; the first
// element is the authoritative verification for badge display.
func (r *RatingRepo) ListByJobSeeker(ctx context.Context, jobseekerID uuid.UUID) ([]*models.InterviewRating, error) {
	return r.list(ctx, `
		SELECT `+ratingColumns+` FROM interview_ratings
		WHERE jobseeker_id = $1 ORDER BY created_at DESC
	`, jobseekerID)
}

func (r *RatingRepo) ListAll(ctx context.Context) ([]*models.InterviewRating, error) {
	return r.list(ctx, `
		SELECT `+ratingColumns+` FROM interview_ratings ORDER BY created_at DESC LIMIT 500
	`)
}

func (r *RatingRepo) list(ctx context.Context, sql string, args ...any) ([]*models.InterviewRating, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.InterviewRating
	for rows.Next() {
		rt, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rt)
	}
	return list, rows.Err()
}
