package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentboard/backend/internal/models"
)

type InterviewRepo struct {
	pool *pgxpool.Pool
}

func NewInterviewRepo(pool *pgxpool.Pool) *InterviewRepo {
	return &InterviewRepo{pool: pool}
}

const requestColumns = `id, jobseeker_id, jobseeker_email, skills_to_verify, status, credits_paid, interviewer_id, assigned_at, assigned_by, notified_interviewers, scheduled_at, completed_at, jobseeker_notes, admin_notes, created_at, updated_at`

func scanRequest(row pgx.Row) (*models.InterviewRequest, error) {
	var q models.InterviewRequest
	err := row.Scan(&q.ID, &q.JobSeekerID, &q.JobSeekerEmail, &q.SkillsToVerify, &q.Status, &q.CreditsPaid, &q.InterviewerID, &q.AssignedAt, &q.AssignedBy, &q.NotifiedInterviewers, &q.ScheduledAt, &q.CompletedAt, &q.JobSeekerNotes, &q.AdminNotes, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateTx persists a request inside the same transaction as the spend
// that paid for it.
func (r *InterviewRepo) CreateTx(ctx context.Context, tx pgx.Tx, q *models.InterviewRequest) error {
	return tx.QueryRow(ctx, `
		INSERT INTO interview_requests (id, jobseeker_id, jobseeker_email, skills_to_verify, status, credits_paid, notified_interviewers, jobseeker_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, q.ID, q.JobSeekerID, q.JobSeekerEmail, q.SkillsToVerify, q.Status, q.CreditsPaid, q.NotifiedInterviewers, q.JobSeekerNotes).Scan(&q.CreatedAt, &q.UpdatedAt)
}

func (r *InterviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.InterviewRequest, error) {
	return scanRequest(r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM interview_requests WHERE id = $1`, id))
}

// Accept transitions pending -> assigned with a compare-and-swap on
// status. Returns false when the request was not pending anymore, so of
// two concurrent accepts exactly one observes true.
func (r *InterviewRepo) Accept(ctx context.Context, id, interviewerID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE interview_requests
		SET status = $3, interviewer_id = $2, assigned_at = now(), updated_at = now()
		WHERE id = $1 AND status = $4
	`, id, interviewerID, models.RequestAssigned, models.RequestPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CompleteTx transitions assigned/scheduled -> completed with the same CAS
// discipline, inside the rating/payout transaction. Returns false when the
// request already completed or sits in a status that cannot complete, so a
// cancelled or expired request never turns into a payout.
func (r *InterviewRepo) CompleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, completedAt time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE interview_requests
		SET status = $2, completed_at = $3, updated_at = now()
		WHERE id = $1 AND status IN ($4, $5)
	`, id, models.RequestCompleted, completedAt, models.RequestAssigned, models.RequestScheduled)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AdminUpdate is the manual path: reassign, schedule, annotate, or force a
// status change already vetted against the transition table. The vetted
// current status rides in the WHERE clause; a false return means the
// request moved in the meantime and the caller's check no longer holds.
func (r *InterviewRepo) AdminUpdate(ctx context.Context, id uuid.UUID, u models.InterviewRequestPatch, from string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE interview_requests SET
			status         = COALESCE($2, status),
			interviewer_id = COALESCE($3, interviewer_id),
			scheduled_at   = COALESCE($4, scheduled_at),
			admin_notes    = COALESCE($5, admin_notes),
			assigned_by    = COALESCE($6, assigned_by),
			assigned_at    = CASE WHEN $3::uuid IS NOT NULL THEN now() ELSE assigned_at END,
			updated_at     = now()
		WHERE id = $1 AND status = $7
	`, id, u.Status, u.InterviewerID, u.ScheduledAt, u.AdminNotes, u.AssignedBy, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListAvailable returns requests an interviewer can pick up: still pending,
// or ones they were notified about.
func (r *InterviewRepo) ListAvailable(ctx context.Context, interviewerID uuid.UUID) ([]*models.InterviewRequest, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+` FROM interview_requests
		WHERE status = $1 OR $2 = ANY(notified_interviewers)
		ORDER BY created_at DESC
		LIMIT 50
	`, models.RequestPending, interviewerID)
}

func (r *InterviewRepo) ListByJobSeeker(ctx context.Context, jobseekerID uuid.UUID, status string) ([]*models.InterviewRequest, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+` FROM interview_requests
		WHERE jobseeker_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
	`, jobseekerID, status)
}

func (r *InterviewRepo) ListByInterviewer(ctx context.Context, interviewerID uuid.UUID, status string) ([]*models.InterviewRequest, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+` FROM interview_requests
		WHERE interviewer_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
	`, interviewerID, status)
}

func (r *InterviewRepo) ListAll(ctx context.Context, status string) ([]*models.InterviewRequest, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+` FROM interview_requests
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
		LIMIT 500
	`, status)
}

func (r *InterviewRepo) list(ctx context.Context, sql string, args ...any) ([]*models.InterviewRequest, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.InterviewRequest
	for rows.Next() {
		q, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}
