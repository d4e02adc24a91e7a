package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentboard/backend/internal/models"
)

type ContactRepo struct {
	pool *pgxpool.Pool
}

func NewContactRepo(pool *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{pool: pool}
}

const contactColumns = `id, employer_id, jobseeker_id, credits_spent, access_granted_at, access_expires_at, is_active, revealed_email, revealed_phone, revealed_current_company`

func scanContact(row pgx.Row) (*models.ContactAccess, error) {
	var a models.ContactAccess
	err := row.Scan(&a.ID, &a.EmployerID, &a.JobSeekerID, &a.CreditsSpent, &a.AccessGrantedAt, &a.AccessExpiresAt, &a.IsActive, &a.RevealedEmail, &a.RevealedPhone, &a.RevealedCurrentCompany)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateTx persists a grant inside the same transaction as the spend that
// paid for it.
func (r *ContactRepo) CreateTx(ctx context.Context, tx pgx.Tx, a *models.ContactAccess) error {
	return tx.QueryRow(ctx, `
		INSERT INTO contact_access (id, employer_id, jobseeker_id, credits_spent, access_expires_at, is_active, revealed_email, revealed_phone, revealed_current_company)
		VALUES ($1, $2, $3, $4, $5, true, $6, $7, $8)
		RETURNING access_granted_at
	`, a.ID, a.EmployerID, a.JobSeekerID, a.CreditsSpent, a.AccessExpiresAt, a.RevealedEmail, a.RevealedPhone, a.RevealedCurrentCompany).Scan(&a.AccessGrantedAt)
}

const findActivePairSQL = `
	SELECT ` + contactColumns + ` FROM contact_access
	WHERE employer_id = $1 AND jobseeker_id = $2 AND is_active
	ORDER BY access_granted_at DESC
	LIMIT 1
`

// FindActivePair returns the active grant for (employer, jobseeker), or
// (nil, nil) when none exists. Active here means is_active only; callers
// decide what to do with an expired grant.
func (r *ContactRepo) FindActivePair(ctx context.Context, employerID, jobseekerID uuid.UUID) (*models.ContactAccess, error) {
	a, err := scanContact(r.pool.QueryRow(ctx, findActivePairSQL, employerID, jobseekerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// FindActivePairTx is FindActivePair inside the reveal transaction. It runs
// after the employer's balance row is locked, so it sees grants committed by
// rival reveals that held the lock first.
func (r *ContactRepo) FindActivePairTx(ctx context.Context, tx pgx.Tx, employerID, jobseekerID uuid.UUID) (*models.ContactAccess, error) {
	a, err := scanContact(tx.QueryRow(ctx, findActivePairSQL, employerID, jobseekerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// Deactivate marks a grant inactive (lazy expiry or supersession).
func (r *ContactRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE contact_access SET is_active = false WHERE id = $1`, id)
	return err
}

// DeactivateTx retires an expired grant inside the transaction that
// supersedes it.
func (r *ContactRepo) DeactivateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE contact_access SET is_active = false WHERE id = $1`, id)
	return err
}

// ListActiveByEmployer returns the employer's active, unexpired grants,
// newest first.
func (r *ContactRepo) ListActiveByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.ContactAccess, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+contactColumns+` FROM contact_access
		WHERE employer_id = $1 AND is_active AND access_expires_at > now()
		ORDER BY access_granted_at DESC
	`, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.ContactAccess
	for rows.Next() {
		a, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ListAll returns every grant, newest first (admin view).
func (r *ContactRepo) ListAll(ctx context.Context) ([]*models.ContactAccess, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+contactColumns+` FROM contact_access ORDER BY access_granted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.ContactAccess
	for rows.Next() {
		a, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
