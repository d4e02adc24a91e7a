package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentboard/backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, email, phone, full_name, role, password_hash, credits_free, credits_paid, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Phone, &u.FullName, &u.Role, &u.PasswordHash, &u.CreditsFree, &u.CreditsPaid, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateTx inserts a user inside the given transaction so registration and
// its signup bonus land atomically.
func (r *UserRepo) CreateTx(ctx context.Context, tx pgx.Tx, u *models.User) error {
	return tx.QueryRow(ctx, `
		INSERT INTO users (id, email, phone, full_name, role, password_hash, credits_free, credits_paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.Phone, u.FullName, u.Role, u.PasswordHash, u.CreditsFree, u.CreditsPaid).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetForUpdate locks the user row for the duration of the transaction.
// Every balance mutation goes through this lock, serializing per-user
// ledger operations.
func (r *UserRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.User, error) {
	return scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
}

// SetBalances writes both buckets. Call only after GetForUpdate in the
// same transaction; the CHECK constraints keep either bucket from going
// negative even if a caller miscomputes.
func (r *UserRepo) SetBalances(ctx context.Context, tx pgx.Tx, id uuid.UUID, free, paid int) error {
	_, err := tx.Exec(ctx, `
		UPDATE users SET credits_free = $2, credits_paid = $3, updated_at = now() WHERE id = $1
	`, id, free, paid)
	return err
}

func (r *UserRepo) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
