package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentboard/backend/internal/models"
)

// TransactionRepo persists the append-only credit ledger. There are no
// update or delete operations on purpose.
type TransactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepo(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const txColumns = `id, user_id, amount, transaction_type, category, description, reference_id, reference_type, balance_free, balance_paid, created_by, created_at`

// CreateTx appends a ledger entry inside the given transaction, in the
// same unit of work as the balance update it snapshots.
func (r *TransactionRepo) CreateTx(ctx context.Context, tx pgx.Tx, t *models.CreditTransaction) error {
	return tx.QueryRow(ctx, `
		INSERT INTO credit_transactions (id, user_id, amount, transaction_type, category, description, reference_id, reference_type, balance_free, balance_paid, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`, t.ID, t.UserID, t.Amount, t.Type, t.Category, t.Description, t.ReferenceID, t.ReferenceType, t.BalanceFree, t.BalancePaid, t.ActorID).Scan(&t.CreatedAt)
}

// TransactionFilter narrows ledger queries. UserID nil means all users
// (admin listing only).
type TransactionFilter struct {
	UserID   *uuid.UUID
	Type     string
	Category string
	Limit    int
	Offset   int
}

func (r *TransactionRepo) List(ctx context.Context, f TransactionFilter) ([]*models.CreditTransaction, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+txColumns+` FROM credit_transactions
		WHERE ($1::uuid IS NULL OR user_id = $1)
		  AND ($2 = '' OR transaction_type = $2)
		  AND ($3 = '' OR category = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, f.UserID, f.Type, f.Category, limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.CreditTransaction
	for rows.Next() {
		var t models.CreditTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Category, &t.Description, &t.ReferenceID, &t.ReferenceType, &t.BalanceFree, &t.BalancePaid, &t.ActorID, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

func (r *TransactionRepo) Count(ctx context.Context, f TransactionFilter) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM credit_transactions
		WHERE ($1::uuid IS NULL OR user_id = $1)
		  AND ($2 = '' OR transaction_type = $2)
		  AND ($3 = '' OR category = $3)
	`, f.UserID, f.Type, f.Category).Scan(&n)
	return n, err
}
