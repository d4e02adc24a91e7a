package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentboard/backend/internal/models"
)

// ErrUserNotFound is returned when an admin adjustment targets a missing user.
var ErrUserNotFound = errors.New("user not found")

// AdminCreditService performs manual balance adjustments. Additions land
// in the free bucket (manual grants are bonus credit, not purchased
// credit); deductions follow the same paid-first order as ordinary spends.
type AdminCreditService struct {
	Pool   TxBeginner
	Engine *CreditEngine
}

func NewAdminCreditService(pool TxBeginner, engine *CreditEngine) *AdminCreditService {
	return &AdminCreditService{Pool: pool, Engine: engine}
}

func (s *AdminCreditService) AddCredits(ctx context.Context, adminID, userID uuid.UUID, amount int, description string) (*models.CreditTransaction, error) {
	return s.adjust(ctx, userID, func(tx pgx.Tx) (*models.CreditTransaction, error) {
		return s.Engine.Add(ctx, tx, Delta{
			UserID:      userID,
			Amount:      amount,
			Type:        models.TxTypeAdminAdd,
			Category:    models.CategoryAdminAdjustment,
			Description: description,
			ActorID:     &adminID,
		})
	})
}

func (s *AdminCreditService) DeductCredits(ctx context.Context, adminID, userID uuid.UUID, amount int, description string) (*models.CreditTransaction, error) {
	return s.adjust(ctx, userID, func(tx pgx.Tx) (*models.CreditTransaction, error) {
		return s.Engine.Spend(ctx, tx, Delta{
			UserID:      userID,
			Amount:      amount,
			Type:        models.TxTypeAdminDeduct,
			Category:    models.CategoryAdminAdjustment,
			Description: description,
			ActorID:     &adminID,
		})
	})
}

func (s *AdminCreditService) adjust(ctx context.Context, userID uuid.UUID, op func(pgx.Tx) (*models.CreditTransaction, error)) (*models.CreditTransaction, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := op(tx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}
