package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentboard/backend/internal/models"
)

// ErrInvalidAmount is returned when a credit delta is requested with a
// non-positive magnitude.
var ErrInvalidAmount = errors.New("amount must be positive")

// InsufficientCreditsError rejects a spend that exceeds the user's total
// balance. No state is mutated.
type InsufficientCreditsError struct {
	Required  int
	Available int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, available %d", e.Required, e.Available)
}

// CreditUserStore is the minimal user balance interface for the engine.
type CreditUserStore interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.User, error)
	SetBalances(ctx context.Context, tx pgx.Tx, id uuid.UUID, free, paid int) error
}

// CreditLedgerStore is the minimal transaction-append interface for the engine.
type CreditLedgerStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, t *models.CreditTransaction) error
}

// CreditEngine is the only path through which balances change. Every
// mutation locks the user row, writes the new bucket balances, and appends
// a ledger entry snapshotting them, all inside the caller's transaction.
type CreditEngine struct {
	Users  CreditUserStore
	Ledger CreditLedgerStore
}

func NewCreditEngine(users CreditUserStore, ledger CreditLedgerStore) *CreditEngine {
	return &CreditEngine{Users: users, Ledger: ledger}
}

// Delta describes one balance mutation. Amount is always the positive
// magnitude; Spend negates it on the ledger entry.
type Delta struct {
	UserID        uuid.UUID
	Amount        int
	Type          string
	Category      string
	Description   string
	ReferenceID   *uuid.UUID
	ReferenceType *string
	ActorID       *uuid.UUID
}

// Spend deducts d.Amount from the user, paid bucket first, then free for
// any remainder. Paid credits are purchased and consumed first; free
// credits (bonuses, earnings) are the last resort. Fails with
// InsufficientCreditsError when free+paid < amount, leaving no trace.
func (e *CreditEngine) Spend(ctx context.Context, tx pgx.Tx, d Delta) (*models.CreditTransaction, error) {
	if d.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	user, err := e.Users.GetForUpdate(ctx, tx, d.UserID)
	if err != nil {
		return nil, err
	}
	if user.TotalCredits() < d.Amount {
		return nil, &InsufficientCreditsError{Required: d.Amount, Available: user.TotalCredits()}
	}

	newPaid := user.CreditsPaid - d.Amount
	newFree := user.CreditsFree
	if newPaid < 0 {
		newFree += newPaid
		newPaid = 0
	}

	if err := e.Users.SetBalances(ctx, tx, d.UserID, newFree, newPaid); err != nil {
		return nil, err
	}
	return e.append(ctx, tx, d, -d.Amount, newFree, newPaid)
}

// Add credits d.Amount to the user's free bucket. Earned, bonus, and
// admin-granted credit is never treated as purchased credit.
func (e *CreditEngine) Add(ctx context.Context, tx pgx.Tx, d Delta) (*models.CreditTransaction, error) {
	if d.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	user, err := e.Users.GetForUpdate(ctx, tx, d.UserID)
	if err != nil {
		return nil, err
	}
	newFree := user.CreditsFree + d.Amount
	if err := e.Users.SetBalances(ctx, tx, d.UserID, newFree, user.CreditsPaid); err != nil {
		return nil, err
	}
	return e.append(ctx, tx, d, d.Amount, newFree, user.CreditsPaid)
}

func (e *CreditEngine) append(ctx context.Context, tx pgx.Tx, d Delta, signed, free, paid int) (*models.CreditTransaction, error) {
	entry := &models.CreditTransaction{
		ID:            uuid.New(),
		UserID:        d.UserID,
		Amount:        signed,
		Type:          d.Type,
		Category:      d.Category,
		Description:   d.Description,
		ReferenceID:   d.ReferenceID,
		ReferenceType: d.ReferenceType,
		BalanceFree:   free,
		BalancePaid:   paid,
		ActorID:       d.ActorID,
	}
	if err := e.Ledger.CreateTx(ctx, tx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
