package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/talentboard/backend/internal/models"
)

func TestAdminAddCredits(t *testing.T) {
	target := uuid.New()
	admin := uuid.New()
	users := newMockUsers(user(target, 100, 500))
	ledger := &mockLedger{}
	svc := NewAdminCreditService(mockPool{}, NewCreditEngine(users, ledger))

	entry, err := svc.AddCredits(context.Background(), admin, target, 1000, "support goodwill")
	if err != nil {
		t.Fatalf("AddCredits: %v", err)
	}
	free, paid := users.balances(target)
	if free != 1100 || paid != 500 {
		t.Errorf("balances: got free=%d paid=%d, want free=1100 paid=500", free, paid)
	}
	if entry.Type != models.TxTypeAdminAdd || entry.Category != models.CategoryAdminAdjustment {
		t.Errorf("entry tagging: type=%s category=%s", entry.Type, entry.Category)
	}
	if entry.ActorID == nil || *entry.ActorID != admin {
		t.Error("entry should record the acting admin")
	}
}

func TestAdminDeductCreditsPaidFirst(t *testing.T) {
	target := uuid.New()
	users := newMockUsers(user(target, 300, 100))
	svc := NewAdminCreditService(mockPool{}, NewCreditEngine(users, &mockLedger{}))

	if _, err := svc.DeductCredits(context.Background(), uuid.New(), target, 200, "refund reversal"); err != nil {
		t.Fatalf("DeductCredits: %v", err)
	}
	free, paid := users.balances(target)
	if free != 200 || paid != 0 {
		t.Errorf("balances: got free=%d paid=%d, want free=200 paid=0", free, paid)
	}
}

func TestAdminAdjustErrors(t *testing.T) {
	target := uuid.New()
	users := newMockUsers(user(target, 10, 0))
	svc := NewAdminCreditService(mockPool{}, NewCreditEngine(users, &mockLedger{}))
	ctx := context.Background()

	if _, err := svc.AddCredits(ctx, uuid.New(), uuid.New(), 100, ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user: expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.AddCredits(ctx, uuid.New(), target, 0, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: expected ErrInvalidAmount, got %v", err)
	}
	var insufficient *InsufficientCreditsError
	if _, err := svc.DeductCredits(ctx, uuid.New(), target, 50, ""); !errors.As(err, &insufficient) {
		t.Errorf("over-deduct: expected InsufficientCreditsError, got %v", err)
	}
}
