package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/talentboard/backend/internal/models"
)

func newContactFixture(t *testing.T, employer, jobseeker *models.User) (*ContactService, *mockUsers, *mockContacts, *mockLedger, *mockProfiles) {
	t.Helper()
	users := newMockUsers(employer, jobseeker)
	contacts := newMockContacts()
	ledger := &mockLedger{}
	profiles := newMockProfiles()
	svc := NewContactService(mockPool{}, NewCreditEngine(users, ledger), users, contacts, profiles, defaultMockSettings())
	return svc, users, contacts, ledger, profiles
}

func TestRevealChargesAndSnapshots(t *testing.T) {
	phone := "+1-555-0100"
	employer := &models.User{ID: uuid.New(), Role: models.RoleEmployer, CreditsPaid: 15000}
	jobseeker := &models.User{ID: uuid.New(), Role: models.RoleJobSeeker, Email: "dev@example.com", Phone: &phone}

	svc, users, _, ledger, profiles := newContactFixture(t, employer, jobseeker)
	profiles.jobseekers[jobseeker.ID] = &models.JobSeekerProfile{
		UserID:     jobseeker.ID,
		Experience: []models.Experience{{Company: "Acme", Position: "Engineer", StartDate: "2023-01"}},
	}

	grant, created, err := svc.Reveal(context.Background(), employer.ID, jobseeker.ID)
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if !created {
		t.Fatal("first reveal should create a grant")
	}
	if grant.RevealedEmail != "dev@example.com" {
		t.Errorf("revealed email: got %q", grant.RevealedEmail)
	}
	if grant.RevealedPhone == nil || *grant.RevealedPhone != phone {
		t.Error("revealed phone not snapshotted")
	}
	if grant.RevealedCurrentCompany == nil || *grant.RevealedCurrentCompany != "Acme" {
		t.Error("current company not snapshotted from the profile")
	}
	if grant.CreditsSpent != 10000 {
		t.Errorf("credits spent: got %d, want 10000", grant.CreditsSpent)
	}

	free, paid := users.balances(employer.ID)
	if free != 0 || paid != 5000 {
		t.Errorf("employer balances: got free=%d paid=%d, want free=0 paid=5000", free, paid)
	}
	spends := ledger.byCategory(models.CategoryContactReveal)
	if len(spends) != 1 {
		t.Fatalf("reveal ledger entries: got %d, want 1", len(spends))
	}
	if spends[0].ReferenceID == nil || *spends[0].ReferenceID != grant.ID {
		t.Error("spend should reference the grant")
	}
}

func TestRevealIdempotentWhileActive(t *testing.T) {
	employer := &models.User{ID: uuid.New(), Role: models.RoleEmployer, CreditsPaid: 30000}
	jobseeker := &models.User{ID: uuid.New(), Role: models.RoleJobSeeker, Email: "a@b.c"}

	svc, _, _, ledger, _ := newContactFixture(t, employer, jobseeker)
	ctx := context.Background()

	first, created, err := svc.Reveal(ctx, employer.ID, jobseeker.ID)
	if err != nil || !created {
		t.Fatalf("first reveal: err=%v created=%v", err, created)
	}
	second, created, err := svc.Reveal(ctx, employer.ID, jobseeker.ID)
	if err != nil {
		t.Fatalf("second reveal: %v", err)
	}
	if created {
		t.Error("second reveal must not create a new grant")
	}
	if second.ID != first.ID {
		t.Error("second reveal should return the existing grant")
	}
	if len(ledger.all()) != 1 {
		t.Errorf("ledger entries after double reveal: got %d, want 1", len(ledger.all()))
	}
}

func TestRevealSupersedesExpiredGrant(t *testing.T) {
	employer := &models.User{ID: uuid.New(), Role: models.RoleEmployer, CreditsPaid: 30000}
	jobseeker := &models.User{ID: uuid.New(), Role: models.RoleJobSeeker, Email: "a@b.c"}

	svc, _, contacts, ledger, _ := newContactFixture(t, employer, jobseeker)
	ctx := context.Background()

	first, _, err := svc.Reveal(ctx, employer.ID, jobseeker.ID)
	if err != nil {
		t.Fatalf("first reveal: %v", err)
	}

	// Jump past expiry.
	svc.now = func() time.Time { return first.AccessExpiresAt.Add(time.Hour) }

	second, created, err := svc.Reveal(ctx, employer.ID, jobseeker.ID)
	if err != nil {
		t.Fatalf("reveal after expiry: %v", err)
	}
	if !created || second.ID == first.ID {
		t.Error("expired grant should be superseded by a new one")
	}
	if got := contacts.grants[first.ID]; got.IsActive {
		t.Error("expired grant should be deactivated")
	}
	if len(ledger.all()) != 2 {
		t.Errorf("two reveals should cost twice: got %d entries", len(ledger.all()))
	}
}

func TestRevealRaceGrantsOnce(t *testing.T) {
	employer := &models.User{ID: uuid.New(), Role: models.RoleEmployer, CreditsPaid: 100000}
	jobseeker := &models.User{ID: uuid.New(), Role: models.RoleJobSeeker, Email: "a@b.c"}

	users := newMockUsers(employer, jobseeker)
	contacts := newMockContacts()
	ledger := &mockLedger{}
	svc := NewContactService(newRowLockPool(), NewCreditEngine(users, ledger), users, contacts, newMockProfiles(), defaultMockSettings())

	const racers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, isNew, err := svc.Reveal(context.Background(), employer.ID, jobseeker.ID)
			if err != nil {
				t.Errorf("concurrent reveal: %v", err)
				return
			}
			if isNew {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("grants created: got %d, want 1", created)
	}
	if got := ledger.byCategory(models.CategoryContactReveal); len(got) != 1 {
		t.Errorf("reveal charges: got %d, want 1", len(got))
	}
	active := 0
	for _, g := range contacts.grants {
		if g.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("active grants for the pair: got %d, want 1", active)
	}
	free, paid := users.balances(employer.ID)
	if free != 0 || paid != 90000 {
		t.Errorf("employer balances: got free=%d paid=%d, want free=0 paid=90000", free, paid)
	}
}

// blindPairContacts hides grants from the pool-level lookup, standing in
// for a rival reveal that commits between that lookup and the locked
// re-check inside the transaction.
type blindPairContacts struct {
	*mockContacts
}

func (b *blindPairContacts) FindActivePair(context.Context, uuid.UUID, uuid.UUID) (*models.ContactAccess, error) {
	return nil, nil
}

func TestRevealSeesRivalGrantInsideTx(t *testing.T) {
	employer := &models.User{ID: uuid.New(), Role: models.RoleEmployer, CreditsPaid: 30000}
	jobseeker := &models.User{ID: uuid.New(), Role: models.RoleJobSeeker, Email: "a@b.c"}

	users := newMockUsers(employer, jobseeker)
	inner := newMockContacts()
	rival := &models.ContactAccess{
		ID:              uuid.New(),
		EmployerID:      employer.ID,
		JobSeekerID:     jobseeker.ID,
		IsActive:        true,
		AccessExpiresAt: time.Now().Add(time.Hour),
	}
	inner.grants[rival.ID] = rival
	ledger := &mockLedger{}
	svc := NewContactService(mockPool{}, NewCreditEngine(users, ledger), users, &blindPairContacts{inner}, newMockProfiles(), defaultMockSettings())

	got, created, err := svc.Reveal(context.Background(), employer.ID, jobseeker.ID)
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if created {
		t.Error("the rival's grant should win; no new grant")
	}
	if got.ID != rival.ID {
		t.Errorf("returned grant: got %s, want the rival's %s", got.ID, rival.ID)
	}
	if len(ledger.all()) != 0 {
		t.Errorf("no charge when the re-check finds an active grant: got %d entries", len(ledger.all()))
	}
	if free, paid := users.balances(employer.ID); free != 0 || paid != 30000 {
		t.Errorf("balances must be untouched: got free=%d paid=%d", free, paid)
	}
}

func TestRevealTargetValidation(t *testing.T) {
	employer := &models.User{ID: uuid.New(), Role: models.RoleEmployer, CreditsPaid: 30000}
	otherEmployer := &models.User{ID: uuid.New(), Role: models.RoleEmployer}

	svc, _, _, _, _ := newContactFixture(t, employer, otherEmployer)
	ctx := context.Background()

	if _, _, err := svc.Reveal(ctx, employer.ID, uuid.New()); !errors.Is(err, ErrJobSeekerNotFound) {
		t.Errorf("unknown target: expected ErrJobSeekerNotFound, got %v", err)
	}
	if _, _, err := svc.Reveal(ctx, employer.ID, otherEmployer.ID); !errors.Is(err, ErrNotAJobSeeker) {
		t.Errorf("wrong role target: expected ErrNotAJobSeeker, got %v", err)
	}
}

func TestRevealInsufficientCredits(t *testing.T) {
	employer := &models.User{ID: uuid.New(), Role: models.RoleEmployer, CreditsFree: 9999}
	jobseeker := &models.User{ID: uuid.New(), Role: models.RoleJobSeeker, Email: "a@b.c"}

	svc, users, contacts, _, _ := newContactFixture(t, employer, jobseeker)

	_, _, err := svc.Reveal(context.Background(), employer.ID, jobseeker.ID)
	var insufficient *InsufficientCreditsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientCreditsError, got %v", err)
	}
	free, _ := users.balances(employer.ID)
	if free != 9999 {
		t.Error("failed reveal must not touch balances")
	}
	if len(contacts.grants) != 0 {
		t.Error("failed reveal must not create a grant")
	}
}

func TestCheckAccessLazyExpiry(t *testing.T) {
	employer := &models.User{ID: uuid.New(), Role: models.RoleEmployer, CreditsPaid: 30000}
	jobseeker := &models.User{ID: uuid.New(), Role: models.RoleJobSeeker, Email: "a@b.c"}

	svc, _, contacts, _, _ := newContactFixture(t, employer, jobseeker)
	ctx := context.Background()

	grant, _, err := svc.Reveal(ctx, employer.ID, jobseeker.ID)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}

	if _, has, err := svc.CheckAccess(ctx, employer.ID, jobseeker.ID); err != nil || !has {
		t.Fatalf("active grant: has=%v err=%v", has, err)
	}

	svc.now = func() time.Time { return grant.AccessExpiresAt.Add(time.Minute) }

	if _, has, err := svc.CheckAccess(ctx, employer.ID, jobseeker.ID); err != nil || has {
		t.Fatalf("expired grant: has=%v err=%v", has, err)
	}
	if contacts.grants[grant.ID].IsActive {
		t.Error("check should deactivate the expired grant")
	}
}
