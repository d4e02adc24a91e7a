package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentboard/backend/internal/models"
)

var (
	// ErrJobSeekerNotFound is returned when the reveal target does not exist.
	ErrJobSeekerNotFound = errors.New("job seeker not found")
	// ErrNotAJobSeeker is returned when the reveal target exists but does
	// not hold the job seeker role.
	ErrNotAJobSeeker = errors.New("target user is not a job seeker")
)

// TxBeginner abstracts transaction creation so tests don't need a
// pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ContactUserStore resolves reveal targets and locks the paying employer's
// row for the duration of the reveal transaction.
type ContactUserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.User, error)
}

// ContactStore is the grant repository interface used by the manager.
type ContactStore interface {
	FindActivePair(ctx context.Context, employerID, jobseekerID uuid.UUID) (*models.ContactAccess, error)
	FindActivePairTx(ctx context.Context, tx pgx.Tx, employerID, jobseekerID uuid.UUID) (*models.ContactAccess, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	DeactivateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	CreateTx(ctx context.Context, tx pgx.Tx, a *models.ContactAccess) error
	ListActiveByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.ContactAccess, error)
}

// ContactProfileStore supplies the contact snapshot's current-company field.
type ContactProfileStore interface {
	GetJobSeeker(ctx context.Context, userID uuid.UUID) (*models.JobSeekerProfile, error)
}

// SettingsSource supplies costs and durations to the workflow services.
type SettingsSource interface {
	Get(ctx context.Context) (*models.PlatformSettings, error)
}

// ContactService grants time-boxed contact access to employers, charging
// the reveal cost through the credit engine.
type ContactService struct {
	Pool     TxBeginner
	Engine   *CreditEngine
	Users    ContactUserStore
	Contacts ContactStore
	Profiles ContactProfileStore
	Settings SettingsSource

	now func() time.Time
}

func NewContactService(pool TxBeginner, engine *CreditEngine, users ContactUserStore, contacts ContactStore, profiles ContactProfileStore, settings SettingsSource) *ContactService {
	return &ContactService{
		Pool:     pool,
		Engine:   engine,
		Users:    users,
		Contacts: contacts,
		Profiles: profiles,
		Settings: settings,
		now:      time.Now,
	}
}

// Reveal grants the employer access to the job seeker's contact details.
// A still-valid existing grant is returned as-is with no new charge; an
// expired one is deactivated and superseded. The contact fields are
// snapshotted at grant time and never refreshed. The second return value
// is true when a new grant (and spend) was created.
func (s *ContactService) Reveal(ctx context.Context, employerID, jobseekerID uuid.UUID) (*models.ContactAccess, bool, error) {
	existing, err := s.Contacts.FindActivePair(ctx, employerID, jobseekerID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil && !existing.Expired(s.now()) {
		return existing, false, nil
	}

	jobseeker, err := s.Users.GetByID(ctx, jobseekerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrJobSeekerNotFound
		}
		return nil, false, err
	}
	if jobseeker.Role != models.RoleJobSeeker {
		return nil, false, ErrNotAJobSeeker
	}

	var currentCompany *string
	profile, err := s.Profiles.GetJobSeeker(ctx, jobseekerID)
	if err != nil {
		return nil, false, err
	}
	if profile != nil {
		currentCompany = profile.CurrentCompany()
	}

	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	grant := &models.ContactAccess{
		ID:                     uuid.New(),
		EmployerID:             employerID,
		JobSeekerID:            jobseekerID,
		CreditsSpent:           settings.ContactRevealCost,
		AccessGrantedAt:        now,
		AccessExpiresAt:        now.Add(time.Duration(settings.ContactAccessDurationDays) * 24 * time.Hour),
		IsActive:               true,
		RevealedEmail:          jobseeker.Email,
		RevealedPhone:          jobseeker.Phone,
		RevealedCurrentCompany: currentCompany,
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	// Lock the employer's balance row before re-checking the pair.
	// Concurrent reveals for the same pair serialize on this lock, so the
	// re-check sees any grant a rival committed after the lookup above.
	if _, err := s.Users.GetForUpdate(ctx, tx, employerID); err != nil {
		return nil, false, err
	}
	current, err := s.Contacts.FindActivePairTx(ctx, tx, employerID, jobseekerID)
	if err != nil {
		return nil, false, err
	}
	if current != nil {
		if !current.Expired(now) {
			return current, false, nil
		}
		if err := s.Contacts.DeactivateTx(ctx, tx, current.ID); err != nil {
			return nil, false, err
		}
	}

	refType := models.RefContactAccess
	if _, err := s.Engine.Spend(ctx, tx, Delta{
		UserID:        employerID,
		Amount:        settings.ContactRevealCost,
		Type:          models.TxTypeSpend,
		Category:      models.CategoryContactReveal,
		Description:   fmt.Sprintf("Revealed contact for job seeker %s", jobseeker.Email),
		ReferenceID:   &grant.ID,
		ReferenceType: &refType,
	}); err != nil {
		return nil, false, err
	}
	if err := s.Contacts.CreateTx(ctx, tx, grant); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return grant, true, nil
}

// CheckAccess reports whether the employer currently holds an unexpired
// grant for the job seeker. An expired grant found on the way is
// deactivated as a side effect.
func (s *ContactService) CheckAccess(ctx context.Context, employerID, jobseekerID uuid.UUID) (*models.ContactAccess, bool, error) {
	grant, err := s.Contacts.FindActivePair(ctx, employerID, jobseekerID)
	if err != nil {
		return nil, false, err
	}
	if grant == nil {
		return nil, false, nil
	}
	if grant.Expired(s.now()) {
		if err := s.Contacts.Deactivate(ctx, grant.ID); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	return grant, true, nil
}

// ListAccess returns the employer's active, unexpired grants.
func (s *ContactService) ListAccess(ctx context.Context, employerID uuid.UUID) ([]*models.ContactAccess, error) {
	return s.Contacts.ListActiveByEmployer(ctx, employerID)
}
