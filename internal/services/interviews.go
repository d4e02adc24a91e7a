package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentboard/backend/internal/models"
	"github.com/talentboard/backend/internal/notify"
)

var (
	// ErrRequestNotFound is returned when the interview request id does
	// not resolve.
	ErrRequestNotFound = errors.New("interview request not found")
	// ErrRequestNoLongerAvailable is returned to the loser of an accept
	// race, or to anyone accepting a request that already left pending.
	ErrRequestNoLongerAvailable = errors.New("request is no longer available")
	// ErrNotAssignedInterviewer is returned when a rating is submitted by
	// someone other than the assigned interviewer.
	ErrNotAssignedInterviewer = errors.New("caller is not the assigned interviewer")
	// ErrAlreadyRated is returned when a rating already exists for the
	// request. No second payout occurs.
	ErrAlreadyRated = errors.New("rating already submitted for this interview")
	// ErrRequestChanged is returned when a request's status moved between
	// an admin's transition check and the update; re-read and retry.
	ErrRequestChanged = errors.New("request changed concurrently")
	// ErrNoSkills is returned when a request names no skills to verify.
	ErrNoSkills = errors.New("at least one skill to verify is required")
	// ErrNoSkillRatings is returned when a rating carries no skill ratings.
	ErrNoSkillRatings = errors.New("at least one skill rating is required")
)

// InvalidRatingError names the skill whose rating is outside [0.5, 5.0]
// or not a multiple of 0.5.
type InvalidRatingError struct {
	Skill  string
	Rating float64
}

func (e *InvalidRatingError) Error() string {
	return fmt.Sprintf("invalid rating %.2f for %s: must be 0.5-5.0 in 0.5 steps", e.Rating, e.Skill)
}

// InvalidTransitionError rejects a status change absent from the
// transition table.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// InterviewStore is the request repository interface used by the workflow.
type InterviewStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, q *models.InterviewRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InterviewRequest, error)
	Accept(ctx context.Context, id, interviewerID uuid.UUID) (bool, error)
	CompleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, completedAt time.Time) (bool, error)
	AdminUpdate(ctx context.Context, id uuid.UUID, u models.InterviewRequestPatch, from string) (bool, error)
	ListAvailable(ctx context.Context, interviewerID uuid.UUID) ([]*models.InterviewRequest, error)
	ListByJobSeeker(ctx context.Context, jobseekerID uuid.UUID, status string) ([]*models.InterviewRequest, error)
	ListByInterviewer(ctx context.Context, interviewerID uuid.UUID, status string) ([]*models.InterviewRequest, error)
	ListAll(ctx context.Context, status string) ([]*models.InterviewRequest, error)
}

// RatingStore is the rating repository interface used by the workflow.
type RatingStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, rt *models.InterviewRating) error
	ListByJobSeeker(ctx context.Context, jobseekerID uuid.UUID) ([]*models.InterviewRating, error)
}

// InterviewUserStore resolves requesters for the request snapshot.
type InterviewUserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// InterviewProfileStore updates interviewer stats on completion.
type InterviewProfileStore interface {
	IncrementInterviewsConducted(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
}

// InsertNotifyTxFunc enqueues the interviewer-notification job within the
// given transaction. Provided by main using river.Client.InsertTx.
type InsertNotifyTxFunc func(ctx context.Context, tx pgx.Tx, args notify.InterviewersJobArgs) error

// InterviewService drives the verification workflow state machine:
// pending -> assigned -> completed, with cancelled/expired reachable
// through the admin path.
type InterviewService struct {
	Pool         TxBeginner
	Engine       *CreditEngine
	Requests     InterviewStore
	Ratings      RatingStore
	Users        InterviewUserStore
	Profiles     InterviewProfileStore
	Matcher      *Matcher
	Settings     SettingsSource
	InsertNotify InsertNotifyTxFunc

	now func() time.Time
}

func NewInterviewService(pool TxBeginner, engine *CreditEngine, requests InterviewStore, ratings RatingStore, users InterviewUserStore, profiles InterviewProfileStore, matcher *Matcher, settings SettingsSource, insertNotify InsertNotifyTxFunc) *InterviewService {
	return &InterviewService{
		Pool:         pool,
		Engine:       engine,
		Requests:     requests,
		Ratings:      ratings,
		Users:        users,
		Profiles:     profiles,
		Matcher:      matcher,
		Settings:     settings,
		InsertNotify: insertNotify,
		now:          time.Now,
	}
}

// CreateRequest charges the job seeker the interview request cost, persists
// a pending request, and records the matched interviewer set. The charge,
// the request row, and the notification job land in one transaction, so a
// failed charge leaves nothing behind. Zero matches still creates the
// request; no refund happens on matching misses.
func (s *InterviewService) CreateRequest(ctx context.Context, jobseekerID uuid.UUID, skills []string, notes *string) (*models.InterviewRequest, error) {
	if len(skills) == 0 {
		return nil, ErrNoSkills
	}
	jobseeker, err := s.Users.GetByID(ctx, jobseekerID)
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	matched, err := s.Matcher.Match(ctx, skills)
	if err != nil {
		return nil, err
	}

	req := &models.InterviewRequest{
		ID:                   uuid.New(),
		JobSeekerID:          jobseekerID,
		JobSeekerEmail:       jobseeker.Email,
		SkillsToVerify:       skills,
		Status:               models.RequestPending,
		CreditsPaid:          settings.InterviewRequestCost,
		NotifiedInterviewers: matched,
		JobSeekerNotes:       notes,
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	refType := models.RefInterviewRequest
	if _, err := s.Engine.Spend(ctx, tx, Delta{
		UserID:        jobseekerID,
		Amount:        settings.InterviewRequestCost,
		Type:          models.TxTypeSpend,
		Category:      models.CategoryInterviewRequest,
		Description:   "Interview verification request",
		ReferenceID:   &req.ID,
		ReferenceType: &refType,
	}); err != nil {
		return nil, err
	}
	if err := s.Requests.CreateTx(ctx, tx, req); err != nil {
		return nil, err
	}
	if len(matched) > 0 && s.InsertNotify != nil {
		if err := s.InsertNotify(ctx, tx, notify.InterviewersJobArgs{
			RequestID:      req.ID,
			InterviewerIDs: matched,
			Skills:         skills,
		}); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return req, nil
}

// Accept assigns the request to the interviewer iff it is still pending.
// The compare-and-swap on status means two concurrent accepts resolve to
// exactly one winner; the loser gets ErrRequestNoLongerAvailable.
func (s *InterviewService) Accept(ctx context.Context, requestID, interviewerID uuid.UUID) (*models.InterviewRequest, error) {
	ok, err := s.Requests.Accept(ctx, requestID, interviewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := s.Requests.GetByID(ctx, requestID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrRequestNotFound
			}
			return nil, err
		}
		return nil, ErrRequestNoLongerAvailable
	}
	return s.Requests.GetByID(ctx, requestID)
}

// RatingInput is the interviewer's submission after conducting the interview.
type RatingInput struct {
	SkillRatings        []models.SkillRating
	Strengths           *string
	AreasForImprovement *string
	GeneralFeedback     *string
	Recommendation      *string
}

// SubmitRating validates the skill ratings, persists the rating, completes
// the request, and pays the interviewer, atomically. Exactly one rating
// can ever succeed per request: completion is a status CAS that only moves
// assigned or scheduled requests forward, so a concurrent duplicate loses
// and its rating insert rolls back, and a cancelled or expired request
// cannot be rated at all.
func (s *InterviewService) SubmitRating(ctx context.Context, interviewerID, requestID uuid.UUID, in RatingInput) (*models.InterviewRating, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.InterviewerID == nil || *req.InterviewerID != interviewerID {
		return nil, ErrNotAssignedInterviewer
	}
	if req.Status == models.RequestCompleted {
		return nil, ErrAlreadyRated
	}
	if req.Status != models.RequestAssigned && req.Status != models.RequestScheduled {
		return nil, &InvalidTransitionError{From: req.Status, To: models.RequestCompleted}
	}
	if len(in.SkillRatings) == 0 {
		return nil, ErrNoSkillRatings
	}
	sum := 0.0
	for _, sr := range in.SkillRatings {
		if !validRating(sr.Rating) {
			return nil, &InvalidRatingError{Skill: sr.SkillName, Rating: sr.Rating}
		}
		sum += sr.Rating
	}
	overall := math.Round(sum/float64(len(in.SkillRatings))*10) / 10

	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rating := &models.InterviewRating{
		ID:                  uuid.New(),
		InterviewRequestID:  requestID,
		JobSeekerID:         req.JobSeekerID,
		InterviewerID:       interviewerID,
		OverallRating:       overall,
		SkillRatings:        in.SkillRatings,
		Strengths:           in.Strengths,
		AreasForImprovement: in.AreasForImprovement,
		GeneralFeedback:     in.GeneralFeedback,
		Recommendation:      in.Recommendation,
		Verified:            true,
		VerificationDate:    now,
		CreditsEarned:       settings.InterviewCompletionEarning,
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.Ratings.CreateTx(ctx, tx, rating); err != nil {
		return nil, err
	}
	completed, err := s.Requests.CompleteTx(ctx, tx, requestID, now)
	if err != nil {
		return nil, err
	}
	if !completed {
		// Lost to a concurrent submission, or an admin moved the request
		// to a terminal status while this one was in flight.
		current, err := s.Requests.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if current.Status == models.RequestCompleted {
			return nil, ErrAlreadyRated
		}
		return nil, &InvalidTransitionError{From: current.Status, To: models.RequestCompleted}
	}
	if err := s.Profiles.IncrementInterviewsConducted(ctx, tx, interviewerID); err != nil {
		return nil, err
	}
	refType := models.RefInterviewRating
	if _, err := s.Engine.Add(ctx, tx, Delta{
		UserID:        interviewerID,
		Amount:        settings.InterviewCompletionEarning,
		Type:          models.TxTypeEarn,
		Category:      models.CategoryInterviewCompletion,
		Description:   fmt.Sprintf("Interview completed for %s", req.JobSeekerEmail),
		ReferenceID:   &rating.ID,
		ReferenceType: &refType,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rating, nil
}

// validRating checks the value lies in [0.5, 5.0] and is an exact multiple
// of 0.5. The epsilon absorbs float noise in values like 4.5.
func validRating(r float64) bool {
	if r < 0.5 || r > 5.0 {
		return false
	}
	doubled := r * 2
	return math.Abs(doubled-math.Round(doubled)) < 1e-9
}

// AdminUpdateRequest applies a manual change from an admin: reassignment,
// scheduling, notes, or a status move. Status moves are checked against
// the transition table; anything else is rejected. The update carries the
// vetted status in its WHERE clause, so a request that moved under the
// admin's feet (say, a concurrent accept) fails with ErrRequestChanged
// instead of applying a transition that was never checked.
func (s *InterviewService) AdminUpdateRequest(ctx context.Context, adminID, requestID uuid.UUID, patch models.InterviewRequestPatch) (*models.InterviewRequest, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if patch.Status != nil && *patch.Status != req.Status {
		if !models.CanTransition(req.Status, *patch.Status) {
			return nil, &InvalidTransitionError{From: req.Status, To: *patch.Status}
		}
	}
	if patch.InterviewerID != nil {
		patch.AssignedBy = &adminID
	}
	ok, err := s.Requests.AdminUpdate(ctx, requestID, patch, req.Status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRequestChanged
	}
	return s.Requests.GetByID(ctx, requestID)
}

// Verification is a job seeker's public verification state: the latest
// rating is authoritative for badge display, the rest is history.
type Verification struct {
	HasVerification bool                      `json:"has_verification"`
	LatestRating    *models.InterviewRating   `json:"latest_rating,omitempty"`
	AllRatings      []*models.InterviewRating `json:"all_ratings"`
}

// GetVerification returns the most recent rating plus full history.
func (s *InterviewService) GetVerification(ctx context.Context, jobseekerID uuid.UUID) (*Verification, error) {
	ratings, err := s.Ratings.ListByJobSeeker(ctx, jobseekerID)
	if err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return &Verification{AllRatings: []*models.InterviewRating{}}, nil
	}
	return &Verification{
		HasVerification: true,
		LatestRating:    ratings[0],
		AllRatings:      ratings,
	}, nil
}
