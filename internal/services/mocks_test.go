package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/talentboard/backend/internal/models"
)

// --- noopTx satisfies pgx.Tx for test use; only Commit/Rollback are called. ---

type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

type mockPool struct{}

func (mockPool) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }

// --- row-lock pool: transactions hold per-user locks until Commit or
// Rollback, mimicking SELECT ... FOR UPDATE serialization. ---

type rowLockPool struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newRowLockPool() *rowLockPool {
	return &rowLockPool{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (p *rowLockPool) Begin(context.Context) (pgx.Tx, error) {
	return &rowLockTx{noopTx: noopTx{}, pool: p, held: make(map[uuid.UUID]*sync.Mutex)}, nil
}

type rowLockTx struct {
	noopTx
	pool *rowLockPool
	held map[uuid.UUID]*sync.Mutex
}

// lockRow blocks until the row lock is available. Re-locking a row this
// transaction already holds is a no-op, like in Postgres.
func (t *rowLockTx) lockRow(id uuid.UUID) {
	if _, ok := t.held[id]; ok {
		return
	}
	t.pool.mu.Lock()
	m, ok := t.pool.locks[id]
	if !ok {
		m = &sync.Mutex{}
		t.pool.locks[id] = m
	}
	t.pool.mu.Unlock()
	m.Lock()
	t.held[id] = m
}

func (t *rowLockTx) Commit(context.Context) error   { t.release(); return nil }
func (t *rowLockTx) Rollback(context.Context) error { t.release(); return nil }

func (t *rowLockTx) release() {
	for id, m := range t.held {
		m.Unlock()
		delete(t.held, id)
	}
}

// --- user store mock: balances plus lookups ---

type mockUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMockUsers(users ...*models.User) *mockUsers {
	m := &mockUsers{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		cp := *u
		m.users[u.ID] = &cp
	}
	return m
}

func (m *mockUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *mockUsers) GetForUpdate(_ context.Context, tx pgx.Tx, id uuid.UUID) (*models.User, error) {
	if lt, ok := tx.(*rowLockTx); ok {
		lt.lockRow(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *mockUsers) SetBalances(_ context.Context, _ pgx.Tx, id uuid.UUID, free, paid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.CreditsFree = free
	u.CreditsPaid = paid
	return nil
}

func (m *mockUsers) balances(id uuid.UUID) (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	return u.CreditsFree, u.CreditsPaid
}

// --- ledger mock ---

type mockLedger struct {
	mu      sync.Mutex
	entries []*models.CreditTransaction
}

func (m *mockLedger) CreateTx(_ context.Context, _ pgx.Tx, t *models.CreditTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockLedger) all() []*models.CreditTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.CreditTransaction, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *mockLedger) byCategory(category string) []*models.CreditTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.CreditTransaction
	for _, e := range m.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// --- settings mock ---

type mockSettings struct {
	settings models.PlatformSettings
}

func defaultMockSettings() *mockSettings {
	return &mockSettings{settings: models.DefaultSettings()}
}

func (m *mockSettings) Get(_ context.Context) (*models.PlatformSettings, error) {
	cp := m.settings
	return &cp, nil
}

// --- contact grant mock ---

type mockContacts struct {
	mu     sync.Mutex
	grants map[uuid.UUID]*models.ContactAccess
}

func newMockContacts() *mockContacts {
	return &mockContacts{grants: make(map[uuid.UUID]*models.ContactAccess)}
}

func (m *mockContacts) FindActivePair(_ context.Context, employerID, jobseekerID uuid.UUID) (*models.ContactAccess, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.grants {
		if g.IsActive && g.EmployerID == employerID && g.JobSeekerID == jobseekerID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockContacts) FindActivePairTx(ctx context.Context, _ pgx.Tx, employerID, jobseekerID uuid.UUID) (*models.ContactAccess, error) {
	return m.FindActivePair(ctx, employerID, jobseekerID)
}

func (m *mockContacts) Deactivate(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.grants[id]; ok {
		g.IsActive = false
	}
	return nil
}

func (m *mockContacts) DeactivateTx(ctx context.Context, _ pgx.Tx, id uuid.UUID) error {
	return m.Deactivate(ctx, id)
}

func (m *mockContacts) CreateTx(_ context.Context, _ pgx.Tx, a *models.ContactAccess) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.grants[a.ID] = &cp
	return nil
}

func (m *mockContacts) ListActiveByEmployer(_ context.Context, employerID uuid.UUID) ([]*models.ContactAccess, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []*models.ContactAccess
	for _, g := range m.grants {
		if g.IsActive && g.EmployerID == employerID && !g.Expired(now) {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- interview request mock with CAS semantics matching the repository ---

type mockRequests struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*models.InterviewRequest
}

func newMockRequests() *mockRequests {
	return &mockRequests{requests: make(map[uuid.UUID]*models.InterviewRequest)}
}

func (m *mockRequests) CreateTx(_ context.Context, _ pgx.Tx, q *models.InterviewRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *q
	m.requests[q.ID] = &cp
	return nil
}

func (m *mockRequests) GetByID(_ context.Context, id uuid.UUID) (*models.InterviewRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *q
	return &cp, nil
}

func (m *mockRequests) Accept(_ context.Context, id, interviewerID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.requests[id]
	if !ok || q.Status != models.RequestPending {
		return false, nil
	}
	now := time.Now()
	q.Status = models.RequestAssigned
	q.InterviewerID = &interviewerID
	q.AssignedAt = &now
	return true, nil
}

func (m *mockRequests) CompleteTx(_ context.Context, _ pgx.Tx, id uuid.UUID, completedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.requests[id]
	if !ok || (q.Status != models.RequestAssigned && q.Status != models.RequestScheduled) {
		return false, nil
	}
	q.Status = models.RequestCompleted
	q.CompletedAt = &completedAt
	return true, nil
}

func (m *mockRequests) AdminUpdate(_ context.Context, id uuid.UUID, u models.InterviewRequestPatch, from string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.requests[id]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if q.Status != from {
		return false, nil
	}
	if u.Status != nil {
		q.Status = *u.Status
	}
	if u.InterviewerID != nil {
		q.InterviewerID = u.InterviewerID
		now := time.Now()
		q.AssignedAt = &now
	}
	if u.ScheduledAt != nil {
		q.ScheduledAt = u.ScheduledAt
	}
	if u.AdminNotes != nil {
		q.AdminNotes = u.AdminNotes
	}
	if u.AssignedBy != nil {
		q.AssignedBy = u.AssignedBy
	}
	return true, nil
}

func (m *mockRequests) ListAvailable(_ context.Context, interviewerID uuid.UUID) ([]*models.InterviewRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.InterviewRequest
	for _, q := range m.requests {
		if q.Status == models.RequestPending {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRequests) ListByJobSeeker(_ context.Context, jobseekerID uuid.UUID, status string) ([]*models.InterviewRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.InterviewRequest
	for _, q := range m.requests {
		if q.JobSeekerID == jobseekerID && (status == "" || q.Status == status) {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRequests) ListByInterviewer(_ context.Context, interviewerID uuid.UUID, status string) ([]*models.InterviewRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.InterviewRequest
	for _, q := range m.requests {
		if q.InterviewerID != nil && *q.InterviewerID == interviewerID && (status == "" || q.Status == status) {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRequests) ListAll(_ context.Context, status string) ([]*models.InterviewRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.InterviewRequest
	for _, q := range m.requests {
		if status == "" || q.Status == status {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- rating mock: newest first, like the repository's ORDER BY ---

type mockRatings struct {
	mu      sync.Mutex
	ratings []*models.InterviewRating
}

func (m *mockRatings) CreateTx(_ context.Context, _ pgx.Tx, rt *models.InterviewRating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rt
	m.ratings = append(m.ratings, &cp)
	return nil
}

func (m *mockRatings) ListByJobSeeker(_ context.Context, jobseekerID uuid.UUID) ([]*models.InterviewRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.InterviewRating
	for i := len(m.ratings) - 1; i >= 0; i-- {
		if m.ratings[i].JobSeekerID == jobseekerID {
			cp := *m.ratings[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRatings) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ratings)
}

// --- profile mock: contact snapshots, matching input, interviewer stats ---

type mockProfiles struct {
	mu           sync.Mutex
	jobseekers   map[uuid.UUID]*models.JobSeekerProfile
	interviewers []*models.InterviewerProfile
	conducted    map[uuid.UUID]int
}

func newMockProfiles() *mockProfiles {
	return &mockProfiles{
		jobseekers: make(map[uuid.UUID]*models.JobSeekerProfile),
		conducted:  make(map[uuid.UUID]int),
	}
}

func (m *mockProfiles) GetJobSeeker(_ context.Context, userID uuid.UUID) (*models.JobSeekerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.jobseekers[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockProfiles) ListInterviewers(_ context.Context) ([]*models.InterviewerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.InterviewerProfile, len(m.interviewers))
	copy(out, m.interviewers)
	return out, nil
}

func (m *mockProfiles) IncrementInterviewsConducted(_ context.Context, _ pgx.Tx, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conducted[userID]++
	return nil
}
