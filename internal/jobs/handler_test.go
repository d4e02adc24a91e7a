package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentboard/backend/internal/middleware"
)

type mockStore struct {
	mu       sync.Mutex
	postings map[uuid.UUID]*Posting
}

func newMockStore() *mockStore { return &mockStore{postings: make(map[uuid.UUID]*Posting)} }

func (m *mockStore) Create(_ context.Context, p *Posting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.postings[p.ID] = &cp
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id uuid.UUID) (*Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.postings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockStore) ListOpen(_ context.Context, skill string) ([]*Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Posting
	for _, p := range m.postings {
		if !p.IsOpen {
			continue
		}
		if skill != "" && !contains(p.RequiredSkills, skill) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockStore) ListByEmployer(_ context.Context, employerID uuid.UUID) ([]*Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Posting
	for _, p := range m.postings {
		if p.EmployerID == employerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockStore) Close(_ context.Context, id, employerID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.postings[id]
	if !ok || p.EmployerID != employerID || !p.IsOpen {
		return false, nil
	}
	p.IsOpen = false
	return true, nil
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func asEmployer(req *http.Request, employerID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), &middleware.Identity{UserID: employerID, Role: "employer"}))
}

func TestCreatePosting(t *testing.T) {
	store := newMockStore()
	h := NewHandler(store, nil)
	employerID := uuid.New()

	body, _ := json.Marshal(createPostingRequest{
		Title:          "Backend Engineer",
		Description:    "Go services",
		RequiredSkills: []string{"Go", "Postgres"},
		Location:       "Remote",
	})
	req := asEmployer(httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body)), employerID)
	rec := httptest.NewRecorder()
	h.CreatePosting(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body.String())
	}
	var got Posting
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.EmployerID != employerID || !got.IsOpen {
		t.Errorf("posting: %+v", got)
	}

	// Missing fields rejected.
	req = asEmployer(httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader([]byte(`{"title":"x"}`))), employerID)
	rec = httptest.NewRecorder()
	h.CreatePosting(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("incomplete posting: status %d, want 400", rec.Code)
	}

	// Inverted salary range rejected.
	lo, hi := 90000, 60000
	body, _ = json.Marshal(createPostingRequest{Title: "t", Description: "d", RequiredSkills: []string{"Go"}, SalaryMin: &lo, SalaryMax: &hi})
	req = asEmployer(httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body)), employerID)
	rec = httptest.NewRecorder()
	h.CreatePosting(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("inverted salary: status %d, want 400", rec.Code)
	}
}

func TestClosePostingOwnership(t *testing.T) {
	store := newMockStore()
	h := NewHandler(store, nil)
	owner := uuid.New()
	stranger := uuid.New()

	posting := &Posting{ID: uuid.New(), EmployerID: owner, Title: "t", IsOpen: true}
	_ = store.Create(context.Background(), posting)

	close := func(as uuid.UUID) int {
		req := asEmployer(httptest.NewRequest(http.MethodPost, "/api/v1/jobs/"+posting.ID.String()+"/close", nil), as)
		req.SetPathValue("id", posting.ID.String())
		rec := httptest.NewRecorder()
		h.ClosePosting(rec, req)
		return rec.Code
	}

	if got := close(stranger); got != http.StatusConflict {
		t.Errorf("stranger close: status %d, want 409", got)
	}
	if got := close(owner); got != http.StatusOK {
		t.Errorf("owner close: status %d, want 200", got)
	}
	if got := close(owner); got != http.StatusConflict {
		t.Errorf("double close: status %d, want 409", got)
	}
}

func TestListOpenPostingsSkillFilter(t *testing.T) {
	store := newMockStore()
	h := NewHandler(store, nil)
	employerID := uuid.New()

	_ = store.Create(context.Background(), &Posting{ID: uuid.New(), EmployerID: employerID, RequiredSkills: []string{"Go"}, IsOpen: true})
	_ = store.Create(context.Background(), &Posting{ID: uuid.New(), EmployerID: employerID, RequiredSkills: []string{"React"}, IsOpen: true})
	_ = store.Create(context.Background(), &Posting{ID: uuid.New(), EmployerID: employerID, RequiredSkills: []string{"Go"}, IsOpen: false})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs?skill=Go", nil)
	rec := httptest.NewRecorder()
	h.ListPostings(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var got []*Posting
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("filtered postings: got %d, want 1", len(got))
	}
}
