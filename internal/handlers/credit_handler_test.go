package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/talentboard/backend/internal/middleware"
	"github.com/talentboard/backend/internal/models"
)

type stubSettingsStore struct {
	settings models.PlatformSettings
	gets     int
	updates  int
	lastBy   uuid.UUID
}

func (s *stubSettingsStore) Get(context.Context) (*models.PlatformSettings, error) {
	s.gets++
	cp := s.settings
	return &cp, nil
}

func (s *stubSettingsStore) Update(_ context.Context, patch models.PlatformSettingsUpdate, adminID uuid.UUID) (*models.PlatformSettings, error) {
	s.updates++
	s.lastBy = adminID
	if patch.ContactRevealCost != nil {
		s.settings.ContactRevealCost = *patch.ContactRevealCost
	}
	if patch.InterviewRequestCost != nil {
		s.settings.InterviewRequestCost = *patch.InterviewRequestCost
	}
	s.settings.UpdatedBy = &adminID
	cp := s.settings
	return &cp, nil
}

func asAdmin(r *http.Request, adminID uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), &middleware.Identity{
		UserID: adminID,
		Role:   models.RoleAdmin,
	}))
}

func TestUpdateSettingsReturnsStampedRow(t *testing.T) {
	store := &stubSettingsStore{settings: models.DefaultSettings()}
	h := &CreditHandler{Settings: store, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	adminID := uuid.New()

	r := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/settings", strings.NewReader(`{"contact_reveal_cost": 12000}`))
	w := httptest.NewRecorder()
	h.UpdateSettings(w, asAdmin(r, adminID))

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	var got models.PlatformSettings
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ContactRevealCost != 12000 {
		t.Errorf("contact reveal cost: got %d, want 12000", got.ContactRevealCost)
	}
	if got.InterviewRequestCost != 5000 {
		t.Errorf("untouched field changed: interview request cost %d", got.InterviewRequestCost)
	}
	if got.UpdatedBy == nil || *got.UpdatedBy != adminID {
		t.Error("response should carry the acting admin stamp")
	}
	if store.lastBy != adminID {
		t.Error("update should stamp the acting admin")
	}
	if store.updates != 1 || store.gets != 0 {
		t.Errorf("store calls: updates=%d gets=%d, want one update and no read-back", store.updates, store.gets)
	}
}

func TestUpdateSettingsRejectsNegativeValues(t *testing.T) {
	store := &stubSettingsStore{settings: models.DefaultSettings()}
	h := &CreditHandler{Settings: store, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	r := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/settings", strings.NewReader(`{"contact_reveal_cost": -1}`))
	w := httptest.NewRecorder()
	h.UpdateSettings(w, asAdmin(r, uuid.New()))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", w.Code)
	}
	if store.updates != 0 {
		t.Error("invalid patch must not reach the store")
	}
}
