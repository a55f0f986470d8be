package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/waytrackhq/waytrack-backend/api/middleware"
	"github.com/waytrackhq/waytrack-backend/internal/events"
	"github.com/waytrackhq/waytrack-backend/internal/journeys"
	"github.com/waytrackhq/waytrack-backend/pkg/types"
)

type controllerTx struct {
	db *gorm.DB
}

func (t *controllerTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

func setupJourneyController(t *testing.T) (*journeys.Service, http.Handler) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	schema := `
CREATE TABLE IF NOT EXISTS journeys (
  id TEXT PRIMARY KEY,
  owner_user_id TEXT NOT NULL,
  start_location TEXT NOT NULL,
  start_time DATETIME NOT NULL,
  arrival_location TEXT NOT NULL,
  arrival_time DATETIME NOT NULL,
  transport_type TEXT NOT NULL,
  distance_km NUMERIC NOT NULL,
  is_goal_achieved BOOLEAN NOT NULL DEFAULT 0,
  is_deleted BOOLEAN NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	if err := db.Exec(schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	svc := journeys.NewService(journeys.NewRepository(db), &controllerTx{db: db}, events.NewBus(), nil)

	r := chi.NewRouter()
	r.Route("/v1/journeys", func(r chi.Router) {
		r.Post("/", JourneyCreate(svc, nil))
		r.Get("/", JourneyList(svc, nil))
		r.Get("/{journeyId}", JourneyDetail(svc, nil))
		r.Put("/{journeyId}", JourneyUpdate(svc, nil))
		r.Delete("/{journeyId}", JourneyDelete(svc, nil))
	})
	return svc, r
}

func journeyBody(distance string) []byte {
	payload := map[string]any{
		"startLocation":   "Amsterdam",
		"startTime":       "2026-08-05T08:30:00Z",
		"arrivalLocation": "Utrecht",
		"arrivalTime":     "2026-08-05T09:05:00Z",
		"transportType":   "train",
		"distanceKm":      distance,
	}
	body, _ := json.Marshal(payload)
	return body
}

func doRequest(t *testing.T, handler http.Handler, method, path, userID string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestJourneyCreateReturnsCreatedJourney(t *testing.T) {
	_, handler := setupJourneyController(t)

	rec := doRequest(t, handler, http.MethodPost, "/v1/journeys", "auth0|walker-1", journeyBody("35.50"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected payload %T", envelope.Data)
	}
	if data["ownerUserId"] != "auth0|walker-1" {
		t.Fatalf("expected caller as owner, got %v", data["ownerUserId"])
	}
	if data["distanceKm"] != "35.5" && data["distanceKm"] != "35.50" {
		t.Fatalf("expected distance echoed back, got %v", data["distanceKm"])
	}
}

func TestJourneyCreateRejectsBadPayloads(t *testing.T) {
	_, handler := setupJourneyController(t)

	cases := map[string][]byte{
		"unparseable distance": journeyBody("twenty"),
		"three decimals":       journeyBody("12.345"),
		"negative distance":    journeyBody("-1.00"),
		"unknown field":        []byte(`{"startLocation":"A","speed":99}`),
	}
	for name, body := range cases {
		rec := doRequest(t, handler, http.MethodPost, "/v1/journeys", "auth0|walker-1", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d: %s", name, rec.Code, rec.Body.String())
		}
	}
}

func TestJourneyCreateRequiresAuthenticatedUser(t *testing.T) {
	_, handler := setupJourneyController(t)

	rec := doRequest(t, handler, http.MethodPost, "/v1/journeys", "", journeyBody("10.00"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJourneyUpdateEnforcesOwnership(t *testing.T) {
	svc, handler := setupJourneyController(t)

	created, err := svc.Create(context.Background(), "auth0|walker-1", mustInput(t, "10.00"))
	if err != nil {
		t.Fatalf("seed journey: %v", err)
	}

	rec := doRequest(t, handler, http.MethodPut, "/v1/journeys/"+created.ID.String(), "auth0|walker-2", journeyBody("11.00"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign journey, got %d", rec.Code)
	}
}

func TestJourneyDetailAndDelete(t *testing.T) {
	svc, handler := setupJourneyController(t)

	created, err := svc.Create(context.Background(), "auth0|walker-1", mustInput(t, "10.00"))
	if err != nil {
		t.Fatalf("seed journey: %v", err)
	}

	rec := doRequest(t, handler, http.MethodGet, "/v1/journeys/"+created.ID.String(), "auth0|walker-2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("journeys are readable by any authenticated user, got %d", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodDelete, "/v1/journeys/"+created.ID.String(), "auth0|walker-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected delete to succeed, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, http.MethodGet, "/v1/journeys/"+created.ID.String(), "auth0|walker-1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted journey must read as missing, got %d", rec.Code)
	}
}

func TestJourneyListPaginates(t *testing.T) {
	svc, handler := setupJourneyController(t)

	for i := 0; i < 3; i++ {
		input := mustInput(t, "5.00")
		input.StartTime = input.StartTime.Add(time.Duration(i) * time.Hour)
		input.ArrivalTime = input.StartTime.Add(30 * time.Minute)
		if _, err := svc.Create(context.Background(), "auth0|walker-1", input); err != nil {
			t.Fatalf("seed journey: %v", err)
		}
	}

	rec := doRequest(t, handler, http.MethodGet, "/v1/journeys?page=1&pageSize=2", "auth0|walker-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Data journeys.JourneyPage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 2 || envelope.Data.Total != 3 {
		t.Fatalf("expected 2 of 3 items, got %d of %d", len(envelope.Data.Items), envelope.Data.Total)
	}

	rec = doRequest(t, handler, http.MethodGet, "/v1/journeys?pageSize=0", "auth0|walker-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range page size, got %d", rec.Code)
	}
}

func mustInput(t *testing.T, distance string) journeys.JourneyInput {
	t.Helper()
	payload := journeyPayload{}
	if err := json.Unmarshal(journeyBody(distance), &payload); err != nil {
		t.Fatalf("build payload: %v", err)
	}
	input, err := payload.toInput()
	if err != nil {
		t.Fatalf("build input: %v", err)
	}
	return input
}
