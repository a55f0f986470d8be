package journeys

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/waytrackhq/waytrack-backend/internal/events"
	"github.com/waytrackhq/waytrack-backend/pkg/enums"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
)

type testTx struct {
	db *gorm.DB
}

func (t *testTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

func setupJourneysTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *events.Bus) {
	t.Helper()
	db := setupJourneysTestDB(t)
	bus := events.NewBus()
	svc := NewService(NewRepository(db), &testTx{db: db}, bus, nil)
	return svc, db, bus
}

func validInput() JourneyInput {
	start := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	return JourneyInput{
		StartLocation:   "Amsterdam Centraal",
		StartTime:       start,
		ArrivalLocation: "Utrecht Centraal",
		ArrivalTime:     start.Add(40 * time.Minute),
		TransportType:   enums.TransportTrain,
		DistanceKm:      decimal.RequireFromString("35.50"),
	}
}

func TestCreateDispatchesCreatedEventAfterCommit(t *testing.T) {
	svc, db, bus := newTestService(t)
	ctx := context.Background()

	var got []JourneyCreated
	bus.Subscribe(string(enums.EventJourneyCreated), func(_ context.Context, e events.Event) error {
		got = append(got, e.(JourneyCreated))
		return nil
	})

	dto, err := svc.Create(ctx, "auth0|walker-1", validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if dto.ID.String() == "" || dto.OwnerUserID != "auth0|walker-1" {
		t.Fatalf("unexpected dto %+v", dto)
	}

	if len(got) != 1 {
		t.Fatalf("expected one created event, got %d", len(got))
	}
	if got[0].JourneyID != dto.ID {
		t.Fatalf("event journey id %s != %s", got[0].JourneyID, dto.ID)
	}
	if !got[0].DistanceKm.Equal(decimal.RequireFromString("35.50")) {
		t.Fatalf("unexpected event distance %s", got[0].DistanceKm)
	}

	var count int64
	if err := db.Table("journeys").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row, got %d", count)
	}
}

func TestCreateValidationFailuresNeverDispatch(t *testing.T) {
	svc, _, bus := newTestService(t)
	ctx := context.Background()

	var dispatched int
	bus.Subscribe(string(enums.EventJourneyCreated), func(context.Context, events.Event) error {
		dispatched++
		return nil
	})

	cases := map[string]func(*JourneyInput){
		"negative distance":    func(in *JourneyInput) { in.DistanceKm = decimal.RequireFromString("-0.01") },
		"too many decimals":    func(in *JourneyInput) { in.DistanceKm = decimal.RequireFromString("1.001") },
		"distance over limit":  func(in *JourneyInput) { in.DistanceKm = decimal.RequireFromString("1000.00") },
		"arrival before start": func(in *JourneyInput) { in.ArrivalTime = in.StartTime.Add(-time.Minute) },
		"unknown transport":    func(in *JourneyInput) { in.TransportType = enums.TransportType("teleport") },
		"empty start location": func(in *JourneyInput) { in.StartLocation = "  " },
	}
	for name, mutate := range cases {
		input := validInput()
		mutate(&input)
		_, err := svc.Create(ctx, "auth0|walker-1", input)
		if err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
		if code := pkgerrors.CodeOf(err); code != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation code, got %s", name, code)
		}
	}
	if dispatched != 0 {
		t.Fatalf("no events expected for rejected input, got %d", dispatched)
	}
}

func TestUpdateEnforcesOwnership(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, "auth0|walker-1", validInput())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err = svc.Update(ctx, "auth0|intruder", dto.ID, validInput())
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	if code := pkgerrors.CodeOf(err); code != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %s", code)
	}
}

func TestDeleteIsSoftAndTerminal(t *testing.T) {
	svc, db, bus := newTestService(t)
	ctx := context.Background()

	var deleted int
	bus.Subscribe(string(enums.EventJourneyDeleted), func(context.Context, events.Event) error {
		deleted++
		return nil
	})

	dto, err := svc.Create(ctx, "auth0|walker-1", validInput())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Delete(ctx, "auth0|walker-1", dto.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected one deleted event, got %d", deleted)
	}

	// Row survives as a soft delete.
	var count int64
	if err := db.Table("journeys").Where("is_deleted = ?", true).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one soft-deleted row, got %d", count)
	}

	if _, err := svc.Get(ctx, dto.ID); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("deleted journey should read as not found, got %v", err)
	}
	if _, err := svc.Update(ctx, "auth0|walker-1", dto.ID, validInput()); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("deleted journey should reject edits, got %v", err)
	}
	if err := svc.Delete(ctx, "auth0|walker-1", dto.ID); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("double delete should be not found, got %v", err)
	}
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		input := validInput()
		input.StartTime = base.Add(time.Duration(i) * time.Hour)
		input.ArrivalTime = input.StartTime.Add(30 * time.Minute)
		if _, err := svc.Create(ctx, "auth0|walker-1", input); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	page, err := svc.List(ctx, "auth0|walker-1", ListParams{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 {
		t.Fatalf("unexpected page total=%d items=%d", page.Total, len(page.Items))
	}
	if !page.Items[0].StartTime.After(page.Items[1].StartTime) {
		t.Fatalf("expected newest first, got %v then %v", page.Items[0].StartTime, page.Items[1].StartTime)
	}

	second, err := svc.List(ctx, "auth0|walker-1", ListParams{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(second.Items) != 1 {
		t.Fatalf("expected one item on last page, got %d", len(second.Items))
	}
}

func TestMarkGoalAchievedIsMonotonic(t *testing.T) {
	agg, err := NewAggregate("auth0|walker-1", validInput(), time.Now().UTC())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !agg.MarkGoalAchieved() {
		t.Fatal("first mark should flip the flag")
	}
	if agg.MarkGoalAchieved() {
		t.Fatal("second mark must be a no-op")
	}
	if !agg.Journey().IsGoalAchieved {
		t.Fatal("flag should remain set")
	}
}
