package rewards

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
)

func journeyAt(start time.Time, distance string) models.Journey {
	return models.Journey{
		ID:          uuid.New(),
		OwnerUserID: "auth0|walker-1",
		StartTime:   start,
		DistanceKm:  decimal.RequireFromString(distance),
	}
}

func TestEvaluateThresholdBoundary(t *testing.T) {
	calc := NewCalculator(decimal.RequireFromString(DefaultThresholdKm))
	base := time.Date(2026, 8, 20, 7, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		distances []string
		achieved  bool
		totalKm   string
	}{
		{name: "just short", distances: []string{"10.00", "9.99"}, achieved: false},
		{name: "exactly on threshold", distances: []string{"10.00", "10.00"}, achieved: true, totalKm: "20.00"},
		{name: "just over", distances: []string{"10.00", "10.01"}, achieved: true, totalKm: "20.01"},
		{name: "single long journey", distances: []string{"42.20"}, achieved: true, totalKm: "42.20"},
		{name: "empty day", distances: nil, achieved: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rows []models.Journey
			for i, d := range tc.distances {
				rows = append(rows, journeyAt(base.Add(time.Duration(i)*time.Hour), d))
			}
			trigger := calc.Evaluate(rows)
			if tc.achieved && trigger == nil {
				t.Fatal("expected a trigger")
			}
			if !tc.achieved {
				if trigger != nil {
					t.Fatalf("expected no trigger, got %+v", trigger)
				}
				return
			}
			if got := trigger.TotalKm.StringFixed(2); got != tc.totalKm {
				t.Fatalf("expected total %s, got %s", tc.totalKm, got)
			}
		})
	}
}

func TestEvaluatePicksFirstCrossingJourney(t *testing.T) {
	calc := NewCalculator(decimal.RequireFromString(DefaultThresholdKm))
	base := time.Date(2026, 8, 20, 7, 0, 0, 0, time.UTC)

	early := journeyAt(base, "5.00")
	crossing := journeyAt(base.Add(time.Hour), "15.00")
	late := journeyAt(base.Add(2*time.Hour), "30.00")

	// Feed out of order; the calculator sorts by (start_time, id).
	trigger := calc.Evaluate([]models.Journey{late, crossing, early})
	if trigger == nil {
		t.Fatal("expected a trigger")
	}
	if trigger.Journey.ID != crossing.ID {
		t.Fatalf("expected crossing journey %s, got %s", crossing.ID, trigger.Journey.ID)
	}
	if trigger.TotalKm.StringFixed(2) != "20.00" {
		t.Fatalf("expected running total 20.00, got %s", trigger.TotalKm)
	}
}

func TestEvaluateBreaksStartTimeTiesByID(t *testing.T) {
	calc := NewCalculator(decimal.RequireFromString(DefaultThresholdKm))
	start := time.Date(2026, 8, 20, 7, 0, 0, 0, time.UTC)

	a := journeyAt(start, "12.00")
	b := journeyAt(start, "12.00")
	lower, higher := a, b
	if b.ID.String() < a.ID.String() {
		lower, higher = b, a
	}

	first := calc.Evaluate([]models.Journey{higher, lower})
	second := calc.Evaluate([]models.Journey{lower, higher})
	if first == nil || second == nil {
		t.Fatal("expected triggers")
	}
	if first.Journey.ID != second.Journey.ID {
		t.Fatal("tie-break must not depend on input order")
	}
	if first.Journey.ID != higher.ID {
		t.Fatalf("the second journey in id order crosses the threshold, got %s", first.Journey.ID)
	}
}

func TestDayWindowUTC(t *testing.T) {
	// Late evening in UTC+2 is already the next UTC day locally, but the
	// window must follow UTC.
	local := time.Date(2026, 8, 20, 23, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	start, end := DayWindowUTC(local)

	if start.Format(time.RFC3339) != "2026-08-20T00:00:00Z" {
		t.Fatalf("unexpected window start %s", start)
	}
	if end.Format(time.RFC3339) != "2026-08-21T00:00:00Z" {
		t.Fatalf("unexpected window end %s", end)
	}
	if DayKeyUTC(local) != "2026-08-20" {
		t.Fatalf("unexpected day key %s", DayKeyUTC(local))
	}
}
