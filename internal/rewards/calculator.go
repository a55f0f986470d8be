package rewards

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
)

// DefaultThresholdKm is the daily distance that earns the achievement.
const DefaultThresholdKm = "20.00"

// Trigger identifies the journey whose distance tipped the day over the
// threshold, together with the cumulative distance at that point.
type Trigger struct {
	Journey models.Journey
	TotalKm decimal.Decimal
}

// Calculator decides whether a day's journeys reach the distance goal. It is
// pure: callers feed it the day's rows and it never touches storage.
type Calculator struct {
	threshold decimal.Decimal
}

// NewCalculator builds a calculator for the given threshold in km.
func NewCalculator(threshold decimal.Decimal) *Calculator {
	return &Calculator{threshold: threshold}
}

// Threshold returns the configured goal distance.
func (c *Calculator) Threshold() decimal.Decimal {
	return c.threshold
}

// Evaluate walks the journeys in (start_time, id) order, summing distance.
// It returns the first journey at which the running sum reaches the
// threshold, or nil when the day falls short. Exactly-equal sums count:
// 20.00 km achieves a 20.00 km goal.
func (c *Calculator) Evaluate(journeys []models.Journey) *Trigger {
	ordered := make([]models.Journey, len(journeys))
	copy(ordered, journeys)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StartTime.Equal(ordered[j].StartTime) {
			return ordered[i].ID.String() < ordered[j].ID.String()
		}
		return ordered[i].StartTime.Before(ordered[j].StartTime)
	})

	sum := decimal.Zero
	for _, journey := range ordered {
		sum = sum.Add(journey.DistanceKm)
		if sum.GreaterThanOrEqual(c.threshold) {
			return &Trigger{Journey: journey, TotalKm: sum}
		}
	}
	return nil
}

// DayWindowUTC returns the half-open UTC calendar-day interval containing t.
func DayWindowUTC(t time.Time) (time.Time, time.Time) {
	utc := t.UTC()
	start := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// DayKeyUTC formats t's UTC calendar day as the ledger key.
func DayKeyUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
