package favorites

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/waytrackhq/waytrack-backend/internal/journeys"
	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
	"github.com/waytrackhq/waytrack-backend/pkg/enums"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
)

func setupFavoritesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

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
);
CREATE TABLE IF NOT EXISTS journey_favorites (
  journey_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  created_at DATETIME,
  PRIMARY KEY (journey_id, user_id)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedJourney(t *testing.T, db *gorm.DB, owner string, deleted bool) uuid.UUID {
	t.Helper()
	start := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	row := models.Journey{
		ID:              uuid.New(),
		OwnerUserID:     owner,
		StartLocation:   "Leiden",
		StartTime:       start,
		ArrivalLocation: "Den Haag",
		ArrivalTime:     start.Add(20 * time.Minute),
		TransportType:   enums.TransportBicycle,
		DistanceKm:      decimal.RequireFromString("17.25"),
		IsDeleted:       deleted,
	}
	require.NoError(t, db.Create(&row).Error)
	return row.ID
}

func TestToggleFlipsFavoriteState(t *testing.T) {
	db := setupFavoritesTestDB(t)
	svc := NewService(NewRepository(db), journeys.NewRepository(db))
	ctx := context.Background()

	journeyID := seedJourney(t, db, "auth0|owner", false)

	favorited, err := svc.Toggle(ctx, "auth0|fan", journeyID)
	require.NoError(t, err)
	assert.True(t, favorited, "first toggle should favorite")

	fans, err := svc.FansOf(ctx, journeyID)
	require.NoError(t, err)
	assert.Equal(t, []string{"auth0|fan"}, fans)

	favorited, err = svc.Toggle(ctx, "auth0|fan", journeyID)
	require.NoError(t, err)
	assert.False(t, favorited, "second toggle should unfavorite")

	fans, err = svc.FansOf(ctx, journeyID)
	require.NoError(t, err)
	assert.Empty(t, fans)
}

func TestToggleRejectsMissingOrDeletedJourney(t *testing.T) {
	db := setupFavoritesTestDB(t)
	svc := NewService(NewRepository(db), journeys.NewRepository(db))
	ctx := context.Background()

	_, err := svc.Toggle(ctx, "auth0|fan", uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	deletedID := seedJourney(t, db, "auth0|owner", true)
	_, err = svc.Toggle(ctx, "auth0|fan", deletedID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestJourneysOfListsUserFavorites(t *testing.T) {
	db := setupFavoritesTestDB(t)
	svc := NewService(NewRepository(db), journeys.NewRepository(db))
	ctx := context.Background()

	first := seedJourney(t, db, "auth0|owner", false)
	second := seedJourney(t, db, "auth0|owner", false)

	for _, id := range []uuid.UUID{first, second} {
		_, err := svc.Toggle(ctx, "auth0|fan", id)
		require.NoError(t, err)
	}

	ids, err := svc.JourneysOf(ctx, "auth0|fan")
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}
