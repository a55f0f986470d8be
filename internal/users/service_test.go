package users

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	if err := db.Exec(schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func TestSyncUpsertsAndRefreshes(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := NewService(NewRepository(db), nil)
	ctx := context.Background()

	created, err := svc.Sync(ctx, UpsertUserDTO{ID: "auth0|walker-1", Name: "Walker", Email: "w@example.com"})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if created.Name != "Walker" {
		t.Fatalf("unexpected name %q", created.Name)
	}

	updated, err := svc.Sync(ctx, UpsertUserDTO{ID: "auth0|walker-1", Name: "Walker Prime", Email: "w@example.com"})
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if updated.Name != "Walker Prime" {
		t.Fatalf("expected refreshed name, got %q", updated.Name)
	}

	var count int64
	if err := db.Table("users").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single directory row, got %d", count)
	}
}

func TestSyncRequiresID(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := NewService(NewRepository(db), nil)

	if _, err := svc.Sync(context.Background(), UpsertUserDTO{Name: "anon"}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestGetManyReturnsKnownSubjects(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := NewService(NewRepository(db), nil)
	ctx := context.Background()

	for _, u := range []UpsertUserDTO{
		{ID: "auth0|a", Name: "A", Email: "a@example.com"},
		{ID: "auth0|b", Name: "B", Email: "b@example.com"},
	} {
		if _, err := svc.Sync(ctx, u); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	found, err := svc.GetMany(ctx, []string{"auth0|a", "auth0|b", "auth0|missing"})
	if err != nil {
		t.Fatalf("get many: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(found))
	}
	if found["auth0|a"].Email != "a@example.com" {
		t.Fatalf("unexpected email %q", found["auth0|a"].Email)
	}
	if _, ok := found["auth0|missing"]; ok {
		t.Fatal("unknown subject should be absent")
	}

	if _, err := svc.Get(ctx, "auth0|missing"); err == nil {
		t.Fatal("expected not found error")
	}
}
