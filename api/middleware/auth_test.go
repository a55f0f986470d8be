package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/waytrackhq/waytrack-backend/internal/users"
	pkgAuth "github.com/waytrackhq/waytrack-backend/pkg/auth"
	"github.com/waytrackhq/waytrack-backend/pkg/config"
)

var authTestJWT = config.JWTConfig{
	Secret: "test-secret",
	Issuer: "waytrack-test",
}

type fakeSyncer struct {
	synced []users.UpsertUserDTO
	err    error
}

func (f *fakeSyncer) Sync(_ context.Context, dto users.UpsertUserDTO) (*users.UserDTO, error) {
	f.synced = append(f.synced, dto)
	if f.err != nil {
		return nil, f.err
	}
	return &users.UserDTO{ID: dto.ID, Name: dto.Name, Email: dto.Email}, nil
}

func mintTestToken(t *testing.T, subject, name, email string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(authTestJWT, time.Now(), subject, name, email, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthSeedsUserContextAndSyncsDirectory(t *testing.T) {
	syncer := &fakeSyncer{}
	var seenUserID string
	handler := Auth(authTestJWT, syncer, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/journeys", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, "auth0|walker-1", "Maaike", "maaike@example.com"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if seenUserID != "auth0|walker-1" {
		t.Fatalf("expected subject in context, got %q", seenUserID)
	}
	if len(syncer.synced) != 1 || syncer.synced[0].Email != "maaike@example.com" {
		t.Fatalf("expected directory sync with token identity, got %+v", syncer.synced)
	}
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	handler := Auth(authTestJWT, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without valid credentials")
	}))

	for name, header := range map[string]string{
		"missing":   "",
		"garbage":   "Bearer not-a-jwt",
		"wrong-key": "Bearer " + func() string { tok, _ := pkgAuth.MintAccessToken(config.JWTConfig{Secret: "other", Issuer: "waytrack-test"}, time.Now(), "auth0|x", "", "", time.Hour); return tok }(),
	} {
		req := httptest.NewRequest(http.MethodGet, "/v1/journeys", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestAuthSurvivesDirectoryFailure(t *testing.T) {
	syncer := &fakeSyncer{err: context.DeadlineExceeded}
	handler := Auth(authTestJWT, syncer, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/journeys", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, "auth0|walker-1", "", ""))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("directory outage must not block auth, got %d", rec.Code)
	}
}
