package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgAuth "github.com/waytrackhq/waytrack-backend/pkg/auth"
	"github.com/waytrackhq/waytrack-backend/pkg/config"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Issuer: "waytrack-test"}
	return NewRouter(Params{Config: cfg})
}

func TestHealthEndpointsArePublic(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestMetricsEndpointIsExposed(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
}

func TestAPIRoutesRequireBearerToken(t *testing.T) {
	router := testRouter(t)

	checks := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/journeys"},
		{http.MethodPost, "/api/v1/journeys"},
		{http.MethodPost, "/api/v1/journeys/3f1f88a2-6f1e-4a8e-9a44-1d8a2f5b7c10/share"},
		{http.MethodPost, "/api/v1/journeys/3f1f88a2-6f1e-4a8e-9a44-1d8a2f5b7c10/public-link"},
	}
	for _, tc := range checks {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/monthly", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", rec.Code)
	}
}

func TestValidTokenReachesHandlers(t *testing.T) {
	router := testRouter(t)

	token, err := pkgAuth.MintAccessToken(
		config.JWTConfig{Secret: "test-secret", Issuer: "waytrack-test"},
		time.Now(), "auth0|walker-1", "Maaike", "maaike@example.com", time.Hour,
	)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/journeys", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// No journey service is wired in this fixture; reaching the nil-service
	// guard proves the token cleared the auth boundary.
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from unwired service, got %d", rec.Code)
	}
}
