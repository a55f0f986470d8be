package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/waytrackhq/waytrack-backend/pkg/config"
	"github.com/waytrackhq/waytrack-backend/pkg/enums"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
)

func TestQueueEmailPostsPayload(t *testing.T) {
	var received EmailRequest
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client, err := NewClient(config.NotifyConfig{BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	journeyID := uuid.New()
	err = client.QueueEmail(context.Background(), EmailRequest{
		Email:     "walker@example.com",
		JourneyID: journeyID,
		Kind:      enums.NotificationKindDailyGoalReached,
	})
	if err != nil {
		t.Fatalf("queue email: %v", err)
	}

	if path != emailQueuePath {
		t.Fatalf("unexpected path %q", path)
	}
	if received.Email != "walker@example.com" || received.JourneyID != journeyID {
		t.Fatalf("unexpected payload %+v", received)
	}
	if received.Kind != enums.NotificationKindDailyGoalReached {
		t.Fatalf("unexpected kind %q", received.Kind)
	}
}

func TestQueueEmailSurfacesAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(config.NotifyConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	err = client.QueueEmail(context.Background(), EmailRequest{
		Email:     "walker@example.com",
		JourneyID: uuid.New(),
		Kind:      enums.NotificationKindDailyGoalReached,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestQueueEmailValidatesInput(t *testing.T) {
	client, err := NewClient(config.NotifyConfig{BaseURL: "http://notify.internal"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	cases := map[string]EmailRequest{
		"missing email":   {JourneyID: uuid.New(), Kind: enums.NotificationKindDailyGoalReached},
		"missing journey": {Email: "walker@example.com", Kind: enums.NotificationKindDailyGoalReached},
		"unknown kind":    {Email: "walker@example.com", JourneyID: uuid.New(), Kind: enums.NotificationKind("carrier_pigeon")},
	}
	for name, req := range cases {
		if err := client.QueueEmail(context.Background(), req); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(config.NotifyConfig{}); err == nil {
		t.Fatal("expected configuration error")
	}
}
