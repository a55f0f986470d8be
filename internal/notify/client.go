package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/waytrackhq/waytrack-backend/pkg/config"
	"github.com/waytrackhq/waytrack-backend/pkg/enums"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
)

const (
	emailQueuePath             = "/v1/email-notifications"
	responseBodyReadLimit int64 = 1024
)

// EmailRequest is the payload handed to the Notification API. Delivery itself
// happens on their side; queueing is our contract.
type EmailRequest struct {
	Email     string                 `json:"email"`
	JourneyID uuid.UUID              `json:"journeyId"`
	Kind      enums.NotificationKind `json:"kind"`
}

// Client queues e-mails with the external Notification API. Used as the
// offline fallback when a recipient has no live websocket connection.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the notification client from configuration.
func NewClient(cfg config.NotifyConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("notification base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// QueueEmail asks the Notification API to queue one e-mail. Any 2xx response
// counts as queued.
func (c *Client) QueueEmail(ctx context.Context, req EmailRequest) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "notification client not configured")
	}
	if strings.TrimSpace(req.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient e-mail is required")
	}
	if req.JourneyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "journey id is required")
	}
	if !req.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown notification kind")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal e-mail request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+emailQueuePath, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build e-mail request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute e-mail request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"queueing e-mail failed",
		)
	}
	return nil
}
