package host

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"mic-recorder/internal/infra"
)

// WebhookHost POSTs each value to a URL owned by the embedding application.
// Retries reuse the Idempotency-Key of the first attempt so the receiver can
// discard duplicates.
type WebhookHost struct {
	url        string
	authToken  string
	httpClient *http.Client
	retry      infra.RetryConfig
}

func NewWebhookHost(url, authToken string) *WebhookHost {
	return &WebhookHost{
		url:        url,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry:      infra.DefaultRetryConfig(),
	}
}

func (h *WebhookHost) WithRetry(cfg infra.RetryConfig) *WebhookHost {
	h.retry = cfg
	return h
}

func (h *WebhookHost) SetComponentValue(ctx context.Context, value string) error {
	key := uuid.NewString()

	return infra.WithRetry(ctx, h.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, strings.NewReader(value))
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", key)
		if h.authToken != "" {
			req.Header.Set("Authorization", "Bearer "+h.authToken)
		}

		resp, err := h.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending value: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err = fmt.Errorf("host responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if infra.IsRetryableHTTPStatus(resp.StatusCode) {
			return err
		}
		return infra.Permanent(err)
	})
}
