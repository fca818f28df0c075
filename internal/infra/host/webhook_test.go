package host_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"mic-recorder/internal/infra"
	"mic-recorder/internal/infra/host"
)

type webhookRecorder struct {
	mu       sync.Mutex
	statuses []int
	keys     []string
	bodies   []string
	auth     []string
}

func (w *webhookRecorder) handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		w.mu.Lock()
		n := len(w.keys)
		w.keys = append(w.keys, r.Header.Get("Idempotency-Key"))
		w.bodies = append(w.bodies, string(body))
		w.auth = append(w.auth, r.Header.Get("Authorization"))
		status := http.StatusNoContent
		if n < len(w.statuses) {
			status = w.statuses[n]
		}
		w.mu.Unlock()

		rw.WriteHeader(status)
	}
}

func (w *webhookRecorder) snapshot() (keys, bodies, auth []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.keys...), append([]string(nil), w.bodies...), append([]string(nil), w.auth...)
}

func fastRetry() infra.RetryConfig {
	return infra.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWebhookHost_DeliversValue(t *testing.T) {
	rec := &webhookRecorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	h := host.NewWebhookHost(srv.URL, "secret").WithRetry(fastRetry())
	if err := h.SetComponentValue(context.Background(), `{"audio":""}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys, bodies, auth := rec.snapshot()
	if len(bodies) != 1 || bodies[0] != `{"audio":""}` {
		t.Fatalf("bodies: got %v", bodies)
	}
	if auth[0] != "Bearer secret" {
		t.Errorf("authorization: got %q", auth[0])
	}
	if keys[0] == "" {
		t.Error("missing Idempotency-Key")
	}
}

func TestWebhookHost_RetriesWithSameKey(t *testing.T) {
	rec := &webhookRecorder{statuses: []int{http.StatusServiceUnavailable, http.StatusBadGateway}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	h := host.NewWebhookHost(srv.URL, "").WithRetry(fastRetry())
	if err := h.SetComponentValue(context.Background(), `{"audio":"AA=="}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys, _, auth := rec.snapshot()
	if len(keys) != 3 {
		t.Fatalf("attempts: got %d, want 3", len(keys))
	}
	for _, k := range keys[1:] {
		if k != keys[0] {
			t.Errorf("Idempotency-Key changed between attempts: %q vs %q", k, keys[0])
		}
	}
	if auth[0] != "" {
		t.Errorf("authorization sent without token: %q", auth[0])
	}
}

func TestWebhookHost_ClientErrorIsNotRetried(t *testing.T) {
	rec := &webhookRecorder{statuses: []int{http.StatusBadRequest}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	h := host.NewWebhookHost(srv.URL, "").WithRetry(fastRetry())
	if err := h.SetComponentValue(context.Background(), `{"audio":""}`); err == nil {
		t.Fatal("expected error")
	}
	if keys, _, _ := rec.snapshot(); len(keys) != 1 {
		t.Errorf("attempts: got %d, want 1", len(keys))
	}
}

func TestWebhookHost_GivesUpAfterMaxAttempts(t *testing.T) {
	rec := &webhookRecorder{statuses: []int{500, 500, 500, 500}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	h := host.NewWebhookHost(srv.URL, "").WithRetry(fastRetry())
	if err := h.SetComponentValue(context.Background(), `{"audio":""}`); err == nil {
		t.Fatal("expected error")
	}
	if keys, _, _ := rec.snapshot(); len(keys) != 3 {
		t.Errorf("attempts: got %d, want 3", len(keys))
	}
}
