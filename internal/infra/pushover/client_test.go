package pushover_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"mic-recorder/internal/infra/pushover"
)

func TestClient_Notify(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		got = map[string]string{
			"token":    r.PostForm.Get("token"),
			"user":     r.PostForm.Get("user"),
			"message":  r.PostForm.Get("message"),
			"title":    r.PostForm.Get("title"),
			"priority": r.PostForm.Get("priority"),
		}
	}))
	defer srv.Close()

	client := pushover.NewClient("app-token", "user-key").WithEndpoint(srv.URL)
	if err := client.Notify(context.Background(), "Capture abc failed: busy"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"token":    "app-token",
		"user":     "user-key",
		"message":  "Capture abc failed: busy",
		"title":    "Recorder",
		"priority": "1",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: got %q, want %q", k, got[k], v)
		}
	}
}

func TestClient_NotifyWithoutCredentialsIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}))
	defer srv.Close()

	if err := pushover.NewClient("", "").WithEndpoint(srv.URL).Notify(context.Background(), "x"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_NotifyReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if err := pushover.NewClient("t", "u").WithEndpoint(srv.URL).Notify(context.Background(), "x"); err == nil {
		t.Error("expected error")
	}
}
