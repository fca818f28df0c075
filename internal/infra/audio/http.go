package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mic-recorder/internal/application"
	"mic-recorder/internal/domain"
)

var errNoRecorder = errors.New("recorder not configured")

// CaptureRunner runs one capture to completion.
type CaptureRunner interface {
	Record(ctx context.Context) (*domain.Payload, error)
}

// HTTPHost is a host that embeds the recorder behind HTTP. POST /capture runs
// a capture and answers with its result; every value the recorder emits is
// also kept for GET /value and pushed to websocket subscribers on GET /ws.
type HTTPHost struct {
	addr        string
	server      *http.Server
	logger      *slog.Logger
	mu          sync.Mutex
	running     bool
	mux         *http.ServeMux
	rateLimiter *RateLimiter
	authToken   string
	upgrader    websocket.Upgrader

	recorder CaptureRunner

	valueMu sync.RWMutex
	last    string
	emitted int

	subsMu      sync.Mutex
	subscribers map[*websocket.Conn]struct{}
}

func NewHTTPHost(addr string, authToken string, logger *slog.Logger) *HTTPHost {
	h := &HTTPHost{
		addr:        addr,
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(12, time.Minute), // a capture takes seconds; 12 per minute per client
		authToken:   authToken,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subscribers: make(map[*websocket.Conn]struct{}),
	}
	h.mux.HandleFunc("POST /capture", h.rateLimiter.Middleware(h.requireToken(h.handleCapture)))
	h.mux.HandleFunc("GET /value", h.requireToken(h.handleValue))
	h.mux.HandleFunc("GET /ws", h.requireToken(h.handleSubscribe))
	h.mux.HandleFunc("GET /health", h.handleHealth)
	return h
}

// Bind attaches the recorder that POST /capture drives.
func (h *HTTPHost) Bind(recorder CaptureRunner) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recorder = recorder
}

func (h *HTTPHost) Start(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	h.server = &http.Server{
		Addr:        h.addr,
		Handler:     h.mux,
		ReadTimeout: 15 * time.Second,
		// Captures hold the response open for the whole capture window
		// plus the permission wait.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		h.logger.Info("HTTP host starting", "addr", h.addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", "error", err)
		}
	}()

	h.running = true
	return nil
}

func (h *HTTPHost) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}

	h.subsMu.Lock()
	for conn := range h.subscribers {
		conn.Close()
		delete(h.subscribers, conn)
	}
	h.subsMu.Unlock()

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.server.Shutdown(ctx); err != nil {
			h.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := h.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	h.running = false
	return nil
}

func (h *HTTPHost) Handler() http.Handler {
	return h.mux
}

// SetComponentValue records value as the latest result and pushes it to
// every websocket subscriber. Subscribers that cannot be written to are
// dropped. A busy failure belongs only to the rejected request, which already
// got a 409, so it neither replaces the latest value nor reaches subscribers.
func (h *HTTPHost) SetComponentValue(_ context.Context, value string) error {
	if isBusyFailure(value) {
		h.logger.Debug("not publishing busy rejection")
		return nil
	}

	h.valueMu.Lock()
	h.last = value
	h.emitted++
	h.valueMu.Unlock()

	h.subsMu.Lock()
	defer h.subsMu.Unlock()

	for conn := range h.subscribers {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(value)); err != nil {
			h.logger.Warn("dropping websocket subscriber", "remote_addr", conn.RemoteAddr(), "error", err)
			conn.Close()
			delete(h.subscribers, conn)
		}
	}
	return nil
}

// Value returns the latest emitted value and whether there is one.
func (h *HTTPHost) Value() (string, bool) {
	h.valueMu.RLock()
	defer h.valueMu.RUnlock()
	return h.last, h.emitted > 0
}

func (h *HTTPHost) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.authToken != "" {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token != h.authToken {
				h.logger.Warn("unauthorized request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (h *HTTPHost) handleCapture(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	recorder := h.recorder
	h.mu.Unlock()

	if recorder == nil {
		http.Error(w, errNoRecorder.Error(), http.StatusServiceUnavailable)
		return
	}

	payload, err := recorder.Record(r.Context())
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		kind := domain.KindOf(err)
		h.logger.Info("capture request failed", "kind", kind, "error", err)
		w.WriteHeader(statusForKind(kind))
		json.NewEncoder(w).Encode(domain.Failure{Error: kind, Message: err.Error()})
		return
	}

	h.logger.Info("capture request served", "bytes", len(payload.Audio))
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(payload)
}

func (h *HTTPHost) handleValue(w http.ResponseWriter, _ *http.Request) {
	value, ok := h.Value()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, value)
}

func (h *HTTPHost) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.subsMu.Lock()
	h.subscribers[conn] = struct{}{}
	h.subsMu.Unlock()
	h.logger.Debug("websocket subscriber joined", "remote_addr", r.RemoteAddr)

	// Subscribers only listen; reading detects the close.
	go func() {
		defer func() {
			h.subsMu.Lock()
			delete(h.subscribers, conn)
			h.subsMu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *HTTPHost) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	running := h.running
	bound := h.recorder != nil
	h.mu.Unlock()

	h.subsMu.Lock()
	subscribers := len(h.subscribers)
	h.subsMu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running || !bound {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"status":"%s","running":%t,"subscribers":%d}`, status, running, subscribers)
}

func isBusyFailure(value string) bool {
	var f domain.Failure
	if err := json.Unmarshal([]byte(value), &f); err != nil {
		return false
	}
	return f.Error == domain.KindBusy
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindPermissionDenied:
		return http.StatusForbidden
	case domain.KindPermissionTimeout:
		return http.StatusGatewayTimeout
	case domain.KindBusy:
		return http.StatusConflict
	case domain.KindCanceled:
		return http.StatusRequestTimeout
	case domain.KindEncodingFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusServiceUnavailable
	}
}

var _ application.Host = (*HTTPHost)(nil)
