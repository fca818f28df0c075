// Package host delivers capture results to the program embedding the
// recorder.
package host

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// WriterHost writes each value as one line, for a parent process reading
// the recorder's stdout.
type WriterHost struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterHost(w io.Writer) *WriterHost {
	return &WriterHost{w: w}
}

func (h *WriterHost) SetComponentValue(_ context.Context, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("value spans multiple lines")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := io.WriteString(h.w, value+"\n"); err != nil {
		return fmt.Errorf("writing value: %w", err)
	}
	return nil
}
