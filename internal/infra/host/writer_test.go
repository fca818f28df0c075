package host_test

import (
	"bytes"
	"context"
	"testing"

	"mic-recorder/internal/infra/host"
)

func TestWriterHost_WritesOneLinePerValue(t *testing.T) {
	var buf bytes.Buffer
	h := host.NewWriterHost(&buf)

	for _, v := range []string{`{"audio":"AQI="}`, `{"error":"busy","message":"x"}`} {
		if err := h.SetComponentValue(context.Background(), v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	want := "{\"audio\":\"AQI=\"}\n{\"error\":\"busy\",\"message\":\"x\"}\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriterHost_RejectsMultilineValue(t *testing.T) {
	var buf bytes.Buffer
	h := host.NewWriterHost(&buf)

	if err := h.SetComponentValue(context.Background(), "{\n}"); err == nil {
		t.Error("expected error for multiline value")
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %q", buf.String())
	}
}
