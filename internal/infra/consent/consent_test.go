package consent_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"mic-recorder/internal/domain"
	"mic-recorder/internal/infra/consent"
)

func TestStatic(t *testing.T) {
	if err := consent.Grant().Request(context.Background(), "microphone"); err != nil {
		t.Errorf("grant: unexpected error %v", err)
	}

	err := consent.Deny().Request(context.Background(), "microphone")
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("deny: got %v, want permission denied", err)
	}
}

func TestTerminalPrompt_DeniesWithoutTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	// Even a "yes" on a pipe does not count; nobody is at a terminal.
	if _, err := w.WriteString("y\n"); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err = consent.NewTerminalPrompt(r, &out).Request(context.Background(), "microphone")
	if domain.KindOf(err) != domain.KindPermissionDenied {
		t.Errorf("got %v, want permission denied", err)
	}
	if !strings.Contains(out.String(), "Allow access to the microphone?") {
		t.Errorf("prompt not written: %q", out.String())
	}
}
