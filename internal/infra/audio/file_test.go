package audio_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mic-recorder/internal/domain"
	"mic-recorder/internal/infra/audio"
)

func TestFileDevice_DeliversFileInOrder(t *testing.T) {
	content := []byte("RIFF....WAVEfmt audio data for replay")
	path := filepath.Join(t.TempDir(), "sample.wav")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	device := audio.NewFileDevice(path, 8, 0)
	stream, err := device.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquiring: %v", err)
	}
	defer stream.Close()

	if stream.MimeType() != audio.WAVMimeType {
		t.Errorf("mime type: got %s", stream.MimeType())
	}
	if err := stream.Start(); err != nil {
		t.Fatalf("starting: %v", err)
	}

	var got []byte
	chunks := 0
	for len(got) < len(content) {
		select {
		case chunk := <-stream.Chunks():
			got = append(got, chunk...)
			chunks++
		case <-time.After(2 * time.Second):
			t.Fatal("timeout reading chunks")
		}
	}

	if err := stream.Stop(); err != nil {
		t.Fatalf("stopping: %v", err)
	}
	if _, ok := <-stream.Chunks(); ok {
		t.Error("chunks still open after stop")
	}

	if !bytes.Equal(got, content) {
		t.Errorf("content: got %q", got)
	}
	if chunks != 5 {
		t.Errorf("chunks: got %d, want 5", chunks)
	}
}

func TestFileDevice_MissingFileIsUnavailable(t *testing.T) {
	device := audio.NewFileDevice(filepath.Join(t.TempDir(), "missing.wav"), 0, 0)

	_, err := device.Acquire(context.Background())
	if !errors.Is(err, domain.ErrDeviceUnavailable) {
		t.Errorf("got %v, want device unavailable", err)
	}
}

func TestFileDevice_StopBeforeStartClosesChunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.webm")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0644); err != nil {
		t.Fatal(err)
	}

	stream, err := audio.NewFileDevice(path, 0, 0).Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stream.MimeType() != "audio/webm" {
		t.Errorf("mime type: got %s", stream.MimeType())
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}
	if _, ok := <-stream.Chunks(); ok {
		t.Error("chunks open after close")
	}
	if err := stream.Start(); err == nil {
		t.Error("start after close should fail")
	}
}
