package audio

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mic-recorder/internal/application"
	"mic-recorder/internal/domain"
)

// FileDevice replays a recording from disk as if it were captured live. It
// stands in for a microphone on headless hosts and in tests.
type FileDevice struct {
	path       string
	chunkBytes int
	pace       time.Duration
}

// NewFileDevice returns a device that delivers the file in chunkBytes pieces,
// waiting pace between chunks. A zero pace delivers everything at once.
func NewFileDevice(path string, chunkBytes int, pace time.Duration) *FileDevice {
	if chunkBytes <= 0 {
		chunkBytes = 4096
	}
	return &FileDevice{
		path:       path,
		chunkBytes: chunkBytes,
		pace:       pace,
	}
}

func (f *FileDevice) Name() string {
	return "file"
}

func (f *FileDevice) Acquire(_ context.Context) (application.AudioStream, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, domain.NewCaptureError(domain.KindDeviceUnavailable, fmt.Errorf("reading file %s: %w", f.path, err))
	}

	return &fileStream{
		data:       data,
		chunkBytes: f.chunkBytes,
		pace:       f.pace,
		mimeType:   mimeTypeFor(f.path),
		chunks:     make(chan []byte),
		stop:       make(chan struct{}),
	}, nil
}

type fileStream struct {
	data       []byte
	chunkBytes int
	pace       time.Duration
	mimeType   string

	chunks chan []byte
	stop   chan struct{}

	mu       sync.Mutex
	started  bool
	stopped  bool
	released bool
}

func (s *fileStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return errors.New("stream already closed")
	}
	if s.started {
		return errors.New("stream already started")
	}
	s.started = true
	go s.run()
	return nil
}

func (s *fileStream) run() {
	defer close(s.chunks)

	for off := 0; off < len(s.data); off += s.chunkBytes {
		end := min(off+s.chunkBytes, len(s.data))
		select {
		case s.chunks <- s.data[off:end]:
		case <-s.stop:
			return
		}

		if s.pace > 0 {
			select {
			case <-time.After(s.pace):
			case <-s.stop:
				return
			}
		}
	}

	// The file is exhausted; the device stays open and silent until stopped.
	<-s.stop
}

func (s *fileStream) Chunks() <-chan []byte {
	return s.chunks
}

func (s *fileStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.stop)
	if !s.started {
		close(s.chunks)
	}
	return nil
}

func (s *fileStream) Err() error {
	return nil
}

func (s *fileStream) Close() error {
	if err := s.Stop(); err != nil {
		return err
	}
	s.mu.Lock()
	s.released = true
	s.mu.Unlock()
	return nil
}

func (s *fileStream) MimeType() string {
	return s.mimeType
}

func mimeTypeFor(path string) string {
	switch ext := filepath.Ext(path); ext {
	case ".wav":
		return WAVMimeType
	case ".webm":
		return "audio/webm"
	case ".m4a":
		return "audio/mp4"
	case ".mp3":
		return "audio/mpeg"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}
