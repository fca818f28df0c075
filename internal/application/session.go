package application

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"mic-recorder/internal/domain"
)

var ErrSessionSealed = errors.New("capture session no longer accepts audio")

var transitions = map[domain.State][]domain.State{
	domain.StateIdle:             {domain.StateRequestingDevice, domain.StateFailed},
	domain.StateRequestingDevice: {domain.StateRecording, domain.StateFailed},
	domain.StateRecording:        {domain.StateStopping, domain.StateFailed},
	domain.StateStopping:         {domain.StateEncoding, domain.StateFailed},
	domain.StateEncoding:         {domain.StateEmitted, domain.StateFailed},
}

// CaptureSession is one timed recording attempt. Segments are kept in
// arrival order and are only accepted while recording or while the stream is
// flushing after a stop.
type CaptureSession struct {
	ID       string
	Duration time.Duration

	mu        sync.Mutex
	state     domain.State
	segments  [][]byte
	size      int
	startedAt time.Time
	stoppedAt time.Time
}

func NewCaptureSession(duration time.Duration) *CaptureSession {
	return &CaptureSession{
		ID:       uuid.NewString(),
		Duration: duration,
		state:    domain.StateIdle,
	}
}

func (s *CaptureSession) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *CaptureSession) Transition(to domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, allowed := range transitions[s.state] {
		if allowed == to {
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("invalid session transition %s -> %s", s.state, to)
}

func (s *CaptureSession) begin(now time.Time) error {
	if err := s.Transition(domain.StateRecording); err != nil {
		return err
	}
	s.mu.Lock()
	s.startedAt = now
	s.mu.Unlock()
	return nil
}

func (s *CaptureSession) stop(now time.Time) error {
	if err := s.Transition(domain.StateStopping); err != nil {
		return err
	}
	s.mu.Lock()
	s.stoppedAt = now
	s.mu.Unlock()
	return nil
}

// Append adds a chunk to the end of the recording. The chunk is copied
// because capture backends are free to reuse their buffers.
func (s *CaptureSession) Append(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateRecording && s.state != domain.StateStopping {
		return ErrSessionSealed
	}

	s.segments = append(s.segments, bytes.Clone(chunk))
	s.size += len(chunk)
	return nil
}

func (s *CaptureSession) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]byte, 0, s.size)
	for _, seg := range s.segments {
		out = append(out, seg...)
	}
	return out
}

func (s *CaptureSession) Segments() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.segments)
}

func (s *CaptureSession) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Elapsed is the time between capture begin and stop. It is zero until the
// session has been stopped.
func (s *CaptureSession) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stoppedAt.IsZero() {
		return 0
	}
	return s.stoppedAt.Sub(s.startedAt)
}
