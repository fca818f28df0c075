//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"

	"mic-recorder/internal/application"
	"mic-recorder/internal/domain"
)

// MicrophoneDevice captures from the default input through PortAudio.
// Like a browser MediaRecorder started without a timeslice, the stream holds
// the samples until it is stopped and then delivers the whole recording as a
// single WAV chunk.
type MicrophoneDevice struct {
	sampleRate      int
	channels        int
	framesPerBuffer int
	logger          *slog.Logger
}

func NewMicrophoneDevice(sampleRate, channels, framesPerBuffer int, logger *slog.Logger) *MicrophoneDevice {
	return &MicrophoneDevice{
		sampleRate:      sampleRate,
		channels:        channels,
		framesPerBuffer: framesPerBuffer,
		logger:          logger,
	}
}

func (m *MicrophoneDevice) Name() string {
	return "microphone"
}

func (m *MicrophoneDevice) Acquire(_ context.Context) (application.AudioStream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, domain.NewCaptureError(domain.KindDeviceUnavailable, fmt.Errorf("initializing portaudio: %w", err))
	}

	buffer := make([]int16, m.framesPerBuffer*m.channels)
	stream, err := portaudio.OpenDefaultStream(m.channels, 0, float64(m.sampleRate), m.framesPerBuffer, buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, domain.NewCaptureError(domain.KindDeviceUnavailable, fmt.Errorf("opening stream: %w", err))
	}

	m.logger.Debug("microphone acquired", "sampleRate", m.sampleRate, "channels", m.channels)

	return &micStream{
		device: m,
		stream: stream,
		buffer: buffer,
		chunks: make(chan []byte, 1),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

type micStream struct {
	device *MicrophoneDevice
	stream *portaudio.Stream
	buffer []int16

	chunks  chan []byte
	stopCh  chan struct{}
	done    chan struct{}
	started bool

	mu      sync.Mutex
	samples []int16
	err     error

	stopOnce   sync.Once
	closeOnce  sync.Once
	chunksOnce sync.Once
}

func (s *micStream) Start() error {
	if s.started {
		return errors.New("stream already started")
	}
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}
	s.started = true
	go s.readLoop()
	return nil
}

func (s *micStream) readLoop() {
	defer close(s.done)

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		if err := s.stream.Read(); err != nil {
			if errors.Is(err, portaudio.InputOverflowed) {
				s.device.logger.Warn("microphone input overflowed")
				continue
			}
			s.setErr(fmt.Errorf("reading from stream: %w", err))
			s.closeChunks()
			return
		}
		s.samples = append(s.samples, s.buffer...)
	}
}

func (s *micStream) Chunks() <-chan []byte {
	return s.chunks
}

func (s *micStream) Stop() error {
	var stopErr error
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if !s.started {
			s.closeChunks()
			return
		}
		<-s.done

		if err := s.stream.Stop(); err != nil {
			stopErr = fmt.Errorf("stopping stream: %w", err)
		}
		if s.Err() != nil {
			return
		}

		data, err := EncodeWAV(s.samples, s.device.sampleRate, s.device.channels)
		if err != nil {
			s.setErr(err)
			s.closeChunks()
			return
		}
		s.chunks <- data
		s.closeChunks()
	})
	return stopErr
}

func (s *micStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *micStream) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		if err := s.Stop(); err != nil {
			s.device.logger.Debug("stopping microphone on close", "error", err)
		}
		if err := s.stream.Close(); err != nil {
			closeErr = fmt.Errorf("closing stream: %w", err)
		}
		if err := portaudio.Terminate(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("terminating portaudio: %w", err)
		}
	})
	return closeErr
}

func (s *micStream) MimeType() string {
	return WAVMimeType
}

func (s *micStream) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *micStream) closeChunks() {
	s.chunksOnce.Do(func() {
		close(s.chunks)
	})
}
