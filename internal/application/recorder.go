package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"mic-recorder/internal/domain"
)

type RecorderConfig struct {
	Duration          time.Duration
	PermissionTimeout time.Duration
	// MaxBytes caps the amount of audio held in memory. Zero disables the cap.
	MaxBytes int
	Clock    Clock
}

// Recorder performs fixed-duration captures and hands each result to the
// host exactly once. Only one capture runs at a time; a capture started while
// another is active fails with a busy error.
type Recorder struct {
	device     AudioDevice
	permission Permission
	host       Host
	notifier   Notifier
	cfg        RecorderConfig
	active     *semaphore.Weighted
	logger     *slog.Logger
}

func NewRecorder(
	device AudioDevice,
	permission Permission,
	host Host,
	notifier Notifier,
	cfg RecorderConfig,
	logger *slog.Logger,
) *Recorder {
	if cfg.Duration <= 0 {
		cfg.Duration = domain.DefaultCaptureDuration
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if notifier == nil {
		notifier = &NoopNotifier{}
	}
	return &Recorder{
		device:     device,
		permission: permission,
		host:       host,
		notifier:   notifier,
		cfg:        cfg,
		active:     semaphore.NewWeighted(1),
		logger:     logger,
	}
}

func (r *Recorder) Duration() time.Duration {
	return r.cfg.Duration
}

// Capture is a handle on a capture running in the background.
type Capture struct {
	session *CaptureSession
	cancel  context.CancelFunc
	done    chan struct{}
	payload *domain.Payload
	err     error
}

func (c *Capture) SessionID() string { return c.session.ID }
func (c *Capture) Session() *CaptureSession { return c.session }
func (c *Capture) State() domain.State { return c.session.State() }
func (c *Capture) Done() <-chan struct{} { return c.done }

// Cancel aborts the capture. The host still receives a canceled failure.
func (c *Capture) Cancel() {
	c.cancel()
}

func (c *Capture) Wait() (*domain.Payload, error) {
	<-c.done
	return c.payload, c.err
}

// Start begins a capture without blocking the caller.
func (r *Recorder) Start(ctx context.Context) *Capture {
	ctx, cancel := context.WithCancel(ctx)
	c := &Capture{
		session: NewCaptureSession(r.cfg.Duration),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	logger := r.logger.With("session", c.session.ID)

	if !r.active.TryAcquire(1) {
		go func() {
			defer close(c.done)
			defer cancel()
			c.err = r.fail(ctx, c.session, domain.NewCaptureError(domain.KindBusy, errors.New("another capture is in progress")), logger)
		}()
		return c
	}

	go func() {
		defer close(c.done)
		defer cancel()
		defer r.active.Release(1)
		c.payload, c.err = r.run(ctx, c.session, logger)
	}()
	return c
}

// Record runs one capture and waits for it to be handed to the host.
func (r *Recorder) Record(ctx context.Context) (*domain.Payload, error) {
	return r.Start(ctx).Wait()
}

func (r *Recorder) run(ctx context.Context, s *CaptureSession, logger *slog.Logger) (*domain.Payload, error) {
	value, payload, err := r.capture(ctx, s, logger)
	if err != nil {
		return nil, r.fail(ctx, s, err, logger)
	}

	if err := r.host.SetComponentValue(context.WithoutCancel(ctx), value); err != nil {
		_ = s.Transition(domain.StateFailed)
		logger.Error("delivering payload to host", "error", err)
		return payload, fmt.Errorf("delivering payload: %w", err)
	}

	if err := s.Transition(domain.StateEmitted); err != nil {
		return payload, err
	}

	logger.Info("capture emitted",
		"bytes", s.Size(),
		"chunks", s.Segments(),
		"elapsed", s.Elapsed(),
	)
	return payload, nil
}

func (r *Recorder) capture(ctx context.Context, s *CaptureSession, logger *slog.Logger) (string, *domain.Payload, error) {
	if err := s.Transition(domain.StateRequestingDevice); err != nil {
		return "", nil, err
	}
	logger.Debug("requesting audio device", "device", r.device.Name())

	stream, err := r.acquire(ctx)
	if err != nil {
		return "", nil, err
	}
	defer func() {
		if err := stream.Close(); err != nil {
			logger.Warn("releasing audio device", "error", err)
		}
	}()

	if err := stream.Start(); err != nil {
		return "", nil, domain.NewCaptureError(domain.KindDeviceUnavailable, fmt.Errorf("starting stream: %w", err))
	}
	if err := s.begin(r.cfg.Clock.Now()); err != nil {
		return "", nil, err
	}
	logger.Info("recording", "device", r.device.Name(), "duration", s.Duration)

	timer := r.cfg.Clock.After(s.Duration)
	chunks := stream.Chunks()

record:
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				return "", nil, domain.NewCaptureError(domain.KindDeviceUnavailable,
					fmt.Errorf("stream ended before capture window elapsed: %w", streamErr(stream)))
			}
			if err := r.appendChunk(s, chunk); err != nil {
				return "", nil, err
			}
		case <-timer:
			break record
		case <-ctx.Done():
			_ = stream.Stop()
			return "", nil, domain.NewCaptureError(domain.KindCanceled, ctx.Err())
		}
	}

	if err := s.stop(r.cfg.Clock.Now()); err != nil {
		return "", nil, err
	}
	if err := stream.Stop(); err != nil {
		return "", nil, domain.NewCaptureError(domain.KindDeviceUnavailable, fmt.Errorf("stopping stream: %w", err))
	}

	// Audio captured before the stop is flushed before Chunks closes.
drain:
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				break drain
			}
			if err := r.appendChunk(s, chunk); err != nil {
				return "", nil, err
			}
		case <-ctx.Done():
			return "", nil, domain.NewCaptureError(domain.KindCanceled, ctx.Err())
		}
	}
	if err := stream.Err(); err != nil {
		return "", nil, domain.NewCaptureError(domain.KindDeviceUnavailable, err)
	}

	if err := s.Transition(domain.StateEncoding); err != nil {
		return "", nil, err
	}
	logger.Debug("encoding capture", "bytes", s.Size(), "chunks", s.Segments(), "mime", stream.MimeType())

	payload := NewPayload(s.Bytes())
	payload.MimeType = stream.MimeType()
	value, err := marshalValue(payload)
	if err != nil {
		return "", nil, domain.NewCaptureError(domain.KindEncodingFailure, err)
	}
	return value, payload, nil
}

func (r *Recorder) appendChunk(s *CaptureSession, chunk []byte) error {
	if r.cfg.MaxBytes > 0 && s.Size()+len(chunk) > r.cfg.MaxBytes {
		return domain.NewCaptureError(domain.KindEncodingFailure,
			fmt.Errorf("capture exceeds %d bytes", r.cfg.MaxBytes))
	}
	return s.Append(chunk)
}

// acquire asks for permission and opens the device. Both steps share the
// permission timeout since either may wait on the user.
func (r *Recorder) acquire(ctx context.Context) (AudioStream, error) {
	waitCtx := ctx
	if r.cfg.PermissionTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, r.cfg.PermissionTimeout)
		defer cancel()
	}

	if err := r.permission.Request(waitCtx, r.device.Name()); err != nil {
		return nil, classifyWait(ctx, waitCtx, err, domain.KindPermissionDenied)
	}

	stream, err := r.device.Acquire(waitCtx)
	if err != nil {
		return nil, classifyWait(ctx, waitCtx, err, domain.KindDeviceUnavailable)
	}
	return stream, nil
}

func classifyWait(ctx, waitCtx context.Context, err error, fallback domain.ErrorKind) error {
	switch {
	case ctx.Err() != nil:
		return domain.NewCaptureError(domain.KindCanceled, err)
	case errors.Is(waitCtx.Err(), context.DeadlineExceeded):
		return domain.NewCaptureError(domain.KindPermissionTimeout, err)
	}
	var ce *domain.CaptureError
	if errors.As(err, &ce) {
		return err
	}
	return domain.NewCaptureError(fallback, err)
}

func (r *Recorder) fail(ctx context.Context, s *CaptureSession, err error, logger *slog.Logger) error {
	var ce *domain.CaptureError
	if !errors.As(err, &ce) {
		err = domain.NewCaptureError(domain.KindOf(err), err)
	}
	kind := domain.KindOf(err)

	_ = s.Transition(domain.StateFailed)
	logger.Error("capture failed", "kind", kind, "error", err)

	emitCtx := context.WithoutCancel(ctx)
	value := EncodeFailure(domain.Failure{Error: kind, Message: err.Error(), Session: s.ID})
	if emitErr := r.host.SetComponentValue(emitCtx, value); emitErr != nil {
		logger.Error("delivering failure to host", "error", emitErr)
		err = errors.Join(err, fmt.Errorf("delivering failure: %w", emitErr))
	}

	if notifyErr := r.notifier.Notify(emitCtx, fmt.Sprintf("Capture %s failed: %s", s.ID, kind)); notifyErr != nil {
		logger.Warn("notifying failure", "error", notifyErr)
	}
	return err
}

func streamErr(stream AudioStream) error {
	if err := stream.Err(); err != nil {
		return err
	}
	return errors.New("stream closed")
}
