package domain

import "time"

type State string

const (
	StateIdle             State = "idle"
	StateRequestingDevice State = "requesting_device"
	StateRecording        State = "recording"
	StateStopping         State = "stopping"
	StateEncoding         State = "encoding"
	StateEmitted          State = "emitted"
	StateFailed           State = "failed"
)

// Terminal reports whether no further transition is defined from s.
func (s State) Terminal() bool {
	return s == StateEmitted || s == StateFailed
}

// DefaultCaptureDuration is the capture window used when none is configured.
const DefaultCaptureDuration = 4000 * time.Millisecond

// Payload is the value handed to the host after a successful capture.
// Audio holds the base64 text of the concatenated recording.
type Payload struct {
	Audio string `json:"audio"`
	// MimeType describes the container the capture subsystem produced. It
	// is not part of the host value.
	MimeType string `json:"-"`
}

// Failure is the value handed to the host when a capture does not produce a payload.
type Failure struct {
	Error   ErrorKind `json:"error"`
	Message string    `json:"message"`
	Session string    `json:"session,omitempty"`
}
