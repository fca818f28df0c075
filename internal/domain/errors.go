package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindPermissionDenied  ErrorKind = "permission_denied"
	KindPermissionTimeout ErrorKind = "permission_timeout"
	KindDeviceUnavailable ErrorKind = "device_unavailable"
	KindEncodingFailure   ErrorKind = "encoding_failure"
	KindCanceled          ErrorKind = "canceled"
	KindBusy              ErrorKind = "busy"
)

var (
	ErrPermissionDenied  = &CaptureError{Kind: KindPermissionDenied}
	ErrPermissionTimeout = &CaptureError{Kind: KindPermissionTimeout}
	ErrDeviceUnavailable = &CaptureError{Kind: KindDeviceUnavailable}
	ErrEncodingFailure   = &CaptureError{Kind: KindEncodingFailure}
	ErrCanceled          = &CaptureError{Kind: KindCanceled}
	ErrBusy              = &CaptureError{Kind: KindBusy}
)

// CaptureError classifies a failed capture. Two CaptureErrors match under
// errors.Is when their kinds are equal, so callers can test against the
// exported sentinels.
type CaptureError struct {
	Kind ErrorKind
	Err  error
}

func NewCaptureError(kind ErrorKind, err error) *CaptureError {
	return &CaptureError{Kind: kind, Err: err}
}

func (e *CaptureError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

func (e *CaptureError) Is(target error) bool {
	t, ok := target.(*CaptureError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the failure kind carried by err. Errors that were never
// classified are reported as device failures, the only kind that covers
// arbitrary capture subsystem errors.
func KindOf(err error) ErrorKind {
	var ce *CaptureError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindDeviceUnavailable
}
