package application

import "context"

// AudioDevice hands out exclusive access to an audio input.
type AudioDevice interface {
	Name() string
	// Acquire blocks until the input is available. ctx bounds the wait only;
	// the returned stream owns the device until Close is called.
	Acquire(ctx context.Context) (AudioStream, error)
}

// AudioStream delivers captured audio as a sequence of chunks.
//
// Chunks is closed exactly once, after Stop has been called and every chunk
// captured before the stop has been delivered, or earlier when the device
// fails (Err then reports why). Close releases the device and is safe to call
// on every exit path.
type AudioStream interface {
	Start() error
	Chunks() <-chan []byte
	Stop() error
	Err() error
	Close() error
	MimeType() string
}

type AudioFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func DefaultAudioFormat() AudioFormat {
	return AudioFormat{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
	}
}
