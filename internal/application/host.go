package application

import "context"

// Host receives the result of a capture as JSON text.
type Host interface {
	SetComponentValue(ctx context.Context, value string) error
}
