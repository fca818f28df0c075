package application

import "context"

// Permission asks whoever controls the device whether it may be used.
// A nil error means access was granted.
type Permission interface {
	Request(ctx context.Context, device string) error
}
