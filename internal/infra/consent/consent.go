// Package consent decides whether the recorder may open the microphone.
package consent

import (
	"context"
	"errors"
	"fmt"

	"mic-recorder/internal/domain"
)

var errDenied = errors.New("microphone access denied")

// Static answers every request the same way.
type Static struct {
	grant bool
}

func Grant() *Static { return &Static{grant: true} }
func Deny() *Static  { return &Static{grant: false} }

func (s *Static) Request(_ context.Context, device string) error {
	if s.grant {
		return nil
	}
	return domain.NewCaptureError(domain.KindPermissionDenied, fmt.Errorf("%s: %w", device, errDenied))
}
