package inputmanager

import (
	"context"
	"time"
)

// InputManager injects touch and key events on a device.
type InputManager interface {
	Tap(ctx context.Context, x, y int) error
	Swipe(ctx context.Context, x1, y1, x2, y2 int, duration time.Duration) error
	Text(ctx context.Context, text string) error
	KeyEvent(ctx context.Context, keyCode int) error

	// WaitForIdle blocks until no app transition is running.
	WaitForIdle(ctx context.Context) error
}
