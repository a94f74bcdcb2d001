package inputmanager

import (
	"context"
	"fmt"
	"regexp"
	"time"

	sc "github.com/steelcutops/droidcheck/droidcheck/shellcommand"
)

const defaultIdlePollInterval = 200 * time.Millisecond

// Matches e.g. "mAppTransitionState=APP_STATE_RUNNING" in dumpsys window.
var transitionStateRe = regexp.MustCompile(`mAppTransitionState=(\w+)`)

type AdbInputManager struct {
	Shell sc.Executor
	// PollInterval overrides the WaitForIdle polling interval.
	PollInterval time.Duration
}

func (aim *AdbInputManager) Tap(ctx context.Context, x, y int) error {
	return aim.input(ctx, sc.Builder("input tap").AddOperand(x).AddOperand(y))
}

func (aim *AdbInputManager) Swipe(ctx context.Context, x1, y1, x2, y2 int, duration time.Duration) error {
	cmd := sc.Builder("input swipe").
		AddOperand(x1).
		AddOperand(y1).
		AddOperand(x2).
		AddOperand(y2).
		AddOperand(int(duration / time.Millisecond))
	return aim.input(ctx, cmd)
}

func (aim *AdbInputManager) Text(ctx context.Context, text string) error {
	return aim.input(ctx, sc.Builder("input text").AddOperand(text))
}

func (aim *AdbInputManager) KeyEvent(ctx context.Context, keyCode int) error {
	return aim.input(ctx, sc.Builder("input keyevent").AddOperand(keyCode))
}

// input commands print nothing on success.
func (aim *AdbInputManager) input(ctx context.Context, cmd sc.Command) error {
	_, err := cmd.AllowEmptyOutput().Validate(sc.DoesNotStartWithError).Execute(ctx, aim.Shell)
	return err
}

func (aim *AdbInputManager) WaitForIdle(ctx context.Context) error {
	interval := aim.PollInterval
	if interval <= 0 {
		interval = defaultIdlePollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		output, err := sc.Builder("dumpsys window").Execute(ctx, aim.Shell)
		if err != nil {
			return err
		}
		if transitionsIdle(output) {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for window idle: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func transitionsIdle(dumpsysWindow string) bool {
	for _, m := range transitionStateRe.FindAllStringSubmatch(dumpsysWindow, -1) {
		if m[1] != "APP_STATE_IDLE" {
			return false
		}
	}
	return true
}
