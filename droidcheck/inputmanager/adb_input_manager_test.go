package inputmanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sc "github.com/steelcutops/droidcheck/droidcheck/shellcommand"
)

type recordingShell struct {
	commands []string
	outputs  []string
}

func (r *recordingShell) ExecuteShell(ctx context.Context, command string) (string, error) {
	r.commands = append(r.commands, command)
	if len(r.outputs) == 0 {
		return "", nil
	}
	out := r.outputs[0]
	if len(r.outputs) > 1 {
		r.outputs = r.outputs[1:]
	}
	return out, nil
}

func TestGestures(t *testing.T) {
	shell := &recordingShell{}
	im := AdbInputManager{Shell: shell}
	ctx := context.Background()

	require.NoError(t, im.Tap(ctx, 100, 200))
	require.NoError(t, im.Swipe(ctx, 10, 20, 30, 40, 300*time.Millisecond))
	require.NoError(t, im.KeyEvent(ctx, 3))
	require.NoError(t, im.Text(ctx, "hello"))

	assert.Equal(t, []string{
		"input tap 100 200",
		"input swipe 10 20 30 40 300",
		"input keyevent 3",
		"input text hello",
	}, shell.commands)
}

func TestTapError(t *testing.T) {
	shell := &recordingShell{outputs: []string{"Error: Unknown command: tap"}}
	im := AdbInputManager{Shell: shell}

	err := im.Tap(context.Background(), 1, 1)

	assert.ErrorIs(t, err, sc.ErrValidation)
}

func TestWaitForIdle(t *testing.T) {
	shell := &recordingShell{outputs: []string{
		"  mAppTransitionState=APP_STATE_RUNNING\n",
		"  mAppTransitionState=APP_STATE_READY\n",
		"  mAppTransitionState=APP_STATE_IDLE\n",
	}}
	im := AdbInputManager{Shell: shell, PollInterval: time.Millisecond}

	require.NoError(t, im.WaitForIdle(context.Background()))
	assert.Len(t, shell.commands, 3)
}

func TestWaitForIdleTimeout(t *testing.T) {
	shell := &recordingShell{outputs: []string{"mAppTransitionState=APP_STATE_RUNNING\n"}}
	im := AdbInputManager{Shell: shell, PollInterval: time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := im.WaitForIdle(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTransitionsIdle(t *testing.T) {
	assert.True(t, transitionsIdle("no transition info"))
	assert.True(t, transitionsIdle("mAppTransitionState=APP_STATE_IDLE\nmAppTransitionState=APP_STATE_IDLE"))
	assert.False(t, transitionsIdle("mAppTransitionState=APP_STATE_IDLE\nmAppTransitionState=APP_STATE_TIMEOUT"))
}
