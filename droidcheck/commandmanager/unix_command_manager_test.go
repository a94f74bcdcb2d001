package commandmanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/steelcutops/droidcheck/common"
	"github.com/steelcutops/droidcheck/logger"
)

type MockSSHClient struct {
	dialError error
	addr      string
}

func (m *MockSSHClient) Dial(network, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error) {
	m.addr = addr
	return nil, m.dialError
}

func TestRunLocal(t *testing.T) {
	manager := UnixCommandManager{
		Hostname: "localhost",
		Log:      logger.Discard(),
	}

	result, err := manager.RunLocal(context.Background(), CommandConfig{
		Command: "echo",
		Args:    []string{"hello"},
	})

	require.NoError(t, err)
	assert.Equal(t, "hello\n", result.STDOUT)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "echo hello", result.Command)
}

func TestRunLocalNonZeroExit(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost", Log: logger.Discard()}

	result, err := manager.RunLocal(context.Background(), CommandConfig{
		Command: "sh",
		Args:    []string{"-c", "exit 3"},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
}

func TestIsLocal(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost"}
	assert.True(t, manager.isLocal())

	manager.Hostname = ""
	assert.True(t, manager.isLocal())

	manager.Hostname = "lab-host-1"
	assert.False(t, manager.isLocal())
}

func TestRunRemoteDialError(t *testing.T) {
	client := &MockSSHClient{dialError: errors.New("mock dial error")}
	manager := UnixCommandManager{
		Hostname:  "lab-host-1",
		SSHClient: client,
		Log:       logger.Discard(),
		Credentials: common.Credentials{
			User:     "user",
			Password: "password",
		},
	}

	_, err := manager.RunRemote(context.Background(), CommandConfig{Command: "adb", Args: []string{"devices"}})

	require.Error(t, err)
	assert.Equal(t, "mock dial error", err.Error())
	assert.Equal(t, "lab-host-1:22", client.addr)
}

func TestRunRemoteWithoutClient(t *testing.T) {
	manager := UnixCommandManager{Hostname: "lab-host-1", Log: logger.Discard()}

	_, err := manager.Run(context.Background(), CommandConfig{Command: "adb"})

	assert.ErrorIs(t, err, ErrSSHClientNotInitialized)
}

func TestCheckSudo(t *testing.T) {
	assert.ErrorIs(t, checkSudo(CommandResult{STDERR: "Sorry, incorrect password attempt"}), ErrSudoIncorrectPassword)
	assert.ErrorIs(t, checkSudo(CommandResult{STDOUT: "lab is not in the sudoers file."}), ErrSudoNotInSudoers)
	assert.NoError(t, checkSudo(CommandResult{STDOUT: "ok"}))
}
