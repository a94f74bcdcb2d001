package commandmanager

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/steelcutops/droidcheck/common"
	"github.com/steelcutops/droidcheck/droidcheck/sshmanager"
	"github.com/steelcutops/droidcheck/logger"
)

var (
	ErrSSHClientNotInitialized = errors.New("SSHClient is not initialized")
	ErrSudoIncorrectPassword   = errors.New("sudo: incorrect password provided")
	ErrSudoNotInSudoers        = errors.New("sudo: user is not in the sudoers file")
)

const defaultDialTimeout = 15 * time.Minute

type UnixCommandManager struct {
	Hostname  string
	SSHClient sshmanager.SSHDialer
	Log       logger.Logger
	common.Credentials
}

func (u *UnixCommandManager) log() logger.Logger {
	if u.Log == nil {
		return logger.Default()
	}
	return u.Log
}

func (u *UnixCommandManager) RunLocal(ctx context.Context, config CommandConfig) (CommandResult, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, config.Command, config.Args...)
	if config.Sudo {
		cmdArgs := append([]string{"sudo", "-S", config.Command}, config.Args...)
		cmd = exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)
		cmd.Stdin = strings.NewReader(u.SudoPassword + "\n")
	}
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := CommandResult{
		Command:   commandLine(config),
		STDOUT:    stdout.String(),
		STDERR:    stderr.String(),
		ExitCode:  exitCode(err),
		Duration:  time.Since(start),
		Timestamp: start,
	}
	if sudoErr := checkSudo(result); sudoErr != nil {
		return result, sudoErr
	}

	// A non-zero exit is reported through ExitCode; only failures to start
	// or wait on the process are errors.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return result, nil
	}
	return result, err
}

func (u *UnixCommandManager) RunRemote(ctx context.Context, config CommandConfig) (CommandResult, error) {
	u.log().Debug("Executing remote command", "hostname", u.Hostname, "command", config.Command)

	if u.SSHClient == nil {
		return CommandResult{}, ErrSSHClientNotInitialized
	}

	sshConfig, err := sshmanager.ClientConfig(u.User, u.Password, u.KeyPassphrase)
	if err != nil {
		return CommandResult{}, err
	}

	dialTimeout := defaultDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		dialTimeout = time.Until(deadline)
	}

	client, err := u.SSHClient.Dial("tcp", u.Hostname+":22", sshConfig, dialTimeout)
	if err != nil {
		return CommandResult{}, err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return CommandResult{}, err
	}
	defer session.Close()

	cmdStr := commandLine(config)
	if config.Sudo {
		cmdStr = "sudo -S " + cmdStr
		session.Stdin = strings.NewReader(u.SudoPassword + "\n")
	}

	type remoteOutcome struct {
		result CommandResult
		err    error
	}

	start := time.Now()
	outputCh := make(chan remoteOutcome, 1)
	go func() {
		var outcome remoteOutcome
		var stdout, stderr strings.Builder
		session.Stdout = &stdout
		session.Stderr = &stderr

		if err := session.Run(cmdStr); err != nil {
			u.log().Debug("Remote command failed", "command", cmdStr, "error", err, "stderr", stderr.String())
			outcome.result.ExitCode = exitCode(err)
			// Without an exit status the command never reported back, so the
			// session error is the real cause.
			if outcome.result.ExitCode == -1 {
				outcome.err = err
			}
		}

		outcome.result.STDOUT = stdout.String()
		outcome.result.STDERR = stderr.String()
		outputCh <- outcome
	}()

	select {
	case outcome := <-outputCh:
		result := outcome.result
		result.Duration = time.Since(start)
		result.Timestamp = start
		result.Command = cmdStr
		if outcome.err != nil {
			return result, fmt.Errorf("remote command on %s: %w", u.Hostname, outcome.err)
		}
		return result, checkSudo(result)

	case <-ctx.Done():
		u.log().Error("Command over SSH timed out", "command", cmdStr)
		return CommandResult{}, ctx.Err()
	}
}

func (u *UnixCommandManager) Run(ctx context.Context, config CommandConfig) (CommandResult, error) {
	if u.isLocal() {
		u.log().Debug("Running local command", "hostname", u.Hostname, "command", config.Command)
		return u.RunLocal(ctx, config)
	}

	u.log().Debug("Running remote command", "hostname", u.Hostname, "command", config.Command)
	return u.RunRemote(ctx, config)
}

func (u *UnixCommandManager) isLocal() bool {
	return u.Hostname == "" || u.Hostname == "localhost" || u.Hostname == "127.0.0.1"
}

// commandLine renders the command for a remote shell. Arguments are quoted so
// that device-side operands survive the extra shell on the lab host.
func commandLine(config CommandConfig) string {
	return shellquote.Join(append([]string{config.Command}, config.Args...)...)
}

func checkSudo(result CommandResult) error {
	if strings.Contains(result.STDOUT, "incorrect password") || strings.Contains(result.STDERR, "incorrect password") {
		return ErrSudoIncorrectPassword
	}
	if strings.Contains(result.STDOUT, "is not in the sudoers file") || strings.Contains(result.STDERR, "is not in the sudoers file") {
		return ErrSudoNotInSudoers
	}
	return nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	var sshExit interface{ ExitStatus() int }
	if errors.As(err, &sshExit) {
		return sshExit.ExitStatus()
	}
	return -1
}
