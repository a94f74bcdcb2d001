package commandmanager

import (
	"context"
	"time"
)

// CommandConfig describes a host-side command.
type CommandConfig struct {
	Command string
	Args    []string
	Sudo    bool
}

// CommandResult encapsulates the results from a command execution.
type CommandResult struct {
	Command   string
	STDOUT    string
	STDERR    string
	ExitCode  int
	Duration  time.Duration
	Timestamp time.Time
}

// CommandManager runs commands on the host where adb lives, either locally or
// over SSH.
type CommandManager interface {
	// Run picks RunLocal or RunRemote based on the configured hostname.
	Run(ctx context.Context, config CommandConfig) (CommandResult, error)

	// RunLocal executes a command on the local system.
	RunLocal(ctx context.Context, config CommandConfig) (CommandResult, error)

	// RunRemote executes a command on a remote system via SSH.
	RunRemote(ctx context.Context, config CommandConfig) (CommandResult, error)
}
