package usermanager

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sc "github.com/steelcutops/droidcheck/droidcheck/shellcommand"
	"github.com/steelcutops/droidcheck/logger"
)

const createdUserPrefix = "Success: created user id "

// AdbUserManager manages users through device shell commands.
type AdbUserManager struct {
	Shell  sc.Executor
	Parser Parser
	Log    logger.Logger
}

func NewAdbUserManager(shell sc.Executor, parser Parser) *AdbUserManager {
	return &AdbUserManager{Shell: shell, Parser: parser}
}

func (m *AdbUserManager) log() logger.Logger {
	if m.Log == nil {
		return logger.Default()
	}
	return m.Log
}

func (m *AdbUserManager) All(ctx context.Context) (*Snapshot, error) {
	output, err := sc.Builder("dumpsys user").Execute(ctx, m.Shell)
	if err != nil {
		return nil, err
	}

	snapshot, err := m.Parser.Parse(output)
	if err != nil {
		m.log().Debug("Failed to parse dumpsys user", "sdk", m.Parser.SDK(), "error", err)
		return nil, err
	}

	m.log().Debug("Parsed dumpsys user", "snapshot", snapshot.ID(), "users", snapshot.Len())
	return snapshot, nil
}

func (m *AdbUserManager) Find(ctx context.Context, id int) (User, bool, error) {
	snapshot, err := m.All(ctx)
	if err != nil {
		return User{}, false, err
	}
	u, ok := snapshot.User(id)
	return u, ok, nil
}

func (m *AdbUserManager) Exists(ctx context.Context, id int) (bool, error) {
	_, ok, err := m.Find(ctx, id)
	return ok, err
}

func (m *AdbUserManager) CurrentUser(ctx context.Context) (int, error) {
	return sc.ExecuteAndParse(ctx, sc.Builder("am get-current-user"), m.Shell, func(output string) (int, error) {
		id, err := strconv.Atoi(strings.TrimSpace(output))
		if err != nil {
			return 0, fmt.Errorf("unexpected am get-current-user output %q: %w", output, err)
		}
		return id, nil
	})
}

func (m *AdbUserManager) Create(ctx context.Context, opts CreateOptions) (int, error) {
	if opts.Name == "" {
		return 0, fmt.Errorf("user name must not be empty")
	}

	cmd := sc.Builder("pm create-user")
	if opts.ProfileOf != nil {
		cmd = cmd.AddOption("--profileOf", *opts.ProfileOf)
	}
	if opts.UserType != "" {
		cmd = cmd.AddOption("--user-type", opts.UserType)
	}
	if opts.Managed {
		cmd = cmd.AddOperand("--managed")
	}
	cmd = cmd.AddOperand(opts.Name).Validate(sc.StartsWithSuccess)

	id, err := sc.ExecuteAndParse(ctx, cmd, m.Shell, parseCreatedUserID)
	if err != nil {
		return 0, err
	}
	m.log().Info("Created user", "id", id, "name", opts.Name)
	return id, nil
}

// parseCreatedUserID reads "Success: created user id 10".
func parseCreatedUserID(output string) (int, error) {
	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, createdUserPrefix) {
		return 0, fmt.Errorf("unexpected pm create-user output %q", output)
	}
	id, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(output, createdUserPrefix)))
	if err != nil {
		return 0, fmt.Errorf("unexpected pm create-user output %q: %w", output, err)
	}
	return id, nil
}

func (m *AdbUserManager) Remove(ctx context.Context, id int) error {
	_, err := sc.Builder("pm remove-user").
		AddOperand(id).
		Validate(sc.StartsWith("Success: removed user")).
		Execute(ctx, m.Shell)
	if err == nil {
		m.log().Info("Removed user", "id", id)
	}
	return err
}

func (m *AdbUserManager) Start(ctx context.Context, id int) error {
	_, err := sc.Builder("am start-user").
		AddOperand("-w").
		AddOperand(id).
		Validate(sc.Contains("Success: user started")).
		Execute(ctx, m.Shell)
	return err
}

func (m *AdbUserManager) Stop(ctx context.Context, id int) error {
	_, err := sc.Builder("am stop-user").
		AddOperand("-w").
		AddOperand("-f").
		AddOperand(id).
		AllowEmptyOutput().
		Validate(sc.DoesNotStartWithError).
		Execute(ctx, m.Shell)
	return err
}

func (m *AdbUserManager) Switch(ctx context.Context, id int) error {
	_, err := sc.Builder("am switch-user").
		AddOperand(id).
		AllowEmptyOutput().
		Validate(sc.DoesNotStartWithError).
		Execute(ctx, m.Shell)
	return err
}
