// Package shellcommand builds device-side shell commands and runs them
// through an injected Executor.
package shellcommand

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Executor runs a shell command line on a device and returns its output.
type Executor interface {
	ExecuteShell(ctx context.Context, command string) (string, error)
}

// ExecutorFunc adapts a plain function to Executor.
type ExecutorFunc func(ctx context.Context, command string) (string, error)

func (f ExecutorFunc) ExecuteShell(ctx context.Context, command string) (string, error) {
	return f(ctx, command)
}

type option struct {
	key   string
	value string
}

// Command is an immutable shell command. Each builder method returns a copy.
type Command struct {
	command          string
	userID           *int
	operands         []string
	options          []option
	asRoot           bool
	allowEmptyOutput bool
	validators       []func(string) bool
}

// Builder starts a command. The command string is used verbatim and may
// contain several words, for example "pm install".
func Builder(command string) Command {
	return Command{command: command}
}

// BuilderForUser starts a command that targets a specific user with --user.
func BuilderForUser(userID int, command string) Command {
	c := Builder(command)
	c.userID = &userID
	return c
}

// AddOperand appends a positional argument. Operands are shell-quoted.
func (c Command) AddOperand(operand interface{}) Command {
	c.operands = append(clone(c.operands), toString(operand))
	return c
}

// AddOption appends "key value".
func (c Command) AddOption(key string, value interface{}) Command {
	c.options = append(append([]option(nil), c.options...), option{key: key, value: toString(value)})
	return c
}

// AsRoot runs the command through "su root".
func (c Command) AsRoot() Command {
	c.asRoot = true
	return c
}

// AllowEmptyOutput stops Execute from treating empty output as failure.
func (c Command) AllowEmptyOutput() Command {
	c.allowEmptyOutput = true
	return c
}

// Validate adds a check the output must pass.
func (c Command) Validate(validator func(string) bool) Command {
	c.validators = append(append([]func(string) bool(nil), c.validators...), validator)
	return c
}

// Build renders the command line.
func (c Command) Build() string {
	var b strings.Builder
	if c.asRoot {
		b.WriteString("su root ")
	}
	b.WriteString(c.command)
	if c.userID != nil {
		b.WriteString(" --user ")
		b.WriteString(strconv.Itoa(*c.userID))
	}
	for _, o := range c.options {
		b.WriteString(" ")
		b.WriteString(o.key)
		b.WriteString(" ")
		b.WriteString(shellquote.Join(o.value))
	}
	if len(c.operands) > 0 {
		b.WriteString(" ")
		b.WriteString(shellquote.Join(c.operands...))
	}
	return b.String()
}

func (c Command) String() string {
	return c.Build()
}

// Execute runs the command and checks its output.
func (c Command) Execute(ctx context.Context, executor Executor) (string, error) {
	commandLine := c.Build()
	output, err := executor.ExecuteShell(ctx, commandLine)
	if err != nil {
		return output, &AdbError{Command: commandLine, Output: output, Err: err}
	}

	if !c.allowEmptyOutput && strings.TrimSpace(output) == "" {
		return output, &AdbError{Command: commandLine, Output: output, Err: ErrEmptyOutput}
	}

	for _, validate := range c.validators {
		if !validate(output) {
			return output, &AdbError{Command: commandLine, Output: output, Err: ErrValidation}
		}
	}

	return output, nil
}

// ExecuteAndParse runs the command and hands its output to parse.
func ExecuteAndParse[T any](ctx context.Context, c Command, executor Executor, parse func(string) (T, error)) (T, error) {
	output, err := c.Execute(ctx, executor)
	if err != nil {
		var zero T
		return zero, err
	}
	return parse(output)
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case interface{ String() string }:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
