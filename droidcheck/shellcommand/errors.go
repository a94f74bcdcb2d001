package shellcommand

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOutput = errors.New("command returned no output")
	ErrValidation  = errors.New("command output failed validation")
)

// AdbError reports a failed device shell command together with whatever
// output it produced.
type AdbError struct {
	Command string
	Output  string
	Err     error
}

func (e *AdbError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("adb command %q failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("adb command %q failed: %v (output: %q)", e.Command, e.Err, e.Output)
}

func (e *AdbError) Unwrap() error {
	return e.Err
}
