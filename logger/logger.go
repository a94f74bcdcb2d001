package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used across droidcheck packages. Arguments
// after msg are key/value pairs and become structured fields.
type Logger interface {
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	With(args ...interface{}) Logger
}

type LogrusLogger struct {
	entry *logrus.Entry
}

var std = NewWithLogrus(logrus.StandardLogger())

// New returns a Logger writing text to out at info or debug level.
func New(out io.Writer, debug bool) Logger {
	l := logrus.New()
	l.SetOutput(out)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return NewWithLogrus(l)
}

func NewWithLogrus(l *logrus.Logger) Logger {
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

// Default returns the process-wide logger backed by logrus.StandardLogger.
func Default() Logger {
	return std
}

// Configure points the standard logrus logger at out and sets its level.
func Configure(out io.Writer, debug bool) {
	if out == nil {
		out = os.Stderr
	}
	logrus.SetOutput(out)
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// Discard returns a Logger that drops everything. Useful in tests.
func Discard() Logger {
	return New(io.Discard, false)
}

func (l *LogrusLogger) Info(msg string, args ...interface{}) {
	l.entry.WithFields(fields(args)).Info(msg)
}

func (l *LogrusLogger) Debug(msg string, args ...interface{}) {
	l.entry.WithFields(fields(args)).Debug(msg)
}

func (l *LogrusLogger) Warn(msg string, args ...interface{}) {
	l.entry.WithFields(fields(args)).Warn(msg)
}

func (l *LogrusLogger) Error(msg string, args ...interface{}) {
	l.entry.WithFields(fields(args)).Error(msg)
}

func (l *LogrusLogger) With(args ...interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(fields(args))}
}

// fields turns alternating key/value arguments into logrus fields. A trailing
// key without a value is recorded under "!BADKEY", like log/slog does.
func fields(args []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			f["!BADKEY"] = args[i]
			continue
		}
		if i+1 >= len(args) {
			f["!BADKEY"] = key
			break
		}
		f[key] = args[i+1]
	}
	return f
}
