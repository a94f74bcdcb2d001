package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFields(t *testing.T) {
	f := fields([]interface{}{"serial", "emulator-5554", "user", 10})
	assert.Equal(t, "emulator-5554", f["serial"])
	assert.Equal(t, 10, f["user"])

	f = fields([]interface{}{"dangling"})
	assert.Equal(t, "dangling", f["!BADKEY"])
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.Info("shown", "serial", "abc")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "serial=abc")
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true).With("device", "emulator-5554")
	l.Debug("parsing dump")
	assert.Contains(t, buf.String(), "device=emulator-5554")
	assert.Contains(t, buf.String(), "parsing dump")
}
