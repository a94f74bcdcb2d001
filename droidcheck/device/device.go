package device

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/steelcutops/droidcheck/common"
	"github.com/steelcutops/droidcheck/droidcheck/commandmanager"
	"github.com/steelcutops/droidcheck/droidcheck/inputmanager"
	"github.com/steelcutops/droidcheck/droidcheck/packagemanager"
	sc "github.com/steelcutops/droidcheck/droidcheck/shellcommand"
	"github.com/steelcutops/droidcheck/droidcheck/sshmanager"
	"github.com/steelcutops/droidcheck/droidcheck/usermanager"
	"github.com/steelcutops/droidcheck/logger"
)

const (
	defaultHostname = "localhost"
	defaultADBPath  = "adb"
)

// Device is an Android device reachable through adb on a local or remote
// host.
type Device struct {
	Serial     string
	Hostname   string
	ADBPath    string
	SDKVersion int
	SSHClient  sshmanager.SSHDialer
	Log        logger.Logger
	common.Credentials

	CommandManager commandmanager.CommandManager
	UserManager    usermanager.UserManager
	PackageManager packagemanager.PackageManager
	InputManager   inputmanager.InputManager
}

// Key identifies the device across hosts.
func (d *Device) Key() string {
	return d.Hostname + "/" + d.Serial
}

func (d *Device) log() logger.Logger {
	if d.Log == nil {
		return logger.Default()
	}
	return d.Log
}

// ExecuteShell runs "adb -s SERIAL shell COMMAND" on the device's host.
func (d *Device) ExecuteShell(ctx context.Context, command string) (string, error) {
	result, err := d.CommandManager.Run(ctx, commandmanager.CommandConfig{
		Command: d.ADBPath,
		Args:    []string{"-s", d.Serial, "shell", command},
	})
	if err != nil {
		return result.STDOUT, err
	}

	if result.ExitCode != 0 {
		d.log().Debug("adb shell exited non-zero", "serial", d.Serial, "command", command, "exitCode", result.ExitCode)
		return result.STDOUT, fmt.Errorf("adb shell on %s exited with code %d: %s", d.Serial, result.ExitCode, strings.TrimSpace(result.STDERR))
	}
	return result.STDOUT, nil
}

// DetermineSDK reads ro.build.version.sdk from the device.
func (d *Device) DetermineSDK(ctx context.Context) (int, error) {
	cmd := sc.Builder("getprop").AddOperand("ro.build.version.sdk")
	return sc.ExecuteAndParse(ctx, cmd, d, func(output string) (int, error) {
		sdk, err := strconv.Atoi(strings.TrimSpace(output))
		if err != nil {
			return 0, fmt.Errorf("unexpected SDK version %q: %w", strings.TrimSpace(output), err)
		}
		return sdk, nil
	})
}
