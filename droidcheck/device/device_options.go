package device

import (
	"github.com/steelcutops/droidcheck/droidcheck/commandmanager"
	"github.com/steelcutops/droidcheck/droidcheck/sshmanager"
	"github.com/steelcutops/droidcheck/logger"
)

type DeviceOption func(*Device)

// WithHost returns a DeviceOption that sets the host adb runs on.
func WithHost(hostname string) DeviceOption {
	return func(d *Device) {
		d.Hostname = hostname
	}
}

// WithUser returns a DeviceOption that sets the SSH user for the host.
func WithUser(user string) DeviceOption {
	return func(d *Device) {
		d.User = user
	}
}

// WithPassword returns a DeviceOption that sets the SSH password for the host.
func WithPassword(password string) DeviceOption {
	return func(d *Device) {
		d.Password = password
	}
}

// WithKeyPassphrase returns a DeviceOption that sets the key passphrase.
func WithKeyPassphrase(keyPassphrase string) DeviceOption {
	return func(d *Device) {
		d.KeyPassphrase = keyPassphrase
	}
}

func WithSSHClient(client sshmanager.SSHDialer) DeviceOption {
	return func(d *Device) {
		d.SSHClient = client
	}
}

// WithSDKVersion skips SDK detection.
func WithSDKVersion(sdk int) DeviceOption {
	return func(d *Device) {
		d.SDKVersion = sdk
	}
}

// WithCommandManager replaces the host command manager, mostly for tests.
func WithCommandManager(cm commandmanager.CommandManager) DeviceOption {
	return func(d *Device) {
		d.CommandManager = cm
	}
}

// WithADBPath sets the adb binary used on the host.
func WithADBPath(path string) DeviceOption {
	return func(d *Device) {
		d.ADBPath = path
	}
}

func WithLogger(l logger.Logger) DeviceOption {
	return func(d *Device) {
		d.Log = l
	}
}

func WithSudoPassword(sudoPassword string) DeviceOption {
	return func(d *Device) {
		d.SudoPassword = sudoPassword
	}
}
