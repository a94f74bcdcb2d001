package device

import (
	"context"
	"fmt"

	"github.com/steelcutops/droidcheck/droidcheck/commandmanager"
	"github.com/steelcutops/droidcheck/droidcheck/inputmanager"
	"github.com/steelcutops/droidcheck/droidcheck/packagemanager"
	"github.com/steelcutops/droidcheck/droidcheck/usermanager"
)

// NewDevice builds a Device and wires its managers. Unless WithSDKVersion is
// given, the SDK version is read from the device, and it selects the dumpsys
// parser once for the lifetime of the Device.
func NewDevice(ctx context.Context, serial string, options ...DeviceOption) (*Device, error) {
	if serial == "" {
		return nil, fmt.Errorf("device serial must not be empty")
	}

	d := &Device{Serial: serial}
	for _, option := range options {
		option(d)
	}

	if d.Hostname == "" {
		d.Hostname = defaultHostname
	}
	if d.ADBPath == "" {
		d.ADBPath = defaultADBPath
	}

	// The CommandManager is required before determining the SDK.
	if d.CommandManager == nil {
		d.CommandManager = &commandmanager.UnixCommandManager{
			Hostname:    d.Hostname,
			SSHClient:   d.SSHClient,
			Log:         d.Log,
			Credentials: d.Credentials,
		}
	}

	if d.SDKVersion == 0 {
		sdk, err := d.DetermineSDK(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to determine SDK version of %s: %w", d.Key(), err)
		}
		d.SDKVersion = sdk
	}

	parser, err := usermanager.NewParser(d.SDKVersion)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", d.Key(), err)
	}

	configureManagers(d, parser)
	d.log().Debug("Configured device", "device", d.Key(), "sdk", d.SDKVersion)
	return d, nil
}

func configureManagers(d *Device, parser usermanager.Parser) {
	userManager := usermanager.NewAdbUserManager(d, parser)
	userManager.Log = d.Log

	d.UserManager = userManager
	d.PackageManager = &packagemanager.AdbPackageManager{Shell: d}
	d.InputManager = &inputmanager.AdbInputManager{Shell: d}
}
