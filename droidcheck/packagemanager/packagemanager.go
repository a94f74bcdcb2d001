package packagemanager

import "context"

// PackageManager manages Android packages for a given device user.
type PackageManager interface {
	ListPackages(ctx context.Context, userID int) ([]string, error)
	IsInstalled(ctx context.Context, userID int, pkg string) (bool, error)

	// Install installs an APK already present on the device, replacing any
	// existing install and allowing test-only packages.
	Install(ctx context.Context, userID int, apkPath string) error
	Uninstall(ctx context.Context, userID int, pkg string) error

	// Idempotent package management
	EnsurePackageAbsent(ctx context.Context, userID int, pkg string) error
}
