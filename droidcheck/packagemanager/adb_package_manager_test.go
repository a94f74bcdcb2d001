package packagemanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sc "github.com/steelcutops/droidcheck/droidcheck/shellcommand"
)

type MockShell struct {
	mock.Mock
}

func (m *MockShell) ExecuteShell(ctx context.Context, command string) (string, error) {
	args := m.Called(command)
	return args.String(0), args.Error(1)
}

func TestAdbPackageManager(t *testing.T) {
	shell := new(MockShell)
	pm := AdbPackageManager{Shell: shell}
	ctx := context.Background()

	// Test: ListPackages
	shell.On("ExecuteShell", "pm list packages --user 0").
		Return("package:com.android.settings\npackage:com.example.app\n", nil)
	packages, err := pm.ListPackages(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.android.settings", "com.example.app"}, packages)

	// Test: IsInstalled
	installed, err := pm.IsInstalled(ctx, 0, "com.example.app")
	require.NoError(t, err)
	assert.True(t, installed)

	// Test: Install
	shell.On("ExecuteShell", "pm install --user 10 -r -t /data/local/tmp/app.apk").Return("Success\n", nil)
	assert.NoError(t, pm.Install(ctx, 10, "/data/local/tmp/app.apk"))

	// Test: EnsurePackageAbsent
	shell.On("ExecuteShell", "pm uninstall --user 0 com.example.app").Return("Success\n", nil)
	assert.NoError(t, pm.EnsurePackageAbsent(ctx, 0, "com.example.app"))
	assert.NoError(t, pm.EnsurePackageAbsent(ctx, 0, "com.not.there"))

	shell.AssertExpectations(t)
}

func TestInstallFailure(t *testing.T) {
	shell := new(MockShell)
	pm := AdbPackageManager{Shell: shell}
	shell.On("ExecuteShell", "pm install --user 0 -r -t /x.apk").Return("Failure [INSTALL_FAILED_INVALID_APK]\n", nil)

	err := pm.Install(context.Background(), 0, "/x.apk")

	assert.ErrorIs(t, err, sc.ErrValidation)
}

func TestListPackagesEmpty(t *testing.T) {
	shell := new(MockShell)
	pm := AdbPackageManager{Shell: shell}
	shell.On("ExecuteShell", "pm list packages --user 11").Return("", nil)

	packages, err := pm.ListPackages(context.Background(), 11)

	require.NoError(t, err)
	assert.Empty(t, packages)
}
