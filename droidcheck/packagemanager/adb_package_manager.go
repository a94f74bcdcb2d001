package packagemanager

import (
	"context"
	"strings"

	sc "github.com/steelcutops/droidcheck/droidcheck/shellcommand"
)

const packagePrefix = "package:"

type AdbPackageManager struct {
	Shell sc.Executor
}

func (apm *AdbPackageManager) ListPackages(ctx context.Context, userID int) ([]string, error) {
	output, err := sc.BuilderForUser(userID, "pm list packages").
		AllowEmptyOutput().
		Execute(ctx, apm.Shell)
	if err != nil {
		return nil, err
	}

	var packages []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, packagePrefix) {
			packages = append(packages, strings.TrimPrefix(line, packagePrefix))
		}
	}
	return packages, nil
}

func (apm *AdbPackageManager) IsInstalled(ctx context.Context, userID int, pkg string) (bool, error) {
	packages, err := apm.ListPackages(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range packages {
		if p == pkg {
			return true, nil
		}
	}
	return false, nil
}

func (apm *AdbPackageManager) Install(ctx context.Context, userID int, apkPath string) error {
	_, err := sc.BuilderForUser(userID, "pm install").
		AddOperand("-r").
		AddOperand("-t").
		AddOperand(apkPath).
		Validate(sc.StartsWithSuccess).
		Execute(ctx, apm.Shell)
	return err
}

func (apm *AdbPackageManager) Uninstall(ctx context.Context, userID int, pkg string) error {
	_, err := sc.BuilderForUser(userID, "pm uninstall").
		AddOperand(pkg).
		Validate(sc.StartsWithSuccess).
		Execute(ctx, apm.Shell)
	return err
}

func (apm *AdbPackageManager) EnsurePackageAbsent(ctx context.Context, userID int, pkg string) error {
	installed, err := apm.IsInstalled(ctx, userID, pkg)
	if err != nil || !installed {
		return err
	}
	return apm.Uninstall(ctx, userID, pkg)
}
