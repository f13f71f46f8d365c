package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/sweeklys/vmadm-go/hostexec"
)

// diagnosticCheck is one independently nameable precondition this host must satisfy
// before vmadm can manage jails on it.
type diagnosticCheck struct {
	ID          string
	Description string
	Run         func(context.Context, hostexec.HostExec) error
}

var (
	diagnosticChecks = []diagnosticCheck{
		{
			ID:          "freebsd",
			Description: "running on FreeBSD",
			Run: func(ctx context.Context, exec hostexec.HostExec) error {
				if runtime.GOOS != "freebsd" {
					return fmt.Errorf("this program requires FreeBSD, but detected OS: %s", runtime.GOOS)
				}
				return nil
			},
		},
		{
			ID:          "jail-binary",
			Description: "jail(8) is present on PATH",
			Run: func(ctx context.Context, exec hostexec.HostExec) error {
				res, err := exec.Run(ctx, "jail", "--help")
				if err != nil {
					return fmt.Errorf("could not invoke jail(8): %w", err)
				}
				_ = res
				return nil
			},
		},
		{
			ID:          "zfs-binary",
			Description: "zfs(8) is present on PATH",
			Run: func(ctx context.Context, exec hostexec.HostExec) error {
				if _, err := exec.Run(ctx, "zfs", "version"); err != nil {
					return fmt.Errorf("could not invoke zfs(8): %w", err)
				}
				return nil
			},
		},
		{
			ID:          "racct-enabled",
			Description: "kern.racct.enable is set, or rctl limits will be silently ignored",
			Run: func(ctx context.Context, exec hostexec.HostExec) error {
				res, err := exec.Run(ctx, "sysctl", "-n", "kern.racct.enable")
				if err != nil {
					return fmt.Errorf("could not read kern.racct.enable: %w", err)
				}
				if strings.TrimSpace(res.Stdout) != "1" {
					return fmt.Errorf("kern.racct.enable=%q, expected 1 (add it to /boot/loader.conf and reboot)", strings.TrimSpace(res.Stdout))
				}
				return nil
			},
		},
	}
	diagnosticCheckMap = map[string]diagnosticCheck{}
)

func init() {
	for _, check := range diagnosticChecks {
		diagnosticCheckMap[check.ID] = check
	}
}

// verifyPrerequisites runs every named check against exec, collecting every failure
// rather than stopping at the first.
func verifyPrerequisites(ctx context.Context, exec hostexec.HostExec, checkIDs ...string) error {
	failures := map[string]string{}
	for _, checkID := range checkIDs {
		check, ok := diagnosticCheckMap[checkID]
		if !ok {
			failures[checkID] = "unrecognized prerequisite check ID"
			continue
		}
		if err := check.Run(ctx, exec); err != nil {
			failures[check.ID] = check.Description
			slog.ErrorContext(ctx, "diagnosticCheck failed", "name", check.Description, "error", err)
		} else {
			slog.InfoContext(ctx, "diagnosticCheck passed", "name", check.Description)
		}
	}
	if len(failures) == 0 {
		return nil
	}
	var errs []error
	slog.ErrorContext(ctx, "prerequisite check(s) failed", "failures", failures)
	for id, description := range failures {
		errs = append(errs, fmt.Errorf("check failed %q: %s", id, description))
	}
	return errors.Join(errs...)
}

// allPrerequisiteIDs returns every registered check ID, the set `vmadm config --host-check`
// runs when the caller doesn't name specific checks.
func allPrerequisiteIDs() []string {
	ids := make([]string, 0, len(diagnosticChecks))
	for _, c := range diagnosticChecks {
		ids = append(ids, c.ID)
	}
	return ids
}
