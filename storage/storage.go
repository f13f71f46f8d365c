// Package storage wraps the copy-on-write pool operations (zfs snapshot/clone/receive/
// destroy/quota/origin) behind the hostexec seam, the way the teacher's container_ops.go
// wraps apple-container's filesystem/overlay operations behind ContainerSvc.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sweeklys/vmadm-go/hostexec"
	"github.com/sweeklys/vmadm-go/vmerrors"
)

// Storage drives `zfs` for a single pool of datasets.
type Storage struct {
	exec hostexec.HostExec
}

// New returns a Storage backed by exec.
func New(exec hostexec.HostExec) *Storage {
	return &Storage{exec: exec}
}

// IsPresent reports whether dataset currently exists on the pool.
func (s *Storage) IsPresent(ctx context.Context, dataset string) (bool, error) {
	res, err := s.exec.Run(ctx, "zfs", "list", "-H", "-o", "name", dataset)
	if err != nil {
		return false, vmerrors.Generic("checking presence of %s: %w", dataset, err)
	}
	return res.ExitCode == 0, nil
}

// Snapshot creates dataset@tag and fails if it already exists.
func (s *Storage) Snapshot(ctx context.Context, dataset, tag string) (string, error) {
	full := fmt.Sprintf("%s@%s", dataset, tag)
	if present, err := s.IsPresent(ctx, full); err != nil {
		return "", err
	} else if present {
		return "", &vmerrors.Conflict{UUID: full}
	}
	res, err := s.exec.Run(ctx, "zfs", "snapshot", full)
	if err != nil {
		return "", vmerrors.Generic("snapshotting %s: %w", full, err)
	}
	if res.ExitCode != 0 {
		return "", newExternalCommandError("zfs", []string{"snapshot", full}, res)
	}
	return full, nil
}

// Clone creates target from snapshot and fails if target already exists.
func (s *Storage) Clone(ctx context.Context, snapshot, target string) error {
	if present, err := s.IsPresent(ctx, target); err != nil {
		return err
	} else if present {
		return &vmerrors.Conflict{UUID: target}
	}
	res, err := s.exec.Run(ctx, "zfs", "clone", snapshot, target)
	if err != nil {
		return vmerrors.Generic("cloning %s to %s: %w", snapshot, target, err)
	}
	if res.ExitCode != 0 {
		return newExternalCommandError("zfs", []string{"clone", snapshot, target}, res)
	}
	return nil
}

// Receive streams r, a decompressed image payload, into a new dataset via `zfs receive`.
// It consumes r to EOF and propagates any I/O error from the underlying command.
func (s *Storage) Receive(ctx context.Context, dataset string, r io.Reader) error {
	res, err := s.exec.RunStdin(ctx, "zfs", r, "receive", dataset)
	if err != nil {
		return vmerrors.Generic("receiving into %s: %w", dataset, err)
	}
	if res.ExitCode != 0 {
		return newExternalCommandError("zfs", []string{"receive", dataset}, res)
	}
	return nil
}

// Destroy removes a dataset or snapshot. Callers that want "already gone" tolerance check
// IsPresent first; Destroy itself reports the underlying command's failure.
func (s *Storage) Destroy(ctx context.Context, path string) error {
	res, err := s.exec.Run(ctx, "zfs", "destroy", path)
	if err != nil {
		return vmerrors.Generic("destroying %s: %w", path, err)
	}
	if res.ExitCode != 0 {
		return newExternalCommandError("zfs", []string{"destroy", path}, res)
	}
	return nil
}

// Quota sets a hard quota, in GiB, on dataset.
func (s *Storage) Quota(ctx context.Context, dataset string, gib int) error {
	res, err := s.exec.Run(ctx, "zfs", "set", fmt.Sprintf("quota=%dG", gib), dataset)
	if err != nil {
		return vmerrors.Generic("setting quota on %s: %w", dataset, err)
	}
	if res.ExitCode != 0 {
		return newExternalCommandError("zfs", []string{"set", fmt.Sprintf("quota=%dG", gib), dataset}, res)
	}
	return nil
}

// Origin returns the originating snapshot path for a cloned dataset.
func (s *Storage) Origin(ctx context.Context, dataset string) (string, error) {
	res, err := s.exec.Run(ctx, "zfs", "get", "-H", "-o", "value", "origin", dataset)
	if err != nil {
		return "", vmerrors.Generic("reading origin of %s: %w", dataset, err)
	}
	if res.ExitCode != 0 {
		return "", newExternalCommandError("zfs", []string{"get", "-H", "-o", "value", "origin", dataset}, res)
	}
	return strings.TrimSpace(res.Stdout), nil
}

func newExternalCommandError(program string, args []string, res hostexec.Result) error {
	return &vmerrors.ExternalCommand{
		Program:  program,
		Args:     args,
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}
}
