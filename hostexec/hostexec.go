// Package hostexec is the sole seam between the engine and the outside world: every
// invocation of jail, jls, ifconfig, rctl, ping, and zfs passes through a HostExec. No
// other package in this module is permitted to call os/exec directly, mirroring the
// teacher's container_service.go, where every apple-container binary invocation is
// funneled through ContainerSvc.
package hostexec

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// Result captures everything the caller needs to know about a finished invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// WaitHandle is returned by SpawnInteractive; call it to block until the child exits.
type WaitHandle func() error

// HostExec is the capability the engine depends on. Tests substitute Echo for Real.
type HostExec interface {
	// Run executes program with args to completion and returns its captured output.
	// It does not return an error for a nonzero exit; callers that care inspect
	// Result.ExitCode (most engine call sites want the partial output even on
	// failure, e.g. to log it).
	Run(ctx context.Context, program string, args ...string) (Result, error)

	// RunStdin is like Run but streams in from stdin, consuming it to EOF. Used by
	// Storage.receive to pipe a decompressed image payload into `zfs receive`.
	RunStdin(ctx context.Context, program string, stdin io.Reader, args ...string) (Result, error)

	// SpawnInteractive starts program attached to the caller's stdio (via a pty when
	// stdin isn't already a terminal) and returns a handle to wait on it. Used by
	// console (brand.login).
	SpawnInteractive(ctx context.Context, program string, args ...string) (WaitHandle, error)
}

type real struct{}

// NewReal returns the HostExec that actually shells out.
func NewReal() HostExec { return real{} }

func (real) Run(ctx context.Context, program string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	slog.DebugContext(ctx, "hostexec.Run", "cmd", joinArgv(program, args))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	res.ExitCode = exitCode(err)
	if err != nil {
		if _, isExit := err.(*exec.ExitError); !isExit {
			return res, err
		}
	}
	return res, nil
}

func (real) RunStdin(ctx context.Context, program string, stdin io.Reader, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdin = stdin
	slog.DebugContext(ctx, "hostexec.RunStdin", "cmd", joinArgv(program, args))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	res.ExitCode = exitCode(err)
	if err != nil {
		if _, isExit := err.(*exec.ExitError); !isExit {
			return res, err
		}
	}
	return res, nil
}

func (real) SpawnInteractive(ctx context.Context, program string, args ...string) (WaitHandle, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	slog.InfoContext(ctx, "hostexec.SpawnInteractive", "cmd", joinArgv(program, args))

	stdinFile := os.Stdin
	if term.IsTerminal(int(stdinFile.Fd())) {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return nil, err
		}
		return cmd.Wait, nil
	}

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, err
	}
	go io.Copy(ptmx, os.Stdin)
	go io.Copy(os.Stdout, ptmx)

	return func() error {
		err := cmd.Wait()
		ptmx.Close()
		if err != nil {
			slog.ErrorContext(ctx, "hostexec.SpawnInteractive wait", "error", err)
		}
		return err
	}, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

func joinArgv(program string, args []string) string {
	return strings.Join(append([]string{program}, args...), " ")
}
