package hostexec

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// echoMode is the test-mode HostExec described in spec §4.1: it substitutes `echo` for
// jail, rctl, and ifconfig (and any other program) so that engine tests can exercise the
// full command-building logic without a real FreeBSD host. Every call succeeds and
// "stdout" is just the argv that would have been run, space-joined, so assertions can
// check the shape of the command that was about to be issued.
type echoMode struct {
	// responses lets a test script a specific return value for a given program, e.g.
	// to make "jail" print a jid on stdout.
	responses map[string]Result
}

// NewEcho returns the no-op HostExec used by tests.
func NewEcho() HostExec {
	return &echoMode{responses: map[string]Result{}}
}

// NewEchoWithResponses is like NewEcho but lets the caller pre-script specific outputs,
// e.g. {"jail": {Stdout: "12\n"}} so jail-start parsing has something to parse.
func NewEchoWithResponses(responses map[string]Result) HostExec {
	if responses == nil {
		responses = map[string]Result{}
	}
	return &echoMode{responses: responses}
}

func (e *echoMode) Run(ctx context.Context, program string, args ...string) (Result, error) {
	slog.DebugContext(ctx, "hostexec.echo.Run", "program", program, "args", args)
	if r, ok := e.responses[program]; ok {
		return r, nil
	}
	return Result{Stdout: strings.Join(append([]string{program}, args...), " ")}, nil
}

func (e *echoMode) RunStdin(ctx context.Context, program string, stdin io.Reader, args ...string) (Result, error) {
	if stdin != nil {
		// Honor the "must consume the reader to EOF" contract even in echo mode.
		io.Copy(io.Discard, stdin)
	}
	return e.Run(ctx, program, args...)
}

func (e *echoMode) SpawnInteractive(ctx context.Context, program string, args ...string) (WaitHandle, error) {
	slog.DebugContext(ctx, "hostexec.echo.SpawnInteractive", "program", program, "args", args)
	return func() error { return nil }, nil
}
