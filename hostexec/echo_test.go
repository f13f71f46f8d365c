package hostexec

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestEchoRunReturnsJoinedArgv(t *testing.T) {
	e := NewEcho()
	res, err := e.Run(context.Background(), "ifconfig", "epair", "create", "up")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "ifconfig epair create up"
	if res.Stdout != want {
		t.Errorf("Stdout = %q, want %q", res.Stdout, want)
	}
}

func TestEchoScriptedResponse(t *testing.T) {
	e := NewEchoWithResponses(map[string]Result{
		"jail": {Stdout: "12\n"},
	})
	res, err := e.Run(context.Background(), "jail", "-c", "persist")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "12" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "12")
	}
}

func TestEchoRunStdinConsumesReader(t *testing.T) {
	e := NewEcho()
	r := bytes.NewBufferString("image payload")
	if _, err := e.RunStdin(context.Background(), "zfs", r, "receive", "pool/uuid"); err != nil {
		t.Fatalf("RunStdin: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("reader not drained, %d bytes remain", r.Len())
	}
}
