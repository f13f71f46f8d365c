package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/sweeklys/vmadm-go/hostexec"
	"github.com/sweeklys/vmadm-go/vmerrors"
)

func TestSnapshotConflictWhenAlreadyPresent(t *testing.T) {
	exec := hostexec.NewEchoWithResponses(map[string]hostexec.Result{
		"zfs": {ExitCode: 0, Stdout: "pool/img@tag\n"},
	})
	s := New(exec)
	_, err := s.Snapshot(context.Background(), "pool/img", "tag")
	var conflict *vmerrors.Conflict
	if err == nil {
		t.Fatal("expected Conflict error")
	}
	if ce, ok := err.(*vmerrors.Conflict); !ok {
		t.Fatalf("got %T, want *vmerrors.Conflict", err)
	} else {
		conflict = ce
	}
	if conflict.UUID != "pool/img@tag" {
		t.Errorf("UUID = %q, want pool/img@tag", conflict.UUID)
	}
}

func TestReceiveConsumesReader(t *testing.T) {
	exec := hostexec.NewEcho()
	s := New(exec)
	r := strings.NewReader("payload")
	if err := s.Receive(context.Background(), "pool/uuid", r); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("reader not drained, %d bytes remain", r.Len())
	}
}

func TestOriginTrimsWhitespace(t *testing.T) {
	exec := hostexec.NewEchoWithResponses(map[string]hostexec.Result{
		"zfs": {ExitCode: 0, Stdout: "pool/base@img\n"},
	})
	s := New(exec)
	origin, err := s.Origin(context.Background(), "pool/clone")
	if err != nil {
		t.Fatalf("Origin: %v", err)
	}
	if origin != "pool/base@img" {
		t.Errorf("Origin = %q, want pool/base@img", origin)
	}
}
