package jdb

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sweeklys/vmadm-go/hostexec"
	"github.com/sweeklys/vmadm-go/jailconfig"
	"github.com/sweeklys/vmadm-go/vmerrors"
)

func newTestDB(t *testing.T) (*JDB, string) {
	dir := t.TempDir()
	db, err := Open(context.Background(), dir, hostexec.NewEcho())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return db, dir
}

func TestOpenCreatesEmptyIndex(t *testing.T) {
	db, dir := newTestDB(t)
	if len(db.index.Entries) != 0 {
		t.Errorf("expected empty index, got %d entries", len(db.index.Entries))
	}
	if _, err := os.Stat(filepath.Join(dir, "index")); err != nil {
		t.Errorf("index file not created: %v", err)
	}
}

func TestInsertThenDuplicateConflicts(t *testing.T) {
	db, _ := newTestDB(t)
	cfg := jailconfig.ContainerConfig{UUID: "u1", Brand: "jail", Alias: "a1"}
	if _, err := db.Insert(context.Background(), cfg, "pool/u1"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	_, err := db.Insert(context.Background(), cfg, "pool/u1")
	if _, ok := err.(*vmerrors.Conflict); !ok {
		t.Fatalf("got %T, want *vmerrors.Conflict", err)
	}
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	db, _ := newTestDB(t)
	err := db.Update(context.Background(), jailconfig.ContainerConfig{UUID: "ghost"})
	if _, ok := err.(*vmerrors.NotFound); !ok {
		t.Fatalf("got %T, want *vmerrors.NotFound", err)
	}
}

func TestRemoveDeletesConfigAndIndexEntry(t *testing.T) {
	db, dir := newTestDB(t)
	cfg := jailconfig.ContainerConfig{UUID: "u2", Brand: "jail"}
	if _, err := db.Insert(context.Background(), cfg, "pool/u2"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := db.Remove(context.Background(), "u2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "u2.json")); !os.IsNotExist(err) {
		t.Errorf("expected config file removed, stat err = %v", err)
	}
	if db.indexOf("u2") != -1 {
		t.Errorf("expected index entry removed")
	}
}

func TestGetJoinsLiveOSEntries(t *testing.T) {
	dir := t.TempDir()
	exec := hostexec.NewEchoWithResponses(map[string]hostexec.Result{
		"jls": {Stdout: "12 u3\n34 u3.u3\n"},
	})
	db, err := Open(context.Background(), dir, exec)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	cfg := jailconfig.ContainerConfig{UUID: "u3", Brand: "jail"}
	if _, err := db.Insert(context.Background(), cfg, "pool/u3"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	c, err := db.Get(context.Background(), "u3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.Outer == nil || c.Outer.JID != 12 {
		t.Errorf("Outer = %+v, want jid 12", c.Outer)
	}
	if c.Inner == nil || c.Inner.JID != 34 {
		t.Errorf("Inner = %+v, want jid 34", c.Inner)
	}
	if !c.Running() {
		t.Errorf("expected Running() true")
	}
}

func TestPrintParsableRows(t *testing.T) {
	containers := []Container{
		{Config: jailconfig.ContainerConfig{UUID: "u4", Brand: "jail", Alias: "a4", MaxPhysicalMemory: 256}, Index: IndexEntry{State: StateStopped}},
	}
	var buf bytes.Buffer
	if err := Print(&buf, containers, true, true); err != nil {
		t.Fatalf("Print: %v", err)
	}
	want := "u4:OS:256:stopped:a4\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
