package jailconfig

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sweeklys/vmadm-go/hostexec"
	"github.com/sweeklys/vmadm-go/hostsettings"
	"github.com/sweeklys/vmadm-go/vmerrors"
)

func TestFromReaderAppliesDefaults(t *testing.T) {
	r := strings.NewReader(`{"uuid":"abc","max_physical_memory":512}`)
	cfg, err := FromReader(r)
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	if cfg.Brand != "jail" {
		t.Errorf("Brand = %q, want jail", cfg.Brand)
	}
	if cfg.DNSDomain != "local" {
		t.Errorf("DNSDomain = %q, want local", cfg.DNSDomain)
	}
	if cfg.MaxLwps != 2000 {
		t.Errorf("MaxLwps = %d, want 2000", cfg.MaxLwps)
	}
	if cfg.MaxShmMemory == nil || *cfg.MaxShmMemory != 512 {
		t.Errorf("MaxShmMemory = %v, want 512", cfg.MaxShmMemory)
	}
	if cfg.MaxLockedMemory == nil || *cfg.MaxLockedMemory != 512 {
		t.Errorf("MaxLockedMemory = %v, want 512", cfg.MaxLockedMemory)
	}
}

func TestFromReaderAutogeneratesMissingNICMACs(t *testing.T) {
	r := strings.NewReader(`{"uuid":"abc","nics":[{"interface":"epair0","nic_tag":"admin"},{"interface":"epair1","nic_tag":"internal","mac":"02:aa:bb:cc:dd:ee"}]}`)
	cfg, err := FromReader(r)
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	if cfg.NICs[0].MAC == "" {
		t.Error("NICs[0].MAC was left empty, want an autogenerated address")
	}
	if !strings.HasPrefix(cfg.NICs[0].MAC, "02:") {
		t.Errorf("NICs[0].MAC = %q, want locally-administered 02: prefix", cfg.NICs[0].MAC)
	}
	if cfg.NICs[1].MAC != "02:aa:bb:cc:dd:ee" {
		t.Errorf("NICs[1].MAC = %q, want the submitted mac left untouched", cfg.NICs[1].MAC)
	}
}

func TestRctlLimitsOrder(t *testing.T) {
	cfg := ContainerConfig{
		UUID:              "u1",
		MaxPhysicalMemory: 256,
		CPUCap:            100,
		MaxLwps:           2000,
	}
	got := cfg.RctlLimits()
	want := []string{
		"-a",
		"jail:u1:memoryuse:deny=256M",
		"jail:u1:memorylocked:deny=256M",
		"jail:u1:shmsize:deny=256M",
		"jail:u1:pcpu:deny=100",
		"jail:u1:maxproc:deny=2000",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestValidateNeverShortCircuits(t *testing.T) {
	cfg := ContainerConfig{
		Hostname: "bad hostname!",
		Alias:    "also bad!",
		NICs: []NIC{
			{Interface: "not-valid", NicTag: "missing", IP: "not-an-ip", Netmask: "nope", Gateway: "nope"},
		},
	}
	settings := &hostsettings.Settings{Networks: map[string]string{"admin": "bridge0"}}
	err := Validate(context.Background(), &cfg, settings, ValidateOptions{SkipPingCheck: true})
	if err == nil {
		t.Fatal("expected validation error")
	}
	ve, ok := err.(*vmerrors.ValidationError)
	if !ok {
		t.Fatalf("got %T, want *vmerrors.ValidationError", err)
	}
	if len(ve.Fields()) < 6 {
		t.Errorf("got %d field errors, want at least 6 (no short-circuit): %v", len(ve.Fields()), ve.Fields())
	}
}

func TestValidatePingCheckDetectsAddressInUse(t *testing.T) {
	cfg := ContainerConfig{
		Hostname: "host1",
		Alias:    "alias1",
		NICs: []NIC{
			{Interface: "epair0", NicTag: "admin", IP: "10.0.0.5", Netmask: "255.255.255.0", Gateway: "10.0.0.1", MAC: "02:01:02:03:04:05"},
		},
	}
	settings := &hostsettings.Settings{Networks: map[string]string{"admin": "bridge0"}}
	exec := hostexec.NewEchoWithResponses(map[string]hostexec.Result{
		"ping": {ExitCode: 0},
	})
	err := Validate(context.Background(), &cfg, settings, ValidateOptions{Exec: exec})
	if err == nil {
		t.Fatal("expected address-in-use validation error")
	}
}

func TestToWriterRoundTrip(t *testing.T) {
	cfg := ContainerConfig{UUID: "u2", Brand: "jail"}
	var buf bytes.Buffer
	if err := cfg.ToWriter(&buf); err != nil {
		t.Fatalf("ToWriter: %v", err)
	}
	cfg2, err := FromReader(&buf)
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	if cfg2.UUID != cfg.UUID {
		t.Errorf("UUID = %q, want %q", cfg2.UUID, cfg.UUID)
	}
}
