package netplan

import (
	"context"
	"testing"

	"github.com/sweeklys/vmadm-go/hostexec"
	"github.com/sweeklys/vmadm-go/hostsettings"
	"github.com/sweeklys/vmadm-go/jailconfig"
	"github.com/sweeklys/vmadm-go/vmerrors"
)

func TestPlanFailsWithoutBridge(t *testing.T) {
	exec := hostexec.NewEchoWithResponses(map[string]hostexec.Result{
		"ifconfig": {Stdout: "epair0a"},
	})
	settings := &hostsettings.Settings{Networks: map[string]string{}}
	nic := jailconfig.NIC{Interface: "net0", NicTag: "admin", IP: "10.0.0.5", Netmask: "255.255.255.0"}
	_, err := Plan(context.Background(), exec, nic, "uuid1", settings)
	if _, ok := err.(*vmerrors.BridgeNotConfigured); !ok {
		t.Fatalf("got %T (%v), want *vmerrors.BridgeNotConfigured", err, err)
	}
}

func TestPlanVLANProducesTwoStepRename(t *testing.T) {
	exec := hostexec.NewEchoWithResponses(map[string]hostexec.Result{
		"ifconfig": {Stdout: "epair0a"},
	})
	settings := &hostsettings.Settings{Networks: map[string]string{"admin": "bridge0"}}
	vlan := uint16(42)
	nic := jailconfig.NIC{Interface: "net0", NicTag: "admin", IP: "10.0.0.5", Netmask: "255.255.255.0", VLAN: &vlan}
	plan, err := Plan(context.Background(), exec, nic, "uuid1", settings)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Epair != "epair0" {
		t.Errorf("Epair = %q, want epair0", plan.Epair)
	}
	want := "ifconfig epair0b.42 create vlan 42 vlandev epair0b; ifconfig epair0b.42 name net0; ifconfig net0 inet 10.0.0.5 netmask 255.255.255.0"
	if plan.StartScript != want {
		t.Errorf("StartScript = %q, want %q", plan.StartScript, want)
	}
}

func TestPlanNonVLANRenamesDirectly(t *testing.T) {
	exec := hostexec.NewEchoWithResponses(map[string]hostexec.Result{
		"ifconfig": {Stdout: "epair3a"},
	})
	settings := &hostsettings.Settings{Networks: map[string]string{"admin": "bridge0"}}
	nic := jailconfig.NIC{Interface: "net0", NicTag: "admin", IP: "10.0.0.5", Netmask: "255.255.255.0"}
	plan, err := Plan(context.Background(), exec, nic, "uuid1", settings)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := "ifconfig epair3b name net0; ifconfig net0 inet 10.0.0.5 netmask 255.255.255.0"
	if plan.StartScript != want {
		t.Errorf("StartScript = %q, want %q", plan.StartScript, want)
	}
}

func TestDestroyNeverFails(t *testing.T) {
	exec := hostexec.NewEcho()
	nics := []jailconfig.NIC{{Interface: "net0"}}
	Destroy(context.Background(), exec, 12, nics)
}
