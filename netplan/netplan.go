// Package netplan plans and tears down the ephemeral epair/bridge/VLAN wiring each NIC
// needs at boot time. It is a pure HostExec consumer — one `ifconfig` call per intent,
// following the teacher's networks.go (NetworkSvc.Create/.Delete) one-call-per-step style.
package netplan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sweeklys/vmadm-go/hostexec"
	"github.com/sweeklys/vmadm-go/hostsettings"
	"github.com/sweeklys/vmadm-go/jailconfig"
	"github.com/sweeklys/vmadm-go/vmerrors"
)

// IFacePlan is what Plan produces for one NIC: the target interface name inside the jail,
// the host-side epair stem, and the shell fragment that assigns it once inside the vnet
// child (embedded into the jail's exec.start line by Lifecycle.Start).
type IFacePlan struct {
	Iface      string
	Epair      string
	StartScript string
}

// Plan wires one NIC's host-side epair and bridge attachment, and builds the shell
// fragment that, run inside the jail's vnet child, renames the peer and assigns its
// address.
func Plan(ctx context.Context, exec hostexec.HostExec, nic jailconfig.NIC, containerUUID string, settings *hostsettings.Settings) (IFacePlan, error) {
	res, err := exec.Run(ctx, "ifconfig", "epair", "create", "up")
	if err != nil {
		return IFacePlan{}, vmerrors.Generic("creating epair for nic %s: %w", nic.Interface, err)
	}
	created := strings.TrimSpace(res.Stdout)
	epair := strings.TrimSuffix(created, "a")

	bridge, ok := settings.Bridge(nic.NicTag)
	if !ok {
		return IFacePlan{}, &vmerrors.BridgeNotConfigured{Tag: nic.NicTag}
	}

	hostSide := epair + "a"
	if r, err := exec.Run(ctx, "ifconfig", bridge, "addm", hostSide); err != nil {
		return IFacePlan{}, vmerrors.Generic("attaching %s to bridge %s: %w", hostSide, bridge, err)
	} else if r.ExitCode != 0 {
		return IFacePlan{}, &vmerrors.ExternalCommand{Program: "ifconfig", Args: []string{bridge, "addm", hostSide}, ExitCode: r.ExitCode, Stderr: r.Stderr}
	}

	desc := fmt.Sprintf("VNic from jail %s", containerUUID)
	if _, err := exec.Run(ctx, "ifconfig", hostSide, "description", desc); err != nil {
		return IFacePlan{}, vmerrors.Generic("tagging %s: %w", hostSide, err)
	}

	jailSide := epair + "b"
	script := buildStartScript(nic, jailSide)

	return IFacePlan{Iface: nic.Interface, Epair: epair, StartScript: script}, nil
}

func buildStartScript(nic jailconfig.NIC, jailSide string) string {
	if nic.VLAN != nil {
		vlanIface := fmt.Sprintf("%s.%d", jailSide, *nic.VLAN)
		return strings.Join([]string{
			fmt.Sprintf("ifconfig %s create vlan %d vlandev %s", vlanIface, *nic.VLAN, jailSide),
			fmt.Sprintf("ifconfig %s name %s", vlanIface, nic.Interface),
			fmt.Sprintf("ifconfig %s inet %s netmask %s", nic.Interface, nic.IP, nic.Netmask),
		}, "; ")
	}
	return strings.Join([]string{
		fmt.Sprintf("ifconfig %s name %s", jailSide, nic.Interface),
		fmt.Sprintf("ifconfig %s inet %s netmask %s", nic.Interface, nic.IP, nic.Netmask),
	}, "; ")
}

// Destroy removes the host-side interfaces renamed at start time (`j<jid>:<iface>`). Each
// failure is logged but never fatal — spec §4.7 requires stop to keep progressing even if
// interface cleanup fails.
func Destroy(ctx context.Context, exec hostexec.HostExec, jid int, nics []jailconfig.NIC) {
	for _, nic := range nics {
		prefixed := fmt.Sprintf("j%d:%s", jid, nic.Interface)
		if res, err := exec.Run(ctx, "ifconfig", prefixed, "destroy"); err != nil {
			slog.WarnContext(ctx, "netplan.Destroy failed", "iface", prefixed, "error", err)
		} else if res.ExitCode != 0 {
			slog.WarnContext(ctx, "netplan.Destroy nonzero exit", "iface", prefixed, "stderr", res.Stderr)
		}
	}
}

// RenameHostSide renames the host-side epair stem `<stem>a` to `j<jid>:<iface>`, done once
// per planned NIC right after the jail reports its jid.
func RenameHostSide(ctx context.Context, exec hostexec.HostExec, jid int, plan IFacePlan) error {
	hostSide := plan.Epair + "a"
	target := fmt.Sprintf("j%d:%s", jid, plan.Iface)
	res, err := exec.Run(ctx, "ifconfig", hostSide, "name", target)
	if err != nil {
		return vmerrors.Generic("renaming %s to %s: %w", hostSide, target, err)
	}
	if res.ExitCode != 0 {
		return &vmerrors.ExternalCommand{Program: "ifconfig", Args: []string{hostSide, "name", target}, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return nil
}
