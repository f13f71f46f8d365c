package lifecycle

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sweeklys/vmadm-go/cliargs"
	"github.com/sweeklys/vmadm-go/jailconfig"
	"github.com/sweeklys/vmadm-go/jdb"
	"github.com/sweeklys/vmadm-go/netplan"
	"github.com/sweeklys/vmadm-go/vmerrors"
)

// jailFlags is the fixed set of key=value parameters every jail(8) invocation carries,
// rendered via cliargs' jail(8)-mode.
type jailFlags struct {
	Persist         bool   `cliarg:"persist,kv"`
	HostUUID        string `cliarg:"host.hostuuid,kv"`
	HostHostname    string `cliarg:"host.hostname,kv"`
	Path            string `cliarg:"path,kv"`
	DevfsRuleset    int    `cliarg:"devfs_ruleset,kv,keepzero"`
	SecureLevel     int    `cliarg:"securelevel,kv,keepzero"`
	VnetNew         string `cliarg:"vnet,kv"`
	AllowRawSockets bool   `cliarg:"allow.raw_sockets,kv"`
	ChildrenMax     int    `cliarg:"children.max,kv"`
	SysvMsg         string `cliarg:"sysvmsg,kv"`
	SysvSem         string `cliarg:"sysvsem,kv"`
	SysvShm         string `cliarg:"sysvshm,kv"`
}

// Start boots a created-but-stopped container: applies rctl limits, runs brand.init,
// writes the routes file, plans every NIC's interface, builds and issues the jail(8)
// command line, and renames the resulting host-side interfaces into the jid namespace.
func (e *Engine) Start(ctx context.Context, uuid string) error {
	c, err := e.DB.Get(ctx, uuid)
	if err != nil {
		return err
	}
	cfg := c.Config
	jailRoot := "/" + c.Index.RootDataset

	if res, err := e.Exec.Run(ctx, "rctl", cfg.RctlLimits()...); err != nil {
		return vmerrors.Generic("applying rctl limits: %w", err)
	} else if res.ExitCode != 0 {
		return &vmerrors.ExternalCommand{Program: "rctl", Args: cfg.RctlLimits(), ExitCode: res.ExitCode, Stderr: res.Stderr}
	}

	b, err := e.loadBrand(cfg.Brand)
	if err != nil {
		return err
	}
	if program, args := b.Init.Render(c, e.Settings); program != "" {
		if res, err := e.Exec.Run(ctx, program, args...); err != nil {
			return vmerrors.Generic("running brand.init: %w", err)
		} else if res.ExitCode != 0 {
			return &vmerrors.ExternalCommand{Program: program, Args: args, ExitCode: res.ExitCode, Stderr: res.Stderr}
		}
	}

	if err := writeRoutesFile(jailRoot, cfg); err != nil {
		return err
	}

	flags := jailFlags{
		Persist:         true,
		HostUUID:        cfg.UUID,
		HostHostname:    cfg.Hostname,
		Path:            jailRoot,
		DevfsRuleset:    e.Settings.DevfsRuleset,
		SecureLevel:     2,
		VnetNew:         "new",
		AllowRawSockets: true,
		ChildrenMax:     1,
		SysvMsg:         "new",
		SysvSem:         "new",
		SysvShm:         "new",
	}
	args := cliargs.ToKVArgs(&flags)

	var plans []netplan.IFacePlan
	var scriptParts []string
	for _, nic := range cfg.NICs {
		plan, err := netplan.Plan(ctx, e.Exec, nic, cfg.UUID, e.Settings)
		if err != nil {
			return err
		}
		plans = append(plans, plan)
		args = append(args, "vnet.interface="+plan.Epair+"b")
		scriptParts = append(scriptParts, plan.StartScript)
	}
	if len(cfg.NICs) > 0 {
		scriptParts = append(scriptParts, "ifconfig lo0 127.0.0.1 up")
	}
	scriptParts = append(scriptParts, b.Boot.ToShellString(c, e.Settings))
	args = append(args, "exec.start="+strings.Join(scriptParts, "; "))

	res, err := e.Exec.Run(ctx, "jail", append([]string{"-c"}, args...)...)
	if err != nil {
		return vmerrors.Generic("starting jail %s: %w", cfg.UUID, err)
	}
	if res.ExitCode != 0 {
		return &vmerrors.ExternalCommand{Program: "jail", Args: args, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}

	jid, err := parseJid(res.Stdout)
	if err != nil {
		return vmerrors.Generic("parsing jid for %s: %w", cfg.UUID, err)
	}

	for _, plan := range plans {
		if err := netplan.RenameHostSide(ctx, e.Exec, jid, plan); err != nil {
			return err
		}
	}

	return e.DB.UpdateState(ctx, cfg.UUID, jdb.StateRunningish)
}

// parseJid reads only the jail binary's first stdout line as an unsigned integer — jail
// is known to disregard quietness flags, so only the first line is authoritative.
func parseJid(stdout string) (int, error) {
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	if !scanner.Scan() {
		return 0, fmt.Errorf("no output from jail")
	}
	return strconv.Atoi(strings.TrimSpace(scanner.Text()))
}

func writeRoutesFile(jailRoot string, cfg jailconfig.ContainerConfig) error {
	configDir := filepath.Join(jailRoot, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return vmerrors.Generic("creating %s: %w", configDir, err)
	}
	var lines []string
	if primary, ok := jailconfig.Primary(cfg.NICs); ok {
		lines = append(lines, "default\t"+primary.Gateway)
	}
	for dest, gw := range cfg.Routes {
		lines = append(lines, dest+"\t"+gw)
	}
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	return os.WriteFile(filepath.Join(configDir, "routes"), []byte(content), 0o644)
}
