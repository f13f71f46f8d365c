package lifecycle

import (
	"context"

	"github.com/sweeklys/vmadm-go/jdb"
	"github.com/sweeklys/vmadm-go/netplan"
	"github.com/sweeklys/vmadm-go/vmerrors"
)

// Stop halts a running container: brand.halt, `jail -r`, brand.halted, best-effort rctl
// removal, and host-side interface teardown.
func (e *Engine) Stop(ctx context.Context, uuid string) error {
	c, err := e.DB.Get(ctx, uuid)
	if err != nil {
		return err
	}
	cfg := c.Config

	b, err := e.loadBrand(cfg.Brand)
	if err != nil {
		return err
	}
	if program, args := b.Halt.Render(c, e.Settings); program != "" {
		if res, err := e.Exec.Run(ctx, program, args...); err != nil {
			return vmerrors.Generic("running brand.halt: %w", err)
		} else if res.ExitCode != 0 {
			return &vmerrors.ExternalCommand{Program: program, Args: args, ExitCode: res.ExitCode, Stderr: res.Stderr}
		}
	}

	res, err := e.Exec.Run(ctx, "jail", "-r", cfg.UUID)
	if err != nil {
		return vmerrors.Generic("stopping jail %s: %w", cfg.UUID, err)
	}
	if res.ExitCode != 0 {
		return &vmerrors.ExternalCommand{Program: "jail", Args: []string{"-r", cfg.UUID}, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}

	if program, args := b.Halted.Render(c, e.Settings); program != "" {
		if res, err := e.Exec.Run(ctx, program, args...); err != nil {
			return vmerrors.Generic("running brand.halted: %w", err)
		} else if res.ExitCode != 0 {
			return &vmerrors.ExternalCommand{Program: program, Args: args, ExitCode: res.ExitCode, Stderr: res.Stderr}
		}
	}

	if r, err := e.Exec.Run(ctx, "rctl", "-r", "jail:"+cfg.UUID); err != nil || r.ExitCode != 0 {
		// Best-effort: rctl removal failing does not block stop.
	}

	jid := 0
	if c.Outer != nil {
		jid = c.Outer.JID
	}
	netplan.Destroy(ctx, e.Exec, jid, cfg.NICs)

	return e.DB.UpdateState(ctx, cfg.UUID, jdb.StateStopped)
}

// Reboot stops then starts uuid. An error in stop aborts the reboot without attempting
// start.
func (e *Engine) Reboot(ctx context.Context, uuid string) error {
	if err := e.Stop(ctx, uuid); err != nil {
		return err
	}
	return e.Start(ctx, uuid)
}
