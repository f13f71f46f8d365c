package lifecycle

import (
	"context"

	"github.com/dustin/go-humanize"
)

// Status is the read-only projection `vmadm info <uuid>` reports: elapsed running time,
// the resolved boot/halt command text, and current rctl usage. This is a supplemental
// read path, not part of the create/start/stop state machine.
type Status struct {
	UUID        string
	State       string
	Running     bool
	Uptime      string
	MemoryLimit string
	BootCommand string
	HaltCommand string
	RctlUsage   string
}

// Info gathers a Status for uuid.
func (e *Engine) Info(ctx context.Context, uuid string) (Status, error) {
	c, err := e.DB.Get(ctx, uuid)
	if err != nil {
		return Status{}, err
	}

	b, err := e.loadBrand(c.Config.Brand)
	if err != nil {
		return Status{}, err
	}

	st := Status{
		UUID:        uuid,
		State:       string(c.Index.State),
		Running:     c.Running(),
		BootCommand: b.Boot.ToShellString(c, e.Settings),
		HaltCommand: b.Halt.ToShellString(c, e.Settings),
		MemoryLimit: humanize.IBytes(uint64(c.Config.MaxPhysicalMemory) * 1024 * 1024),
	}

	if c.Running() && !c.Index.StartedAt.IsZero() {
		st.Uptime = humanize.Time(c.Index.StartedAt)
	}

	if res, err := e.Exec.Run(ctx, "rctl", "-h", "jail:"+uuid); err == nil && res.ExitCode == 0 {
		st.RctlUsage = res.Stdout
	}

	return st, nil
}
