package lifecycle

import (
	"context"

	"github.com/sweeklys/vmadm-go/vmerrors"
)

// NotRunning means a container has no inner OS entry, so console has nothing to attach
// to.
type NotRunning struct {
	UUID string
}

func (e *NotRunning) Error() string { return "container not running: " + e.UUID }

// Console runs brand.login as an interactive child, returning nil only if the child exits
// cleanly.
func (e *Engine) Console(ctx context.Context, uuid string) error {
	c, err := e.DB.Get(ctx, uuid)
	if err != nil {
		return err
	}
	if c.Inner == nil {
		return &NotRunning{UUID: uuid}
	}

	b, err := e.loadBrand(c.Config.Brand)
	if err != nil {
		return err
	}
	program, args := b.Login.Render(c, e.Settings)
	if program == "" {
		return vmerrors.Generic("brand %s has no login step", c.Config.Brand)
	}

	wait, err := e.Exec.SpawnInteractive(ctx, program, args...)
	if err != nil {
		return vmerrors.Generic("spawning console for %s: %w", uuid, err)
	}
	return wait()
}
