package main

import (
	"context"
	"fmt"
	"log/slog"
)

type StopCmd struct {
	UUID string `arg:"" optional:"" help:"UUID of the container to stop"`
	All  bool   `short:"a" help:"stop every running container"`
}

// Run halts the named container, or every currently-running container when --all is set,
// one at a time. This intentionally does not fan the stops out across goroutines: each
// Stop tears down its own epair/vnet interfaces, and stopping containers concurrently
// gives no benefit worth the added failure surface.
func (c *StopCmd) Run(cctx *Context) error {
	ctx := context.Background()

	uuids := []string{c.UUID}
	if c.All {
		containers, err := cctx.DB.Iter(ctx)
		if err != nil {
			return err
		}
		uuids = uuids[:0]
		for _, container := range containers {
			if container.Running() {
				uuids = append(uuids, container.Config.UUID)
			}
		}
	}

	var firstErr error
	for _, uuid := range uuids {
		if err := cctx.Engine.Stop(ctx, uuid); err != nil {
			slog.ErrorContext(ctx, "stop failed", "uuid", uuid, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Println(uuid)
	}
	return firstErr
}
