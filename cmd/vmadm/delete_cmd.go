package main

import (
	"context"
	"fmt"
	"log/slog"
)

type DeleteCmd struct {
	UUID string `arg:"" optional:"" help:"UUID of the container to delete"`
	All  bool   `help:"delete every container known to this host"`
}

// Run deletes the named container, or every container in index order when --all is set.
// Containers are processed one at a time — a failure on one does not abort the rest, but
// they are never run concurrently, since two overlapping zfs destroys of the same pool
// would race.
func (c *DeleteCmd) Run(cctx *Context) error {
	ctx := context.Background()

	uuids := []string{c.UUID}
	if c.All {
		containers, err := cctx.DB.Iter(ctx)
		if err != nil {
			return err
		}
		uuids = uuids[:0]
		for _, container := range containers {
			uuids = append(uuids, container.Config.UUID)
		}
	}

	var firstErr error
	for _, uuid := range uuids {
		if err := cctx.Engine.Delete(ctx, uuid); err != nil {
			slog.ErrorContext(ctx, "delete failed", "uuid", uuid, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Println(uuid)
	}
	return firstErr
}
