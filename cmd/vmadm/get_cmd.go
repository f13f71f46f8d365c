package main

import (
	"context"
	"os"
)

type GetCmd struct {
	UUID string `arg:"" help:"UUID of the container to print"`
}

func (c *GetCmd) Run(cctx *Context) error {
	ctx := context.Background()
	container, err := cctx.DB.Get(ctx, c.UUID)
	if err != nil {
		return err
	}
	return container.Config.ToWriter(os.Stdout)
}
