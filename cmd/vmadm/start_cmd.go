package main

import "context"

type StartCmd struct {
	UUID string `arg:"" help:"UUID of the container to start"`
}

func (c *StartCmd) Run(cctx *Context) error {
	return cctx.Engine.Start(context.Background(), c.UUID)
}
