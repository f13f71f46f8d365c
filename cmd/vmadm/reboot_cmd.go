package main

import "context"

type RebootCmd struct {
	UUID string `arg:"" help:"UUID of the container to reboot"`
}

func (c *RebootCmd) Run(cctx *Context) error {
	return cctx.Engine.Reboot(context.Background(), c.UUID)
}
