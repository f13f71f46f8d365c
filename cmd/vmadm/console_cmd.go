package main

import "context"

type ConsoleCmd struct {
	UUID string `arg:"" help:"UUID of the running container to attach to"`
}

func (c *ConsoleCmd) Run(cctx *Context) error {
	return cctx.Engine.Console(context.Background(), c.UUID)
}
