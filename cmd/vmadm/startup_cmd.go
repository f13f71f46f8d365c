package main

import "context"

// StartupCmd boots every autoboot container that isn't already running. It is the verb a
// host's boot-time rc script invokes.
type StartupCmd struct{}

func (c *StartupCmd) Run(cctx *Context) error {
	return cctx.Engine.Startup(context.Background())
}
