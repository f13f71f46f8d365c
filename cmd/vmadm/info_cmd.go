package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
)

type InfoCmd struct {
	UUID string `arg:"" help:"UUID of the container to report on"`
}

func (c *InfoCmd) Run(cctx *Context) error {
	ctx := context.Background()
	st, err := cctx.Engine.Info(ctx, c.UUID)
	if err != nil {
		return err
	}

	running := color.RedString("false")
	if st.Running {
		running = color.GreenString("true")
	}

	fmt.Printf("uuid:         %s\n", st.UUID)
	fmt.Printf("state:        %s\n", st.State)
	fmt.Printf("running:      %s\n", running)
	if st.Uptime != "" {
		fmt.Printf("started:      %s\n", st.Uptime)
	}
	fmt.Printf("memory limit: %s\n", st.MemoryLimit)
	fmt.Printf("boot command: %s\n", st.BootCommand)
	fmt.Printf("halt command: %s\n", st.HaltCommand)
	if st.RctlUsage != "" {
		fmt.Printf("rctl usage:\n%s\n", st.RctlUsage)
	}
	return nil
}
