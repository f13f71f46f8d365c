package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/sweeklys/vmadm-go/jailconfig"
)

type CreateCmd struct {
	File string `arg:"" optional:"" type:"existingfile" help:"path to a container configuration JSON file; reads stdin if omitted"`
}

func (c *CreateCmd) Run(cctx *Context) error {
	ctx := context.Background()

	r := os.Stdin
	if c.File != "" {
		f, err := os.Open(c.File)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	cfg, err := jailconfig.FromReader(r)
	if err != nil {
		return err
	}
	if cfg.UUID == "" {
		cfg.UUID = uuid.NewString()
	}

	opts := jailconfig.ValidateOptions{Exec: cctx.Engine.Exec, SkipPingCheck: cctx.Settings.SkipPingCheck}
	if err := jailconfig.Validate(ctx, &cfg, cctx.Settings, opts); err != nil {
		return err
	}

	entry, err := cctx.Engine.Create(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", entry.UUID)
	return nil
}
