package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/sweeklys/vmadm-go/jailconfig"
)

type UpdateCmd struct {
	UUID string `arg:"" help:"UUID of the container to update"`
	File string `arg:"" optional:"" type:"existingfile" help:"path to a partial update JSON document; reads stdin if omitted"`
}

func (c *UpdateCmd) Run(cctx *Context) error {
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

	var u jailconfig.Update
	if err := json.NewDecoder(r).Decode(&u); err != nil {
		return err
	}

	_, err := cctx.Engine.Update(ctx, c.UUID, u)
	return err
}
