package main

import (
	"context"
	"os"

	"github.com/sweeklys/vmadm-go/jdb"
)

type ListCmd struct {
	Headers  bool `default:"true" negatable:"" help:"print a header row"`
	Parsable bool `short:"p" help:"print colon-separated fields with no header, for scripting"`
}

func (c *ListCmd) Run(cctx *Context) error {
	ctx := context.Background()
	containers, err := cctx.DB.Iter(ctx)
	if err != nil {
		return err
	}
	return jdb.Print(os.Stdout, containers, !c.Headers, c.Parsable)
}
