package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeklys/vmadm-go/jailconfig"
)

// ConfigCmd either validates a container configuration document against jailconfig's
// field rules, or — with --host-check — audits the host itself against the prerequisite
// registry in prerequisites.go, or — with --dump — prints the settings this host was
// resolved with (flags plus any vmadm.yaml config file) for inspection.
type ConfigCmd struct {
	File      string `arg:"" optional:"" type:"existingfile" help:"container config JSON to validate; reads stdin if omitted"`
	HostCheck bool   `help:"audit this host's jail/zfs/rctl prerequisites instead of validating a file"`
	Dump      bool   `help:"print the resolved host settings as YAML instead of validating a file"`
}

func (c *ConfigCmd) Run(cctx *Context) error {
	ctx := context.Background()

	if c.Dump {
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(cctx.Settings)
	}

	if c.HostCheck {
		return verifyPrerequisites(ctx, cctx.Engine.Exec, allPrerequisiteIDs()...)
	}

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

	opts := jailconfig.ValidateOptions{Exec: cctx.Engine.Exec, SkipPingCheck: cctx.Settings.SkipPingCheck}
	if err := jailconfig.Validate(ctx, &cfg, cctx.Settings, opts); err != nil {
		return err
	}

	fmt.Println("ok")
	return nil
}
