package lifecycle

import (
	"context"

	"github.com/sweeklys/vmadm-go/jailconfig"
)

// Update applies a partial change set to uuid's configuration, validates the result, and
// persists it. It never touches a running jail directly — NIC or resource changes only
// take effect on the next Start — except quota, which resizes the backing dataset
// immediately via Storage.Quota once the config rewrite has committed.
func (e *Engine) Update(ctx context.Context, uuid string, u jailconfig.Update) (jailconfig.ContainerConfig, error) {
	c, err := e.DB.Get(ctx, uuid)
	if err != nil {
		return jailconfig.ContainerConfig{}, err
	}

	next, err := jailconfig.Apply(c.Config, u)
	if err != nil {
		return jailconfig.ContainerConfig{}, err
	}

	opts := jailconfig.ValidateOptions{Exec: e.Exec, SkipPingCheck: e.Settings.SkipPingCheck}
	if err := jailconfig.Validate(ctx, &next, e.Settings, opts); err != nil {
		return jailconfig.ContainerConfig{}, err
	}

	if err := e.DB.Update(ctx, next); err != nil {
		return jailconfig.ContainerConfig{}, err
	}

	if u.Quota != nil {
		if err := e.Storage.Quota(ctx, c.Index.RootDataset, next.Quota); err != nil {
			return next, err
		}
	}

	return next, nil
}
