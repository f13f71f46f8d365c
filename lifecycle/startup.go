package lifecycle

import (
	"context"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/sweeklys/vmadm-go/jdb"
)

// Startup boots every container flagged autoboot that isn't already running. It iterates
// serially — no concurrency across containers — and a failure on one does not stop the
// rest from being attempted; every failure is collected and logged.
func (e *Engine) Startup(ctx context.Context) error {
	containers, err := e.DB.Iter(ctx)
	if err != nil {
		return err
	}

	var merr *multierror.Error
	for _, c := range jdb.FilterByAutoboot(containers) {
		if err := e.Start(ctx, c.Config.UUID); err != nil {
			slog.ErrorContext(ctx, "lifecycle.Startup: failed to start container", "uuid", c.Config.UUID, "error", err)
			merr = multierror.Append(merr, err)
			continue
		}
		slog.InfoContext(ctx, "lifecycle.Startup: started container", "uuid", c.Config.UUID)
	}
	if merr != nil {
		return merr
	}
	return nil
}
