package jdb

import (
	"context"
	"strconv"
	"strings"

	"github.com/sweeklys/vmadm-go/hostexec"
	"github.com/sweeklys/vmadm-go/vmerrors"
)

// listLiveJails parses `jls` output into a name → OSLiveEntry map. jls is asked for a
// fixed two-column format (jid, name) so parsing does not depend on column widths.
func listLiveJails(ctx context.Context, exec hostexec.HostExec) (map[string]OSLiveEntry, error) {
	res, err := exec.Run(ctx, "jls", "-N", "jid", "name")
	if err != nil {
		return nil, vmerrors.Generic("listing live jails: %w", err)
	}
	out := map[string]OSLiveEntry{}
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		jid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		out[fields[1]] = OSLiveEntry{JID: jid, Name: fields[1]}
	}
	return out, nil
}
