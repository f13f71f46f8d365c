package jdb

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
)

// jailType derives the TYPE column: "OS" for brand "jail", "LX" for "lx-jail", and "OS"
// with a logged warning for anything else, since an unrecognized brand is unexpected but
// should not block a listing.
func jailType(brand string) string {
	switch brand {
	case "jail":
		return "OS"
	case "lx-jail":
		return "LX"
	default:
		slog.Warn("jdb: unrecognized brand, defaulting TYPE to OS", "brand", brand)
		return "OS"
	}
}

func containerState(c Container) string {
	if c.Running() {
		return "running"
	}
	return string(c.Index.State)
}

// Print renders containers either as a tabwriter-aligned table (matching the teacher's
// ls_cmd.go table output) or, with parsable set, as colon-separated rows
// "UUID:TYPE:RAM:STATE:ALIAS" with no header regardless of headerless.
func Print(w io.Writer, containers []Container, headerless, parsable bool) error {
	if parsable {
		for _, c := range containers {
			fmt.Fprintf(w, "%s:%s:%d:%s:%s\n",
				c.Config.UUID, jailType(c.Config.Brand), c.Config.MaxPhysicalMemory,
				containerState(c), c.Config.Alias)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if !headerless {
		fmt.Fprintln(tw, "UUID\tTYPE\tRAM\tSTATE\tALIAS")
	}
	for _, c := range containers {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			c.Config.UUID, jailType(c.Config.Brand), c.Config.MaxPhysicalMemory,
			containerState(c), c.Config.Alias)
	}
	return tw.Flush()
}
