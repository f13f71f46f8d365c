// Package lifecycle assembles boot/halt plans from Config + Brand + Networking and drives
// them through HostExec: create, start, stop, reboot, delete, startup, and console.
package lifecycle

import "fmt"

// State names the lifecycle states of a container. It is not persisted: the JDB index
// records its own jdb.State. The String/Parse pair follows the style of an
// iota-backed enum with textual (de)serialization, the shape minimega's VMState uses for
// its own lifecycle states.
type State int

const (
	Absent State = iota
	Created
	Initialized
	Running
	Halting
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Created:
		return "created"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Halting:
		return "halting"
	default:
		return "unknown"
	}
}

// ParseState parses the textual form String produces.
func ParseState(s string) (State, error) {
	switch s {
	case "absent":
		return Absent, nil
	case "created":
		return Created, nil
	case "initialized":
		return Initialized, nil
	case "running":
		return Running, nil
	case "halting":
		return Halting, nil
	default:
		return Absent, fmt.Errorf("lifecycle: unknown state %q", s)
	}
}
