// Package brand loads TOML brand descriptors and renders their command templates against
// a container's live state. It adopts github.com/BurntSushi/toml for decoding — the
// teacher has no TOML need of its own, so this is adopted from the wider retrieved pack,
// exactly as the process for enriching beyond the teacher's own go.mod calls for.
package brand

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sweeklys/vmadm-go/hostsettings"
	"github.com/sweeklys/vmadm-go/jdb"
)

// Step is one command template: a program and its argument templates, each substituted
// independently before execution.
type Step struct {
	Cmd  string   `toml:"cmd"`
	Args []string `toml:"args"`
}

// Brand is the on-disk descriptor for one container flavor: the six fixed-role steps that
// realize install/boot/halt/console semantics.
type Brand struct {
	Modname string `toml:"modname"`
	Install Step   `toml:"install"`
	Init    Step   `toml:"init"`
	Boot    Step   `toml:"boot"`
	Halt    Step   `toml:"halt"`
	Halted  Step   `toml:"halted"`
	Login   Step   `toml:"login"`
}

// Load reads `<brand_dir>/<name>/config.toml` into a Brand.
func Load(name string, settings *hostsettings.Settings) (Brand, error) {
	path := filepath.Join(settings.BrandDir, name, "config.toml")
	var b Brand
	if _, err := toml.DecodeFile(path, &b); err != nil {
		return Brand{}, fmt.Errorf("loading brand %s: %w", name, err)
	}
	return b, nil
}

// Render performs token substitution on cmd and every arg, returning the argument vector
// HostExec.Run should be given.
func (s Step) Render(c jdb.Container, settings *hostsettings.Settings) (program string, args []string) {
	tokens := tokenMap(c, settings)
	program = substitute(s.Cmd, tokens)
	args = make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = substitute(a, tokens)
	}
	return program, args
}

// ToShellString is Render's human-readable serialization: `cmd 'arg1' 'arg2' …`, used when
// a step is embedded inside a larger shell script (Lifecycle's exec.start assembly).
func (s Step) ToShellString(c jdb.Container, settings *hostsettings.Settings) string {
	program, args := s.Render(c, settings)
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	if len(quoted) == 0 {
		return program
	}
	return program + " " + strings.Join(quoted, " ")
}

func tokenMap(c jdb.Container, settings *hostsettings.Settings) map[string]string {
	innerID := "0"
	if c.Inner != nil {
		innerID = strconv.Itoa(c.Inner.JID)
	}
	outerID := "0"
	if c.Outer != nil {
		outerID = strconv.Itoa(c.Outer.JID)
	}
	return map[string]string{
		"inner_id":  innerID,
		"outer_id":  outerID,
		"ounter_id": outerID, // historical misspelling, kept for brand TOMLs in the wild (§9)
		"jail_uuid": c.Config.UUID,
		"jail_root": "/" + c.Index.RootDataset,
		"brand_root": filepath.Join(settings.BrandDir, c.Config.Brand),
		"hostname":  c.Config.Hostname,
	}
}

// substitute replaces every {token} present in tokens; unknown tokens are left literal.
func substitute(s string, tokens map[string]string) string {
	for name, value := range tokens {
		placeholder := "{" + name + "}"
		if name == "ounter_id" && strings.Contains(s, placeholder) {
			slog.Warn("brand: {ounter_id} is a deprecated misspelling of {outer_id}, update the brand descriptor")
		}
		s = strings.ReplaceAll(s, placeholder, value)
	}
	return s
}
