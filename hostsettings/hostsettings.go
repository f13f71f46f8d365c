// Package hostsettings holds the engine-global configuration that Config & Validation,
// Brand, and Networking all need a read-only view of: the pool name, the brand and image
// directories, the remote catalog URL, and the nic_tag → bridge map. It is its own package,
// not a field bag inside jailconfig or lifecycle, because jailconfig, jdb, brand, and
// netplan all need it and none of them should have to import each other to get it.
package hostsettings

// Settings is loaded once at process start (cmd/vmadm/main.go) from the host's YAML config
// via kong-yaml, and passed down by reference into every component that needs it.
type Settings struct {
	Pool          string            `yaml:"pool"`
	ConfDir       string            `yaml:"conf_dir"`
	ImageDir      string            `yaml:"image_dir"`
	BrandDir      string            `yaml:"brand_dir"`
	RepoURL       string            `yaml:"repo_url"`
	DevfsRuleset  int               `yaml:"devfs_ruleset"`
	Networks      map[string]string `yaml:"networks"`
	SkipPingCheck bool              `yaml:"-"`
}

// Bridge resolves a nic_tag to its host bridge name. ok is false when the tag is unknown.
func (s *Settings) Bridge(nicTag string) (string, bool) {
	bridge, ok := s.Networks[nicTag]
	return bridge, ok
}
