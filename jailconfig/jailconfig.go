// Package jailconfig is the desired-state schema for a container: the fields an operator
// submits, the defaults applied to them, and the invariants enforced before the engine will
// act on them. It is the Go analogue of the teacher's apple-container `ContainerConfig`, but
// shaped around jail(8)'s resource envelope and NIC model instead of OCI bundles.
package jailconfig

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"regexp"
	"time"
)

var (
	nameRe = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,253}[A-Za-z0-9])?$`)
	ifaceRe = regexp.MustCompile(`^[A-Za-z]{1,4}[0-9]{0,3}$`)
	macRe   = regexp.MustCompile(`^[A-Fa-f0-9]{1,2}(:[A-Fa-f0-9]{1,2}){5}$`)
)

// NIC describes one virtual network interface attached to a container.
type NIC struct {
	Interface    string `json:"interface"`
	MAC          string `json:"mac,omitempty"`
	VLAN         *uint16 `json:"vlan,omitempty"`
	NicTag       string `json:"nic_tag"`
	IP           string `json:"ip"`
	Netmask      string `json:"netmask"`
	Gateway      string `json:"gateway"`
	Primary      bool   `json:"primary"`
	MTU          *int   `json:"mtu,omitempty"`
	NetworkUUID  string `json:"network_uuid,omitempty"`
}

// Equal reports structural equality, matching spec's "Equality is structural" for NIC.
func (n NIC) Equal(o NIC) bool {
	if n.Interface != o.Interface || n.MAC != o.MAC || n.NicTag != o.NicTag ||
		n.IP != o.IP || n.Netmask != o.Netmask || n.Gateway != o.Gateway ||
		n.Primary != o.Primary || n.NetworkUUID != o.NetworkUUID {
		return false
	}
	if (n.VLAN == nil) != (o.VLAN == nil) {
		return false
	}
	if n.VLAN != nil && *n.VLAN != *o.VLAN {
		return false
	}
	if (n.MTU == nil) != (o.MTU == nil) {
		return false
	}
	if n.MTU != nil && *n.MTU != *o.MTU {
		return false
	}
	return true
}

// Bookkeeping is opaque, operator-supplied metadata the engine never interprets. It is
// carried through untouched across every read/write cycle, mirroring the original
// implementation's owner_uuid/package_name/billing_id/do_not_inventory fields.
type Bookkeeping struct {
	OwnerUUID      string `json:"owner_uuid,omitempty"`
	PackageName    string `json:"package_name,omitempty"`
	BillingID      string `json:"billing_id,omitempty"`
	DoNotInventory bool   `json:"do_not_inventory,omitempty"`
}

// ContainerConfig is the desired-state record for a single container, as submitted by an
// operator via `vmadm create`/`vmadm update` and persisted verbatim (after defaulting and
// validation) by JDB.
type ContainerConfig struct {
	Brand      string `json:"brand"`
	UUID       string `json:"uuid"`
	ImageUUID  string `json:"image_uuid"`
	Alias      string `json:"alias"`
	Hostname   string `json:"hostname"`
	DNSDomain  string `json:"dns_domain"`

	MaxPhysicalMemory int  `json:"max_physical_memory"`
	CPUCap            int  `json:"cpu_cap"`
	Quota             int  `json:"quota"`
	MaxShmMemory      *int `json:"max_shm_memory,omitempty"`
	MaxLockedMemory   *int `json:"max_locked_memory,omitempty"`
	MaxLwps           int  `json:"max_lwps"`

	Autoboot bool `json:"autoboot"`

	NICs      []NIC             `json:"nics,omitempty"`
	Resolvers []string          `json:"resolvers,omitempty"`
	Routes    map[string]string `json:"routes,omitempty"`

	CustomerMetadata map[string]string `json:"customer_metadata,omitempty"`
	InternalMetadata map[string]string `json:"internal_metadata,omitempty"`

	Bookkeeping Bookkeeping `json:"bookkeeping,omitempty"`

	CreateTimestamp time.Time `json:"create_timestamp,omitempty"`
	LastModified    time.Time `json:"last_modified,omitempty"`
}

// Reserved metadata keys consumed directly by Lifecycle.init (spec §4.8 "init").
const (
	MetadataRootAuthorizedKeys = "root_authorized_keys"
	MetadataUserScript         = "user-script"
)

// FromReader decodes a ContainerConfig and applies the documented defaults and
// normalization: brand defaults to "jail", dns_domain to "local", max_lwps to 2000,
// max_shm_memory/max_locked_memory fall back to max_physical_memory when absent, and any
// NIC without a mac gets one autogenerated (spec §3's "autogenerated 02:xx:xx:xx:xx:xx if
// absent").
func FromReader(r io.Reader) (ContainerConfig, error) {
	var cfg ContainerConfig
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return ContainerConfig{}, fmt.Errorf("decoding container config: %w", err)
	}
	applyDefaults(&cfg)
	if err := NormalizeNICs(cfg.NICs); err != nil {
		return ContainerConfig{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *ContainerConfig) {
	if cfg.Brand == "" {
		cfg.Brand = "jail"
	}
	if cfg.DNSDomain == "" {
		cfg.DNSDomain = "local"
	}
	if cfg.MaxLwps == 0 {
		cfg.MaxLwps = 2000
	}
	if cfg.MaxShmMemory == nil {
		v := cfg.MaxPhysicalMemory
		cfg.MaxShmMemory = &v
	}
	if cfg.MaxLockedMemory == nil {
		v := cfg.MaxPhysicalMemory
		cfg.MaxLockedMemory = &v
	}
}

// ToWriter persists the config as JSON, the format JDB stores `<uuid>.json` in.
func (cfg *ContainerConfig) ToWriter(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

func isIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}

func isIPv4OrPrefix(s string) bool {
	if _, _, err := net.ParseCIDR(s); err == nil {
		return true
	}
	return isIPv4(s)
}
