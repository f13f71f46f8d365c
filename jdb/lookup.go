package jdb

import (
	"github.com/samber/lo"

	"github.com/sweeklys/vmadm-go/jailconfig"
)

// FindByMAC returns the NIC in nics matching mac, if any.
func FindByMAC(nics []jailconfig.NIC, mac string) (jailconfig.NIC, bool) {
	return lo.Find(nics, func(n jailconfig.NIC) bool { return n.MAC == mac })
}

// FilterByAutoboot returns the containers with autoboot set and no outer OS entry — the
// set Startup (lifecycle §4.8) iterates.
func FilterByAutoboot(containers []Container) []Container {
	return lo.Filter(containers, func(c Container, _ int) bool {
		return c.Config.Autoboot && c.Outer == nil
	})
}
