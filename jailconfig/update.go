package jailconfig

import (
	"github.com/imdario/mergo"
	"github.com/samber/lo"
)

// Update is a partial record of changes to apply to a ContainerConfig. Scalar fields are
// pointers so "absent" and "set to zero value" are distinguishable in the decoded update.
// Apply honours an explicit zero only for Autoboot: an Alias, Hostname, Quota or CPUCap
// set to "" or 0 is treated as absent and leaves the field unchanged.
type Update struct {
	Alias    *string `json:"alias,omitempty"`
	Hostname *string `json:"hostname,omitempty"`
	Quota    *int    `json:"quota,omitempty"`
	CPUCap   *int    `json:"cpu_cap,omitempty"`
	Autoboot *bool   `json:"autoboot,omitempty"`

	AddNICs    []NIC      `json:"add_nics,omitempty"`
	RemoveNICs []string   `json:"remove_nics,omitempty"`
	UpdateNICs []NICPatch `json:"update_nics,omitempty"`

	RemoveRoutes []string          `json:"remove_routes,omitempty"`
	SetRoutes    map[string]string `json:"set_routes,omitempty"`
}

// NICPatch matches an existing NIC by MAC and overwrites whichever fields are set.
type NICPatch struct {
	MAC     string  `json:"mac"`
	IP      *string `json:"ip,omitempty"`
	Netmask *string `json:"netmask,omitempty"`
	Gateway *string `json:"gateway,omitempty"`
	Primary *bool   `json:"primary,omitempty"`
}

// scalarOverlay carries only the string/int scalar fields an Update set, so mergo can
// overlay them onto a ContainerConfig without touching anything the update didn't mention
// — mergo.WithOverride skips empty src fields, so both an absent field and one set to
// "" or 0 leave the field unchanged. Autoboot is a bool and handled separately below: mergo's zero-skip would
// otherwise silently ignore an explicit `autoboot: false`.
type scalarOverlay struct {
	Alias    string
	Hostname string
	Quota    int
	CPUCap   int
}

// Apply returns cfg with u's changes applied. The empty update is the identity: for all
// valid configs, Apply(config, Update{}) == config (spec §8).
func Apply(cfg ContainerConfig, u Update) (ContainerConfig, error) {
	out := cfg

	overlay := scalarOverlay{}
	if u.Alias != nil {
		overlay.Alias = *u.Alias
	}
	if u.Hostname != nil {
		overlay.Hostname = *u.Hostname
	}
	if u.Quota != nil {
		overlay.Quota = *u.Quota
	}
	if u.CPUCap != nil {
		overlay.CPUCap = *u.CPUCap
	}

	dst := scalarOverlay{Alias: out.Alias, Hostname: out.Hostname, Quota: out.Quota, CPUCap: out.CPUCap}
	if err := mergo.Merge(&dst, overlay, mergo.WithOverride); err != nil {
		return cfg, err
	}
	out.Alias, out.Hostname, out.Quota, out.CPUCap = dst.Alias, dst.Hostname, dst.Quota, dst.CPUCap

	if u.Autoboot != nil {
		out.Autoboot = *u.Autoboot
	}

	out.NICs = applyNICChanges(out.NICs, u)
	if err := NormalizeNICs(out.NICs); err != nil {
		return cfg, err
	}

	if len(u.RemoveRoutes) > 0 || len(u.SetRoutes) > 0 {
		routes := map[string]string{}
		for k, v := range out.Routes {
			routes[k] = v
		}
		for _, dest := range u.RemoveRoutes {
			delete(routes, dest)
		}
		for dest, gw := range u.SetRoutes {
			routes[dest] = gw
		}
		out.Routes = routes
	}

	return out, nil
}

func applyNICChanges(nics []NIC, u Update) []NIC {
	if len(u.RemoveNICs) > 0 {
		removeSet := lo.SliceToMap(u.RemoveNICs, func(mac string) (string, bool) { return mac, true })
		nics = lo.Reject(nics, func(n NIC, _ int) bool { return removeSet[n.MAC] })
	}

	nics = append(nics, u.AddNICs...)

	for _, patch := range u.UpdateNICs {
		idx := lo.IndexOf(lo.Map(nics, func(n NIC, _ int) string { return n.MAC }), patch.MAC)
		if idx == -1 {
			continue
		}
		if patch.Primary != nil && *patch.Primary {
			for i := range nics {
				nics[i].Primary = false
			}
		}
		if patch.IP != nil {
			nics[idx].IP = *patch.IP
		}
		if patch.Netmask != nil {
			nics[idx].Netmask = *patch.Netmask
		}
		if patch.Gateway != nil {
			nics[idx].Gateway = *patch.Gateway
		}
		if patch.Primary != nil {
			nics[idx].Primary = *patch.Primary
		}
	}

	return nics
}
