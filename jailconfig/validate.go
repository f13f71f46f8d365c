package jailconfig

import (
	"context"
	"fmt"

	"github.com/sweeklys/vmadm-go/hostexec"
	"github.com/sweeklys/vmadm-go/hostsettings"
	"github.com/sweeklys/vmadm-go/vmerrors"
)

// ValidateOptions lets callers disable the ICMP "address in use" probe under test, per
// spec §4.5 ("may be disabled under test") and the caveat in Design Notes about ping
// blocking for the OS default timeout and producing false negatives on ICMP-dropping
// networks.
type ValidateOptions struct {
	Exec          hostexec.HostExec
	SkipPingCheck bool
}

// Validate runs every field check and never short-circuits: a single call reports every
// problem found, accumulated into a vmerrors.ValidationError.
func Validate(ctx context.Context, cfg *ContainerConfig, settings *hostsettings.Settings, opts ValidateOptions) error {
	var fields []vmerrors.FieldError

	if !nameRe.MatchString(cfg.Hostname) {
		fields = append(fields, vmerrors.FieldError{Field: "hostname", Message: "must match " + nameRe.String()})
	}
	if !nameRe.MatchString(cfg.Alias) {
		fields = append(fields, vmerrors.FieldError{Field: "alias", Message: "must match " + nameRe.String()})
	}

	for i, nic := range cfg.NICs {
		fields = append(fields, validateNIC(ctx, i, nic, settings, opts)...)
	}

	for dest, gw := range cfg.Routes {
		if !isIPv4OrPrefix(dest) {
			fields = append(fields, vmerrors.FieldError{
				Field:   fmt.Sprintf("routes[%s]", dest),
				Message: "destination must be IPv4 or IPv4/prefix",
			})
		}
		if !isIPv4(gw) && !ifaceRe.MatchString(gw) {
			fields = append(fields, vmerrors.FieldError{
				Field:   fmt.Sprintf("routes[%s].gateway", dest),
				Message: "gateway must be IPv4 or an interface name",
			})
		}
	}

	return vmerrors.NewValidationError(fields)
}

func validateNIC(ctx context.Context, i int, nic NIC, settings *hostsettings.Settings, opts ValidateOptions) []vmerrors.FieldError {
	var fields []vmerrors.FieldError
	prefix := fmt.Sprintf("nics[%d]", i)

	if !ifaceRe.MatchString(nic.Interface) {
		fields = append(fields, vmerrors.FieldError{Field: prefix + ".interface", Message: "must match " + ifaceRe.String()})
	}
	if !isIPv4(nic.IP) {
		fields = append(fields, vmerrors.FieldError{Field: prefix + ".ip", Message: "must be a dotted-quad IPv4 address"})
	}
	if !isIPv4(nic.Netmask) {
		fields = append(fields, vmerrors.FieldError{Field: prefix + ".netmask", Message: "must be a dotted-quad IPv4 address"})
	}
	if !isIPv4(nic.Gateway) {
		fields = append(fields, vmerrors.FieldError{Field: prefix + ".gateway", Message: "must be a dotted-quad IPv4 address"})
	}
	if nic.MAC != "" && !macRe.MatchString(nic.MAC) {
		fields = append(fields, vmerrors.FieldError{Field: prefix + ".mac", Message: "must match " + macRe.String()})
	}
	if settings != nil {
		if _, ok := settings.Bridge(nic.NicTag); !ok {
			fields = append(fields, vmerrors.FieldError{Field: prefix + ".nic_tag", Message: "not present in host network map"})
		}
	}

	skipPing := opts.SkipPingCheck || (settings != nil && settings.SkipPingCheck)
	if !skipPing && opts.Exec != nil && isIPv4(nic.IP) {
		if addressInUse(ctx, opts.Exec, nic.IP) {
			fields = append(fields, vmerrors.FieldError{Field: prefix + ".ip", Message: "address already taken"})
		}
	}

	return fields
}

// addressInUse issues a single ICMP echo (ping -o -c 1) and reports whether it answered.
func addressInUse(ctx context.Context, exec hostexec.HostExec, ip string) bool {
	res, err := exec.Run(ctx, "ping", "-o", "-c", "1", ip)
	if err != nil {
		return false
	}
	return res.ExitCode == 0
}

// RctlLimits derives the fixed, order-significant argument vector for `rctl -a`. The order
// is part of the contract (spec §4.5, tested in §8), so this stays a hand-written literal
// slice rather than a reflection-driven renderer: six fields in exactly this sequence.
func (cfg *ContainerConfig) RctlLimits() []string {
	maxLocked := cfg.MaxPhysicalMemory
	if cfg.MaxLockedMemory != nil {
		maxLocked = *cfg.MaxLockedMemory
	}
	maxShm := cfg.MaxPhysicalMemory
	if cfg.MaxShmMemory != nil {
		maxShm = *cfg.MaxShmMemory
	}
	return []string{
		"-a",
		fmt.Sprintf("jail:%s:memoryuse:deny=%dM", cfg.UUID, cfg.MaxPhysicalMemory),
		fmt.Sprintf("jail:%s:memorylocked:deny=%dM", cfg.UUID, maxLocked),
		fmt.Sprintf("jail:%s:shmsize:deny=%dM", cfg.UUID, maxShm),
		fmt.Sprintf("jail:%s:pcpu:deny=%d", cfg.UUID, cfg.CPUCap),
		fmt.Sprintf("jail:%s:maxproc:deny=%d", cfg.UUID, cfg.MaxLwps),
	}
}
