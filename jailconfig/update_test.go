package jailconfig

import (
	"reflect"
	"testing"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func TestApplyEmptyUpdateIsIdentity(t *testing.T) {
	cfg := ContainerConfig{
		UUID: "u1", Alias: "a1", Hostname: "h1", Quota: 10, CPUCap: 50,
		NICs:   []NIC{{MAC: "00:00:00:00:00:00", Primary: true}},
		Routes: map[string]string{"10.0.0.0/24": "10.0.1.1"},
	}
	out, err := Apply(cfg, Update{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(out, cfg) {
		t.Errorf("Apply(config, empty) = %+v, want unchanged %+v", out, cfg)
	}
}

func TestApplyAliasUpdate(t *testing.T) {
	cfg := ContainerConfig{UUID: "u1", Alias: "test-alias", Hostname: "h1"}
	out, err := Apply(cfg, Update{Alias: strp("changed")})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Alias != "changed" {
		t.Errorf("Alias = %q, want changed", out.Alias)
	}
	if out.Hostname != "h1" {
		t.Errorf("Hostname changed unexpectedly: %q", out.Hostname)
	}
}

func TestApplyPrimaryReassignment(t *testing.T) {
	cfg := ContainerConfig{
		NICs: []NIC{
			{MAC: "00:00:00:00:00:00", Primary: true},
			{MAC: "00:00:00:00:00:01", Primary: false},
		},
	}
	out, err := Apply(cfg, Update{
		UpdateNICs: []NICPatch{{MAC: "00:00:00:00:00:01", Primary: boolp(true)}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.NICs[0].Primary {
		t.Errorf("nics[0].Primary = true, want false")
	}
	if !out.NICs[1].Primary {
		t.Errorf("nics[1].Primary = false, want true")
	}
}

func TestApplyRouteUpsertThenRemove(t *testing.T) {
	cfg := ContainerConfig{Routes: map[string]string{}}
	out, err := Apply(cfg, Update{SetRoutes: map[string]string{"10.0.0.0/24": "10.0.1.0"}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Routes["10.0.0.0/24"] != "10.0.1.0" {
		t.Fatalf("Routes = %v", out.Routes)
	}
	out2, err := Apply(out, Update{RemoveRoutes: []string{"10.0.0.0/24"}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(out2.Routes) != 0 {
		t.Errorf("Routes = %v, want empty", out2.Routes)
	}
}

func TestApplyAtMostOnePrimaryInvariant(t *testing.T) {
	cfg := ContainerConfig{
		NICs: []NIC{
			{MAC: "a", Primary: true},
			{MAC: "b", Primary: false},
			{MAC: "c", Primary: false},
		},
	}
	out, err := Apply(cfg, Update{UpdateNICs: []NICPatch{{MAC: "c", Primary: boolp(true)}}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	count := 0
	for _, n := range out.NICs {
		if n.Primary {
			count++
		}
	}
	if count != 1 {
		t.Errorf("got %d primary NICs, want exactly 1", count)
	}
}

func TestNICPatchIdentityForNonMatchingMAC(t *testing.T) {
	cfg := ContainerConfig{NICs: []NIC{{MAC: "a", IP: "10.0.0.1"}}}
	out, err := Apply(cfg, Update{UpdateNICs: []NICPatch{{MAC: "z", IP: strp("10.0.0.9")}}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.NICs[0].IP != "10.0.0.1" {
		t.Errorf("non-matching patch changed nic: %+v", out.NICs[0])
	}
}
