package main

import (
	"context"
	"strings"
	"testing"

	"github.com/sweeklys/vmadm-go/hostexec"
)

func TestVerifyPrerequisitesPassesWhenScriptedClean(t *testing.T) {
	exec := hostexec.NewEchoWithResponses(map[string]hostexec.Result{
		"sysctl": {Stdout: "1\n"},
	})
	if err := verifyPrerequisites(context.Background(), exec, "jail-binary", "zfs-binary", "racct-enabled"); err != nil {
		t.Fatalf("verifyPrerequisites: %v", err)
	}
}

func TestVerifyPrerequisitesReportsEveryFailure(t *testing.T) {
	exec := hostexec.NewEchoWithResponses(map[string]hostexec.Result{
		"sysctl": {Stdout: "0\n"},
	})
	err := verifyPrerequisites(context.Background(), exec, "racct-enabled", "bogus-check")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "racct-enabled") || !strings.Contains(err.Error(), "bogus-check") {
		t.Errorf("error %q does not name both failing checks", err.Error())
	}
}

func TestAllPrerequisiteIDsCoversRegisteredChecks(t *testing.T) {
	ids := allPrerequisiteIDs()
	if len(ids) != len(diagnosticChecks) {
		t.Fatalf("allPrerequisiteIDs() returned %d ids, want %d", len(ids), len(diagnosticChecks))
	}
	for _, check := range diagnosticChecks {
		found := false
		for _, id := range ids {
			if id == check.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("allPrerequisiteIDs() missing %q", check.ID)
		}
	}
}
