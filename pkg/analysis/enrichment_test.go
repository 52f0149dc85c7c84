package analysis

import (
	"testing"

	"github.com/sreagent/investigator/pkg/core"
)

func ptrInt32(v int32) *int32     { return &v }
func ptrFloat64(v float64) *float64 { return &v }

func TestCrashloopLabel_OOMExitCode(t *testing.T) {
	f := core.DerivedFeatures{LastExitCode: ptrInt32(137)}
	if got := crashloopLabel(f); got != labelSuspectedOOMCrash {
		t.Errorf("crashloopLabel() = %q, want %q", got, labelSuspectedOOMCrash)
	}
}

func TestCrashloopLabel_OOMKilledReason(t *testing.T) {
	f := core.DerivedFeatures{LastTerminatedReason: "OOMKilled"}
	if got := crashloopLabel(f); got != labelSuspectedOOMCrash {
		t.Errorf("crashloopLabel() = %q, want %q", got, labelSuspectedOOMCrash)
	}
}

func TestCrashloopLabel_LivenessProbeFailure(t *testing.T) {
	f := core.DerivedFeatures{LastExitCode: ptrInt32(0), ProbeFailureType: "liveness"}
	if got := crashloopLabel(f); got != labelSuspectedLivenessProbeFailure {
		t.Errorf("crashloopLabel() = %q, want %q", got, labelSuspectedLivenessProbeFailure)
	}
}

func TestCrashloopLabel_DependencyUnavailable(t *testing.T) {
	f := core.DerivedFeatures{ParsedErrorMessages: []string{"dial tcp: connection refused"}}
	if got := crashloopLabel(f); got != labelSuspectedDependencyUnavailable {
		t.Errorf("crashloopLabel() = %q, want %q", got, labelSuspectedDependencyUnavailable)
	}
}

func TestCrashloopLabel_ConfigOrPermission(t *testing.T) {
	f := core.DerivedFeatures{ParsedErrorMessages: []string{"FileNotFoundError: /etc/app/config.yaml"}}
	if got := crashloopLabel(f); got != labelSuspectedConfigOrPermission {
		t.Errorf("crashloopLabel() = %q, want %q", got, labelSuspectedConfigOrPermission)
	}
}

func TestCrashloopLabel_AppStartupFailure(t *testing.T) {
	f := core.DerivedFeatures{LastExitCode: ptrInt32(1), CrashDurationSeconds: ptrFloat64(3)}
	if got := crashloopLabel(f); got != labelSuspectedAppStartupFailure {
		t.Errorf("crashloopLabel() = %q, want %q", got, labelSuspectedAppStartupFailure)
	}
}

func TestCrashloopLabel_AppRuntimeFailure(t *testing.T) {
	f := core.DerivedFeatures{LastExitCode: ptrInt32(1), CrashDurationSeconds: ptrFloat64(120)}
	if got := crashloopLabel(f); got != labelSuspectedAppRuntimeFailure {
		t.Errorf("crashloopLabel() = %q, want %q", got, labelSuspectedAppRuntimeFailure)
	}
}

func TestCrashloopLabel_UnknownNeedsHuman(t *testing.T) {
	f := core.DerivedFeatures{}
	if got := crashloopLabel(f); got != labelUnknownNeedsHuman {
		t.Errorf("crashloopLabel() = %q, want %q", got, labelUnknownNeedsHuman)
	}
}

func TestCrashloopLabel_PrecedenceOOMOverLiveness(t *testing.T) {
	f := core.DerivedFeatures{LastExitCode: ptrInt32(137), ProbeFailureType: "liveness"}
	if got := crashloopLabel(f); got != labelSuspectedOOMCrash {
		t.Errorf("crashloopLabel() = %q, want %q (OOM must outrank liveness)", got, labelSuspectedOOMCrash)
	}
}

func TestNextSteps_IncludesRestartPromQLAndPreviousLogs(t *testing.T) {
	f := core.DerivedFeatures{PodPhase: "Running"}
	steps := nextSteps(f)
	foundRestarts, foundPrevLogs := false, false
	for _, s := range steps {
		if containsAnyFold([]string{s}, "kube_pod_container_status_restarts_total") {
			foundRestarts = true
		}
		if containsAnyFold([]string{s}, "previous container") {
			foundPrevLogs = true
		}
	}
	if !foundRestarts || !foundPrevLogs {
		t.Errorf("nextSteps() = %v, missing restart PromQL or previous-log suggestion", steps)
	}
}

func TestNextSteps_NoPodTargetPointsToNoPodScenario(t *testing.T) {
	f := core.DerivedFeatures{}
	steps := nextSteps(f)
	if len(steps) != 1 || !containsAnyFold(steps, "no pod target") {
		t.Errorf("nextSteps() for missing target = %v", steps)
	}
}

func TestEnrich_NonCrashloopFamilyUsesGenericLabel(t *testing.T) {
	f := core.DerivedFeatures{Family: core.FamilyCPUThrottling, PodPhase: "Running"}
	got := Enrich(f)
	if got.Label != string(core.FamilyCPUThrottling) {
		t.Errorf("Enrich().Label = %q, want %q", got.Label, core.FamilyCPUThrottling)
	}
}
