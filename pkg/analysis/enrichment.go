package analysis

import (
	"strconv"
	"strings"

	"github.com/sreagent/investigator/pkg/core"
)

const (
	labelSuspectedOOMCrash             = "suspected_oom_crash"
	labelSuspectedLivenessProbeFailure = "suspected_liveness_probe_failure"
	labelSuspectedDependencyUnavailable = "suspected_dependency_unavailable"
	labelSuspectedConfigOrPermission   = "suspected_config_or_permission_error"
	labelSuspectedAppStartupFailure    = "suspected_app_startup_failure"
	labelSuspectedAppRuntimeFailure    = "suspected_app_runtime_failure"
	labelUnknownNeedsHuman             = "unknown_needs_human"
)

// Enrich builds the family-specific decision (label + why + next-steps)
// from the derived features (§4.6). The crashloop table is implemented
// verbatim; other families get a single deterministic label with
// baseline why/next-step bullets derived from the same feature set.
func Enrich(f core.DerivedFeatures) core.FamilyEnrichment {
	if f.Family == core.FamilyCrashloop || f.Family == core.FamilyOOMKilled {
		return enrichCrashloop(f)
	}
	return core.FamilyEnrichment{
		Label:     genericLabel(f.Family),
		Why:       whyBullets(f),
		NextSteps: nextSteps(f),
	}
}

func genericLabel(family core.Family) string {
	if family == "" {
		return string(core.FamilyGeneric)
	}
	return string(family)
}

// enrichCrashloop implements the crashloop decision table in strict
// precedence order (§4.6). Exactly one label is returned.
func enrichCrashloop(f core.DerivedFeatures) core.FamilyEnrichment {
	label := crashloopLabel(f)
	return core.FamilyEnrichment{
		Label:     label,
		Why:       whyBullets(f),
		NextSteps: nextSteps(f),
	}
}

func crashloopLabel(f core.DerivedFeatures) string {
	if f.LastExitCode != nil && *f.LastExitCode == 137 {
		return labelSuspectedOOMCrash
	}
	if strings.EqualFold(f.LastTerminatedReason, "OOMKilled") {
		return labelSuspectedOOMCrash
	}
	if f.LastExitCode != nil && *f.LastExitCode == 0 && f.ProbeFailureType == "liveness" {
		return labelSuspectedLivenessProbeFailure
	}
	if containsAnyFold(f.ParsedErrorMessages, "ECONNREFUSED", "connection refused") {
		return labelSuspectedDependencyUnavailable
	}
	if containsAnyFold(f.ParsedErrorMessages, "FileNotFoundError", "permission denied", "permission error") {
		return labelSuspectedConfigOrPermission
	}
	if f.LastExitCode != nil && *f.LastExitCode == 1 {
		if f.CrashDurationSeconds != nil {
			if *f.CrashDurationSeconds < 10 {
				return labelSuspectedAppStartupFailure
			}
			if *f.CrashDurationSeconds > 60 {
				return labelSuspectedAppRuntimeFailure
			}
		}
	}
	return labelUnknownNeedsHuman
}

func containsAnyFold(messages []string, needles ...string) bool {
	for _, m := range messages {
		lower := strings.ToLower(m)
		for _, n := range needles {
			if strings.Contains(lower, strings.ToLower(n)) {
				return true
			}
		}
	}
	return false
}

// whyBullets builds the "why" explanation, at minimum covering pod status,
// restart rate, crash duration (when known), and probe failure (when
// classified), per §4.6.
func whyBullets(f core.DerivedFeatures) []string {
	var bullets []string
	if f.PodPhase != "" {
		bullets = append(bullets, "pod phase: "+f.PodPhase)
	} else {
		bullets = append(bullets, "pod phase unknown")
	}
	bullets = append(bullets, restartRateBullet(f.RestartRate5mMax))
	if f.CrashDurationSeconds != nil {
		bullets = append(bullets, crashDurationBullet(*f.CrashDurationSeconds))
	}
	if f.ProbeFailureType != "" && f.ProbeFailureType != "none" {
		bullets = append(bullets, "probe failure: "+f.ProbeFailureType)
	}
	if len(f.RecentEventReasons) > 0 {
		bullets = append(bullets, "recent events: "+strings.Join(f.RecentEventReasons, ", "))
	}
	return bullets
}

func restartRateBullet(rate float64) string {
	if rate <= 0 {
		return "restart rate: none observed in window"
	}
	return "restart rate (5m max): " + formatFloat(rate)
}

func crashDurationBullet(seconds float64) string {
	return "crash duration: " + formatFloat(seconds) + "s"
}

// nextSteps builds the "next steps" bullets. For crashloop-family
// investigations this always includes a restart-count PromQL suggestion and
// a previous-container-log suggestion; when the target pod is missing it
// points at the no-pod scenario instead.
func nextSteps(f core.DerivedFeatures) []string {
	if f.PodPhase == "" && f.WaitingReason == "" && len(f.ContainersTerminated) == 0 {
		return []string{"no pod target resolved: investigate via workload/service scope instead of pod scope"}
	}
	return []string{
		"inspect kube_pod_container_status_restarts_total for this pod over the last hour",
		"fetch the previous container's logs to capture the panic/exit trace",
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
