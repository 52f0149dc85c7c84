package pipeline

import (
	"strings"

	"github.com/sreagent/investigator/pkg/core"
)

// analyzeNoise computes a first-pass noise classification from the alert
// and whatever evidence was already collected (§4.1 step 9). It runs before
// feature derivation so it works without a pod target; postprocessNoise
// refines it afterward using derived features.
func analyzeNoise(inv *core.Investigation) {
	verdict := core.NoiseVerdict{Classification: "unknown"}

	switch strings.ToLower(inv.Alert.Labels["severity"]) {
	case "critical", "page":
		verdict.Classification = "actionable"
		verdict.Reasons = append(verdict.Reasons, "severity_critical")
	case "info", "warning":
		verdict.Classification = "noisy"
		verdict.Reasons = append(verdict.Reasons, "severity_low")
	}

	if inv.Alert.NormalizedState == core.StateResolved {
		verdict.Classification = "noisy"
		verdict.Reasons = append(verdict.Reasons, "already_resolved")
	}

	hasCorroboratingEvidence := len(inv.Evidence.K8s.PodEvents) > 0 ||
		len(inv.Evidence.Metrics.Restarts) > 0 ||
		inv.Evidence.Logs.Status == core.LogStatusOK
	if !hasCorroboratingEvidence {
		if verdict.Classification == "unknown" {
			verdict.Classification = "noisy"
		}
		verdict.Reasons = append(verdict.Reasons, "no_corroborating_evidence")
	}

	inv.Analysis.Noise = verdict
}

// postprocessNoise upgrades the noise classification to "actionable" once
// derived features confirm a real signal, even if the earlier evidence-only
// pass called it noisy (§4.1 step 9).
func postprocessNoise(inv *core.Investigation) {
	f := inv.Analysis.Features
	if f.RestartRate5mMax > 0 || f.HTTP5xxCount > 0 || len(f.ContainersTerminated) > 0 {
		if inv.Analysis.Noise.Classification != "actionable" {
			inv.Analysis.Noise.Classification = "actionable"
			inv.Analysis.Noise.Reasons = append(inv.Analysis.Noise.Reasons, "features_confirm_signal")
		}
	}
}
