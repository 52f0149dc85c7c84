package analysis

import "github.com/sreagent/investigator/pkg/core"

// Diagnose derives hypotheses and suggested next tests from the feature
// record and family enrichment. Each hypothesis restates one enrichment
// label as a ranked, confidence-scored suggestion, plus any secondary
// signals (logs unavailable, high restart rate) worth a lower-confidence
// hypothesis of their own.
func Diagnose(f core.DerivedFeatures, enrichment core.FamilyEnrichment) []core.Hypothesis {
	var out []core.Hypothesis

	if enrichment.Label != "" && enrichment.Label != labelUnknownNeedsHuman {
		out = append(out, core.Hypothesis{
			Label:          enrichment.Label,
			Confidence:     primaryConfidence(f),
			SuggestedTests: enrichment.NextSteps,
		})
	}

	if f.LogsStatus == core.LogStatusUnavailable {
		out = append(out, core.Hypothesis{
			Label:          "logs_unavailable",
			Confidence:     0.2,
			SuggestedTests: []string{"verify logs backend configuration and pod label selectors"},
		})
	}

	if f.RestartRate5mMax > 0 {
		out = append(out, core.Hypothesis{
			Label:          "elevated_restart_rate",
			Confidence:     restartConfidence(f.RestartRate5mMax),
			SuggestedTests: []string{"correlate restart timestamps with deploy/rollout events"},
		})
	}

	if len(out) == 0 {
		out = append(out, core.Hypothesis{
			Label:      labelUnknownNeedsHuman,
			Confidence: 0.1,
			SuggestedTests: []string{
				"gather additional evidence manually; automated signals were inconclusive",
			},
		})
	}

	return out
}

func primaryConfidence(f core.DerivedFeatures) float64 {
	switch {
	case f.LastExitCode != nil && f.CrashDurationSeconds != nil:
		return 0.8
	case f.ProbeFailureType != "" && f.ProbeFailureType != "none":
		return 0.65
	case len(f.ParsedErrorMessages) > 0:
		return 0.6
	default:
		return 0.4
	}
}

func restartConfidence(rate float64) float64 {
	switch {
	case rate >= 5:
		return 0.7
	case rate >= 1:
		return 0.5
	default:
		return 0.3
	}
}
