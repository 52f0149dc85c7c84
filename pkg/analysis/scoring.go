package analysis

import "github.com/sreagent/investigator/pkg/core"

// Score computes the bounded [0,100] impact/confidence pair from the
// derived features and hypotheses (§4.6). Both components must be
// non-empty for any run that reaches this stage; the formulas below are a
// deliberately simple, explainable weighting rather than a learned model.
func Score(f core.DerivedFeatures, hypotheses []core.Hypothesis) core.Scores {
	return core.Scores{
		ImpactScore:     clamp(impactScore(f)),
		ConfidenceScore: clamp(confidenceScore(hypotheses)),
	}
}

func impactScore(f core.DerivedFeatures) float64 {
	score := 20.0

	if f.Ready != nil && !*f.Ready {
		score += 20
	}
	if f.RestartRate5mMax > 0 {
		score += 10 + min(f.RestartRate5mMax*5, 30)
	}
	if f.CrashDurationSeconds != nil && *f.CrashDurationSeconds < 10 {
		score += 15
	}
	if f.HTTP5xxRate > 0 {
		score += 10 + min(f.HTTP5xxRate, 30)
	}
	if f.LastExitCode != nil && *f.LastExitCode == 137 {
		score += 15
	}

	return score
}

func confidenceScore(hypotheses []core.Hypothesis) float64 {
	if len(hypotheses) == 0 {
		return 0
	}
	var best float64
	for _, h := range hypotheses {
		if h.Confidence > best {
			best = h.Confidence
		}
	}
	return best * 100
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
