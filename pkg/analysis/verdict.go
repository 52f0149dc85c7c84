package analysis

import (
	"fmt"

	"github.com/sreagent/investigator/pkg/core"
)

// classification buckets by impact score, highest threshold first.
const (
	classificationCritical = "critical"
	classificationHigh     = "high"
	classificationMedium   = "medium"
	classificationLow      = "low"
)

// Verdict produces the final headline classification and one-liner from the
// scores and enrichment decision (§4.6). Non-empty for every run that
// reaches this stage.
func Verdict(scores core.Scores, enrichment core.FamilyEnrichment, f core.DerivedFeatures) core.Verdict {
	classification := classify(scores.ImpactScore)
	return core.Verdict{
		Classification: classification,
		OneLiner:       oneLiner(classification, enrichment, f),
	}
}

func classify(impact float64) string {
	switch {
	case impact >= 75:
		return classificationCritical
	case impact >= 50:
		return classificationHigh
	case impact >= 25:
		return classificationMedium
	default:
		return classificationLow
	}
}

func oneLiner(classification string, enrichment core.FamilyEnrichment, f core.DerivedFeatures) string {
	label := enrichment.Label
	if label == "" {
		label = string(f.Family)
	}
	return fmt.Sprintf("%s severity: %s (%s)", classification, label, string(f.Family))
}
