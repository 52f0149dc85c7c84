package analysis

import "github.com/sreagent/investigator/pkg/core"

// Run executes the full deterministic analysis chain (§4.1 step 10) over
// inv's filled evidence and writes the result into inv.Analysis. It never
// touches inv.Evidence or inv.Errors.
func Run(inv *core.Investigation) {
	features := DeriveFeatures(inv)
	enrichment := Enrich(features)
	hypotheses := Diagnose(features, enrichment)
	scores := Score(features, hypotheses)
	verdict := Verdict(scores, enrichment, features)

	inv.Analysis.Features = features
	inv.Analysis.Enrichment = enrichment
	inv.Analysis.Decision = enrichment
	inv.Analysis.Hypotheses = hypotheses
	inv.Analysis.Scores = scores
	inv.Analysis.Verdict = verdict
}
