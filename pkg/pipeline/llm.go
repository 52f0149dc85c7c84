package pipeline

import (
	"context"

	"github.com/sreagent/investigator/pkg/core"
	"github.com/sreagent/investigator/pkg/providers/llm"
)

// verdictSchema is the JSON shape the verdict-enrichment prompt must return.
var verdictSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"verdict":    map[string]interface{}{"type": "string"},
		"confidence": map[string]interface{}{"type": "number"},
		"summary":    map[string]interface{}{"type": "string"},
	},
	"required": []string{"verdict", "confidence", "summary"},
}

// enrichWithLLM runs the optional, additive LLM enrichment pass (§4.1 step
// 11). It never affects the deterministic verdict/scoring computed by
// pkg/analysis and never fails the investigation: an unconfigured client or
// a provider error just leaves Analysis.LLM describing why.
func enrichWithLLM(ctx context.Context, inv *core.Investigation, client llm.Client, enabled bool) {
	if !enabled {
		return
	}
	if client == nil {
		inv.Analysis.LLM = &core.LLMInsights{Status: "unavailable"}
		return
	}

	target := inv.Target.Pod
	if target == "" {
		target = inv.Target.WorkloadName
	}
	if target == "" {
		target = string(inv.Target.TargetType)
	}

	prompt, err := llm.RenderVerdictPrompt(inv.Alert.Labels["alertname"], target, false, llm.SummarizeEvidence(inv.Evidence))
	if err != nil {
		inv.Analysis.LLM = &core.LLMInsights{Status: "error"}
		return
	}

	result := client.GenerateJSON(ctx, prompt, verdictSchema, false)
	if result.ErrorCode != "" {
		inv.Analysis.LLM = &core.LLMInsights{Status: llmStatusFromErrorCode(result.ErrorCode)}
		return
	}

	summary, _ := result.Object["summary"].(string)
	inv.Analysis.LLM = &core.LLMInsights{Status: "ok", Summary: summary}
}

func llmStatusFromErrorCode(code string) string {
	switch code {
	case "rate_limited":
		return "rate_limited"
	default:
		return "error"
	}
}
