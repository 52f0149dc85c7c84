package llm

import (
	"github.com/tmc/langchaingo/prompts"

	"github.com/sreagent/investigator/pkg/core"
)

// evidenceTemplate renders an investigation's evidence bundle into the
// verdict-generation prompt. Built with langchaingo/prompts instead of ad
// hoc string concatenation so the template's variables are validated before
// use.
var evidenceTemplate = prompts.NewPromptTemplate(
	`You are investigating an alert for an SRE on-call engineer.

Alert: {{.alertName}}
Target: {{.target}}
Historical mode: {{.historicalMode}}

Evidence summary:
{{.evidenceSummary}}

Respond with a single JSON object containing "verdict", "confidence" (0-1),
and "summary".`,
	[]string{"alertName", "target", "historicalMode", "evidenceSummary"},
)

// RenderVerdictPrompt builds the verdict-generation prompt for one
// investigation.
func RenderVerdictPrompt(alertName, target string, historicalMode bool, evidenceSummary string) (string, error) {
	return evidenceTemplate.Format(map[string]interface{}{
		"alertName":       alertName,
		"target":          target,
		"historicalMode":  historicalMode,
		"evidenceSummary": evidenceSummary,
	})
}

// SummarizeEvidence renders a compact, human-readable digest of the
// evidence bundle for the prompt — not the full JSON (that would blow the
// context budget), just what each slot found.
func SummarizeEvidence(ev core.Evidence) string {
	summary := ""
	summary += "logs: " + string(ev.Logs.Status)
	if ev.Logs.Reason != "" {
		summary += " (" + ev.Logs.Reason + ")"
	}
	summary += "\n"
	if len(ev.K8s.PodEvents) > 0 {
		summary += "k8s events: present\n"
	}
	if len(ev.Metrics.Restarts) > 0 {
		summary += "restarts: tracked\n"
	}
	if len(ev.AWS.CloudTrailEvents) > 0 {
		summary += "cloudtrail events: present\n"
	}
	if ev.GitHub.Repo != "" {
		summary += "github repo: " + ev.GitHub.Repo + "\n"
	}
	return summary
}
