package llm

import (
	"strings"
	"testing"

	"github.com/sreagent/investigator/pkg/core"
)

func TestRenderVerdictPrompt_IncludesAllFields(t *testing.T) {
	prompt, err := RenderVerdictPrompt("PodCrashLooping", "prod/web-1", true, "logs: empty\n")
	if err != nil {
		t.Fatalf("RenderVerdictPrompt() error = %v", err)
	}
	for _, want := range []string{"PodCrashLooping", "prod/web-1", "true", "logs: empty"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestSummarizeEvidence_ReflectsPopulatedSlots(t *testing.T) {
	ev := core.Evidence{
		Logs: core.LogsEvidence{Status: core.LogStatusEmpty, Reason: "no_matching_labels"},
	}
	ev.GitHub.Repo = "myorg/web"

	summary := SummarizeEvidence(ev)
	if !strings.Contains(summary, "empty") || !strings.Contains(summary, "no_matching_labels") {
		t.Errorf("summary = %q", summary)
	}
	if !strings.Contains(summary, "myorg/web") {
		t.Errorf("summary = %q, want github repo line", summary)
	}
}
