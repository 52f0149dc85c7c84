package dump

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sreagent/investigator/pkg/core"
)

func sampleInvestigation() *core.Investigation {
	inv := core.NewInvestigation(
		core.AlertInstance{
			Fingerprint:     "fp1",
			Labels:          map[string]string{"alertname": "CPUThrottlingHigh"},
			Annotations:     map[string]string{"summary": "high throttling"},
			NormalizedState: core.StateFiring,
			EndsAtKind:      core.EndsAtExpiresAt,
		},
		core.TimeWindow{Window: "1h", StartTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), EndTime: time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)},
		core.TargetRef{Namespace: "ns1", Pod: "p1", TargetType: core.TargetPod},
	)
	inv.Evidence.Logs = core.LogsEvidence{
		Status:  core.LogStatusOK,
		Backend: core.BackendVictoriaLogs,
		Entries: []core.LogEntry{{Timestamp: time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC), Message: "boom"}},
	}
	inv.Analysis.Features.Family = core.FamilyCPUThrottling
	inv.Analysis.Scores = core.Scores{ImpactScore: 42, ConfidenceScore: 70}
	inv.AddError("aws", "not_configured")
	return inv
}

// TestRoundTrip_Full covers P12: serialize then reparse is deterministic for
// all fields except freely-ordered mappings.
func TestRoundTrip_Full(t *testing.T) {
	inv := sampleInvestigation()

	data, err := ToJSON(inv, ModeFull)
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}

	if got.Alert.Fingerprint != inv.Alert.Fingerprint {
		t.Errorf("Fingerprint mismatch: %q vs %q", got.Alert.Fingerprint, inv.Alert.Fingerprint)
	}
	if !got.TimeWindow.StartTime.Equal(inv.TimeWindow.StartTime) || !got.TimeWindow.EndTime.Equal(inv.TimeWindow.EndTime) {
		t.Errorf("TimeWindow mismatch: %+v vs %+v", got.TimeWindow, inv.TimeWindow)
	}
	if got.Target.Pod != inv.Target.Pod || got.Target.Namespace != inv.Target.Namespace {
		t.Errorf("Target mismatch: %+v vs %+v", got.Target, inv.Target)
	}
	if len(got.Evidence.Logs.Entries) != 1 || got.Evidence.Logs.Entries[0].Message != "boom" {
		t.Errorf("Evidence.Logs mismatch: %+v", got.Evidence.Logs)
	}
	if got.Analysis.Features.Family != inv.Analysis.Features.Family {
		t.Errorf("Family mismatch: %v vs %v", got.Analysis.Features.Family, inv.Analysis.Features.Family)
	}
	if len(got.Errors) != 1 || got.Errors[0] != "aws:not_configured" {
		t.Errorf("Errors mismatch: %v", got.Errors)
	}

	// Second round-trip must be byte-identical (determinism).
	data2, err := ToJSON(got, ModeFull)
	if err != nil {
		t.Fatalf("second ToJSON() error = %v", err)
	}
	var a, b map[string]interface{}
	if err := json.Unmarshal(data, &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data2, &b); err != nil {
		t.Fatal(err)
	}
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		t.Errorf("round-trip not deterministic:\n%s\nvs\n%s", aj, bj)
	}
}

// TestToJSON_AnalysisModeOmitsRawEvidence covers the "analysis" projection
// used by the chat rerun tool: raw evidence arrays are omitted.
func TestToJSON_AnalysisModeOmitsRawEvidence(t *testing.T) {
	inv := sampleInvestigation()

	data, err := ToJSON(inv, ModeAnalysis)
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	evidence, ok := raw["evidence"].(map[string]interface{})
	if !ok {
		t.Fatalf("evidence not found or wrong shape: %v", raw["evidence"])
	}
	if _, hasEntries := evidence["entries"]; hasEntries {
		t.Error("analysis projection should not carry raw log entries")
	}
	logs, ok := evidence["logs"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected logs summary, got %v", evidence["logs"])
	}
	if logs["status"] != "ok" {
		t.Errorf("logs.status = %v, want ok", logs["status"])
	}
	if logs["count"].(float64) != 1 {
		t.Errorf("logs.count = %v, want 1", logs["count"])
	}
}
