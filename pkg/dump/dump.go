// Package dump implements the stable JSON projection of an Investigation
// (§6 Persisted state): a "full" mode with raw evidence arrays, and an
// "analysis" mode that omits them (used by the chat rerun tool).
package dump

import (
	"encoding/json"

	"github.com/sreagent/investigator/pkg/core"
)

// Mode selects which projection ToJSON produces.
type Mode string

const (
	ModeFull     Mode = "full"
	ModeAnalysis Mode = "analysis"
)

// analysisProjection mirrors Investigation but swaps Evidence for a
// redacted stand-in that carries only status, backend, reason and count
// fields plus has_k8s/has_aws/has_github flags, never the raw entry/series
// arrays.
type analysisProjection struct {
	Alert      core.AlertInstance     `json:"alert"`
	TimeWindow core.TimeWindow        `json:"time_window"`
	Target     core.TargetRef         `json:"target"`
	Evidence   evidenceSummary        `json:"evidence"`
	Analysis   core.Analysis          `json:"analysis"`
	Errors     []string               `json:"errors"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

type evidenceSummary struct {
	Logs struct {
		Status  core.LogStatus   `json:"status"`
		Backend core.LogsBackend `json:"backend,omitempty"`
		Reason  string           `json:"reason,omitempty"`
		Count   int              `json:"count"`
	} `json:"logs"`
	HasK8s    bool `json:"has_k8s"`
	HasAWS    bool `json:"has_aws"`
	HasGitHub bool `json:"has_github"`
}

func summarize(ev core.Evidence) evidenceSummary {
	var s evidenceSummary
	s.Logs.Status = ev.Logs.Status
	s.Logs.Backend = ev.Logs.Backend
	s.Logs.Reason = ev.Logs.Reason
	s.Logs.Count = len(ev.Logs.Entries)
	s.HasK8s = ev.K8s.PodInfo != nil || ev.K8s.OwnerChain != nil || ev.K8s.RolloutStatus != nil
	s.HasAWS = ev.AWS.Metadata != nil || len(ev.AWS.CloudTrailEvents) > 0
	s.HasGitHub = ev.GitHub.Repo != ""
	return s
}

// ToJSON serializes an Investigation using the given projection mode.
func ToJSON(inv *core.Investigation, mode Mode) ([]byte, error) {
	if mode == ModeAnalysis {
		proj := analysisProjection{
			Alert:      inv.Alert,
			TimeWindow: inv.TimeWindow,
			Target:     inv.Target,
			Evidence:   summarize(inv.Evidence),
			Analysis:   inv.Analysis,
			Errors:     inv.Errors,
			Meta:       inv.Meta,
		}
		return json.Marshal(proj)
	}
	return json.Marshal(inv)
}

// FromJSON reparses a "full" projection back into an Investigation. Only the
// full mode round-trips completely; the analysis mode is lossy by design.
func FromJSON(data []byte) (*core.Investigation, error) {
	var inv core.Investigation
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}
