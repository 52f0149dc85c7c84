// Package analysis implements the pure, deterministic passes run over a
// filled Evidence record (§4.6): feature derivation, family enrichment,
// diagnostics/hypotheses, scoring and verdict. Nothing here performs I/O;
// every function is a total, deterministic mapping from core types to core
// types, mirroring the teacher's preference for small pure packages behind
// its platform/executor orchestration layer.
package analysis

import (
	"sort"

	"github.com/sreagent/investigator/pkg/core"
)

// DeriveFeatures computes the feature record from the investigation's
// filled evidence (§4.6). It never mutates inv.Evidence.
func DeriveFeatures(inv *core.Investigation) core.DerivedFeatures {
	f := core.DerivedFeatures{
		Family:    inv.Family(),
		LogsStatus: inv.Evidence.Logs.Status,
	}

	if phase, ok := inv.Evidence.K8s.PodInfo["phase"].(string); ok {
		f.PodPhase = phase
	}

	f.Ready, f.WaitingReason = podReadiness(inv.Evidence.K8s.PodConditions)
	f.ContainersWaiting = containersWaiting(inv.Evidence.K8s.PodInfo)
	f.RecentEventReasons = eventReasonSummary(inv.Evidence.K8s.PodEvents)

	f.ProbeFailureType = inv.Evidence.K8s.ProbeFailureType
	f.CrashDurationSeconds = inv.Evidence.K8s.CrashDurationSeconds

	if term := inv.Evidence.K8s.PodInfo["last_terminated"]; term != nil {
		if m, ok := term.(map[string]interface{}); ok {
			f.ContainersTerminated = []core.ContainerTerminatedSummary{terminatedSummary(m)}
			if code, ok := m["exit_code"].(int32); ok {
				f.LastExitCode = &code
			}
			if reason, ok := m["reason"].(string); ok {
				f.LastTerminatedReason = reason
			}
		}
	}

	f.ParsedErrorMessages = inv.Evidence.Logs.ParsedErrorPatterns
	f.RestartRate5mMax = maxSeriesValue(inv.Evidence.Metrics.Restarts)
	f.HTTP5xxCount, f.HTTP5xxRate = http5xxSummary(inv.Evidence.Metrics.HTTP5xx)

	return f
}

func podReadiness(conditions []map[string]interface{}) (*bool, string) {
	for _, c := range conditions {
		t, _ := c["type"].(string)
		if t != "Ready" {
			continue
		}
		status, _ := c["status"].(string)
		ready := status == "True"
		reason, _ := c["reason"].(string)
		return &ready, reason
	}
	return nil, ""
}

func containersWaiting(podInfo map[string]interface{}) []core.ContainerWaitingSummary {
	raw, ok := podInfo["containers_waiting"].([]map[string]interface{})
	if !ok {
		return nil
	}
	out := make([]core.ContainerWaitingSummary, 0, len(raw))
	for _, c := range raw {
		name, _ := c["container"].(string)
		reason, _ := c["reason"].(string)
		out = append(out, core.ContainerWaitingSummary{Container: name, Reason: reason})
	}
	return out
}

func terminatedSummary(m map[string]interface{}) core.ContainerTerminatedSummary {
	var s core.ContainerTerminatedSummary
	s.Container, _ = m["container"].(string)
	s.Reason, _ = m["reason"].(string)
	s.FinishedAt, _ = m["finished_at"].(string)
	if code, ok := m["exit_code"].(int32); ok {
		s.ExitCode = code
	}
	return s
}

func eventReasonSummary(events []map[string]interface{}) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range events {
		reason, _ := e["reason"].(string)
		if reason == "" || seen[reason] {
			continue
		}
		seen[reason] = true
		out = append(out, reason)
	}
	sort.Strings(out)
	return out
}

func maxSeriesValue(series []core.Series) float64 {
	var max float64
	for _, s := range series {
		for _, sample := range s.Samples {
			if sample.Value > max {
				max = sample.Value
			}
		}
	}
	return max
}

func http5xxSummary(series []core.Series) (count, rate float64) {
	for _, s := range series {
		for _, sample := range s.Samples {
			count++
			rate += sample.Value
		}
	}
	if count > 0 {
		rate /= count
	}
	return count, rate
}
