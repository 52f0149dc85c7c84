package collectors

import (
	"context"
	"regexp"
	"strings"

	"github.com/sreagent/investigator/pkg/core"
	"github.com/sreagent/investigator/pkg/providers/logs"
	"github.com/sreagent/investigator/pkg/providers/scm"
)

// historicalPodPatterns are tried in order against alert annotations to
// recover a pod name once the K8s API reports "not found" (§4.2).
var historicalPodPatterns = []*regexp.Regexp{
	regexp.MustCompile(`pod:\s*([\w.-]+)`),
	regexp.MustCompile(`Pod\s+([\w.-]+)`),
	regexp.MustCompile("Kubernetes pod `([\\w.-]+)`"),
}

// HistoricalFallback activates when the target pod can no longer be found
// (common for Jobs with a TTL): it marks historical_mode, re-anchors the
// time window to alert.started_at, recovers a pod name from annotations,
// and queries logs by regex against the stripped-suffix prefix.
func HistoricalFallback(ctx context.Context, inv *core.Investigation, deps Deps) error {
	inv.Meta["historical_mode"] = true

	if startedAt, ok := inv.Alert.ParseStartsAt(); ok && inv.TimeWindow.EndTime.After(startedAt) {
		dur := inv.TimeWindow.Duration()
		inv.TimeWindow.EndTime = startedAt
		inv.TimeWindow.StartTime = startedAt.Add(-dur)
	}

	podName := extractHistoricalPodName(inv.Alert.Annotations)
	if podName == "" {
		inv.AddError("historical", "pod_name_not_recoverable")
		return nil
	}
	inv.Target.Pod = podName

	if deps.Logs == nil {
		inv.Evidence.SetLogsResult(core.LogsEvidence{Status: core.LogStatusUnavailable, Reason: "not_configured"})
		return nil
	}

	stripped := scm.StripWorkloadSuffix(scm.CleanWorkloadName(podName))
	result := deps.Logs.Fetch(ctx, logs.FetchRequest{
		Pod:       "^" + stripped + "-.*",
		Namespace: inv.Target.Namespace,
		Start:     inv.TimeWindow.StartTime,
		End:       inv.TimeWindow.EndTime,
		Limit:     400,
		UseRegex:  true,
	})
	inv.Evidence.SetLogsResult(logs.ToEvidence(result))
	return nil
}

// extractHistoricalPodName tries each annotation value against the ordered
// regex list, accepting only candidates with length > 3 and a hyphen.
func extractHistoricalPodName(annotations map[string]string) string {
	for _, pattern := range historicalPodPatterns {
		for _, value := range annotations {
			if m := pattern.FindStringSubmatch(value); len(m) == 2 {
				candidate := m[1]
				if len(candidate) > 3 && strings.Contains(candidate, "-") {
					return candidate
				}
			}
		}
	}
	return ""
}
