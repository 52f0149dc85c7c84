package collectors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sreagent/investigator/pkg/core"
	"github.com/sreagent/investigator/pkg/providers/logs"
	"github.com/sreagent/investigator/pkg/providers/metrics"
	"github.com/sreagent/investigator/pkg/providers/scm"
)

// errPodNotFound is the sentinel gatherPodState returns when the K8s API
// reports the target pod doesn't exist, triggering HistoricalFallback
// (§4.2: common for Jobs whose pod was already garbage-collected by its TTL).
var errPodNotFound = errors.New("pod_not_found")

// PodBaseline is the catch-all collector for pod-scoped alerts (§4.2): pod
// info/conditions/events/owner-chain/rollout-status, baseline metric series,
// and a bounded tail of recent logs. Falls through to HistoricalFallback
// when the K8s API reports the pod no longer exists. Returns an error when
// none of its providers is configured, so it does not count as having
// collected anything.
func PodBaseline(ctx context.Context, inv *core.Investigation, deps Deps) error {
	if deps.K8s == nil {
		inv.AddError("k8s", "unavailable")
	} else if err := gatherPodState(ctx, inv, deps); err != nil {
		if errors.Is(err, errPodNotFound) {
			return HistoricalFallback(ctx, inv, deps)
		}
		inv.AddError("k8s", err.Error())
	}

	if deps.Metrics != nil {
		gatherBaselineMetrics(ctx, inv, deps)
	} else {
		inv.AddError("metrics", "unavailable")
	}

	if deps.Logs != nil {
		gatherLogs(ctx, inv, deps, false)
	} else {
		inv.Evidence.SetLogsResult(core.LogsEvidence{Status: core.LogStatusUnavailable, Reason: "not_configured"})
	}

	if deps.K8s == nil && deps.Metrics == nil && deps.Logs == nil {
		return errors.New("no_providers")
	}
	return nil
}

func gatherPodState(ctx context.Context, inv *core.Investigation, deps Deps) error {
	podName, err := resolvePodName(ctx, deps.K8s, inv)
	if err != nil {
		return fmt.Errorf("pod_resolution:%w", err)
	}
	if podName == "" {
		return fmt.Errorf("no_pod_target")
	}
	inv.Target.Pod = podName

	pod, err := deps.K8s.GetPod(ctx, inv.Target.Namespace, podName)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return errPodNotFound
		}
		return fmt.Errorf("get_pod:%w", err)
	}
	inv.Evidence.K8s.PodInfo = podInfoMap(pod)
	inv.Evidence.K8s.PodConditions = podConditions(pod)

	events, err := deps.K8s.GetEvents(ctx, inv.Target.Namespace, "Pod", podName, 50)
	if err == nil {
		inv.Evidence.K8s.PodEvents = podEventsMaps(events)
	}

	chain, err := deps.K8s.GetOwnerChain(ctx, inv.Target.Namespace, podName)
	if err == nil {
		inv.Evidence.K8s.OwnerChain = chain
		if kind, _ := chain["workload_kind"].(string); kind != "" {
			inv.Target.WorkloadKind = kind
		}
		if name, _ := chain["workload_name"].(string); name != "" {
			inv.Target.WorkloadName = scm.CleanWorkloadName(name)
		}
	}

	if inv.Target.WorkloadKind != "" && inv.Target.WorkloadName != "" {
		rollout, err := deps.K8s.GetRolloutStatus(ctx, inv.Target.Namespace, inv.Target.WorkloadKind, inv.Target.WorkloadName)
		if err == nil {
			inv.Evidence.K8s.RolloutStatus = rollout
		}
	}
	return nil
}

func gatherBaselineMetrics(ctx context.Context, inv *core.Investigation, deps Deps) {
	ns, pod := inv.Target.Namespace, inv.Target.Pod
	start, end := inv.TimeWindow.StartTime, inv.TimeWindow.EndTime

	type slot struct {
		query string
		set   func([]core.Series)
	}
	slots := []slot{
		{metrics.CPUUsageQuery(ns, pod), func(s []core.Series) { inv.Evidence.Metrics.CPUUsage = s }},
		{metrics.CPUThrottlingQuery(ns, pod), func(s []core.Series) { inv.Evidence.Metrics.CPUThrottling = s }},
		{metrics.MemoryUsageQuery(ns, pod), func(s []core.Series) { inv.Evidence.Metrics.MemoryUsage = s }},
		{metrics.RestartsQuery(ns, pod), func(s []core.Series) { inv.Evidence.Metrics.Restarts = s }},
		{metrics.PodPhaseQuery(ns, pod), func(s []core.Series) { inv.Evidence.Metrics.PodPhase = s }},
	}

	for _, sl := range slots {
		series, err := deps.Metrics.QueryRange(ctx, sl.query, start, end)
		if err != nil {
			inv.AddError("metrics", err.Error())
			continue
		}
		sl.set(series)
	}
}

// gatherLogs fetches a bounded recent-log tail, optionally switching to
// regex mode for the historical-fallback collector's stripped-suffix search.
func gatherLogs(ctx context.Context, inv *core.Investigation, deps Deps, useRegex bool) {
	pod := inv.Target.Pod
	result := deps.Logs.Fetch(ctx, logs.FetchRequest{
		Pod:       pod,
		Namespace: inv.Target.Namespace,
		Container: inv.Target.Container,
		Start:     inv.TimeWindow.StartTime,
		End:       inv.TimeWindow.EndTime,
		Limit:     400,
		UseRegex:  useRegex,
	})
	inv.Evidence.SetLogsResult(logs.ToEvidence(result))
}
