package collectors

import (
	"context"

	"github.com/sreagent/investigator/pkg/core"
)

// Crashloop augments the pod baseline with previous-container logs,
// probe-failure classification, and crash-duration computation (§4.2).
func Crashloop(ctx context.Context, inv *core.Investigation, deps Deps) error {
	if err := PodBaseline(ctx, inv, deps); err != nil {
		return err
	}
	if deps.K8s == nil {
		return nil
	}

	inv.Evidence.K8s.ProbeFailureType = scanProbeFailure(inv.Evidence.K8s.PodEvents)

	pod, err := deps.K8s.GetPod(ctx, inv.Target.Namespace, inv.Target.Pod)
	if err != nil {
		inv.AddError("k8s", err.Error())
		return nil
	}
	terminatedName, term := lastTerminatedContainer(pod)
	inv.Evidence.K8s.CrashDurationSeconds = crashDurationSeconds(term)
	if last := terminatedContainerMap(terminatedName, term); last != nil {
		if inv.Evidence.K8s.PodInfo == nil {
			inv.Evidence.K8s.PodInfo = map[string]interface{}{}
		}
		inv.Evidence.K8s.PodInfo["last_terminated"] = last
	}

	container := inv.Target.Container
	if container == "" && len(pod.Spec.Containers) > 0 {
		container = pod.Spec.Containers[0].Name
	}
	lines, err := deps.K8s.GetPreviousContainerLogs(ctx, inv.Target.Namespace, inv.Target.Pod, container, 200)
	if err != nil {
		inv.AddError("k8s", err.Error())
		return nil
	}
	entries := make([]core.LogEntry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, core.LogEntry{Message: line})
	}
	status := core.LogStatusOK
	if len(entries) == 0 {
		status = core.LogStatusEmpty
	}
	inv.Evidence.K8s.PreviousContainerLogs = &core.PreviousLogsEvidence{
		Entries: entries,
		Status:  status,
	}
	return nil
}
