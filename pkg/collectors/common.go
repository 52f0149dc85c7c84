package collectors

import (
	"context"
	"fmt"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"

	"github.com/sreagent/investigator/pkg/core"
	"github.com/sreagent/investigator/pkg/providers/k8s"
)

// resolvePodName returns the pod to act on: inv.Target.Pod directly, unless
// the target is a Job, in which case it lists pods by the
// "job-name=<workload>" selector and picks the most recently created one
// (§4.1 ordering note, §4.4 k8s.pod_context Job-resolution rule).
func resolvePodName(ctx context.Context, client k8s.Client, inv *core.Investigation) (string, error) {
	if inv.Target.WorkloadKind != "Job" {
		return inv.Target.Pod, nil
	}
	workload := inv.Target.WorkloadName
	if workload == "" {
		workload = inv.Target.Job
	}
	if workload == "" {
		return inv.Target.Pod, nil
	}

	pods, err := client.ListPodsWithLabel(ctx, inv.Target.Namespace, fmt.Sprintf("job-name=%s", workload))
	if err != nil {
		return "", err
	}
	if len(pods) == 0 {
		return "", fmt.Errorf("not_found")
	}
	newest := newestPod(pods)
	return newest.Name, nil
}

func newestPod(pods []corev1.Pod) corev1.Pod {
	sort.Slice(pods, func(i, j int) bool {
		return pods[i].CreationTimestamp.After(pods[j].CreationTimestamp.Time)
	})
	return pods[0]
}

// podInfoMap projects the subset of corev1.Pod the k8s evidence slot needs.
func podInfoMap(pod *corev1.Pod) map[string]interface{} {
	return map[string]interface{}{
		"name":       pod.Name,
		"namespace":  pod.Namespace,
		"phase":      string(pod.Status.Phase),
		"node":       pod.Spec.NodeName,
		"labels":     pod.Labels,
		"containers": containerImages(pod),
		"start_time": podStartTime(pod),
	}
}

func containerImages(pod *corev1.Pod) []string {
	images := make([]string, 0, len(pod.Spec.Containers))
	for _, c := range pod.Spec.Containers {
		images = append(images, c.Image)
	}
	return images
}

func podStartTime(pod *corev1.Pod) string {
	if pod.Status.StartTime == nil {
		return ""
	}
	return pod.Status.StartTime.Format("2006-01-02T15:04:05Z07:00")
}

func podConditions(pod *corev1.Pod) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(pod.Status.Conditions))
	for _, cond := range pod.Status.Conditions {
		out = append(out, map[string]interface{}{
			"type":    string(cond.Type),
			"status":  string(cond.Status),
			"reason":  cond.Reason,
			"message": cond.Message,
		})
	}
	return out
}

func podEventsMaps(events []corev1.Event) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(events))
	for _, e := range events {
		out = append(out, map[string]interface{}{
			"reason":  e.Reason,
			"message": e.Message,
			"type":    e.Type,
			"count":   e.Count,
			"time":    e.LastTimestamp.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}

// eventReasons extracts the "reason" field of each event map, preserving order.
func eventReasons(events []map[string]interface{}) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		if r, ok := e["reason"].(string); ok && r != "" {
			out = append(out, r)
		}
	}
	return out
}

// scanProbeFailure classifies the pod's probe failure type by scanning event
// messages for the conventional kubelet substrings (§4.2 crashloop collector).
func scanProbeFailure(events []map[string]interface{}) string {
	for _, e := range events {
		msg, _ := e["message"].(string)
		switch {
		case strings.Contains(msg, "Liveness probe failed"):
			return "liveness"
		case strings.Contains(msg, "Readiness probe failed"):
			return "readiness"
		}
	}
	return "none"
}

// lastTerminatedContainer returns the name and LastTerminationState.Terminated
// of the first container with a non-nil terminated state, if any.
func lastTerminatedContainer(pod *corev1.Pod) (string, *corev1.ContainerStateTerminated) {
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.LastTerminationState.Terminated != nil {
			return cs.Name, cs.LastTerminationState.Terminated
		}
	}
	return "", nil
}

func crashDurationSeconds(term *corev1.ContainerStateTerminated) *float64 {
	if term == nil || term.FinishedAt.IsZero() || term.StartedAt.IsZero() {
		return nil
	}
	d := term.FinishedAt.Sub(term.StartedAt.Time).Seconds()
	return &d
}

// terminatedContainerMap projects a terminated container's exit code, reason,
// and name into the shape pkg/analysis.DeriveFeatures reads back out of
// PodInfo["last_terminated"] — the crashloop decision table's
// highest-precedence inputs (§4.6: exit_code=137 or reason=OOMKilled,
// exit_code=0 with a liveness probe failure, the exit_code=1 rules).
func terminatedContainerMap(container string, term *corev1.ContainerStateTerminated) map[string]interface{} {
	if term == nil {
		return nil
	}
	return map[string]interface{}{
		"container":   container,
		"reason":      term.Reason,
		"exit_code":   term.ExitCode,
		"finished_at": term.FinishedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
