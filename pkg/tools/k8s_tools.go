package tools

import (
	"context"
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"

	"github.com/sreagent/investigator/pkg/core"
)

// resolveScopedPod mirrors the pipeline's Job pod-resolution rule (§4.1,
// §4.4): a Job target has no pod of its own, so the tool picks the newest
// pod carrying "job-name=<workload>".
func resolveScopedPod(ctx context.Context, req Request, deps Deps, pod, namespace, workloadKind, workloadName string) (string, string) {
	if pod != "" || workloadKind != "Job" || deps.K8s == nil {
		return pod, ""
	}
	if workloadName == "" {
		return pod, "k8s_error:no_workload"
	}
	pods, err := deps.K8s.ListPodsWithLabel(ctx, namespace, "job-name="+workloadName)
	if err != nil {
		return "", "k8s_error:list_pods:" + err.Error()
	}
	if len(pods) == 0 {
		return "", "k8s_error:not_found"
	}
	sort.Slice(pods, func(i, j int) bool {
		return pods[i].CreationTimestamp.After(pods[j].CreationTimestamp.Time)
	})
	return pods[0].Name, ""
}

func toolK8sPodContext(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.K8s == nil {
		return errResult("k8s_error:not_configured")
	}
	namespace := argString(req.Args, "namespace", targetNamespace(req.Investigation))
	pod := argString(req.Args, "pod", targetPod(req.Investigation))
	if namespace == "" {
		return errResult("namespace_required")
	}
	resolved, scopeErr := resolveScopedPod(ctx, req, deps, pod, namespace, targetWorkloadKind(req.Investigation), targetWorkloadName(req.Investigation))
	if scopeErr != "" {
		return errResult(scopeErr)
	}
	if resolved == "" {
		return errResult("missing_required_args:pod")
	}

	p, err := deps.K8s.GetPod(ctx, namespace, resolved)
	if err != nil {
		return errResult("k8s_error:get_pod:" + err.Error())
	}
	events, err := deps.K8s.GetEvents(ctx, namespace, "Pod", resolved, 20)
	if err != nil {
		return errResult("k8s_error:get_events:" + err.Error())
	}
	return okResult(map[string]interface{}{
		"pod_info": k8sPodInfoMap(p),
		"events":   k8sEventMaps(events),
	})
}

func toolK8sRolloutStatus(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.K8s == nil {
		return errResult("k8s_error:not_configured")
	}
	namespace := argString(req.Args, "namespace", targetNamespace(req.Investigation))
	kind := argString(req.Args, "kind", targetWorkloadKind(req.Investigation))
	name := argString(req.Args, "name", targetWorkloadName(req.Investigation))
	if code := missingArgs(map[string]interface{}{"namespace": namespace, "kind": kind, "name": name}, "namespace", "kind", "name"); code != "" {
		return errResult(code)
	}
	status, err := deps.K8s.GetRolloutStatus(ctx, namespace, kind, name)
	if err != nil {
		return errResult("k8s_error:rollout_status:" + err.Error())
	}
	return okResult(status)
}

func toolK8sEvents(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.K8s == nil {
		return errResult("k8s_error:not_configured")
	}
	namespace := argString(req.Args, "namespace", targetNamespace(req.Investigation))
	if namespace == "" {
		return errResult("namespace_required")
	}
	resourceType := argString(req.Args, "resource_type", "Pod")
	resourceName := argString(req.Args, "resource_name", targetPod(req.Investigation))
	if resourceName == "" {
		resourceName = targetWorkloadName(req.Investigation)
	}
	limit := int64(clampInt(argInt(req.Args, "limit", 20), 5, 100))

	events, err := deps.K8s.GetEvents(ctx, namespace, resourceType, resourceName, limit)
	if err != nil {
		return errResult("k8s_error:get_events:" + err.Error())
	}
	return okResult(map[string]interface{}{
		"namespace":     namespace,
		"resource_type": resourceType,
		"resource_name": resourceName,
		"events":        k8sEventMaps(events),
	})
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func k8sPodInfoMap(pod *corev1.Pod) map[string]interface{} {
	if pod == nil {
		return nil
	}
	return map[string]interface{}{
		"name":      pod.Name,
		"namespace": pod.Namespace,
		"phase":     string(pod.Status.Phase),
		"node":      pod.Spec.NodeName,
		"labels":    pod.Labels,
	}
}

func k8sEventMaps(events []corev1.Event) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(events))
	for _, e := range events {
		out = append(out, map[string]interface{}{
			"reason":  e.Reason,
			"message": e.Message,
			"type":    e.Type,
			"time":    fmt.Sprintf("%v", e.LastTimestamp),
		})
	}
	return out
}

func targetNamespace(inv *core.Investigation) string {
	if inv == nil {
		return ""
	}
	return inv.Target.Namespace
}

func targetPod(inv *core.Investigation) string {
	if inv == nil {
		return ""
	}
	return inv.Target.Pod
}

func targetWorkloadKind(inv *core.Investigation) string {
	if inv == nil {
		return ""
	}
	return inv.Target.WorkloadKind
}

func targetWorkloadName(inv *core.Investigation) string {
	if inv == nil {
		return ""
	}
	return inv.Target.WorkloadName
}
