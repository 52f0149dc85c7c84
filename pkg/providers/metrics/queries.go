package metrics

import "fmt"

// Named PromQL builders for the baseline collector's metric slots (§4.2).
// Each targets the conventional kube-state-metrics / cAdvisor metric names.

// CPUThrottlingQuery returns the fraction of CPU periods throttled over a
// 5m window for the pod's containers.
func CPUThrottlingQuery(namespace, pod string) string {
	return fmt.Sprintf(
		`rate(container_cpu_cfs_throttled_periods_total{namespace=%q, pod=%q}[5m]) / clamp_min(rate(container_cpu_cfs_periods_total{namespace=%q, pod=%q}[5m]), 1e-9)`,
		namespace, pod, namespace, pod,
	)
}

// CPUUsageQuery returns per-container CPU usage (cores) over a 5m window.
func CPUUsageQuery(namespace, pod string) string {
	return fmt.Sprintf(`rate(container_cpu_usage_seconds_total{namespace=%q, pod=%q}[5m])`, namespace, pod)
}

// MemoryUsageQuery returns per-container working-set memory in bytes.
func MemoryUsageQuery(namespace, pod string) string {
	return fmt.Sprintf(`container_memory_working_set_bytes{namespace=%q, pod=%q}`, namespace, pod)
}

// RestartsQuery returns the cumulative restart count for the pod's containers,
// the series §4.6's crashloop enrichment suggests as a PromQL next step.
func RestartsQuery(namespace, pod string) string {
	return fmt.Sprintf(`kube_pod_container_status_restarts_total{namespace=%q, pod=%q}`, namespace, pod)
}

// PodPhaseQuery returns the pod's phase indicator series (1 for the active phase).
func PodPhaseQuery(namespace, pod string) string {
	return fmt.Sprintf(`kube_pod_status_phase{namespace=%q, pod=%q} == 1`, namespace, pod)
}

// HTTP5xxQuery returns the per-pod 5xx response rate in namespace for pods
// whose names start with workload.
func HTTP5xxQuery(namespace, workload string) string {
	return fmt.Sprintf(
		`sum by (pod) (rate(http_requests_total{namespace=%q, pod=~%q, code=~"5.."}[5m]))`,
		namespace, workload+".*",
	)
}
