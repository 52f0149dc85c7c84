package pipeline

import "strings"

// shouldIgnorePodLabelForJobs reports whether a Job-originated alert's pod
// label should be dropped (§4.1 step 1): KubeJobFailed/JobFailed alerts
// carry the scrape pod (kube-state-metrics), not the Job's actual pod,
// which the job_failure collector resolves itself via a job-name label
// selector.
func shouldIgnorePodLabelForJobs(labels map[string]string) bool {
	alertName := strings.ToLower(labels["alertname"])
	_, hasJobName := labels["job_name"]
	return hasJobName && (alertName == "kubejobfailed" || alertName == "jobfailed")
}

// extractTargetContainer recovers the incident's target container name from
// alert labels, filtering out scrape-side pseudo-containers such as the
// kube-state-metrics container on KSM-driven alerts (§4.1 step 1).
func extractTargetContainer(labels map[string]string) string {
	c := strings.TrimSpace(labels["container"])
	if c == "" {
		c = strings.TrimSpace(labels["container_name"])
	}
	if c == "" {
		return ""
	}
	lower := strings.ToLower(c)
	if lower == "pod" {
		return ""
	}
	if lower == "kube-state-metrics" && strings.ToLower(labels["job"]) == "kube-state-metrics" {
		return ""
	}
	return c
}
