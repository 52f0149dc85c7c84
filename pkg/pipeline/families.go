package pipeline

import (
	"strings"

	"github.com/sreagent/investigator/pkg/core"
)

// familySpec is one entry in the canonical family registry: an alert
// matches by playbook hint (exact) or by any substring appearing in
// alertname+playbook_hint (§4.1 step 3).
type familySpec struct {
	family          core.Family
	matchSubstrings []string
	matchPlaybooks  []string
}

// familyRegistry is checked in declaration order; the first match wins.
// Ordering is significant only in that more specific families are listed
// before "generic" falls through.
var familyRegistry = []familySpec{
	{core.FamilyCrashloop, []string{"crashloop"}, []string{"crashloop"}},
	{core.FamilyCPUThrottling, []string{"throttl", "cputhrottl"}, []string{"cpu_throttling"}},
	{core.FamilyPodNotHealthy, []string{"podnothealthy", "kubernetespodnothealthy"}, []string{"pod_not_healthy"}},
	{core.FamilyHTTP5xx, []string{"5xx", "http5xx"}, []string{"http_5xx"}},
	{core.FamilyOOMKilled, []string{"oom", "oomkiller", "oomkilled"}, []string{"oom_killer"}},
	{core.FamilyMemoryPressure, []string{"memorypressure", "memory_pressure"}, []string{"memory_pressure"}},
	{core.FamilyTargetDown, []string{"targetdown"}, nil},
	{core.FamilyJobFailed, []string{"jobfailed", "kubejobfailed"}, []string{"job_failure"}},
	{core.FamilyK8sRolloutHealth, []string{"replicasmismatch", "rolloutstuck", "deploymentreplicas"}, nil},
	{core.FamilyObservabilityPipeline, []string{"alertingruleserror", "recordingrulesnodata", "rowsrejectedoningestion", "toomanylogs"}, nil},
	{core.FamilyMeta, []string{"infoinhibitor"}, nil},
}

// playbookHint maps an alertname to the playbook keyword it would route to,
// used as an extra family-detection signal (§4.1 step 3) since alertnames
// don't always carry their family as a literal substring.
func playbookHint(alertName string) string {
	lowered := strings.ToLower(alertName)
	switch {
	case strings.Contains(lowered, "crashloop"):
		return "crashloop"
	case strings.Contains(lowered, "throttl"):
		return "cpu_throttling"
	case strings.Contains(lowered, "podnothealthy"):
		return "pod_not_healthy"
	case strings.Contains(lowered, "5xx"):
		return "http_5xx"
	case strings.Contains(lowered, "oom"):
		return "oom_killer"
	case strings.Contains(lowered, "memorypressure"):
		return "memory_pressure"
	default:
		return ""
	}
}

// detectFamily matches alertname+hint against familyRegistry (§4.1 step 3).
// A playbook-exact match on the hint is checked across every family before
// any substring matching, so a hinted alert isn't miscategorized by an
// incidental substring belonging to an earlier, unrelated family.
func detectFamily(labels map[string]string, hint string) core.Family {
	alertName := strings.ToLower(labels["alertname"])
	hint = strings.ToLower(hint)
	haystack := alertName + " " + hint

	if hint != "" {
		for _, spec := range familyRegistry {
			for _, pb := range spec.matchPlaybooks {
				if strings.ToLower(pb) == hint {
					return spec.family
				}
			}
		}
	}
	for _, spec := range familyRegistry {
		for _, sub := range spec.matchSubstrings {
			if strings.Contains(haystack, sub) {
				return spec.family
			}
		}
	}
	return core.FamilyGeneric
}

// deriveTargetType classifies the incident's scope from alert labels
// (§4.1 step 4): a concrete pod+namespace wins outright, otherwise the
// best-effort label cascade service -> node -> cluster -> unknown applies.
func deriveTargetType(labels map[string]string, pod, namespace string) core.TargetType {
	if pod != "" && namespace != "" && pod != "Unknown" && namespace != "Unknown" {
		return core.TargetPod
	}
	if labels["service"] != "" || labels["kubernetes_service_name"] != "" {
		return core.TargetService
	}
	if labels["instance"] != "" {
		return core.TargetNode
	}
	if labels["cluster"] != "" {
		return core.TargetCluster
	}
	return core.TargetUnknown
}
