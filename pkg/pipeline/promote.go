package pipeline

import "github.com/sreagent/investigator/pkg/core"

// promoteWorkloadToTarget fills target.workload_kind/workload_name from
// whichever K8s evidence slot resolved it, preferring rollout_status (a
// direct lookup by kind+name) over the owner-chain walk (§4.1 step 7). Most
// pod-scoped collectors already set these directly; this is the catch-all
// for paths that only populated the evidence slots.
func promoteWorkloadToTarget(inv *core.Investigation) {
	if inv.Target.WorkloadKind != "" && inv.Target.WorkloadName != "" {
		return
	}
	if rs := inv.Evidence.K8s.RolloutStatus; rs != nil {
		kind, _ := rs["kind"].(string)
		name, _ := rs["name"].(string)
		if kind != "" && name != "" {
			inv.Target.WorkloadKind = kind
			inv.Target.WorkloadName = name
			return
		}
	}
	if oc := inv.Evidence.K8s.OwnerChain; oc != nil {
		kind, _ := oc["workload_kind"].(string)
		name, _ := oc["workload_name"].(string)
		if kind != "" && name != "" {
			inv.Target.WorkloadKind = kind
			inv.Target.WorkloadName = name
		}
	}
}

// promoteTeamEnvToTarget fills target.team/environment by precedence: alert
// labels first (no extra I/O), then owner-chain workload labels, then pod
// labels (§4.1 step 7).
func promoteTeamEnvToTarget(inv *core.Investigation) {
	if inv.Target.Team == "" {
		inv.Target.Team = firstLabelValue(inv.Alert.Labels, "team", "owner", "squad", "app.kubernetes.io/team")
	}
	if inv.Target.Environment == "" {
		inv.Target.Environment = firstLabelValue(inv.Alert.Labels, "environment", "env", "tf_env", "app.kubernetes.io/environment")
	}
	if inv.Target.Team != "" && inv.Target.Environment != "" {
		return
	}

	var workloadLabels, podLabels map[string]string
	if oc := inv.Evidence.K8s.OwnerChain; oc != nil {
		workloadLabels, _ = oc["labels"].(map[string]string)
	}
	if podInfo := inv.Evidence.K8s.PodInfo; podInfo != nil {
		podLabels, _ = podInfo["labels"].(map[string]string)
	}

	if inv.Target.Team == "" {
		inv.Target.Team = firstMapValue(workloadLabels, podLabels, "team")
	}
	if inv.Target.Environment == "" {
		inv.Target.Environment = firstMapValue(workloadLabels, podLabels, "environment")
	}
}

func firstLabelValue(labels map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := labels[k]; v != "" {
			return v
		}
	}
	return ""
}

func firstMapValue(primary, fallback map[string]string, key string) string {
	if v := primary[key]; v != "" {
		return v
	}
	return fallback[key]
}
