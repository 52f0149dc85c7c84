package core

// TargetType classifies the scope of the incident target.
type TargetType string

const (
	TargetPod     TargetType = "pod"
	TargetService TargetType = "service"
	TargetNode    TargetType = "node"
	TargetCluster TargetType = "cluster"
	TargetUnknown TargetType = "unknown"
)

// TargetRef identifies the incident's subject, filled progressively by
// collectors. Once a non-null field is written by a collector it is not
// overwritten except by a higher-trust source (e.g. owner-chain over labels).
type TargetRef struct {
	Cluster       string     `json:"cluster,omitempty"`
	Namespace     string     `json:"namespace,omitempty"`
	Pod           string     `json:"pod,omitempty"`
	Container     string     `json:"container,omitempty"`
	WorkloadKind  string     `json:"workload_kind,omitempty"`
	WorkloadName  string     `json:"workload_name,omitempty"`
	Service       string     `json:"service,omitempty"`
	Job           string     `json:"job,omitempty"`
	Instance      string     `json:"instance,omitempty"`
	Team          string     `json:"team,omitempty"`
	Environment   string     `json:"environment,omitempty"`
	Playbook      string     `json:"playbook,omitempty"`
	TargetType    TargetType `json:"target_type,omitempty"`
}

// HasPodTarget reports whether the target resolves to a concrete, non-sentinel pod.
func (t *TargetRef) HasPodTarget() bool {
	if t == nil {
		return false
	}
	return t.Pod != "" && t.Namespace != "" && t.Pod != "Unknown" && t.Namespace != "Unknown"
}
