package core

import "time"

// LogStatus is the collection status of the logs evidence slot.
type LogStatus string

const (
	LogStatusOK          LogStatus = "ok"
	LogStatusEmpty       LogStatus = "empty"
	LogStatusUnavailable LogStatus = "unavailable"
)

// LogsBackend identifies which logs dialect served a query.
type LogsBackend string

const (
	BackendLoki        LogsBackend = "loki"
	BackendVictoriaLogs LogsBackend = "victorialogs"
)

// LogEntry is one parsed log line.
type LogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Message   string            `json:"message"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// LogsEvidence is the logs evidence slot (§4.3).
type LogsEvidence struct {
	Entries           []LogEntry  `json:"entries,omitempty"`
	Status            LogStatus   `json:"status"`
	Reason            string      `json:"reason,omitempty"`
	Backend           LogsBackend `json:"backend,omitempty"`
	QueryUsed         string      `json:"query_used,omitempty"`
	ParsedErrorPatterns []string  `json:"parsed_error_patterns,omitempty"`
}

// PreviousLogsEvidence is the crashloop collector's "previous container" log slot.
type PreviousLogsEvidence struct {
	Entries []LogEntry `json:"entries,omitempty"`
	Status  LogStatus  `json:"status"`
	Reason  string     `json:"reason,omitempty"`
}

// K8sEvidence groups pod-scoped Kubernetes object state.
type K8sEvidence struct {
	PodInfo       map[string]interface{} `json:"pod_info,omitempty"`
	PodConditions []map[string]interface{} `json:"pod_conditions,omitempty"`
	PodEvents     []map[string]interface{} `json:"pod_events,omitempty"`
	OwnerChain    map[string]interface{} `json:"owner_chain,omitempty"`
	RolloutStatus map[string]interface{} `json:"rollout_status,omitempty"`

	PreviousContainerLogs *PreviousLogsEvidence `json:"previous_container_logs,omitempty"`
	ProbeFailureType      string                `json:"probe_failure_type,omitempty"` // liveness | readiness | none
	CrashDurationSeconds  *float64              `json:"crash_duration_seconds,omitempty"`
}

// Sample is one (timestamp, value) metric point.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is one labelled metric time-series.
type Series struct {
	Labels  map[string]string `json:"labels"`
	Samples []Sample          `json:"samples"`
}

// MetricsEvidence groups named per-signal metric sub-records.
type MetricsEvidence struct {
	CPUThrottling []Series `json:"cpu_throttling,omitempty"`
	CPUUsage      []Series `json:"cpu_usage,omitempty"`
	MemoryUsage   []Series `json:"memory_usage,omitempty"`
	Restarts      []Series `json:"restarts,omitempty"`
	PodPhase      []Series `json:"pod_phase,omitempty"`
	HTTP5xx       []Series `json:"http_5xx,omitempty"`
}

// CloudTrailEvent is one normalized CloudTrail event.
type CloudTrailEvent struct {
	EventTime time.Time              `json:"event_time"`
	EventName string                 `json:"event_name"`
	Category  string                 `json:"category"`
	Username  string                 `json:"username,omitempty"`
	Resources []string               `json:"resources,omitempty"`
	Raw       map[string]interface{} `json:"raw,omitempty"`
}

// CloudTrail category constants used by the grouped projection (§5).
const (
	CategorySecurityGroup = "security_group"
	CategoryAutoScaling   = "auto_scaling"
	CategoryEC2Lifecycle  = "ec2_lifecycle"
	CategoryIAMPolicy     = "iam_policy"
	CategoryStorage       = "storage"
	CategoryDatabase      = "database"
	CategoryNetworking    = "networking"
	CategoryLoadBalancer  = "load_balancer"
)

// AWSEvidence groups cloud-provider resource health and CloudTrail evidence.
type AWSEvidence struct {
	EC2Instances map[string]interface{} `json:"ec2_instances,omitempty"`
	EBSVolumes   map[string]interface{} `json:"ebs_volumes,omitempty"`
	ELBHealth    map[string]interface{} `json:"elb_health,omitempty"`
	RDSInstances map[string]interface{} `json:"rds_instances,omitempty"`
	ECRImages    map[string]interface{} `json:"ecr_images,omitempty"`
	Networking   map[string]interface{} `json:"networking,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`

	CloudTrailEvents   []CloudTrailEvent            `json:"cloudtrail_events,omitempty"`
	CloudTrailGrouped  map[string][]CloudTrailEvent  `json:"cloudtrail_grouped,omitempty"`
	CloudTrailMetadata map[string]interface{}        `json:"cloudtrail_metadata,omitempty"`
}

// GitHubEvidence groups SCM recent-activity evidence.
type GitHubEvidence struct {
	Repo                string                   `json:"repo,omitempty"`
	RepoDiscoveryMethod string                   `json:"repo_discovery_method,omitempty"`
	IsThirdParty        bool                     `json:"is_third_party,omitempty"`
	RecentCommits       []map[string]interface{} `json:"recent_commits,omitempty"`
	WorkflowRuns        []map[string]interface{} `json:"workflow_runs,omitempty"`
	FailedWorkflowLogs  string                   `json:"failed_workflow_logs,omitempty"`
	Readme              string                   `json:"readme,omitempty"`
	Docs                []string                 `json:"docs,omitempty"`
}

// Evidence is the full bundle of independent, optional evidence slots (§3).
type Evidence struct {
	Logs    LogsEvidence    `json:"logs"`
	K8s     K8sEvidence     `json:"k8s"`
	Metrics MetricsEvidence `json:"metrics"`
	AWS     AWSEvidence     `json:"aws"`
	GitHub  GitHubEvidence  `json:"github"`
}

// logStatusRank orders statuses for the monotonicity check (I1): ok outranks
// empty/unavailable, so a slot already "ok" is never downgraded.
func logStatusRank(s LogStatus) int {
	switch s {
	case LogStatusOK:
		return 2
	case LogStatusEmpty:
		return 1
	case LogStatusUnavailable:
		return 1
	default:
		return 0
	}
}

// SetLogsResult applies a collector's logs result honoring the monotonic-slot
// invariant (I1): once Status is "ok", a later write cannot downgrade it.
func (e *Evidence) SetLogsResult(next LogsEvidence) {
	if logStatusRank(next.Status) < logStatusRank(e.Logs.Status) {
		return
	}
	e.Logs = next
}
