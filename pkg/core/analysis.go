package core

// Family is the canonical incident classification set (§4.1 step 3).
type Family string

const (
	FamilyCrashloop              Family = "crashloop"
	FamilyCPUThrottling          Family = "cpu_throttling"
	FamilyPodNotHealthy          Family = "pod_not_healthy"
	FamilyHTTP5xx                Family = "http_5xx"
	FamilyOOMKilled              Family = "oom_killed"
	FamilyMemoryPressure         Family = "memory_pressure"
	FamilyTargetDown             Family = "target_down"
	FamilyJobFailed              Family = "job_failed"
	FamilyK8sRolloutHealth       Family = "k8s_rollout_health"
	FamilyObservabilityPipeline  Family = "observability_pipeline"
	FamilyMeta                   Family = "meta"
	FamilyGeneric                Family = "generic"
)

// ContainerWaitingSummary summarizes one container's waiting state.
type ContainerWaitingSummary struct {
	Container string `json:"container"`
	Reason    string `json:"reason"`
}

// ContainerTerminatedSummary summarizes one container's last-terminated state.
type ContainerTerminatedSummary struct {
	Container  string `json:"container"`
	ExitCode   int32  `json:"exit_code"`
	Reason     string `json:"reason"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// DerivedFeatures is the deterministic feature record computed from Evidence (§4.6).
type DerivedFeatures struct {
	Family               Family                       `json:"family"`
	PodPhase             string                       `json:"pod_phase,omitempty"`
	Ready                *bool                        `json:"ready,omitempty"`
	WaitingReason         string                       `json:"waiting_reason,omitempty"`
	ContainersWaiting     []ContainerWaitingSummary    `json:"containers_waiting,omitempty"`
	ContainersTerminated  []ContainerTerminatedSummary `json:"containers_terminated,omitempty"`
	RecentEventReasons    []string                     `json:"recent_event_reasons,omitempty"`
	RestartRate5mMax      float64                      `json:"restart_rate_5m_max,omitempty"`
	HTTP5xxCount          float64                      `json:"http_5xx_count,omitempty"`
	HTTP5xxRate           float64                      `json:"http_5xx_rate,omitempty"`
	LogsStatus            LogStatus                    `json:"logs_status,omitempty"`

	ProbeFailureType     string   `json:"probe_failure_type,omitempty"`
	CrashDurationSeconds *float64 `json:"crash_duration_seconds,omitempty"`
	LastExitCode         *int32   `json:"last_exit_code,omitempty"`
	LastTerminatedReason string   `json:"last_terminated_reason,omitempty"`
	ParsedErrorMessages  []string `json:"parsed_error_messages,omitempty"`
}

// Scores is the scored triage output (§4.6), both bounded in [0,100].
type Scores struct {
	ImpactScore     float64 `json:"impact_score"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// Verdict is the deterministic headline classification for an investigation.
type Verdict struct {
	Classification string `json:"classification"`
	OneLiner       string `json:"one_liner"`
}

// Decision is the family-specific triage decision (label + bullets).
type Decision struct {
	Label     string   `json:"label"`
	Why       []string `json:"why"`
	NextSteps []string `json:"next_steps"`
}

// FamilyEnrichment is an alias of Decision used for the family enrichment pass
// (pkg/analysis/enrichment.go); analysis.Run stores the same enrichment value
// in both Analysis.Decision and Analysis.Enrichment.
type FamilyEnrichment = Decision

// Hypothesis is one diagnostic-module suggestion.
type Hypothesis struct {
	Label          string   `json:"label"`
	Confidence     float64  `json:"confidence"`
	SuggestedTests []string `json:"suggested_tests,omitempty"`
}

// LLMInsights is the additive natural-language enrichment result (§7).
type LLMInsights struct {
	Status  string `json:"status"` // ok | unavailable | rate_limited | error
	Summary string `json:"summary,omitempty"`
}

// NoiseVerdict classifies whether an alert is likely low-signal (§4.1 step 9).
// Computed for every investigation, pod-scoped or not.
type NoiseVerdict struct {
	Classification string   `json:"classification"` // noisy | actionable | unknown
	Reasons        []string `json:"reasons,omitempty"`
}

// ChangeAnalysis flags a recent deploy/commit that may correlate with the
// incident (§4.1 step 9), computed only when the target resolves to a
// concrete pod.
type ChangeAnalysis struct {
	RecentDeploy bool     `json:"recent_deploy"`
	DeployedAt   string   `json:"deployed_at,omitempty"`
	CommitSHA    string   `json:"commit_sha,omitempty"`
	Reasons      []string `json:"reasons,omitempty"`
}

// CapacityAnalysis flags a pod nearing resource exhaustion (§4.1 step 9),
// computed only when the target resolves to a concrete pod.
type CapacityAnalysis struct {
	NearCPULimit    bool     `json:"near_cpu_limit"`
	NearMemoryLimit bool     `json:"near_memory_limit"`
	Reasons         []string `json:"reasons,omitempty"`
}

// Analysis groups all deterministic and additive analysis outputs.
type Analysis struct {
	Features   DerivedFeatures    `json:"features"`
	Scores     Scores             `json:"scores"`
	Verdict    Verdict            `json:"verdict"`
	Decision   Decision           `json:"decision"`
	Enrichment FamilyEnrichment   `json:"enrichment"`
	Hypotheses []Hypothesis       `json:"hypotheses,omitempty"`
	Noise      NoiseVerdict       `json:"noise"`
	Changes    ChangeAnalysis     `json:"changes"`
	Capacity   CapacityAnalysis   `json:"capacity"`
	LLM        *LLMInsights       `json:"llm,omitempty"`
}
