// Package tools implements the chat tool runtime (§4.4): a policy-gated
// dispatcher that executes read-only (and a few proposal-only) operations
// against the same provider surface the pipeline uses, with per-tool scope
// checks, argument defaulting from the investigation, result compaction,
// and log redaction. It mirrors the teacher's pkg/platform/executor
// registry idiom, generalized from "remediation actions" to "chat tools".
package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/sreagent/investigator/pkg/authz"
	"github.com/sreagent/investigator/pkg/core"
	"github.com/sreagent/investigator/pkg/memory"
	"github.com/sreagent/investigator/pkg/providers/cloud"
	"github.com/sreagent/investigator/pkg/providers/k8s"
	"github.com/sreagent/investigator/pkg/providers/logs"
	"github.com/sreagent/investigator/pkg/providers/metrics"
	"github.com/sreagent/investigator/pkg/providers/scm"
)

// ToolResult is the dispatcher's uniform output shape.
type ToolResult struct {
	OK             bool                   `json:"ok"`
	Result         map[string]interface{} `json:"result,omitempty"`
	Error          string                 `json:"error,omitempty"`
	UpdatedAnalysis *core.Analysis        `json:"updated_analysis,omitempty"`
}

func errResult(code string) ToolResult { return ToolResult{OK: false, Error: code} }

func okResult(result map[string]interface{}) ToolResult {
	return ToolResult{OK: true, Result: result}
}

// Runner re-invokes the pipeline orchestrator for rerun.investigation,
// satisfied by *pipeline.Pipeline without tools needing to import pipeline
// (the dependency runs the other way: cmd/investigator wires a
// *pipeline.Pipeline into this field).
type Runner interface {
	RunInvestigation(ctx context.Context, alert core.AlertInstance, timeWindowExpr string) *core.Investigation
}

// Deps bundles every provider and policy collaborator a tool handler might
// need. Nil fields mean the provider is unconfigured; a handler must map
// that to a provider-scoped error code, never panic.
type Deps struct {
	K8s       k8s.Client
	Logs      *logs.Client
	Metrics   *metrics.Client
	Cloud     *cloud.Client
	SCM       *scm.Discoverer
	SCMClient *scm.Client
	Memory    memory.Store
	Runner    Runner
	Actions   *ActionLedger
	Log       *logrus.Entry
}

// Request is one dispatch call (§4.4: "a dispatcher for chat").
type Request struct {
	ChatPolicy   authz.ChatPolicy
	ActionPolicy authz.ActionPolicy
	ToolName     string
	Args         map[string]interface{}
	Investigation *core.Investigation
	CaseID       string
	RunID        string
}

type handler func(ctx context.Context, req Request, deps Deps) ToolResult

// scopedPrefixes are the tool-name prefixes subject to namespace/cluster
// allowlist enforcement against the investigation's target (§4.4, P9).
var scopedPrefixes = []string{"k8s.", "logs.", "rerun.", "memory."}

// capabilityFlags maps each tool name to the ChatPolicy field gating it.
var capabilityFlags = map[string]func(authz.ChatPolicy) bool{
	"promql.instant":            func(p authz.ChatPolicy) bool { return p.AllowPromQL },
	"k8s.pod_context":           func(p authz.ChatPolicy) bool { return p.AllowK8sRead },
	"k8s.rollout_status":        func(p authz.ChatPolicy) bool { return p.AllowK8sRead },
	"k8s.events":                func(p authz.ChatPolicy) bool { return p.AllowK8sEvents },
	"logs.tail":                 func(p authz.ChatPolicy) bool { return p.AllowLogsQuery },
	"aws.ec2_status":            func(p authz.ChatPolicy) bool { return p.AllowAWSRead },
	"aws.ebs_health":            func(p authz.ChatPolicy) bool { return p.AllowAWSRead },
	"aws.elb_health":            func(p authz.ChatPolicy) bool { return p.AllowAWSRead },
	"aws.rds_status":            func(p authz.ChatPolicy) bool { return p.AllowAWSRead },
	"aws.cloudtrail_events":     func(p authz.ChatPolicy) bool { return p.AllowAWSRead },
	"github.recent_commits":     func(p authz.ChatPolicy) bool { return p.AllowGitHubRead },
	"github.workflow_runs":      func(p authz.ChatPolicy) bool { return p.AllowGitHubRead },
	"github.failed_workflow_logs": func(p authz.ChatPolicy) bool { return p.AllowGitHubRead },
	"github.readme":             func(p authz.ChatPolicy) bool { return p.AllowGitHubRead },
	"github.file":               func(p authz.ChatPolicy) bool { return p.AllowGitHubRead },
	"github.diff":               func(p authz.ChatPolicy) bool { return p.AllowGitHubRead },
	"memory.similar_cases":      func(p authz.ChatPolicy) bool { return p.AllowMemoryRead },
	"memory.skills":             func(p authz.ChatPolicy) bool { return p.AllowMemoryRead },
	"actions.list":              func(p authz.ChatPolicy) bool { return true },
	"actions.propose":           func(p authz.ChatPolicy) bool { return true },
	"rerun.investigation":       func(p authz.ChatPolicy) bool { return p.AllowReportRerun },
}

var registry = map[string]handler{
	"promql.instant":              toolPromQLInstant,
	"k8s.pod_context":             toolK8sPodContext,
	"k8s.rollout_status":          toolK8sRolloutStatus,
	"k8s.events":                  toolK8sEvents,
	"logs.tail":                   toolLogsTail,
	"aws.ec2_status":              toolAWSEC2Status,
	"aws.ebs_health":              toolAWSEBSHealth,
	"aws.elb_health":              toolAWSELBHealth,
	"aws.rds_status":              toolAWSRDSStatus,
	"aws.cloudtrail_events":       toolAWSCloudTrailEvents,
	"github.recent_commits":       toolGitHubRecentCommits,
	"github.workflow_runs":        toolGitHubWorkflowRuns,
	"github.failed_workflow_logs": toolGitHubFailedWorkflowLogs,
	"github.readme":               toolGitHubReadme,
	"github.file":                 toolGitHubFile,
	"github.diff":                 toolGitHubDiff,
	"memory.similar_cases":        toolMemorySimilarCases,
	"memory.skills":               toolMemorySkills,
	"actions.list":                toolActionsList,
	"actions.propose":             toolActionsPropose,
	"rerun.investigation":         toolRerunInvestigation,
}

// KnownTools returns every registered tool name, sorted, for introspection.
func KnownTools() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func hasPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if len(name) >= len(p) && name[:len(p)] == p {
			return true
		}
	}
	return false
}

// Dispatch runs preflight checks then the named tool's handler, compacting
// the result before returning it. It never panics past its own boundary: a
// handler panic is recovered and reported as unexpected_error.
func Dispatch(ctx context.Context, req Request, deps Deps) (result ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			result = errResult(fmt.Sprintf("unexpected_error:%v", r))
		}
	}()

	if !req.ChatPolicy.Enabled {
		return errResult("tool_not_allowed")
	}

	h, known := registry[req.ToolName]
	if !known {
		return errResult("unknown_tool")
	}

	check, hasCapability := capabilityFlags[req.ToolName]
	if !hasCapability || !check(req.ChatPolicy) {
		return errResult("tool_not_allowed")
	}

	if hasPrefix(req.ToolName, scopedPrefixes) && req.Investigation != nil {
		if err := checkScope(req.ChatPolicy, req.Investigation.Target); err != "" {
			return errResult(err)
		}
	}

	out := h(ctx, req, deps)
	return compact(out, req.ChatPolicy)
}

// checkScope enforces P9: a scoped tool is refused when the target's
// namespace/cluster falls outside a configured allowlist.
func checkScope(policy authz.ChatPolicy, target core.TargetRef) string {
	if len(policy.NamespaceAllowlist) > 0 && target.Namespace != "" && !policy.CheckNamespace(target.Namespace) {
		return "namespace_not_allowed:" + target.Namespace
	}
	if len(policy.ClusterAllowlist) > 0 && target.Cluster != "" && !policy.CheckCluster(target.Cluster) {
		return "cluster_not_allowed:" + target.Cluster
	}
	return ""
}

// missingArgs returns a missing_required_args error code listing every name
// in names absent (or empty-string) from args, or "" if all are present.
func missingArgs(args map[string]interface{}, names ...string) string {
	var missing []string
	for _, n := range names {
		v, ok := args[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	code := "missing_required_args:"
	for i, n := range missing {
		if i > 0 {
			code += ","
		}
		code += n
	}
	return code
}

func argString(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func argInt(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}
