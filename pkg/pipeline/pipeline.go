// Package pipeline implements the investigation orchestrator (§4.1): the
// single public operation run_investigation(alert, time_window) ->
// Investigation, sequencing alert normalization, time-window anchoring,
// family detection, target-type derivation, evidence collection, and
// deterministic analysis. It never fails outright — every stage records its
// own errors on the Investigation and a run always returns a result — and
// it mirrors the teacher's orchestrator idiom of a thin struct wiring
// already-built collaborators rather than owning their logic.
package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sreagent/investigator/pkg/analysis"
	"github.com/sreagent/investigator/pkg/collectors"
	"github.com/sreagent/investigator/pkg/core"
	"github.com/sreagent/investigator/pkg/providers/llm"
)

// Deps bundles the collector registry, provider collaborators, and optional
// LLM client an investigation run needs.
type Deps struct {
	Registry      *collectors.Registry
	CollectorDeps collectors.Deps
	LLM           llm.Client
	Log           *logrus.Entry
}

// Pipeline is the investigation orchestrator. It satisfies pkg/tools.Runner,
// letting rerun.investigation re-invoke it under a new time window.
type Pipeline struct {
	deps Deps
}

// New builds a Pipeline wired to deps.
func New(deps Deps) *Pipeline {
	return &Pipeline{deps: deps}
}

// RunInvestigation runs one full investigation for alert under
// timeWindowExpr and returns the filled Investigation (§6: "must never
// fail" — every failure becomes an Investigation.errors entry instead).
func (p *Pipeline) RunInvestigation(ctx context.Context, alert core.AlertInstance, timeWindowExpr string) *core.Investigation {
	inv := p.build(alert, timeWindowExpr, time.Now().UTC())
	p.collectAndAnalyze(ctx, inv)
	return inv
}

// build performs stages 1-4: alert normalization (including the Job
// pod-label heuristic), time-window anchoring, family detection, and
// target-type derivation.
func (p *Pipeline) build(alert core.AlertInstance, timeWindowExpr string, now time.Time) *core.Investigation {
	alert.Normalize()

	labels := alert.Labels
	if labels == nil {
		labels = map[string]string{}
	}

	hint := playbookHint(labels["alertname"])
	family := detectFamily(labels, hint)

	podName := labels["pod"]
	if podName == "" {
		podName = labels["pod_name"]
	}
	if shouldIgnorePodLabelForJobs(labels) {
		podName = ""
	}
	switch family {
	case core.FamilyTargetDown, core.FamilyK8sRolloutHealth, core.FamilyObservabilityPipeline, core.FamilyMeta:
		podName = ""
	}

	target := core.TargetRef{
		Namespace: labels["namespace"],
		Pod:       podName,
		Container: extractTargetContainer(labels),
		Service:   labels["service"],
		Instance:  labels["instance"],
		Job:       labels["job"],
		Cluster:   labels["cluster"],
	}
	if target.Cluster == "" {
		target.Cluster = p.deps.CollectorDeps.Config.ClusterName
	}
	target.TargetType = deriveTargetType(labels, target.Pod, target.Namespace)
	if target.TargetType == core.TargetPod {
		// For pod-scoped alerts, service/job/instance commonly name the
		// scrape target (e.g. kube-state-metrics), not the affected
		// workload; keep them out of target identity.
		target.Service = ""
		target.Job = ""
		target.Instance = ""
	}

	tw := anchorWindow(alert, timeWindowExpr, now)

	inv := core.NewInvestigation(alert, tw, target)
	inv.Analysis.Features.Family = family
	if hint != "" {
		inv.Meta["playbook_hint"] = hint
	}
	return inv
}

// collectAndAnalyze performs stages 5-11 over an already-built
// investigation: diagnostic modules with playbook fallback, workload/org
// metadata promotion, optional AWS/SCM evidence, noise/change/capacity
// analysis, deterministic feature/scoring/verdict analysis, and optional
// LLM enrichment.
func (p *Pipeline) collectAndAnalyze(ctx context.Context, inv *core.Investigation) {
	didCollect := p.deps.Registry.RunModules(ctx, inv, p.deps.CollectorDeps)
	if !didCollect {
		p.deps.Registry.RunPlaybookFallback(ctx, inv, p.deps.CollectorDeps)
	}

	promoteWorkloadToTarget(inv)
	promoteTeamEnvToTarget(inv)

	collectors.CollectAWSAndSCM(ctx, inv, p.deps.CollectorDeps)

	analyzeNoise(inv)

	if inv.Target.HasPodTarget() {
		analyzeChanges(inv)
		analyzeCapacity(inv)
	}

	analysis.Run(inv)
	postprocessNoise(inv)

	enrichWithLLM(ctx, inv, p.deps.LLM, p.deps.CollectorDeps.Config.LLM.Enabled)
}
