// Package collectors implements the evidence-gathering modules consulted by
// the pipeline orchestrator (§4.2): a registry of diagnostic modules and
// playbooks, each mutating its own disjoint set of Investigation evidence
// slots and appending compact error codes rather than raising past its own
// boundary, mirroring the teacher's pkg/platform/executor registry idiom.
package collectors

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sreagent/investigator/internal/config"
	"github.com/sreagent/investigator/pkg/core"
	"github.com/sreagent/investigator/pkg/providers/cloud"
	"github.com/sreagent/investigator/pkg/providers/k8s"
	"github.com/sreagent/investigator/pkg/providers/logs"
	"github.com/sreagent/investigator/pkg/providers/metrics"
	"github.com/sreagent/investigator/pkg/providers/scm"
)

// Deps bundles every provider a collector might need. Collectors only use
// the subset relevant to them; nil fields mean the provider wasn't
// configured or the evidence flag is disabled, and a collector must treat
// that as "unavailable", not crash.
type Deps struct {
	Config    config.Config
	K8s       k8s.Client
	Logs      *logs.Client
	Metrics   *metrics.Client
	Cloud     *cloud.Client
	SCM       *scm.Discoverer
	SCMClient *scm.Client
	Log       *logrus.Entry
}

// Collector is one evidence-gathering module. It must never panic or return
// past its own boundary; any failure is recorded on inv via AddError.
type Collector func(ctx context.Context, inv *core.Investigation, deps Deps) error

// Module pairs a collector with the applicability check used by the
// diagnostic-module phase (§4.1 step 5): Applies inspects the
// already-detected family/target and reports whether Run should fire.
type Module struct {
	Name    string
	Applies func(inv *core.Investigation) bool
	Run     Collector
}

// Playbook is the fallback phase's unit (§4.1 step 6), selected by alertname
// rather than by family/target applicability.
type Playbook struct {
	Name      string
	AlertName string
	Run       Collector
}

// Registry holds every known diagnostic module and playbook.
type Registry struct {
	Modules   []Module
	Playbooks []Playbook
}

// NewRegistry builds the registry wired to every family-scoped collector
// defined in this package. Ordering within the slice is stable for
// reproducibility (§4.1). AWS/SCM evidence is not a diagnostic module —
// it's the always-attempted, flag-gated optional evidence of step 8 — so
// it's invoked directly by the pipeline via CollectAWSAndSCM, not here.
func NewRegistry() *Registry {
	return &Registry{
		Modules: []Module{
			{Name: "pod_baseline", Applies: appliesToPod, Run: PodBaseline},
			{Name: "crashloop", Applies: isFamily(core.FamilyCrashloop), Run: Crashloop},
			{Name: "memory_pressure", Applies: isFamily(core.FamilyMemoryPressure), Run: MemoryPressure},
			{Name: "oom_killed", Applies: isFamily(core.FamilyOOMKilled), Run: OOMKilled},
			{Name: "job_failure", Applies: isFamily(core.FamilyJobFailed), Run: JobFailure},
			{Name: "http5xx", Applies: appliesToNonPod, Run: HTTP5xx},
		},
		Playbooks: []Playbook{
			{Name: "pod_baseline", Run: PodBaseline},
			{Name: "nonpod_baseline", Run: NonPodBaseline},
		},
	}
}

// RunModules runs every applicable module for inv, fanning each out as a
// goroutine joined before returning (§5: disjoint slots per module; the
// shared Investigation.errors list is itself mutex-guarded via AddError).
// It reports whether any module succeeded (ran without error).
//
// A module's own error never aborts its siblings — runGuarded always
// returns nil to the group — so errgroup here is plain fan-out/join, not
// the "cancel on first error" pattern it's best known for.
func (r *Registry) RunModules(ctx context.Context, inv *core.Investigation, deps Deps) bool {
	g, gctx := errgroup.WithContext(ctx)
	results := make([]bool, len(r.Modules))

	for i, m := range r.Modules {
		if !m.Applies(inv) {
			continue
		}
		i, m := i, m
		g.Go(func() error {
			if err := runGuarded(m.Name, gctx, inv, deps, m.Run); err == nil {
				results[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, ok := range results {
		if ok {
			return true
		}
	}
	return false
}

// RunPlaybookFallback selects and runs the fallback playbook by alertname,
// falling back further to pod_baseline/nonpod_baseline by target shape
// (§4.1 step 6).
func (r *Registry) RunPlaybookFallback(ctx context.Context, inv *core.Investigation, deps Deps) {
	alertName := inv.Alert.Labels["alertname"]
	for _, pb := range r.Playbooks {
		if pb.AlertName != "" && pb.AlertName == alertName {
			_ = runGuarded(pb.Name, ctx, inv, deps, pb.Run)
			return
		}
	}
	if inv.Target.HasPodTarget() {
		_ = runGuarded("pod_baseline", ctx, inv, deps, PodBaseline)
		return
	}
	_ = runGuarded("nonpod_baseline", ctx, inv, deps, NonPodBaseline)
}

// runGuarded invokes c and converts any returned error into a compact
// "{subsystem}:{cause-code}" entry on inv, per I4: no collector raises
// past its own boundary.
func runGuarded(subsystem string, ctx context.Context, inv *core.Investigation, deps Deps, c Collector) error {
	err := c(ctx, inv, deps)
	if err != nil {
		inv.AddError(subsystem, err.Error())
	}
	return err
}

func appliesToPod(inv *core.Investigation) bool {
	return inv.Target.TargetType == core.TargetPod
}

func appliesToNonPod(inv *core.Investigation) bool {
	return inv.Target.TargetType != core.TargetPod
}

func isFamily(f core.Family) func(*core.Investigation) bool {
	return func(inv *core.Investigation) bool { return inv.Family() == f }
}
