package collectors

import (
	"context"
	"strings"

	"github.com/sreagent/investigator/pkg/core"
)

// SCMDiscovery resolves the target workload's source repository via the
// eight-step discovery chain and gathers recent activity for it (§4.2).
func SCMDiscovery(ctx context.Context, inv *core.Investigation, deps Deps) error {
	if deps.SCM == nil {
		return nil
	}
	workload := inv.Target.WorkloadName
	if workload == "" {
		workload = inv.Target.Service
	}
	if workload == "" {
		return nil
	}

	var annotations map[string]string
	if owner, ok := inv.Evidence.K8s.OwnerChain["labels"].(map[string]string); ok {
		annotations = owner
	}

	result := deps.SCM.Discover(ctx, workload, annotations, inv.Alert.Labels)
	if result.Method == "" || result.Repo == "" {
		inv.AddError("github", "repo_not_discovered")
		return nil
	}

	inv.Evidence.GitHub.Repo = result.Repo
	inv.Evidence.GitHub.RepoDiscoveryMethod = string(result.Method)
	inv.Evidence.GitHub.IsThirdParty = result.IsThirdParty

	if deps.SCMClient == nil {
		return nil
	}
	gatherRecentActivity(ctx, inv, deps, result.Repo)
	return nil
}

func gatherRecentActivity(ctx context.Context, inv *core.Investigation, deps Deps, repo string) {
	if commits, err := deps.SCMClient.RecentCommits(ctx, repo, 10); err != nil {
		inv.AddError("github", err.Error())
	} else {
		inv.Evidence.GitHub.RecentCommits = commits
	}

	runs, err := deps.SCMClient.WorkflowRuns(ctx, repo, 10)
	if err != nil {
		inv.AddError("github", err.Error())
	} else {
		inv.Evidence.GitHub.WorkflowRuns = runs
		if runID, failed := firstFailedRunID(runs); failed {
			if logs, err := deps.SCMClient.FailedWorkflowLogs(ctx, repo, runID); err == nil {
				inv.Evidence.GitHub.FailedWorkflowLogs = logs
			}
		}
	}

	if readme, err := deps.SCMClient.Readme(ctx, repo); err == nil {
		inv.Evidence.GitHub.Readme = readme
	}
	if docs, err := deps.SCMClient.Docs(ctx, repo); err == nil {
		inv.Evidence.GitHub.Docs = docs
	}
}

func firstFailedRunID(runs []map[string]interface{}) (int64, bool) {
	for _, run := range runs {
		conclusion, _ := run["conclusion"].(string)
		if !strings.EqualFold(conclusion, "failure") {
			continue
		}
		switch id := run["id"].(type) {
		case int64:
			return id, true
		case float64:
			return int64(id), true
		}
	}
	return 0, false
}
