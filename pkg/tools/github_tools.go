package tools

import (
	"context"

	"github.com/sreagent/investigator/pkg/providers/scm"
)

// resolveRepo implements §4.4's github.* arg-defaulting rule: use args.repo
// if already well-formed, else the repo already discovered onto the
// investigation's evidence, else re-run discovery from the alert labels.
func resolveRepo(ctx context.Context, req Request, deps Deps) (string, string) {
	if repo, ok := req.Args["repo"].(string); ok && scm.ValidRepoFormat(repo) {
		return repo, ""
	}
	if req.Investigation != nil && req.Investigation.Evidence.GitHub.Repo != "" {
		return req.Investigation.Evidence.GitHub.Repo, ""
	}
	if deps.SCM == nil || req.Investigation == nil {
		return "", "repo_not_discovered"
	}
	result := deps.SCM.Discover(ctx, targetWorkloadName(req.Investigation), nil, req.Investigation.Alert.Labels)
	if result.Repo == "" {
		return "", "repo_not_discovered"
	}
	if len(req.ChatPolicy.GitHubRepoAllowlist) > 0 && !req.ChatPolicy.CheckRepo(result.Repo) {
		return "", "repo_not_allowed:" + result.Repo
	}
	return result.Repo, ""
}

func toolGitHubRecentCommits(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.SCMClient == nil {
		return errResult("github_error:not_configured")
	}
	repo, err := resolveRepo(ctx, req, deps)
	if err != "" {
		return errResult(err)
	}
	limit := argInt(req.Args, "limit", 10)
	commits, cerr := deps.SCMClient.RecentCommits(ctx, repo, limit)
	if cerr != nil {
		return errResult("github_error:" + cerr.Error())
	}
	return okResult(map[string]interface{}{"repo": repo, "commits": commits})
}

func toolGitHubWorkflowRuns(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.SCMClient == nil {
		return errResult("github_error:not_configured")
	}
	repo, err := resolveRepo(ctx, req, deps)
	if err != "" {
		return errResult(err)
	}
	limit := argInt(req.Args, "limit", 10)
	runs, cerr := deps.SCMClient.WorkflowRuns(ctx, repo, limit)
	if cerr != nil {
		return errResult("github_error:" + cerr.Error())
	}
	return okResult(map[string]interface{}{"repo": repo, "workflow_runs": runs})
}

func toolGitHubFailedWorkflowLogs(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.SCMClient == nil {
		return errResult("github_error:not_configured")
	}
	repo, err := resolveRepo(ctx, req, deps)
	if err != "" {
		return errResult(err)
	}
	runID := int64(argInt(req.Args, "run_id", 0))
	if runID == 0 {
		return errResult("missing_required_args:run_id")
	}
	logsText, cerr := deps.SCMClient.FailedWorkflowLogs(ctx, repo, runID)
	if cerr != nil {
		return errResult("github_error:" + cerr.Error())
	}
	return okResult(map[string]interface{}{"repo": repo, "logs": logsText})
}

func toolGitHubReadme(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.SCMClient == nil {
		return errResult("github_error:not_configured")
	}
	repo, err := resolveRepo(ctx, req, deps)
	if err != "" {
		return errResult(err)
	}
	readme, cerr := deps.SCMClient.Readme(ctx, repo)
	if cerr != nil {
		return errResult("github_error:" + cerr.Error())
	}
	return okResult(map[string]interface{}{"repo": repo, "readme": readme})
}

func toolGitHubFile(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.SCMClient == nil {
		return errResult("github_error:not_configured")
	}
	repo, err := resolveRepo(ctx, req, deps)
	if err != "" {
		return errResult(err)
	}
	path := argString(req.Args, "path", "")
	if path == "" {
		return errResult("missing_required_args:path")
	}
	ref := argString(req.Args, "ref", "")
	content, cerr := deps.SCMClient.File(ctx, repo, path, ref)
	if cerr != nil {
		return errResult(cerr.Error())
	}
	return okResult(map[string]interface{}{"repo": repo, "path": path, "content": content})
}

func toolGitHubDiff(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.SCMClient == nil {
		return errResult("github_error:not_configured")
	}
	repo, err := resolveRepo(ctx, req, deps)
	if err != "" {
		return errResult(err)
	}
	if code := missingArgs(req.Args, "base", "head"); code != "" {
		return errResult(code)
	}
	base := argString(req.Args, "base", "")
	head := argString(req.Args, "head", "")
	diff, cerr := deps.SCMClient.Diff(ctx, repo, base, head)
	if cerr != nil {
		return errResult(cerr.Error())
	}
	return okResult(map[string]interface{}{"repo": repo, "base": base, "head": head, "diff": diff})
}
