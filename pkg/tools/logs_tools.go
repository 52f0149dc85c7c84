package tools

import (
	"context"
	"time"

	"github.com/sreagent/investigator/pkg/providers/logs"
)

func toolLogsTail(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.Logs == nil {
		return errResult("logs_error:not_configured")
	}
	namespace := argString(req.Args, "namespace", targetNamespace(req.Investigation))
	pod := argString(req.Args, "pod", targetPod(req.Investigation))
	if namespace == "" {
		return errResult("namespace_required")
	}
	resolved, scopeErr := resolveScopedPod(ctx, req, deps, pod, namespace, targetWorkloadKind(req.Investigation), targetWorkloadName(req.Investigation))
	if scopeErr != "" {
		return errResult(scopeErr)
	}
	if resolved == "" {
		return errResult("missing_required_args:pod")
	}

	limit := argInt(req.Args, "limit", 100)
	if req.ChatPolicy.MaxLogLines > 0 && limit > req.ChatPolicy.MaxLogLines {
		limit = req.ChatPolicy.MaxLogLines
	}

	end := time.Now()
	if v, ok := req.Args["end"].(string); ok && v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			end = t
		}
	}
	start := end.Add(-1 * time.Hour)
	if v, ok := req.Args["start"].(string); ok && v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			start = t
		}
	}

	result := deps.Logs.Fetch(ctx, logs.FetchRequest{
		Pod:       resolved,
		Namespace: namespace,
		Container: argString(req.Args, "container", ""),
		Start:     start,
		End:       end,
		Limit:     limit,
	})
	if result.Reason != "" && len(result.Entries) == 0 {
		return errResult("logs_error:" + result.Reason)
	}

	entries := make([]map[string]interface{}, 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, map[string]interface{}{
			"timestamp": e.Timestamp.Format(time.RFC3339Nano),
			"message":   e.Message,
			"labels":    e.Labels,
		})
	}
	return okResult(map[string]interface{}{
		"backend":    string(result.Backend),
		"status":     string(result.Status),
		"query_used": result.QueryUsed,
		"entries":    entries,
	})
}
