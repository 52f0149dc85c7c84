package tools

import (
	"context"
	"time"
)

func toolPromQLInstant(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.Metrics == nil {
		return errResult("promql_error:not_configured")
	}
	query := argString(req.Args, "query", "")
	if query == "" {
		return errResult("missing_required_args:query")
	}
	at := time.Now()
	if v, ok := req.Args["at"].(string); ok && v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			at = t
		}
	}

	results, err := deps.Metrics.Instant(ctx, query, at)
	if err != nil {
		return errResult(err.Error())
	}
	results = capSeries(results, req.ChatPolicy.MaxPromQLSeries)

	series := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		series = append(series, map[string]interface{}{
			"labels": r.Labels,
			"value":  r.Value,
		})
	}
	return okResult(map[string]interface{}{
		"at":     at.Format(time.RFC3339),
		"query":  query,
		"result": series,
	})
}
