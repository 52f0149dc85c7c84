package tools

import (
	"context"
	"fmt"
)

// toolRerunInvestigation builds a synthetic alert from the current
// investigation's target and re-invokes the pipeline under a new time
// window (§4.4), refusing when the requested window exceeds the policy cap.
func toolRerunInvestigation(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.Runner == nil {
		return errResult("not_configured")
	}
	if req.Investigation == nil {
		return errResult("missing_required_args:time_window")
	}
	timeWindow := argString(req.Args, "time_window", "")
	if timeWindow == "" {
		return errResult("missing_required_args:time_window")
	}
	referenceTime := argString(req.Args, "reference_time", "original")

	windowSeconds, ok := parseWindowSeconds(timeWindow)
	if !ok {
		return errResult("time_window_too_large")
	}
	if req.ChatPolicy.MaxTimeWindowSeconds > 0 && windowSeconds > req.ChatPolicy.MaxTimeWindowSeconds {
		return errResult("time_window_too_large")
	}

	alert := req.Investigation.Alert
	if referenceTime == "now" {
		alert.StartsAt = ""
	}

	updated := deps.Runner.RunInvestigation(ctx, alert, timeWindow)
	if updated == nil {
		return errResult("llm_error:rerun_failed")
	}
	return ToolResult{OK: true, UpdatedAnalysis: &updated.Analysis}
}

// parseWindowSeconds parses a duration expression like "1h"/"30m" into
// seconds, mirroring the pipeline's window-anchoring parser (§4.1 step 2).
func parseWindowSeconds(expr string) (int, bool) {
	if expr == "" {
		return 0, false
	}
	unit := expr[len(expr)-1]
	numPart := expr[:len(expr)-1]
	var n int
	if _, err := fmt.Sscanf(numPart, "%d", &n); err != nil || n <= 0 {
		return 0, false
	}
	switch unit {
	case 's':
		return n, true
	case 'm':
		return n * 60, true
	case 'h':
		return n * 3600, true
	case 'd':
		return n * 86400, true
	default:
		return 0, false
	}
}
