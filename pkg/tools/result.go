package tools

import (
	"encoding/json"

	"github.com/sreagent/investigator/pkg/authz"
)

// maxResultBytes bounds the JSON representation of a tool result (§4.4
// "result compaction"). Oversized results are replaced with a truncated
// preview rather than dropped, so the caller still sees something useful.
const maxResultBytes = 16 * 1024

const truncatedPreviewChars = 2000

// compact applies size capping and, for log-bearing results, redaction.
func compact(result ToolResult, policy authz.ChatPolicy) ToolResult {
	if !result.OK {
		return result
	}
	redactResultLogs(result.Result, policy)

	raw, err := json.Marshal(result.Result)
	if err != nil || len(raw) <= maxResultBytes {
		return result
	}
	preview := string(raw)
	if len(preview) > truncatedPreviewChars {
		preview = preview[:truncatedPreviewChars]
	}
	return ToolResult{
		OK: true,
		Result: map[string]interface{}{
			"truncated": true,
			"preview":   preview,
		},
	}
}

// redactResultLogs rewrites the "message" field of any log-entry-shaped map
// found under a "entries" key when redact_secrets is set (§4.4, §7).
func redactResultLogs(result map[string]interface{}, policy authz.ChatPolicy) {
	if result == nil || !policy.RedactSecrets {
		return
	}
	entries, ok := result["entries"].([]map[string]interface{})
	if !ok {
		return
	}
	for _, e := range entries {
		if msg, isStr := e["message"].(string); isStr {
			e["message"] = authz.RedactText(msg, false)
		}
	}
}

// capSeries truncates a slice of PromQL-shaped series-like results to the
// configured max_promql_series bound (§4.4).
func capSeries[T any](items []T, max int) []T {
	if max <= 0 || len(items) <= max {
		return items
	}
	return items[:max]
}
