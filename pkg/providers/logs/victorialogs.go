package logs

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sreagent/investigator/pkg/core"
)

var vmLogsMetadataFields = []string{"pod", "namespace", "container", "app", "job", "stream", "node_name", "_stream", "_stream_id"}
var vmLogsMessageFields = []string{"_msg", "message", "msg", "log", "text"}

func escapeLogSQLValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return v
}

// labelsToLogSQL renders a LogsQL field-matcher expression: k:"v" AND k2:"v2".
func labelsToLogSQL(labels labelSet, regexFields map[string]bool) string {
	parts := make([]string, 0, len(labels))
	for _, p := range labels {
		if p.name == "" || p.value == "" {
			continue
		}
		if regexFields[p.name] {
			parts = append(parts, fmt.Sprintf(`%s:re(%q)`, p.name, escapeLogSQLValue(p.value)))
		} else {
			parts = append(parts, fmt.Sprintf(`%s:%q`, p.name, escapeLogSQLValue(p.value)))
		}
	}
	return strings.Join(parts, " AND ")
}

// parseVMLogsNDJSON parses VictoriaLogs' line-delimited JSON response,
// keeping only the newest `limit` entries via a bounded min-heap (P6) rather
// than truncating after the first N lines parsed.
func parseVMLogsNDJSON(body []byte, fallbackTS time.Time, limit int) []parsedEntry {
	tail := newTailHeap(limit)
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}

		ts := parseVMLogsTimestamp(entry, fallbackTS)

		var message string
		for _, k := range vmLogsMessageFields {
			if v, ok := entry[k]; ok && v != nil {
				message = fmt.Sprintf("%v", v)
				break
			}
		}
		if message == "" {
			b, _ := json.Marshal(entry)
			message = string(b)
		}

		labels := map[string]string{}
		for _, k := range vmLogsMetadataFields {
			if v, ok := entry[k]; ok {
				labels[k] = fmt.Sprintf("%v", v)
			}
		}

		parsed := parsedEntry{timestamp: ts, message: message, labels: labels}
		tail.push(float64(ts.UnixNano())/1e9, parsed)
	}
	return tail.drain()
}

func parseVMLogsTimestamp(entry map[string]interface{}, fallback time.Time) time.Time {
	raw, ok := entry["_time"]
	if !ok {
		raw, ok = entry["time"]
	}
	if !ok {
		return fallback
	}
	switch v := raw.(type) {
	case float64:
		if v > 1e12 {
			return time.Unix(0, int64(v))
		}
		return time.Unix(int64(v), 0)
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return ts
		}
		if ts, err := time.Parse(time.RFC3339, strings.Replace(v, "Z", "+00:00", 1)); err == nil {
			return ts
		}
	}
	return fallback
}

func toRFC3339Z(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

func tryVMLogs(ctx context.Context, doer httpDoer, baseURL, query string, req FetchRequest) ([]parsedEntry, string) {
	if query == "" {
		return []parsedEntry{}, ""
	}
	u := baseURL + "/select/logsql/query"
	q := url.Values{
		"query": {query},
		"start": {toRFC3339Z(req.Start)},
		"end":   {toRFC3339Z(req.End)},
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+q.Encode(), nil)
	if err != nil {
		return nil, "unexpected_error"
	}
	resp, err := doer.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "timeout"
		}
		return nil, "connection_error"
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "unexpected_error"
	}
	if resp.StatusCode >= 400 {
		return nil, "http_error"
	}
	entries := parseVMLogsNDJSON(body, req.Start, req.Limit)
	return entries, ""
}

func vmLogsAttempts(req FetchRequest) []labelSet {
	primary := labelSet{{"namespace", req.Namespace}, {"pod", req.Pod}}
	fallback := labelSet{{"k8s_namespace", req.Namespace}, {"k8s_pod", req.Pod}}

	var attempts []labelSet
	if req.Container != "" {
		attempts = append(attempts, append(append(labelSet{}, primary...), labelPair{"container", req.Container}))
	}
	attempts = append(attempts, primary)
	if req.Container != "" {
		attempts = append(attempts, append(append(labelSet{}, fallback...), labelPair{"container", req.Container}))
	}
	attempts = append(attempts, fallback)
	return attempts
}

// fetchFromVictoriaLogs implements the LogsQL dialect: walk namespace/pod
// then k8s_-prefixed variants; on an empty result with a container filter,
// retry the same labels without container before moving to the next variant.
func fetchFromVictoriaLogs(ctx context.Context, doer httpDoer, baseURL string, req FetchRequest) FetchResult {
	regexFields := map[string]bool{}
	if req.UseRegex {
		regexFields = map[string]bool{"pod": true, "k8s_pod": true}
	}

	var firstQuery, lastQuery, lastReason string
	for _, labels := range vmLogsAttempts(req) {
		query := labelsToLogSQL(labels, regexFields)
		if firstQuery == "" {
			firstQuery = query
		}
		lastQuery = query

		entries, reason := tryVMLogs(ctx, doer, baseURL, query, req)
		if entries == nil {
			if reason == "" {
				reason = "unexpected_error"
			}
			return FetchResult{Status: core.LogStatusUnavailable, Reason: reason, Backend: core.BackendVictoriaLogs, QueryUsed: query}
		}
		if len(entries) > 0 {
			return FetchResult{Entries: toCoreEntries(entries), Status: core.LogStatusOK, Reason: "ok", Backend: core.BackendVictoriaLogs, QueryUsed: query}
		}

		if hasLabel(labels, "container") {
			withoutContainer := labels.without("container")
			queryWO := labelsToLogSQL(withoutContainer, regexFields)
			lastQuery = queryWO
			entries2, reason2 := tryVMLogs(ctx, doer, baseURL, queryWO, req)
			if entries2 == nil {
				if reason2 == "" {
					reason2 = "unexpected_error"
				}
				return FetchResult{Status: core.LogStatusUnavailable, Reason: reason2, Backend: core.BackendVictoriaLogs, QueryUsed: queryWO}
			}
			if len(entries2) > 0 {
				return FetchResult{Entries: toCoreEntries(entries2), Status: core.LogStatusOK, Reason: "ok", Backend: core.BackendVictoriaLogs, QueryUsed: queryWO}
			}
		}
		lastReason = "empty"
	}

	used := firstQuery
	if used == "" {
		used = lastQuery
	}
	return FetchResult{Status: core.LogStatusEmpty, Reason: lastReason, Backend: core.BackendVictoriaLogs, QueryUsed: used}
}

func hasLabel(labels labelSet, name string) bool {
	for _, p := range labels {
		if p.name == name {
			return true
		}
	}
	return false
}
