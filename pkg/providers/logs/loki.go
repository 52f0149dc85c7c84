package logs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sreagent/investigator/pkg/core"
)

// labelSet is an ordered list of (name, value) pairs; Loki/LogsQL label order
// matters for the query_used string returned to the caller, so we keep
// insertion order instead of a map.
type labelSet []labelPair

type labelPair struct {
	name  string
	value string
}

func (ls labelSet) without(name string) labelSet {
	out := make(labelSet, 0, len(ls))
	for _, p := range ls {
		if p.name != name {
			out = append(out, p)
		}
	}
	return out
}

// labelsToLogQL renders a LogQL stream selector: {k="v", k2="v2"}.
// regexFields selects `=~` matching for the named fields instead of `=`.
func labelsToLogQL(labels labelSet, regexFields map[string]bool) string {
	parts := make([]string, 0, len(labels))
	for _, p := range labels {
		if p.name == "" || p.value == "" {
			continue
		}
		if regexFields[p.name] {
			parts = append(parts, fmt.Sprintf(`%s=~%q`, p.name, p.value))
		} else {
			parts = append(parts, fmt.Sprintf(`%s=%q`, p.name, p.value))
		}
	}
	result := "{"
	for i, p := range parts {
		if i > 0 {
			result += ", "
		}
		result += p
	}
	return result + "}"
}

var lokiLabelMappings = map[string][]string{
	"pod":       {"pod", "k8s_pod", "pod_name"},
	"namespace": {"namespace", "k8s_namespace"},
	"container": {"container"},
	"app":       {"app"},
	"job":       {"job"},
	"stream":    {"stream"},
	"node_name": {"node_name"},
}

func parseLokiResponse(data []byte, fallbackTS time.Time, limit int) []parsedEntry {
	var resp struct {
		Data struct {
			Result []struct {
				Stream map[string]string `json:"stream"`
				Values [][2]string       `json:"values"`
			} `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil
	}

	tail := newTailHeap(limit)
	for _, result := range resp.Data.Result {
		for _, v := range result.Values {
			tsNs, err := strconv.ParseInt(v[0], 10, 64)
			ts := fallbackTS
			if err == nil {
				ts = time.Unix(0, tsNs)
			}
			labels := map[string]string{}
			for standard, variants := range lokiLabelMappings {
				for _, variant := range variants {
					if val, ok := result.Stream[variant]; ok {
						labels[standard] = val
						break
					}
				}
			}
			entry := parsedEntry{timestamp: ts, message: v[1], labels: labels}
			tail.push(float64(ts.UnixNano()) / 1e9, entry)
		}
	}
	return tail.drain()
}

func tryLoki(ctx context.Context, doer httpDoer, baseURL, query string, req FetchRequest) ([]parsedEntry, string) {
	if query == "" {
		return []parsedEntry{}, ""
	}
	u := baseURL + "/loki/api/v1/query_range"
	q := url.Values{
		"query":     {query},
		"start":     {strconv.FormatInt(req.Start.UnixNano(), 10)},
		"end":       {strconv.FormatInt(req.End.UnixNano(), 10)},
		"limit":     {strconv.Itoa(req.Limit)},
		"direction": {"backward"},
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
	entries := parseLokiResponse(body, req.Start, req.Limit)
	return entries, ""
}

func lokiAttempts(req FetchRequest) []labelSet {
	primary := labelSet{{"namespace", req.Namespace}, {"pod", req.Pod}}
	fallbackK8s := labelSet{{"k8s_namespace", req.Namespace}, {"k8s_pod", req.Pod}}
	fallbackPodName := labelSet{{"namespace", req.Namespace}, {"pod_name", req.Pod}}

	var attempts []labelSet
	if req.Container != "" {
		attempts = append(attempts, append(append(labelSet{}, primary...), labelPair{"container", req.Container}))
	}
	attempts = append(attempts, primary)
	if req.Container != "" {
		attempts = append(attempts, append(append(labelSet{}, fallbackK8s...), labelPair{"container", req.Container}))
	}
	attempts = append(attempts, fallbackK8s)
	if req.Container != "" {
		attempts = append(attempts, append(append(labelSet{}, fallbackPodName...), labelPair{"container", req.Container}))
	}
	attempts = append(attempts, fallbackPodName)
	return attempts
}

// fetchFromLoki implements the Loki/LogQL dialect: try standard k8s labels,
// then k8s_-prefixed labels, then pod_name, each with-and-without container.
func fetchFromLoki(ctx context.Context, doer httpDoer, baseURL string, req FetchRequest) FetchResult {
	regexFields := map[string]bool{}
	if req.UseRegex {
		regexFields = map[string]bool{"pod": true, "k8s_pod": true, "pod_name": true}
	}

	var firstQuery, lastQuery string
	for _, labels := range lokiAttempts(req) {
		query := labelsToLogQL(labels, regexFields)
		if firstQuery == "" {
			firstQuery = query
		}
		lastQuery = query

		entries, reason := tryLoki(ctx, doer, baseURL, query, req)
		if entries == nil {
			if reason == "" {
				reason = "unexpected_error"
			}
			return FetchResult{Status: core.LogStatusUnavailable, Reason: reason, Backend: core.BackendLoki, QueryUsed: query}
		}
		if len(entries) > 0 {
			return FetchResult{Entries: toCoreEntries(entries), Status: core.LogStatusOK, Reason: "ok", Backend: core.BackendLoki, QueryUsed: query}
		}
	}

	used := firstQuery
	if used == "" {
		used = lastQuery
	}
	return FetchResult{Status: core.LogStatusEmpty, Reason: "empty", Backend: core.BackendLoki, QueryUsed: used}
}

func toCoreEntries(entries []parsedEntry) []core.LogEntry {
	out := make([]core.LogEntry, len(entries))
	for i, e := range entries {
		out[i] = core.LogEntry{Timestamp: e.timestamp, Message: e.message, Labels: e.labels}
	}
	return out
}
