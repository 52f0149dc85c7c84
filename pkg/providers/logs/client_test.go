package logs

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sreagent/investigator/internal/config"
	"github.com/sreagent/investigator/pkg/core"
)

// fakeDoer scripts canned responses keyed by substring match against the
// request URL, in the order they were registered; the first match wins.
type fakeDoer struct {
	calls []string
	rules []fakeRule
}

type fakeRule struct {
	match  string
	status int
	body   string
}

func (f *fakeDoer) on(match string, status int, body string) *fakeDoer {
	f.rules = append(f.rules, fakeRule{match: match, status: status, body: body})
	return f
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	raw := req.URL.String()
	f.calls = append(f.calls, raw)
	for _, r := range f.rules {
		if strings.Contains(raw, r.match) {
			return &http.Response{StatusCode: r.status, Body: io.NopCloser(strings.NewReader(r.body))}, nil
		}
	}
	return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func testReq() FetchRequest {
	return FetchRequest{
		Pod:       "web-1",
		Namespace: "prod",
		Start:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC),
		Limit:     400,
	}
}

// TestFetch_VictoriaLogs_NDJSON covers S3: two NDJSON lines parse into two
// entries, message falls back through _msg/message/msg/log/text.
func TestFetch_VictoriaLogs_NDJSON(t *testing.T) {
	ndjson := `{"_time":"2025-01-01T00:10:00Z","_msg":"first line","pod":"web-1","namespace":"prod"}
{"_time":"2025-01-01T00:20:00Z","message":"second line","pod":"web-1","namespace":"prod"}`

	doer := (&fakeDoer{}).on("/select/logsql/query", 200, ndjson)
	c := NewClient(config.LogsConfig{URL: "http://vlogs.internal:9428"}, true, nil).WithHTTPClient(doer)

	result := c.Fetch(context.Background(), testReq())

	if result.Status != core.LogStatusOK {
		t.Fatalf("status = %v, want ok (reason=%s)", result.Status, result.Reason)
	}
	if result.Backend != core.BackendVictoriaLogs {
		t.Errorf("backend = %v, want victorialogs", result.Backend)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(result.Entries))
	}
	if result.Entries[0].Message != "first line" || result.Entries[1].Message != "second line" {
		t.Errorf("unexpected messages: %+v", result.Entries)
	}
}

// TestFetch_VictoriaLogs_TailLimit covers P6: limit keeps the newest N
// entries, not the first N parsed.
func TestFetch_VictoriaLogs_TailLimit(t *testing.T) {
	ndjson := `{"_time":"2025-01-01T00:10:00Z","_msg":"oldest"}
{"_time":"2025-01-01T00:20:00Z","_msg":"middle"}
{"_time":"2025-01-01T00:30:00Z","_msg":"newest"}`

	doer := (&fakeDoer{}).on("/select/logsql/query", 200, ndjson)
	c := NewClient(config.LogsConfig{URL: "http://vlogs.internal:9428"}, true, nil).WithHTTPClient(doer)

	req := testReq()
	req.Limit = 1
	result := c.Fetch(context.Background(), req)

	if len(result.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(result.Entries))
	}
	if result.Entries[0].Message != "newest" {
		t.Errorf("message = %q, want %q (should keep newest, not first)", result.Entries[0].Message, "newest")
	}
}

// TestFetch_Loki_K8sPrefixFallback covers S4: primary namespace/pod labels
// return empty, k8s_-prefixed labels return entries.
func TestFetch_Loki_K8sPrefixFallback(t *testing.T) {
	primaryEmpty := `{"data":{"result":[]}}`
	fallbackHit := `{"data":{"result":[{"stream":{"k8s_namespace":"prod","k8s_pod":"web-1"},"values":[["1735689000000000000","fallback line"]]}]}}`

	doer := &fakeDoer{}
	doer.on(url.QueryEscape(`{namespace="prod", pod="web-1"}`), 200, primaryEmpty)
	doer.on(url.QueryEscape(`{k8s_namespace="prod", k8s_pod="web-1"}`), 200, fallbackHit)

	c := NewClient(config.LogsConfig{URL: "http://loki.internal:3100", Backend: "loki"}, true, nil).WithHTTPClient(doer)

	result := c.Fetch(context.Background(), testReq())

	if result.Status != core.LogStatusOK {
		t.Fatalf("status = %v, want ok (reason=%s, queries=%v)", result.Status, result.Reason, doer.calls)
	}
	if len(result.Entries) != 1 || result.Entries[0].Message != "fallback line" {
		t.Errorf("unexpected entries: %+v", result.Entries)
	}
	if result.Entries[0].Labels["namespace"] != "prod" || result.Entries[0].Labels["pod"] != "web-1" {
		t.Errorf("k8s_ labels should map to standard names, got %+v", result.Entries[0].Labels)
	}
}

// TestFetch_AllEmpty_ReturnsStatusEmpty covers the ladder falling through
// with no hits anywhere.
func TestFetch_AllEmpty_ReturnsStatusEmpty(t *testing.T) {
	doer := (&fakeDoer{}).on("/select/logsql/query", 200, "")
	c := NewClient(config.LogsConfig{URL: "http://vlogs.internal:9428"}, true, nil).WithHTTPClient(doer)

	result := c.Fetch(context.Background(), testReq())

	if result.Status != core.LogStatusEmpty {
		t.Errorf("status = %v, want empty", result.Status)
	}
	if result.QueryUsed == "" {
		t.Error("expected query_used to be populated even for empty result")
	}
}

// TestFetch_NotConfigured covers the not_configured unavailable path when no
// URL is set and the client is not running in-cluster... except the local
// dev default applies there, so assert the in-cluster branch instead.
func TestFetch_NotConfigured_InCluster(t *testing.T) {
	c := NewClient(config.LogsConfig{}, true, nil)
	result := c.Fetch(context.Background(), testReq())
	if result.Status != core.LogStatusUnavailable || result.Reason != "not_configured" {
		t.Errorf("got %+v, want unavailable/not_configured", result)
	}
}

func TestFetch_NotConfigured_LocalDevFallsBackToDefaultURL(t *testing.T) {
	doer := (&fakeDoer{}).on("/select/logsql/query", 200, "")
	c := NewClient(config.LogsConfig{}, false, nil).WithHTTPClient(doer)
	result := c.Fetch(context.Background(), testReq())
	if result.Status != core.LogStatusEmpty {
		t.Errorf("status = %v, want empty (local-dev default URL should have been used)", result.Status)
	}
}

func TestFetch_HTTPError_ReturnsUnavailable(t *testing.T) {
	doer := (&fakeDoer{}).on("/select/logsql/query", 503, "")
	c := NewClient(config.LogsConfig{URL: "http://vlogs.internal:9428"}, true, nil).WithHTTPClient(doer)
	result := c.Fetch(context.Background(), testReq())
	if result.Status != core.LogStatusUnavailable || result.Reason != "http_error" {
		t.Errorf("got %+v, want unavailable/http_error", result)
	}
}
