// Package logs implements the dual-dialect logs client (§4.3): it
// auto-detects Loki (LogQL) vs VictoriaLogs (LogsQL) from the configured URL,
// walks a fixed label-fallback ladder, and returns a bounded newest-N tail.
package logs

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sreagent/investigator/internal/config"
	"github.com/sreagent/investigator/pkg/core"
)

// victoriaLogsDefaultURL is the local-dev fallback used when LOGS_URL is
// unset and the process is not running in-cluster.
const victoriaLogsDefaultURL = "http://localhost:19471"

// httpDoer is the seam that lets tests inject a fake transport instead of
// making real network calls.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchRequest describes one logs lookup.
type FetchRequest struct {
	Pod       string
	Namespace string
	Container string
	Start     time.Time
	End       time.Time
	Limit     int
	UseRegex  bool
}

// FetchResult mirrors core.LogsEvidence but stays provider-local so callers
// decide how/whether to merge it into the Investigation (via
// Evidence.SetLogsResult, which enforces the monotonic-slot invariant).
type FetchResult struct {
	Entries   []core.LogEntry
	Status    core.LogStatus
	Reason    string
	Backend   core.LogsBackend
	QueryUsed string
}

func (r FetchResult) toEvidence() core.LogsEvidence {
	return core.LogsEvidence{
		Entries:   r.Entries,
		Status:    r.Status,
		Reason:    r.Reason,
		Backend:   r.Backend,
		QueryUsed: r.QueryUsed,
	}
}

// ToEvidence converts a FetchResult to the core.LogsEvidence shape used by
// Evidence.SetLogsResult.
func ToEvidence(r FetchResult) core.LogsEvidence { return r.toEvidence() }

// parsedEntry is the dialect-agnostic parsed form used before conversion to
// core.LogEntry.
type parsedEntry struct {
	timestamp time.Time
	message   string
	labels    map[string]string
}

// Client fetches recent logs for a pod, auto-detecting backend dialect.
type Client struct {
	cfg       config.LogsConfig
	http      httpDoer
	inCluster bool
	log       *logrus.Entry
}

// NewClient builds a Client from resolved logs configuration. inCluster
// mirrors the presence of KUBERNETES_SERVICE_HOST in the original agent: it
// only affects whether the local-dev default URL applies.
func NewClient(cfg config.LogsConfig, inCluster bool, log *logrus.Entry) *Client {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: timeout},
		inCluster: inCluster,
		log:       log.WithField("component", "logs_client"),
	}
}

// WithHTTPClient overrides the HTTP transport, used by tests to inject a
// fake doer.
func (c *Client) WithHTTPClient(d httpDoer) *Client {
	c.http = d
	return c
}

func detectBackend(cfg config.LogsConfig, url string) core.LogsBackend {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "loki":
		return core.BackendLoki
	case "victorialogs":
		return core.BackendVictoriaLogs
	}
	if strings.Contains(strings.ToLower(url), "loki") {
		return core.BackendLoki
	}
	return core.BackendVictoriaLogs
}

// Fetch retrieves recent logs for req, auto-detecting backend dialect and
// walking the label fallback ladder until logs are found, the backend is
// unreachable, or every variant returns empty.
func (c *Client) Fetch(ctx context.Context, req FetchRequest) FetchResult {
	if req.Limit <= 0 {
		req.Limit = 400
	}

	url := strings.TrimSpace(c.cfg.URL)
	if url == "" {
		if !c.inCluster {
			url = victoriaLogsDefaultURL
		}
		if url == "" {
			return FetchResult{Status: core.LogStatusUnavailable, Reason: "not_configured"}
		}
	}

	backend := detectBackend(c.cfg, url)
	c.log.WithFields(logrus.Fields{
		"backend":   backend,
		"namespace": req.Namespace,
		"pod":       req.Pod,
	}).Debug("fetching logs")

	if backend == core.BackendLoki {
		return fetchFromLoki(ctx, c.http, url, req)
	}
	return fetchFromVictoriaLogs(ctx, c.http, url, req)
}
