// Package metrics implements the Prometheus metrics provider (§4.5): the
// range-query surface backing the baseline collector's metric series and the
// instant-query surface backing the promql.instant chat tool.
package metrics

import (
	"context"
	"fmt"
	"time"

	promapi "github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"github.com/sirupsen/logrus"

	"github.com/sreagent/investigator/pkg/core"
)

// Client queries a Prometheus-compatible metrics backend.
type Client struct {
	api promv1.API
	log *logrus.Entry
}

// NewClient builds a Client pointed at baseURL (e.g. the in-cluster
// Prometheus/Thanos query-frontend service).
func NewClient(baseURL string, log *logrus.Entry) (*Client, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	apiClient, err := promapi.NewClient(promapi.Config{Address: baseURL})
	if err != nil {
		return nil, fmt.Errorf("create prometheus client: %w", err)
	}
	return &Client{api: promv1.NewAPI(apiClient), log: log.WithField("component", "metrics_client")}, nil
}

// defaultStep is the range-query resolution used for the baseline metric
// series; fine enough to catch short restart/throttling spikes within a
// typical 1h investigation window without returning an unwieldy series.
const defaultStep = 30 * time.Second

// QueryRange evaluates query over [start, end] and returns one core.Series
// per resulting label set. A query error surfaces as (nil, err); the caller
// is expected to record it as a metrics evidence gap rather than fail the
// collector.
func (c *Client) QueryRange(ctx context.Context, query string, start, end time.Time) ([]core.Series, error) {
	value, warnings, err := c.api.QueryRange(ctx, query, promv1.Range{Start: start, End: end, Step: defaultStep})
	if err != nil {
		return nil, fmt.Errorf("promql_error:%s", classifyPromError(err))
	}
	for _, w := range warnings {
		c.log.WithField("warning", w).Debug("prometheus range query warning")
	}

	matrix, ok := value.(model.Matrix)
	if !ok {
		return nil, fmt.Errorf("promql_error:unexpected_result_type")
	}

	series := make([]core.Series, 0, len(matrix))
	for _, stream := range matrix {
		labels := make(map[string]string, len(stream.Metric))
		for k, v := range stream.Metric {
			labels[string(k)] = string(v)
		}
		samples := make([]core.Sample, 0, len(stream.Values))
		for _, sp := range stream.Values {
			samples = append(samples, core.Sample{
				Timestamp: sp.Timestamp.Time(),
				Value:     float64(sp.Value),
			})
		}
		series = append(series, core.Series{Labels: labels, Samples: samples})
	}
	return series, nil
}

// InstantResult is one labelled (value, timestamp) pair from an instant query.
type InstantResult struct {
	Labels    map[string]string `json:"labels"`
	Value     float64           `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
}

// Instant evaluates query at `at` (or now, if at is zero), backing the
// promql.instant chat tool.
func (c *Client) Instant(ctx context.Context, query string, at time.Time) ([]InstantResult, error) {
	if at.IsZero() {
		at = time.Now()
	}
	value, warnings, err := c.api.Query(ctx, query, at)
	if err != nil {
		return nil, fmt.Errorf("promql_error:%s", classifyPromError(err))
	}
	for _, w := range warnings {
		c.log.WithField("warning", w).Debug("prometheus instant query warning")
	}

	vector, ok := value.(model.Vector)
	if !ok {
		return nil, fmt.Errorf("promql_error:unexpected_result_type")
	}

	results := make([]InstantResult, 0, len(vector))
	for _, sample := range vector {
		labels := make(map[string]string, len(sample.Metric))
		for k, v := range sample.Metric {
			labels[string(k)] = string(v)
		}
		results = append(results, InstantResult{
			Labels:    labels,
			Value:     float64(sample.Value),
			Timestamp: sample.Timestamp.Time(),
		})
	}
	return results, nil
}

// classifyPromError reduces a client_golang error into a short kind string
// for the promql_error:<kind> error-code contract (§6).
func classifyPromError(err error) string {
	var apiErr *promv1.Error
	if asAPIError(err, &apiErr) {
		return string(apiErr.Type)
	}
	return "connection_error"
}

func asAPIError(err error, target **promv1.Error) bool {
	if e, ok := err.(*promv1.Error); ok {
		*target = e
		return true
	}
	return false
}
