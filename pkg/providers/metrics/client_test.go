package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func rangeQueryServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}))
}

func TestQueryRange_ParsesMatrix(t *testing.T) {
	body := `{
		"status": "success",
		"data": {
			"resultType": "matrix",
			"result": [
				{
					"metric": {"namespace": "prod", "pod": "web-1", "container": "app"},
					"values": [[1735689000, "0.42"], [1735689030, "0.51"]]
				}
			]
		}
	}`
	srv := rangeQueryServer(t, body)
	defer srv.Close()

	c, err := NewClient(srv.URL, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	series, err := c.QueryRange(context.Background(), CPUThrottlingQuery("prod", "web-1"),
		time.Unix(1735689000, 0), time.Unix(1735689030, 0))
	if err != nil {
		t.Fatalf("QueryRange() error = %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("got %d series, want 1", len(series))
	}
	if series[0].Labels["pod"] != "web-1" {
		t.Errorf("labels = %+v", series[0].Labels)
	}
	if len(series[0].Samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(series[0].Samples))
	}
	if series[0].Samples[1].Value != 0.51 {
		t.Errorf("sample[1].Value = %v, want 0.51", series[0].Samples[1].Value)
	}
}

func TestQueryRange_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","errorType":"bad_data","error":"invalid query"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = c.QueryRange(context.Background(), "{", time.Now().Add(-time.Hour), time.Now())
	if err == nil {
		t.Fatal("expected an error for bad_data response")
	}
}

func TestInstant_ParsesVector(t *testing.T) {
	body := `{
		"status": "success",
		"data": {
			"resultType": "vector",
			"result": [
				{"metric": {"pod": "web-1"}, "value": [1735689000, "3"]}
			]
		}
	}`
	srv := rangeQueryServer(t, body)
	defer srv.Close()

	c, err := NewClient(srv.URL, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	results, err := c.Instant(context.Background(), `kube_pod_container_status_restarts_total`, time.Time{})
	if err != nil {
		t.Fatalf("Instant() error = %v", err)
	}
	if len(results) != 1 || results[0].Value != 3 {
		t.Errorf("got %+v", results)
	}
}
