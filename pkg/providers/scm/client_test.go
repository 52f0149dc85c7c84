package scm

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type fakeRoundTrip struct {
	status int
	body   string
	header http.Header
}

type fakeDoer struct {
	responses map[string]fakeRoundTrip
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	for substr, rt := range f.responses {
		if strings.Contains(req.URL.String(), substr) {
			header := rt.header
			if header == nil {
				header = http.Header{}
			}
			return &http.Response{
				StatusCode: rt.status,
				Body:       io.NopCloser(strings.NewReader(rt.body)),
				Header:     header,
			}, nil
		}
	}
	return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader("{}"))}, nil
}

func testClient(t *testing.T, doer *fakeDoer) *Client {
	t.Helper()
	cache, err := newTokenCache("app-1", "inst-1", testPrivateKeyPEM(t), func(string) (string, time.Time, error) {
		return "installation-token", time.Now().Add(time.Hour), nil
	})
	if err != nil {
		t.Fatalf("newTokenCache() error = %v", err)
	}
	return &Client{baseURL: defaultBaseURL, http: doer, tokens: cache}
}

func TestRecentCommits_Parses(t *testing.T) {
	doer := &fakeDoer{responses: map[string]fakeRoundTrip{
		"/commits": {status: http.StatusOK, body: `[
			{"sha":"abc123","commit":{"message":"fix bug","author":{"name":"alice","date":"2026-07-29T10:00:00Z"}}}
		]`},
	}}
	c := testClient(t, doer)

	commits, err := c.RecentCommits(context.Background(), "myorg/web", 10)
	if err != nil {
		t.Fatalf("RecentCommits() error = %v", err)
	}
	if len(commits) != 1 || commits[0]["sha"] != "abc123" {
		t.Errorf("commits = %+v", commits)
	}
}

func TestWorkflowRuns_Parses(t *testing.T) {
	doer := &fakeDoer{responses: map[string]fakeRoundTrip{
		"/actions/runs": {status: http.StatusOK, body: `{"workflow_runs":[
			{"id":1,"name":"CI","status":"completed","conclusion":"failure","created_at":"2026-07-29T10:00:00Z","html_url":"http://x"}
		]}`},
	}}
	c := testClient(t, doer)

	runs, err := c.WorkflowRuns(context.Background(), "myorg/web", 10)
	if err != nil {
		t.Fatalf("WorkflowRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0]["conclusion"] != "failure" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestRepoExists_TrueAndFalse(t *testing.T) {
	doer := &fakeDoer{responses: map[string]fakeRoundTrip{
		"/repos/myorg/web": {status: http.StatusOK, body: `{}`},
	}}
	c := testClient(t, doer)

	ok, err := c.RepoExists(context.Background(), "myorg/web")
	if err != nil || !ok {
		t.Errorf("RepoExists(myorg/web) = %v, %v, want true, nil", ok, err)
	}

	ok, err = c.RepoExists(context.Background(), "myorg/missing")
	if err != nil || ok {
		t.Errorf("RepoExists(myorg/missing) = %v, %v, want false, nil", ok, err)
	}
}

func TestReadme_DecodesBase64(t *testing.T) {
	doer := &fakeDoer{responses: map[string]fakeRoundTrip{
		"/readme": {status: http.StatusOK, body: `{"content":"SGVsbG8=","encoding":"base64"}`},
	}}
	c := testClient(t, doer)

	readme, err := c.Readme(context.Background(), "myorg/web")
	if err != nil {
		t.Fatalf("Readme() error = %v", err)
	}
	if readme != "Hello" {
		t.Errorf("readme = %q, want Hello", readme)
	}
}

func TestDocs_FiltersMarkdownFiles(t *testing.T) {
	doer := &fakeDoer{responses: map[string]fakeRoundTrip{
		"/contents/docs": {status: http.StatusOK, body: `[
			{"name":"guide.md","type":"file"},
			{"name":"logo.png","type":"file"},
			{"name":"nested","type":"dir"}
		]`},
	}}
	c := testClient(t, doer)

	docs, err := c.Docs(context.Background(), "myorg/web")
	if err != nil {
		t.Fatalf("Docs() error = %v", err)
	}
	if len(docs) != 1 || docs[0] != "guide.md" {
		t.Errorf("docs = %v", docs)
	}
}

func TestFile_DecodesBase64(t *testing.T) {
	doer := &fakeDoer{responses: map[string]fakeRoundTrip{
		"/contents/deploy.yaml": {status: http.StatusOK, body: `{"content":"cmVwbGljYXM6IDM=","encoding":"base64"}`},
	}}
	c := testClient(t, doer)

	content, err := c.File(context.Background(), "myorg/web", "deploy.yaml", "")
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if content != "replicas: 3" {
		t.Errorf("content = %q, want %q", content, "replicas: 3")
	}
}

func TestFile_NotFound(t *testing.T) {
	doer := &fakeDoer{responses: map[string]fakeRoundTrip{}}
	c := testClient(t, doer)

	_, err := c.File(context.Background(), "myorg/web", "missing.yaml", "")
	if err == nil {
		t.Fatal("File() error = nil, want error for missing file")
	}
}

func TestDiff_ReturnsUnifiedDiff(t *testing.T) {
	const diffBody = "diff --git a/deploy.yaml b/deploy.yaml\n-replicas: 2\n+replicas: 3\n"
	doer := &fakeDoer{responses: map[string]fakeRoundTrip{
		"/compare/main...feature": {status: http.StatusOK, body: diffBody},
	}}
	c := testClient(t, doer)

	diff, err := c.Diff(context.Background(), "myorg/web", "main", "feature")
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if diff != diffBody {
		t.Errorf("diff = %q, want %q", diff, diffBody)
	}
}
