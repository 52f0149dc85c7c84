// Package scm implements the GitHub evidence provider (§4.5): REST calls
// for recent commits, workflow runs, README/docs, and the repo-discovery
// fallback chain (§4.2), authenticated via a cached GitHub App installation
// token.
package scm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sreagent/investigator/internal/config"
)

const defaultBaseURL = "https://api.github.com"

// httpDoer is the HTTP seam, mirroring the logs/metrics providers' testing idiom.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a narrow, read-only façade over the GitHub REST API.
type Client struct {
	baseURL string
	http    httpDoer
	tokens  *tokenCache
	log     *logrus.Entry
}

// NewClient builds a Client from the process's GitHub App configuration.
// When cfg.EvidenceEnabled is false or credentials are incomplete, NewClient
// returns (nil, nil): the caller treats a nil Client as "SCM evidence
// disabled" rather than an error.
func NewClient(cfg config.GitHubConfig, log *logrus.Entry) (*Client, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if !cfg.EvidenceEnabled {
		return nil, nil
	}
	if cfg.AppID == "" || cfg.AppPrivateKey == "" || cfg.InstallationID == "" {
		return nil, nil
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	tokens, err := newTokenCache(cfg.AppID, cfg.InstallationID, cfg.AppPrivateKey, func(appJWT string) (string, time.Time, error) {
		return exchangeInstallationToken(httpClient, defaultBaseURL, cfg.InstallationID, appJWT)
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: defaultBaseURL,
		http:    httpClient,
		tokens:  tokens,
		log:     log.WithField("component", "scm_client"),
	}, nil
}

// WithHTTPClient overrides the HTTP seam, used by tests.
func (c *Client) WithHTTPClient(d httpDoer) *Client {
	c.http = d
	return c
}

func exchangeInstallationToken(client *http.Client, baseURL, installationID, appJWT string) (string, time.Time, error) {
	url := fmt.Sprintf("%s/app/installations/%s/access_tokens", baseURL, installationID)
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Authorization", "Bearer "+appJWT)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("github_error:installation_token_http_%d", resp.StatusCode)
	}

	var payload struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", time.Time{}, err
	}
	return payload.Token, payload.ExpiresAt, nil
}

func (c *Client) authedRequest(ctx context.Context, method, path string) (*http.Request, error) {
	token, err := c.tokens.Token(time.Now())
	if err != nil {
		return nil, fmt.Errorf("github_error:auth")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	return req, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := c.authedRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	return c.http.Do(req)
}

// RepoExists GET-checks repo ("org/name") against the GitHub API, backing
// the naming-convention discovery step's verification pass.
func (c *Client) RepoExists(ctx context.Context, repo string) (bool, error) {
	req, err := c.authedRequest(ctx, http.MethodGet, "/repos/"+repo)
	if err != nil {
		return false, fmt.Errorf("github_error:auth")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("github_error:connection")
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// RecentCommits returns up to limit commits on repo's default branch.
func (c *Client) RecentCommits(ctx context.Context, repo string, limit int) ([]map[string]interface{}, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/repos/%s/commits?per_page=%d", repo, limit))
	if err != nil {
		return nil, fmt.Errorf("github_error:connection")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github_error:http_%d", resp.StatusCode)
	}

	var raw []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Name string    `json:"name"`
				Date time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("github_error:decode")
	}

	out := make([]map[string]interface{}, 0, len(raw))
	for _, commit := range raw {
		out = append(out, map[string]interface{}{
			"sha":     commit.SHA,
			"message": commit.Commit.Message,
			"author":  commit.Commit.Author.Name,
			"date":    commit.Commit.Author.Date,
		})
	}
	return out, nil
}

// WorkflowRuns returns up to limit recent Actions workflow runs for repo.
func (c *Client) WorkflowRuns(ctx context.Context, repo string, limit int) ([]map[string]interface{}, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/repos/%s/actions/runs?per_page=%d", repo, limit))
	if err != nil {
		return nil, fmt.Errorf("github_error:connection")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github_error:http_%d", resp.StatusCode)
	}

	var payload struct {
		WorkflowRuns []struct {
			ID         int64     `json:"id"`
			Name       string    `json:"name"`
			Status     string    `json:"status"`
			Conclusion string    `json:"conclusion"`
			CreatedAt  time.Time `json:"created_at"`
			HTMLURL    string    `json:"html_url"`
		} `json:"workflow_runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("github_error:decode")
	}

	out := make([]map[string]interface{}, 0, len(payload.WorkflowRuns))
	for _, r := range payload.WorkflowRuns {
		out = append(out, map[string]interface{}{
			"id":         r.ID,
			"name":       r.Name,
			"status":     r.Status,
			"conclusion": r.Conclusion,
			"created_at": r.CreatedAt,
			"html_url":   r.HTMLURL,
		})
	}
	return out, nil
}

// FailedWorkflowLogs returns the log archive URL for a failed workflow run
// (GitHub returns a redirect to a short-lived blob URL rather than the
// bytes themselves; callers fetch the URL separately with redaction applied).
func (c *Client) FailedWorkflowLogs(ctx context.Context, repo string, runID int64) (string, error) {
	req, err := c.authedRequest(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/actions/runs/%d/logs", repo, runID))
	if err != nil {
		return "", fmt.Errorf("github_error:auth")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("github_error:connection")
	}
	defer resp.Body.Close()
	if loc := resp.Header.Get("Location"); loc != "" {
		return loc, nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github_error:http_%d", resp.StatusCode)
	}
	return "", nil
}

// Readme returns the decoded contents of repo's README.
func (c *Client) Readme(ctx context.Context, repo string) (string, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/repos/%s/readme", repo))
	if err != nil {
		return "", fmt.Errorf("github_error:connection")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github_error:http_%d", resp.StatusCode)
	}

	var payload struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("github_error:decode")
	}
	if payload.Encoding != "base64" {
		return payload.Content, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("github_error:decode")
	}
	return string(decoded), nil
}

// File returns the decoded contents of path at repo's default branch (or
// ref, when non-empty), backing the `github.file` tool.
func (c *Client) File(ctx context.Context, repo, path, ref string) (string, error) {
	url := fmt.Sprintf("/repos/%s/contents/%s", repo, path)
	if ref != "" {
		url += "?ref=" + ref
	}
	resp, err := c.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("github_error:connection")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github_error:http_%d", resp.StatusCode)
	}

	var payload struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("github_error:decode")
	}
	if payload.Encoding != "base64" {
		return payload.Content, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("github_error:decode")
	}
	return string(decoded), nil
}

// Diff returns the unified diff between base and head (commit SHAs, tags,
// or branch names), backing the `github.diff` tool.
func (c *Client) Diff(ctx context.Context, repo, base, head string) (string, error) {
	req, err := c.authedRequest(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/compare/%s...%s", repo, base, head))
	if err != nil {
		return "", fmt.Errorf("github_error:auth")
	}
	req.Header.Set("Accept", "application/vnd.github.v3.diff")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("github_error:connection")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github_error:http_%d", resp.StatusCode)
	}
	body, err := readAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("github_error:decode")
	}
	return body, nil
}

func readAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Docs lists markdown files under repo's docs/ directory, if present.
func (c *Client) Docs(ctx context.Context, repo string) ([]string, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/repos/%s/contents/docs", repo))
	if err != nil {
		return nil, fmt.Errorf("github_error:connection")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github_error:http_%d", resp.StatusCode)
	}

	var entries []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("github_error:decode")
	}

	docs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type == "file" && strings.HasSuffix(e.Name, ".md") {
			docs = append(docs, e.Name)
		}
	}
	return docs, nil
}
