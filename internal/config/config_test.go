package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
cluster_name: "prod-east"
logs:
  url: "http://loki.internal:3100"
  backend: "loki"
  timeout: 15s
aws:
  region: "eu-west-1"
  evidence_enabled: true
  cloudtrail_lookback_minutes: 45
  cloudtrail_max_events: 75
github:
  evidence_enabled: true
  default_org: "myorg"
llm:
  provider: "anthropic"
  model: "claude-x"
  temperature: 0.5
  max_output_tokens: 2048
  timeout: 60s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ClusterName != "prod-east" {
		t.Errorf("ClusterName = %q", cfg.ClusterName)
	}
	if cfg.Logs.URL != "http://loki.internal:3100" || cfg.Logs.Backend != "loki" {
		t.Errorf("Logs = %+v", cfg.Logs)
	}
	if cfg.Logs.TimeoutSeconds != 15*time.Second {
		t.Errorf("Logs.TimeoutSeconds = %v", cfg.Logs.TimeoutSeconds)
	}
	if cfg.AWS.Region != "eu-west-1" || !cfg.AWS.EvidenceEnabled || cfg.AWS.CloudTrailLookbackMinutes != 45 || cfg.AWS.CloudTrailMaxEvents != 75 {
		t.Errorf("AWS = %+v", cfg.AWS)
	}
	if !cfg.GitHub.EvidenceEnabled || cfg.GitHub.DefaultOrg != "myorg" {
		t.Errorf("GitHub = %+v", cfg.GitHub)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.LLM.Model != "claude-x" || cfg.LLM.Temperature != 0.5 || cfg.LLM.MaxOutputTokens != 2048 {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AWS.Region != "us-east-1" {
		t.Errorf("default AWS.Region = %q", cfg.AWS.Region)
	}
	if cfg.LLM.Provider != "vertexai" {
		t.Errorf("default LLM.Provider = %q", cfg.LLM.Provider)
	}
	if cfg.Logs.TimeoutSeconds != 10*time.Second {
		t.Errorf("default Logs.TimeoutSeconds = %v", cfg.Logs.TimeoutSeconds)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CLUSTER_NAME", "env-cluster")
	t.Setenv("LOGS_URL", "http://victorialogs:9428")
	t.Setenv("LOGS_TIMEOUT_SECONDS", "5")
	t.Setenv("AWS_EVIDENCE_ENABLED", "yes")
	t.Setenv("LLM_ENABLED", "on")
	t.Setenv("LLM_MAX_OUTPUT_TOKENS", "99999") // should clamp to 8192

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ClusterName != "env-cluster" {
		t.Errorf("ClusterName = %q", cfg.ClusterName)
	}
	if cfg.Logs.URL != "http://victorialogs:9428" {
		t.Errorf("Logs.URL = %q", cfg.Logs.URL)
	}
	if cfg.Logs.TimeoutSeconds != 5*time.Second {
		t.Errorf("Logs.TimeoutSeconds = %v", cfg.Logs.TimeoutSeconds)
	}
	if !cfg.AWS.EvidenceEnabled {
		t.Error("AWS.EvidenceEnabled should be true from 'yes'")
	}
	if !cfg.LLM.Enabled {
		t.Error("LLM.Enabled should be true from 'on'")
	}
	if cfg.LLM.MaxOutputTokens != 8192 {
		t.Errorf("LLM.MaxOutputTokens should clamp to 8192, got %d", cfg.LLM.MaxOutputTokens)
	}
}

func TestApplyEnvOverrides_K8s(t *testing.T) {
	t.Setenv("KUBECONFIG", "/tmp/kubeconfig")
	t.Setenv("K8S_CONTEXT", "staging")
	t.Setenv("KUBERNETES_SERVICE_HOST", "10.0.0.1")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.K8s.Kubeconfig != "/tmp/kubeconfig" {
		t.Errorf("K8s.Kubeconfig = %q", cfg.K8s.Kubeconfig)
	}
	if cfg.K8s.Context != "staging" {
		t.Errorf("K8s.Context = %q", cfg.K8s.Context)
	}
	if !cfg.K8s.InCluster {
		t.Error("K8s.InCluster should be true when KUBERNETES_SERVICE_HOST is set")
	}
}

func TestParseBool(t *testing.T) {
	truthy := []string{"1", "true", "TRUE", "yes", "y", "on", " On "}
	for _, v := range truthy {
		if !ParseBool(v) {
			t.Errorf("ParseBool(%q) = false, want true", v)
		}
	}
	falsy := []string{"0", "false", "no", "", "maybe"}
	for _, v := range falsy {
		if ParseBool(v) {
			t.Errorf("ParseBool(%q) = true, want false", v)
		}
	}
}

func TestValidate_RejectsUnknownLogsBackend(t *testing.T) {
	cfg := defaults()
	cfg.Logs.Backend = "splunk"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error for unknown logs backend")
	}
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	cfg := defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil for defaults", err)
	}
}

func TestClampBounds(t *testing.T) {
	cfg := defaults()
	cfg.Logs.TimeoutSeconds = 0
	cfg.LLM.Timeout = 0
	cfg.LLM.MaxOutputTokens = 1
	cfg.LLM.Temperature = 5
	clampBounds(cfg)

	if cfg.Logs.TimeoutSeconds != time.Second {
		t.Errorf("Logs.TimeoutSeconds = %v, want 1s floor", cfg.Logs.TimeoutSeconds)
	}
	if cfg.LLM.Timeout != 5*time.Second {
		t.Errorf("LLM.Timeout = %v, want 5s floor", cfg.LLM.Timeout)
	}
	if cfg.LLM.MaxOutputTokens != 64 {
		t.Errorf("LLM.MaxOutputTokens = %d, want 64 floor", cfg.LLM.MaxOutputTokens)
	}
	if cfg.LLM.Temperature != 1 {
		t.Errorf("LLM.Temperature = %v, want 1 ceiling", cfg.LLM.Temperature)
	}
}
