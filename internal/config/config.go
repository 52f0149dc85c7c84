// Package config loads process configuration for the investigation agent.
//
// Configuration is read from an optional YAML file plus environment variable
// overrides applied on top, matching the recognized keys in the spec's
// external-interfaces table. All keys are optional except where noted.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	sharederrors "github.com/sreagent/investigator/pkg/shared/errors"
)

var validate = validator.New()

// LogsConfig configures the dual-dialect logs client.
type LogsConfig struct {
	URL            string        `yaml:"url" validate:"omitempty,url"`
	Backend        string        `yaml:"backend" validate:"omitempty,oneof=loki victorialogs"`
	TimeoutSeconds time.Duration `yaml:"timeout" validate:"min=1000000000,max=60000000000"`
}

// MetricsConfig configures the Prometheus-compatible metrics provider.
type MetricsConfig struct {
	URL string `yaml:"url" validate:"omitempty,url"`
}

// K8sConfig configures the Kubernetes provider's cluster connection.
type K8sConfig struct {
	Kubeconfig string `yaml:"kubeconfig"`
	Context    string `yaml:"context"`
	InCluster  bool   `yaml:"in_cluster"`
}

// AWSConfig configures the optional cloud evidence collector.
type AWSConfig struct {
	Region                    string `yaml:"region"`
	EvidenceEnabled           bool   `yaml:"evidence_enabled"`
	CloudTrailLookbackMinutes int    `yaml:"cloudtrail_lookback_minutes" validate:"min=0"`
	CloudTrailMaxEvents       int    `yaml:"cloudtrail_max_events" validate:"min=0"`
}

// GitHubConfig configures the optional SCM evidence collector and discovery chain.
type GitHubConfig struct {
	EvidenceEnabled bool   `yaml:"evidence_enabled"`
	AppID           string `yaml:"app_id"`
	AppPrivateKey   string `yaml:"app_private_key"`
	InstallationID  string `yaml:"installation_id"`
	DefaultOrg      string `yaml:"default_org"`
}

// LLMConfig configures the provider-agnostic LLM client.
type LLMConfig struct {
	Provider        string        `yaml:"provider" validate:"omitempty,oneof=vertexai anthropic"`
	Model           string        `yaml:"model"`
	Temperature     float32       `yaml:"temperature" validate:"min=0,max=1"`
	MaxOutputTokens int           `yaml:"max_output_tokens" validate:"min=64,max=8192"`
	Timeout         time.Duration `yaml:"timeout" validate:"min=5000000000,max=300000000000"`
	Mock            bool          `yaml:"mock"`
	Enabled         bool          `yaml:"enabled"`
	IncludeLogs     bool          `yaml:"include_logs"`

	GoogleCloudProject  string `yaml:"google_cloud_project"`
	GoogleCloudLocation string `yaml:"google_cloud_location"`
	AnthropicAPIKey     string `yaml:"anthropic_api_key"`
}

// Config is the fully-resolved process configuration.
type Config struct {
	ClusterName string        `yaml:"cluster_name"`
	K8s         K8sConfig     `yaml:"k8s"`
	Logs        LogsConfig    `yaml:"logs"`
	Metrics     MetricsConfig `yaml:"metrics"`
	AWS         AWSConfig     `yaml:"aws"`
	GitHub      GitHubConfig  `yaml:"github"`
	LLM         LLMConfig     `yaml:"llm"`
}

func defaults() *Config {
	return &Config{
		Logs: LogsConfig{TimeoutSeconds: 10 * time.Second},
		AWS: AWSConfig{
			Region:                    "us-east-1",
			CloudTrailLookbackMinutes: 30,
			CloudTrailMaxEvents:       50,
		},
		LLM: LLMConfig{
			Provider:        "vertexai",
			Temperature:     0.2,
			MaxOutputTokens: 1024,
			Timeout:         180 * time.Second,
		},
	}
}

// Load reads configuration from an optional YAML file at path (skipped if it
// doesn't exist), then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	clampBounds(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field-level constraints (URL shape, enum membership,
// numeric ranges) beyond what clampBounds silently corrects; clampBounds
// handles drift from stale env values, Validate rejects YAML that is simply
// wrong (e.g. logs.backend: "splunk").
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return sharederrors.FailedToWithDetails("validate configuration", "config", "", err)
	}
	return nil
}

// LoadFromEnv loads an optional .env file (local-dev convenience, ignored if
// absent) and then builds configuration purely from the environment.
func LoadFromEnv(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		_ = godotenv.Load(dotenvPath)
	}
	cfg := defaults()
	applyEnvOverrides(cfg)
	clampBounds(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("CLUSTER_NAME")); v != "" {
		cfg.ClusterName = v
	}
	if v := strings.TrimSpace(os.Getenv("KUBECONFIG")); v != "" {
		cfg.K8s.Kubeconfig = v
	}
	if v := strings.TrimSpace(os.Getenv("K8S_CONTEXT")); v != "" {
		cfg.K8s.Context = v
	}
	if has("KUBERNETES_SERVICE_HOST") {
		cfg.K8s.InCluster = true
	}
	if v := strings.TrimSpace(os.Getenv("LOGS_URL")); v != "" {
		cfg.Logs.URL = v
	}
	if v := strings.TrimSpace(strings.ToLower(os.Getenv("LOGS_BACKEND"))); v == "loki" || v == "victorialogs" {
		cfg.Logs.Backend = v
	}
	if v := envInt("LOGS_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.Logs.TimeoutSeconds = time.Duration(v) * time.Second
	}
	if v := strings.TrimSpace(os.Getenv("METRICS_URL")); v != "" {
		cfg.Metrics.URL = v
	}

	if v := strings.TrimSpace(os.Getenv("AWS_REGION")); v != "" {
		cfg.AWS.Region = v
	}
	if has("AWS_EVIDENCE_ENABLED") {
		cfg.AWS.EvidenceEnabled = envBool("AWS_EVIDENCE_ENABLED", cfg.AWS.EvidenceEnabled)
	}
	if v := envInt("AWS_CLOUDTRAIL_LOOKBACK_MINUTES", 0); v > 0 {
		cfg.AWS.CloudTrailLookbackMinutes = v
	}
	if v := envInt("AWS_CLOUDTRAIL_MAX_EVENTS", 0); v > 0 {
		cfg.AWS.CloudTrailMaxEvents = v
	}

	if has("GITHUB_EVIDENCE_ENABLED") {
		cfg.GitHub.EvidenceEnabled = envBool("GITHUB_EVIDENCE_ENABLED", cfg.GitHub.EvidenceEnabled)
	}
	if v := strings.TrimSpace(os.Getenv("GITHUB_APP_ID")); v != "" {
		cfg.GitHub.AppID = v
	}
	if v := strings.TrimSpace(os.Getenv("GITHUB_APP_PRIVATE_KEY")); v != "" {
		cfg.GitHub.AppPrivateKey = v
	}
	if v := strings.TrimSpace(os.Getenv("GITHUB_APP_INSTALLATION_ID")); v != "" {
		cfg.GitHub.InstallationID = v
	}
	if v := strings.TrimSpace(os.Getenv("GITHUB_DEFAULT_ORG")); v != "" {
		cfg.GitHub.DefaultOrg = v
	}

	if v := strings.TrimSpace(strings.ToLower(os.Getenv("LLM_PROVIDER"))); v != "" {
		cfg.LLM.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv("LLM_MODEL")); v != "" {
		cfg.LLM.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("LLM_TEMPERATURE")); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(f)
		}
	}
	if v := envInt("LLM_MAX_OUTPUT_TOKENS", 0); v > 0 {
		cfg.LLM.MaxOutputTokens = v
	}
	if v := envInt("LLM_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.LLM.Timeout = time.Duration(v) * time.Second
	}
	if has("LLM_MOCK") {
		cfg.LLM.Mock = envBool("LLM_MOCK", cfg.LLM.Mock)
	}
	if has("LLM_ENABLED") {
		cfg.LLM.Enabled = envBool("LLM_ENABLED", cfg.LLM.Enabled)
	}
	if has("LLM_INCLUDE_LOGS") {
		cfg.LLM.IncludeLogs = envBool("LLM_INCLUDE_LOGS", cfg.LLM.IncludeLogs)
	}
	if v := strings.TrimSpace(os.Getenv("GOOGLE_CLOUD_PROJECT")); v != "" {
		cfg.LLM.GoogleCloudProject = v
	}
	if v := strings.TrimSpace(os.Getenv("GOOGLE_CLOUD_LOCATION")); v != "" {
		cfg.LLM.GoogleCloudLocation = v
	}
	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
		cfg.LLM.AnthropicAPIKey = v
	}
}

func clampBounds(cfg *Config) {
	if cfg.Logs.TimeoutSeconds < time.Second {
		cfg.Logs.TimeoutSeconds = time.Second
	}
	if cfg.Logs.TimeoutSeconds > 60*time.Second {
		cfg.Logs.TimeoutSeconds = 60 * time.Second
	}
	if cfg.LLM.Timeout < 5*time.Second {
		cfg.LLM.Timeout = 5 * time.Second
	}
	if cfg.LLM.Timeout > 300*time.Second {
		cfg.LLM.Timeout = 300 * time.Second
	}
	if cfg.LLM.MaxOutputTokens < 64 {
		cfg.LLM.MaxOutputTokens = 64
	}
	if cfg.LLM.MaxOutputTokens > 8192 {
		cfg.LLM.MaxOutputTokens = 8192
	}
	if cfg.LLM.Temperature < 0 {
		cfg.LLM.Temperature = 0
	}
	if cfg.LLM.Temperature > 1 {
		cfg.LLM.Temperature = 1
	}
}

func has(name string) bool {
	_, ok := os.LookupEnv(name)
	return ok
}

func envInt(name string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// ParseBool accepts the boolean vocabulary recognized by the spec's process
// configuration: {1, true, yes, y, on} case-insensitively, anything else is false.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func envBool(name string, fallback bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	return ParseBool(v)
}
