// Package llm implements the provider-agnostic LLM client (§4.5): a
// synchronous JSON-generation call and a streaming generator, backed by
// either Anthropic or Vertex AI and selected by configuration, mirroring the
// teacher's pkg/ai/llm NewClient(cfg, logger) (Client, error) factory idiom.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/sreagent/investigator/internal/config"
)

// Result is the outcome of a generate_json call: either a parsed object or
// a stable error code, never both.
type Result struct {
	Object    map[string]interface{}
	ErrorCode string
}

// StreamChunk is one increment of a streaming generation.
type StreamChunk struct {
	Delta     string
	Done      bool
	Cancelled bool
	ErrorCode string
}

// Client is the synchronous JSON-generation and streaming surface every
// concrete provider backend implements.
type Client interface {
	GenerateJSON(ctx context.Context, prompt string, schema map[string]interface{}, enableThinking bool) Result
	GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error)
}

// backend is the raw, unwrapped per-provider implementation; NewClient
// wraps it with the shared retry/circuit-breaker decorator.
type backend interface {
	generate(ctx context.Context, prompt string, schema map[string]interface{}, enableThinking bool) (string, error)
	generateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error)
}

// NewClient validates cfg and builds the Client for the configured
// provider. Mock mode (cfg.Mock) short-circuits to a stable stub
// regardless of provider.
func NewClient(cfg config.LLMConfig, log *logrus.Logger) (Client, error) {
	if log == nil {
		log = logrus.New()
	}
	entry := log.WithField("component", "llm_client")

	if cfg.Mock {
		return &client{backend: newMockBackend(), log: entry, model: cfg.Model}, nil
	}

	var b backend
	switch cfg.Provider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key")
		}
		b = newAnthropicBackend(cfg)
	case "vertexai":
		if cfg.GoogleCloudProject == "" || cfg.GoogleCloudLocation == "" {
			return nil, fmt.Errorf("vertexai provider requires project and location")
		}
		b = newVertexAIBackend(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	breakerSettings := gobreaker.Settings{
		Name:        "llm_" + cfg.Provider,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &client{
		backend: b,
		breaker: gobreaker.NewCircuitBreaker(breakerSettings),
		log:     entry,
		model:   cfg.Model,
	}, nil
}

// client decorates a raw backend with retry/backoff and a circuit breaker,
// so every provider gets the same resilience behavior for free. Only
// GenerateJSON goes through them; GenerateStream calls the backend directly.
type client struct {
	backend backend
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Entry
	model   string
}

func (c *client) GenerateJSON(ctx context.Context, prompt string, schema map[string]interface{}, enableThinking bool) Result {
	// Schema-mode may be incompatible with extended thinking on some
	// providers (§4.5); thinking is disabled whenever a schema is supplied.
	if schema != nil {
		enableThinking = false
	}

	text, err := c.callWithResilience(ctx, func() (string, error) {
		return c.backend.generate(ctx, prompt, schema, enableThinking)
	})
	if err != nil {
		return Result{ErrorCode: ClassifyError(err, c.model)}
	}

	obj, err := ExtractJSON(text)
	if err != nil {
		return Result{ErrorCode: "llm_error:unparseable_response"}
	}
	return Result{Object: obj}
}

func (c *client) GenerateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	return c.backend.generateStream(ctx, prompt)
}

// callWithResilience retries transient backend errors with exponential
// backoff and trips the circuit breaker on sustained failure, so repeated
// calls to a down provider fail fast instead of piling up retries.
func (c *client) callWithResilience(ctx context.Context, call func() (string, error)) (string, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)

	operation := func() (string, error) {
		if c.breaker == nil {
			return call()
		}
		result, err := c.breaker.Execute(func() (interface{}, error) {
			return call()
		})
		if err != nil {
			return "", err
		}
		return result.(string), nil
	}

	var text string
	retry := func() error {
		var err error
		text, err = operation()
		if err != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(retry, policy); err != nil {
		return "", err
	}
	return text, nil
}

// isRetryable excludes error classes that won't succeed on retry: auth
// failures (permission_denied, unauthenticated) are permanent, every other
// class, model_not_found included, gets retried.
func isRetryable(err error) bool {
	switch ClassifyError(err, "") {
	case "permission_denied", "unauthenticated":
		return false
	default:
		return true
	}
}
