package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sreagent/investigator/internal/config"
)

func TestNewClient_MockMode(t *testing.T) {
	c, err := NewClient(config.LLMConfig{Mock: true}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	result := c.GenerateJSON(context.Background(), "anything", nil, false)
	if result.ErrorCode != "" || result.Object["verdict"] != "unknown" {
		t.Errorf("result = %+v", result)
	}
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(config.LLMConfig{Provider: "not-a-provider"}, nil)
	if err == nil {
		t.Fatal("expected an error for an unsupported provider")
	}
}

func TestNewClient_AnthropicRequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.LLMConfig{Provider: "anthropic"}, nil)
	if err == nil {
		t.Fatal("expected an error when anthropic API key is missing")
	}
}

func TestNewClient_VertexAIRequiresProjectAndLocation(t *testing.T) {
	_, err := NewClient(config.LLMConfig{Provider: "vertexai"}, nil)
	if err == nil {
		t.Fatal("expected an error when vertexai project/location is missing")
	}
}

type fakeBackend struct {
	calls     int
	failUntil int
	response  string
	err       error
}

func (f *fakeBackend) generate(ctx context.Context, prompt string, schema map[string]interface{}, enableThinking bool) (string, error) {
	f.calls++
	if f.calls <= f.failUntil {
		return "", errors.New("connection reset")
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeBackend) generateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	return nil, nil
}

func TestClient_GenerateJSON_RetriesTransientFailures(t *testing.T) {
	backend := &fakeBackend{failUntil: 1, response: `{"verdict":"crashloop"}`}
	c := &client{backend: backend, log: logrus.NewEntry(logrus.New())}

	result := c.GenerateJSON(context.Background(), "prompt", nil, false)
	if result.ErrorCode != "" {
		t.Fatalf("result.ErrorCode = %q, want empty after retry succeeds", result.ErrorCode)
	}
	if result.Object["verdict"] != "crashloop" {
		t.Errorf("result.Object = %+v", result.Object)
	}
	if backend.calls < 2 {
		t.Errorf("calls = %d, want at least 2 (one failure then success)", backend.calls)
	}
}

func TestClient_GenerateJSON_PermanentAuthErrorNotRetried(t *testing.T) {
	backend := &fakeBackend{err: &statusErr{msg: "forbidden", code: 403}}
	c := &client{backend: backend, log: logrus.NewEntry(logrus.New())}

	result := c.GenerateJSON(context.Background(), "prompt", nil, false)
	if result.ErrorCode != "permission_denied" {
		t.Errorf("result.ErrorCode = %q, want permission_denied", result.ErrorCode)
	}
	if backend.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on permanent auth error)", backend.calls)
	}
}

func TestClient_GenerateJSON_DisablesThinkingWhenSchemaProvided(t *testing.T) {
	var sawThinking bool
	backend := &recordingBackend{onGenerate: func(schema map[string]interface{}, enableThinking bool) {
		sawThinking = enableThinking
	}}
	c := &client{backend: backend, log: logrus.NewEntry(logrus.New())}

	c.GenerateJSON(context.Background(), "prompt", map[string]interface{}{"type": "object"}, true)
	if sawThinking {
		t.Error("expected thinking to be disabled when schema is provided")
	}
}

type recordingBackend struct {
	onGenerate func(schema map[string]interface{}, enableThinking bool)
}

func (r *recordingBackend) generate(ctx context.Context, prompt string, schema map[string]interface{}, enableThinking bool) (string, error) {
	r.onGenerate(schema, enableThinking)
	return `{"ok":true}`, nil
}

func (r *recordingBackend) generateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	return nil, nil
}

func TestClient_GenerateStream_CancellationYieldsFinalCancelledChunk(t *testing.T) {
	// P11: cancelling a streaming call yields a final chunk with cancelled=true
	// once any content was buffered, and the generator terminates.
	backend := newMockBackend()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := backend.generateStream(ctx, "prompt")
	if err != nil {
		t.Fatalf("generateStream() error = %v", err)
	}

	first := <-ch
	if first.Delta == "" {
		t.Fatalf("expected a first content chunk, got %+v", first)
	}
	cancel()

	var last StreamChunk
	for chunk := range ch {
		last = chunk
	}
	if !last.Done {
		t.Errorf("last chunk = %+v, want Done", last)
	}
	_ = time.Second
}
