package llm

import (
	"context"
	"encoding/json"
)

// mockBackend short-circuits to a stable stub response, for local
// development and tests that don't want a live provider dependency.
type mockBackend struct{}

func newMockBackend() *mockBackend { return &mockBackend{} }

func (m *mockBackend) generate(ctx context.Context, prompt string, schema map[string]interface{}, enableThinking bool) (string, error) {
	stub := map[string]interface{}{
		"verdict":    "unknown",
		"confidence": 0.0,
		"summary":    "mock LLM response: no provider configured",
	}
	data, err := json.Marshal(stub)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m *mockBackend) generateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	ch := make(chan StreamChunk, 2)
	go func() {
		defer close(ch)
		select {
		case <-ctx.Done():
			ch <- StreamChunk{Cancelled: true, Done: true}
			return
		case ch <- StreamChunk{Delta: "mock response"}:
		}
		select {
		case <-ctx.Done():
			ch <- StreamChunk{Cancelled: true, Done: true}
		case ch <- StreamChunk{Done: true}:
		}
	}()
	return ch, nil
}
