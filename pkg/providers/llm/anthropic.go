package llm

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sreagent/investigator/internal/config"
)

// anthropicBackend generates text through the Anthropic Messages API.
type anthropicBackend struct {
	client anthropic.Client
	cfg    config.LLMConfig
}

func newAnthropicBackend(cfg config.LLMConfig) *anthropicBackend {
	return &anthropicBackend{
		client: anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey)),
		cfg:    cfg,
	}
}

func (a *anthropicBackend) generate(ctx context.Context, prompt string, schema map[string]interface{}, enableThinking bool) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.cfg.Model),
		MaxTokens: int64(a.cfg.MaxOutputTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if enableThinking {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(int64(a.cfg.MaxOutputTokens / 2))
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var out string
	for _, block := range msg.Content {
		if text := block.Text; text != "" {
			out += text
		}
	}
	return out, nil
}

func (a *anthropicBackend) generateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.cfg.Model),
		MaxTokens: int64(a.cfg.MaxOutputTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		stream := a.client.Messages.NewStreaming(ctx, params)
		var buffered bool
		for stream.Next() {
			event := stream.Current()
			if delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
				if text := delta.Delta.Text; text != "" {
					buffered = true
					select {
					case ch <- StreamChunk{Delta: text}:
					case <-ctx.Done():
						ch <- StreamChunk{Cancelled: buffered, Done: true}
						return
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			ch <- StreamChunk{ErrorCode: ClassifyError(err, a.cfg.Model), Done: true}
			return
		}
		ch <- StreamChunk{Done: true}
	}()
	return ch, nil
}
