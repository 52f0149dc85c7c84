package llm

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"

	"github.com/sreagent/investigator/internal/config"
)

// vertexAIBackend generates text through Vertex AI's generative model API.
type vertexAIBackend struct {
	cfg config.LLMConfig
}

func newVertexAIBackend(cfg config.LLMConfig) *vertexAIBackend {
	return &vertexAIBackend{cfg: cfg}
}

func (v *vertexAIBackend) newModel(ctx context.Context) (*genai.Client, *genai.GenerativeModel, error) {
	client, err := genai.NewClient(ctx, v.cfg.GoogleCloudProject, v.cfg.GoogleCloudLocation)
	if err != nil {
		return nil, nil, err
	}
	model := client.GenerativeModel(v.cfg.Model)
	model.SetTemperature(v.cfg.Temperature)
	model.SetMaxOutputTokens(int32(v.cfg.MaxOutputTokens))
	return client, model, nil
}

func (v *vertexAIBackend) generate(ctx context.Context, prompt string, schema map[string]interface{}, enableThinking bool) (string, error) {
	client, model, err := v.newModel(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if schema != nil {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return extractGenaiText(resp)
}

func extractGenaiText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("vertexai returned no candidates")
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	return out, nil
}

func (v *vertexAIBackend) generateStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	client, model, err := v.newModel(ctx)
	if err != nil {
		return nil, err
	}

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		defer client.Close()

		iter := model.GenerateContentStream(ctx, genai.Text(prompt))
		var buffered bool
		for {
			resp, err := iter.Next()
			if err != nil {
				if err.Error() == "no more items in iterator" {
					ch <- StreamChunk{Done: true}
					return
				}
				ch <- StreamChunk{ErrorCode: ClassifyError(err, v.cfg.Model), Done: true}
				return
			}
			text, err := extractGenaiText(resp)
			if err != nil || text == "" {
				continue
			}
			buffered = true
			select {
			case ch <- StreamChunk{Delta: text}:
			case <-ctx.Done():
				ch <- StreamChunk{Cancelled: buffered, Done: true}
				return
			}
		}
	}()
	return ch, nil
}
