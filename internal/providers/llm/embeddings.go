package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

// OpenAIEmbedder produces dense vectors for the retrieval index via the
// embeddings API.
type OpenAIEmbedder struct {
	baseProvider
}

var _ core.Embedder = (*OpenAIEmbedder)(nil)

func NewOpenAIEmbedder(apiKey, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		baseProvider: newBaseProvider("https://api.openai.com", apiKey, model),
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload := map[string]any{
		"model": e.model,
		"input": texts,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + e.apiKey,
	}

	resp, err := e.doRequest(ctx, http.MethodPost, "/v1/embeddings", payload, headers)
	if err != nil {
		return nil, err
	}
	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", core.ErrMalformedResponse, err)
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("%w: %d embeddings for %d inputs", core.ErrMalformedResponse, len(result.Data), len(texts))
	}

	// The API may return entries out of order; index is authoritative.
	vectors := make([][]float32, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", core.ErrMalformedResponse, d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
