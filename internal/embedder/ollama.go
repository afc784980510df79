// internal/embedder/ollama.go
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arhont375/articlevec/internal/types"
)

// ollamaTag maps a model identifier to the Ollama model it is served by
func ollamaTag(model Model) string {
	switch model {
	case ModelMiniLM:
		return "all-minilm"
	case ModelMPNet:
		return "paraphrase-multilingual"
	}
	return string(model)
}

// Ollama implements Encoder using the Ollama API
type Ollama struct {
	baseURL string
	tag     string
	dims    int
	http    *http.Client
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

type batchEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type batchEmbeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewOllama creates an Ollama encoder for a model
func NewOllama(baseURL string, model Model) *Ollama {
	return &Ollama{
		baseURL: baseURL,
		tag:     ollamaTag(model),
		dims:    model.Dimensions(),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Dimensions returns the fixed output vector width
func (o *Ollama) Dimensions() int {
	return o.dims
}

func (o *Ollama) post(ctx context.Context, path string, reqBody, respBody interface{}) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (o *Ollama) checkDims(embedding []float32) error {
	if len(embedding) != o.dims {
		return fmt.Errorf("%w: model %s returned %d dimensions, want %d",
			types.ErrDimensionMismatch, o.tag, len(embedding), o.dims)
	}
	return nil
}

// Encode embeds a single text
func (o *Ollama) Encode(ctx context.Context, text string) ([]float32, error) {
	var resp embeddingResponse
	if err := o.post(ctx, "/api/embeddings", embeddingRequest{Model: o.tag, Prompt: text}, &resp); err != nil {
		return nil, err
	}
	if err := o.checkDims(resp.Embedding); err != nil {
		return nil, err
	}
	return resp.Embedding, nil
}

// EncodeBatch embeds texts in a single request, preserving order
func (o *Ollama) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp batchEmbeddingResponse
	if err := o.post(ctx, "/api/embed", batchEmbeddingRequest{Model: o.tag, Input: texts}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}
	for _, emb := range resp.Embeddings {
		if err := o.checkDims(emb); err != nil {
			return nil, err
		}
	}
	return resp.Embeddings, nil
}
