/*-------------------------------------------------------------------------
 *
 * pinecone.go
 *    Pinecone hosted-inference embedding provider
 *
 * Uses Pinecone's inference API to embed text with a hosted model
 * (multilingual-e5-large by default). The response shape has changed
 * between API revisions, so both the "data" and "embeddings" result
 * arrays are accepted.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/embedding/pinecone.go
 *
 *-------------------------------------------------------------------------
 */

package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/formgen/server/internal/metrics"
)

const defaultPineconeInferenceURL = "https://api.pinecone.io/inference/v1/embed"

type PineconeProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewPineconeProvider(apiKey, model string) (*PineconeProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("pinecone API key is required for embedding provider")
	}
	if model == "" {
		model = "multilingual-e5-large"
	}
	return &PineconeProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultPineconeInferenceURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type pineconeEmbedRequest struct {
	Model      string                 `json:"model"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Inputs     []pineconeEmbedInput   `json:"inputs"`
}

type pineconeEmbedInput struct {
	Text string `json:"text"`
}

type pineconeEmbedResult struct {
	Values []float32 `json:"values"`
}

type pineconeEmbedResponse struct {
	Data       []pineconeEmbedResult `json:"data"`
	Embeddings []pineconeEmbedResult `json:"embeddings"`
}

func (p *PineconeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()

	payload, err := json.Marshal(pineconeEmbedRequest{
		Model:      p.model,
		Parameters: map[string]interface{}{"input_type": "passage"},
		Inputs:     []pineconeEmbedInput{{Text: text}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		metrics.RecordEmbeddingGeneration(p.Name(), "error", time.Since(start))
		return nil, fmt.Errorf("pinecone embed request failed: model='%s', error=%w", p.model, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.RecordEmbeddingGeneration(p.Name(), "error", time.Since(start))
		return nil, fmt.Errorf("read embed response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordEmbeddingGeneration(p.Name(), "error", time.Since(start))
		return nil, fmt.Errorf("pinecone embed returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed pineconeEmbedResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		metrics.RecordEmbeddingGeneration(p.Name(), "error", time.Since(start))
		return nil, fmt.Errorf("decode embed response: %w", err)
	}

	results := parsed.Data
	if len(results) == 0 {
		results = parsed.Embeddings
	}
	if len(results) == 0 || len(results[0].Values) == 0 {
		metrics.RecordEmbeddingGeneration(p.Name(), "error", time.Since(start))
		return nil, fmt.Errorf("pinecone embed returned no values: model='%s'", p.model)
	}

	metrics.RecordEmbeddingGeneration(p.Name(), "success", time.Since(start))
	return results[0].Values, nil
}

func (p *PineconeProvider) Name() string {
	return "pinecone:" + p.model
}
