/*-------------------------------------------------------------------------
 *
 * genai.go
 *    Gemini embedding provider
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/embedding/genai.go
 *
 *-------------------------------------------------------------------------
 */

package embedding

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/formgen/server/internal/metrics"
)

type GenAIProvider struct {
	client *genai.Client
	model  string
}

func NewGenAIProvider(apiKey, model string) (*GenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required for embedding provider")
	}
	if model == "" {
		model = "gemini-embedding-001"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIProvider{client: client, model: model}, nil
}

func (p *GenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := p.client.Models.EmbedContent(ctx,
		p.model,
		contents,
		&genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		},
	)
	if err != nil {
		metrics.RecordEmbeddingGeneration(p.Name(), "error", time.Since(start))
		return nil, fmt.Errorf("genai embed failed: model='%s', error=%w", p.model, err)
	}

	if len(result.Embeddings) == 0 {
		metrics.RecordEmbeddingGeneration(p.Name(), "error", time.Since(start))
		return nil, fmt.Errorf("genai embed returned no embeddings: model='%s'", p.model)
	}

	metrics.RecordEmbeddingGeneration(p.Name(), "success", time.Since(start))
	return result.Embeddings[0].Values, nil
}

func (p *GenAIProvider) Name() string {
	return "gemini:" + p.model
}
