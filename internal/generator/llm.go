/*-------------------------------------------------------------------------
 *
 * llm.go
 *    LLM client for form generation
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/generator/llm.go
 *
 *-------------------------------------------------------------------------
 */

package generator

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/formgen/server/internal/metrics"
)

/* LLM abstracts the text-generation backend */
type LLM interface {
	GenerateText(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error)
	Model() string
}

type GenAILLM struct {
	client *genai.Client
	model  string
}

func NewGenAILLM(apiKey, model string) (*GenAILLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required for form generation")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAILLM{client: client, model: model}, nil
}

func (l *GenAILLM) GenerateText(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := l.client.Models.GenerateContent(ctx, l.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		metrics.RecordLLMCall(l.model, "error")
		return "", fmt.Errorf("genai generate failed: model='%s', error=%w", l.model, err)
	}

	text := resp.Text()
	if text == "" {
		metrics.RecordLLMCall(l.model, "empty")
		return "", fmt.Errorf("genai generate returned empty response: model='%s'", l.model)
	}

	metrics.RecordLLMCall(l.model, "success")
	return text, nil
}

func (l *GenAILLM) Model() string {
	return l.model
}
