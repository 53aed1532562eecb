/*-------------------------------------------------------------------------
 *
 * provider.go
 *    Embedding provider abstraction
 *
 * FormGen can embed text through the Gemini API or through Pinecone's
 * hosted inference endpoint. The backend is fixed at construction time
 * from configuration; there is no runtime fallback between providers.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/embedding/provider.go
 *
 *-------------------------------------------------------------------------
 */

package embedding

import (
	"context"
	"fmt"
)

/* Provider generates embedding vectors for text */
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}

/* NewProvider selects the embedding backend by name */
func NewProvider(provider, geminiAPIKey, geminiModel, pineconeAPIKey, pineconeModel string) (Provider, error) {
	switch provider {
	case "gemini", "":
		return NewGenAIProvider(geminiAPIKey, geminiModel)
	case "pinecone":
		return NewPineconeProvider(pineconeAPIKey, pineconeModel)
	default:
		return nil, fmt.Errorf("unknown embedding provider: provider='%s'", provider)
	}
}
