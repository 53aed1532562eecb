/*-------------------------------------------------------------------------
 *
 * config_test.go
 *    Tests for configuration defaults and environment overrides
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/config/config_test.go
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.True(t, cfg.Pinecone.Enabled)
	assert.Equal(t, 5, cfg.Pinecone.TopK)
	assert.Equal(t, "gemini", cfg.Embedding.Provider)
}

func TestLoadFromEnvPineconeOverrides(t *testing.T) {
	t.Setenv("PINECONE_ENABLED", "false")
	t.Setenv("PINECONE_TOP_K", "12")
	t.Setenv("PINECONE_INDEX_HOST", "https://idx-abc.svc.pinecone.io")

	cfg := DefaultConfig()
	cfg.loadFromEnv()

	assert.False(t, cfg.Pinecone.Enabled)
	assert.Equal(t, 12, cfg.Pinecone.TopK)
	assert.Equal(t, "https://idx-abc.svc.pinecone.io", cfg.Pinecone.IndexHost)
}

func TestLoadFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("PINECONE_ENABLED", "maybe")
	t.Setenv("PINECONE_TOP_K", "-3")

	cfg := DefaultConfig()
	cfg.loadFromEnv()

	/* Unparsable or non-positive overrides keep the defaults */
	assert.True(t, cfg.Pinecone.Enabled)
	assert.Equal(t, 5, cfg.Pinecone.TopK)
}

func TestValidateRequiresJWTSecret(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.JWTSecret = ""

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidateRejectsUnknownEmbeddingProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.JWTSecret = "secret"
	cfg.Embedding.Provider = "openai"

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding provider")
}
