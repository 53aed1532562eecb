/*-------------------------------------------------------------------------
 *
 * pinecone.go
 *    Pinecone index client
 *
 * Talks to a Pinecone serverless index over its REST data plane. The
 * index host is the per-index endpoint from the Pinecone console, e.g.
 * https://formgen-xxxx.svc.aped-4627-b74a.pinecone.io
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/vectorstore/pinecone.go
 *
 *-------------------------------------------------------------------------
 */

package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type PineconeClient struct {
	apiKey string
	host   string
	client *http.Client
}

func NewPineconeClient(apiKey, host string) *PineconeClient {
	return &PineconeClient{
		apiKey: apiKey,
		host:   strings.TrimRight(host, "/"),
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *PineconeClient) Upsert(ctx context.Context, vectors []Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	body := map[string]interface{}{"vectors": vectors}
	var resp struct {
		UpsertedCount int `json:"upsertedCount"`
	}
	if err := p.post(ctx, "/vectors/upsert", body, &resp); err != nil {
		return fmt.Errorf("pinecone upsert failed: vector_count=%d, error=%w", len(vectors), err)
	}
	return nil
}

func (p *PineconeClient) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	var resp QueryResponse
	if err := p.post(ctx, "/query", req, &resp); err != nil {
		return nil, fmt.Errorf("pinecone query failed: top_k=%d, error=%w", req.TopK, err)
	}
	return &resp, nil
}

func (p *PineconeClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
