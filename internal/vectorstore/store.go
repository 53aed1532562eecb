/*-------------------------------------------------------------------------
 *
 * store.go
 *    Vector store abstraction for semantic form retrieval
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/vectorstore/store.go
 *
 *-------------------------------------------------------------------------
 */

package vectorstore

import "context"

/* Vector is an embedding stored under a stable ID with filterable metadata */
type Vector struct {
	ID       string                 `json:"id"`
	Values   []float32              `json:"values"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

/* Match is a single query result with its similarity score */
type Match struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type QueryRequest struct {
	Vector          []float32              `json:"vector"`
	TopK            int                    `json:"topK"`
	Filter          map[string]interface{} `json:"filter,omitempty"`
	IncludeMetadata bool                   `json:"includeMetadata"`
}

type QueryResponse struct {
	Matches []Match `json:"matches"`
}

/* Store abstracts the vector index backend */
type Store interface {
	Upsert(ctx context.Context, vectors []Vector) error
	Query(ctx context.Context, req QueryRequest) (*QueryResponse, error)
}
