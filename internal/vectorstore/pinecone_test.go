/*-------------------------------------------------------------------------
 *
 * pinecone_test.go
 *    Tests for the Pinecone index client
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/vectorstore/pinecone_test.go
 *
 *-------------------------------------------------------------------------
 */

package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSendsVectors(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Api-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"upsertedCount":1}`))
	}))
	defer server.Close()

	client := NewPineconeClient("test-key", server.URL+"/")

	err := client.Upsert(context.Background(), []Vector{{
		ID:       "form-1",
		Values:   []float32{0.1, 0.2},
		Metadata: map[string]interface{}{"userId": "u1"},
	}})
	require.NoError(t, err)

	assert.Equal(t, "/vectors/upsert", gotPath)
	assert.Equal(t, "test-key", gotKey)
	vectors, ok := gotBody["vectors"].([]interface{})
	require.True(t, ok)
	require.Len(t, vectors, 1)
}

func TestUpsertEmptyIsNoop(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewPineconeClient("k", server.URL)
	require.NoError(t, client.Upsert(context.Background(), nil))
	assert.False(t, called)
}

func TestQueryDecodesMatches(t *testing.T) {
	var gotReq QueryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"matches":[
			{"id":"form-1","score":0.91,"metadata":{"title":"A"}},
			{"id":"form-2","score":0.42}
		]}`))
	}))
	defer server.Close()

	client := NewPineconeClient("k", server.URL)

	resp, err := client.Query(context.Background(), QueryRequest{
		Vector:          []float32{0.5},
		TopK:            5,
		IncludeMetadata: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, "form-1", resp.Matches[0].ID)
	assert.Equal(t, 0.91, resp.Matches[0].Score)
	assert.Equal(t, "A", resp.Matches[0].Metadata["title"])

	assert.Equal(t, 5, gotReq.TopK)
	assert.True(t, gotReq.IncludeMetadata)
}

func TestQueryErrorStatusIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer server.Close()

	client := NewPineconeClient("bad", server.URL)

	_, err := client.Query(context.Background(), QueryRequest{Vector: []float32{0.1}, TopK: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestQueryTransportError(t *testing.T) {
	client := NewPineconeClient("k", "http://127.0.0.1:1")

	_, err := client.Query(context.Background(), QueryRequest{Vector: []float32{0.1}, TopK: 1})
	require.Error(t, err)
}
