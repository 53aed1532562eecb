/*-------------------------------------------------------------------------
 *
 * semantic.go
 *    Semantic memory over previously generated forms
 *
 * Embeds form metadata into a vector index and retrieves the forms
 * most similar to a new prompt, scoped per user. Retrieval results
 * feed the generation prompt as context and must never block form
 * generation: backend failures degrade to an empty result, and when
 * no vector backend is configured callers switch to keyword search.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/memory/semantic.go
 *
 *-------------------------------------------------------------------------
 */

package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/formgen/server/internal/db"
	"github.com/formgen/server/internal/embedding"
	"github.com/formgen/server/internal/metrics"
	"github.com/formgen/server/internal/vectorstore"
)

const (
	defaultTopK      = 5
	defaultMinScore  = 0.5
	defaultCacheTTL  = 30 * time.Second
	summaryMaxLength = 500
)

/* FormContext is the slice of a stored form that informs generation */
type FormContext struct {
	FormID  uuid.UUID `json:"formId"`
	Title   string    `json:"title"`
	Summary string    `json:"summary"`
	Purpose string    `json:"purpose"`
	Fields  []string  `json:"fields"`
	Score   float64   `json:"score"`
}

/* FormReader is the subset of the query layer the memory service needs */
type FormReader interface {
	GetFormContexts(ctx context.Context, ids []uuid.UUID) ([]db.FormContextRow, error)
	SearchFormsByKeywords(ctx context.Context, userID uuid.UUID, query string, limit int) ([]db.FormContextRow, error)
}

type cacheEntry struct {
	contexts  []FormContext
	expiresAt time.Time
}

type Service struct {
	provider embedding.Provider
	store    vectorstore.Store
	forms    FormReader
	topK     int
	minScore float64
	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry
	group singleflight.Group
	now   func() time.Time
}

/* NewService builds the memory service. provider and store may be nil
 * when no vector backend is configured; retrieval is then reported
 * unavailable and indexing becomes a no-op. topK <= 0 selects the
 * default. */
func NewService(provider embedding.Provider, store vectorstore.Store, forms FormReader, topK int) *Service {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Service{
		provider: provider,
		store:    store,
		forms:    forms,
		topK:     topK,
		minScore: defaultMinScore,
		cacheTTL: defaultCacheTTL,
		cache:    make(map[string]cacheEntry),
		now:      time.Now,
	}
}

/* SemanticAvailable reports whether a vector backend is configured */
func (s *Service) SemanticAvailable() bool {
	return s.provider != nil && s.store != nil
}

func cacheKey(userID uuid.UUID, prompt string) string {
	return userID.String() + "::" + strings.ToLower(strings.TrimSpace(prompt))
}

/* RetrieveRelevantForms returns the user's most similar past forms for a
 * prompt. Results are cached briefly so a double-submitted prompt does
 * not hit the vector backend twice. Backend failures are logged and
 * yield an empty result; generation proceeds without context. */
func (s *Service) RetrieveRelevantForms(ctx context.Context, userID uuid.UUID, prompt string) ([]FormContext, error) {
	if !s.SemanticAvailable() {
		return []FormContext{}, nil
	}

	key := cacheKey(userID, prompt)

	s.mu.Lock()
	if entry, ok := s.cache[key]; ok && s.now().Before(entry.expiresAt) {
		s.mu.Unlock()
		metrics.RecordMemoryCacheLookup("hit")
		return entry.contexts, nil
	}
	s.mu.Unlock()
	metrics.RecordMemoryCacheLookup("miss")

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		contexts, err := s.retrieve(ctx, userID, prompt)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[key] = cacheEntry{contexts: contexts, expiresAt: s.now().Add(s.cacheTTL)}
		s.mu.Unlock()
		return contexts, nil
	})
	if err != nil {
		metrics.WarnWithContext(ctx, "Semantic retrieval failed, continuing without context", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return []FormContext{}, nil
	}
	return result.([]FormContext), nil
}

func (s *Service) retrieve(ctx context.Context, userID uuid.UUID, prompt string) ([]FormContext, error) {
	vector, err := s.provider.Embed(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("embed prompt: user_id='%s', error=%w", userID.String(), err)
	}

	resp, err := s.store.Query(ctx, vectorstore.QueryRequest{
		Vector:          vector,
		TopK:            s.topK,
		Filter:          map[string]interface{}{"userId": map[string]interface{}{"$eq": userID.String()}},
		IncludeMetadata: true,
	})
	if err != nil {
		metrics.RecordVectorSearch("error")
		return nil, fmt.Errorf("query vector store: user_id='%s', error=%w", userID.String(), err)
	}
	metrics.RecordVectorSearch("success")

	var ids []uuid.UUID
	scores := make(map[uuid.UUID]float64)
	for _, match := range resp.Matches {
		/* Strictly above the threshold; a 0.5 score is discarded */
		if match.Score <= s.minScore {
			continue
		}
		id, err := uuid.Parse(match.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		scores[id] = match.Score
	}
	if len(ids) == 0 {
		return []FormContext{}, nil
	}

	rows, err := s.forms.GetFormContexts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate form contexts: user_id='%s', match_count=%d, error=%w",
			userID.String(), len(ids), err)
	}

	byID := make(map[uuid.UUID]db.FormContextRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	/* Preserve the vector store's score ordering; skip forms that were
	 * deleted since they were indexed. */
	contexts := make([]FormContext, 0, len(ids))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			continue
		}
		contexts = append(contexts, FormContext{
			FormID:  row.ID,
			Title:   row.Title,
			Summary: row.Summary,
			Purpose: row.Purpose,
			Fields:  []string(row.FieldNames),
			Score:   scores[id],
		})
	}
	return contexts, nil
}

/* StoreFormEmbedding indexes a form's metadata for future retrieval.
 * Runs best-effort in the background after form creation. */
func (s *Service) StoreFormEmbedding(ctx context.Context, form *db.Form) error {
	if !s.SemanticAvailable() {
		return nil
	}

	summary := form.Summary
	if len(summary) > summaryMaxLength {
		summary = summary[:summaryMaxLength]
	}

	text := fmt.Sprintf("%s\n%s\n%s", form.Title, form.Purpose, summary)
	vector, err := s.provider.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed form: form_id='%s', error=%w", form.ID.String(), err)
	}

	err = s.store.Upsert(ctx, []vectorstore.Vector{{
		ID:     form.ID.String(),
		Values: vector,
		Metadata: map[string]interface{}{
			"userId":     form.UserID.String(),
			"title":      form.Title,
			"purpose":    form.Purpose,
			"summary":    summary,
			"fieldTypes": strings.Join(form.FieldTypes, ","),
		},
	}})
	if err != nil {
		return fmt.Errorf("upsert form vector: form_id='%s', error=%w", form.ID.String(), err)
	}
	return nil
}

/* FallbackTextSearch approximates retrieval with Postgres full-text
 * search when the vector backend is unavailable. Words of three or
 * fewer characters carry little signal and are dropped. */
func (s *Service) FallbackTextSearch(ctx context.Context, userID uuid.UUID, prompt string) ([]FormContext, error) {
	var keywords []string
	for _, word := range strings.Fields(prompt) {
		if len(word) > 3 {
			keywords = append(keywords, word)
		}
	}
	if len(keywords) == 0 {
		return []FormContext{}, nil
	}

	rows, err := s.forms.SearchFormsByKeywords(ctx, userID, strings.Join(keywords, " "), s.topK)
	if err != nil {
		return nil, fmt.Errorf("keyword search: user_id='%s', error=%w", userID.String(), err)
	}

	contexts := make([]FormContext, 0, len(rows))
	for _, row := range rows {
		contexts = append(contexts, FormContext{
			FormID:  row.ID,
			Title:   row.Title,
			Summary: row.Summary,
			Purpose: row.Purpose,
			Fields:  []string(row.FieldNames),
		})
	}
	return contexts, nil
}
