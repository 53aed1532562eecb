/*-------------------------------------------------------------------------
 *
 * generator_test.go
 *    Tests for AI form generation
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/generator/generator_test.go
 *
 *-------------------------------------------------------------------------
 */

package generator

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formgen/server/internal/forms"
	"github.com/formgen/server/internal/memory"
)

type fakeLLM struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeLLM) GenerateText(_ context.Context, prompt string, _ float32, _ int32) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) Model() string { return "fake-model" }

type fakeMemory struct {
	available     bool
	contexts      []memory.FormContext
	retrieveErr   error
	fallback      []memory.FormContext
	fallbackErr   error
	fallbackCalls int
}

func (f *fakeMemory) SemanticAvailable() bool { return f.available }

func (f *fakeMemory) RetrieveRelevantForms(_ context.Context, _ uuid.UUID, _ string) ([]memory.FormContext, error) {
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	return f.contexts, nil
}

func (f *fakeMemory) FallbackTextSearch(_ context.Context, _ uuid.UUID, _ string) ([]memory.FormContext, error) {
	f.fallbackCalls++
	if f.fallbackErr != nil {
		return nil, f.fallbackErr
	}
	return f.fallback, nil
}

const validResponse = `{
  "schema": {
    "title": "Job Application",
    "description": "Apply for a role",
    "fields": [
      {"id": "field-name", "name": "name", "label": "Name", "type": "text", "required": true},
      {"name": "email", "label": "Email", "type": "email", "required": true},
      {"name": "bio", "label": "Bio", "type": "textarea"},
      {"name": "altEmail", "label": "Alt Email", "type": "email"}
    ]
  },
  "summary": "A job application form.",
  "purpose": "job-application"
}`

func TestGenerateForm(t *testing.T) {
	llm := &fakeLLM{response: validResponse}
	svc := NewService(llm, &fakeMemory{})

	generated, err := svc.GenerateForm(context.Background(), uuid.New(), "job application form")
	require.NoError(t, err)

	assert.Equal(t, "Job Application", generated.Schema.Title)
	assert.Equal(t, "job-application", generated.Purpose)
	require.Len(t, generated.Schema.Fields, 4)

	/* Omitted IDs are backfilled, present ones kept */
	assert.Equal(t, "field-name", generated.Schema.Fields[0].ID)
	assert.True(t, strings.HasPrefix(generated.Schema.Fields[1].ID, "field-1-"))

	/* Field types de-duplicated in first-seen order */
	assert.Equal(t, []string{"text", "email", "textarea"}, generated.FieldTypes)

	assert.Contains(t, llm.lastPrompt, `User Request: "job application form"`)
}

func TestGenerateFormIncludesRetrievedContext(t *testing.T) {
	llm := &fakeLLM{response: validResponse}
	mem := &fakeMemory{available: true, contexts: []memory.FormContext{
		{Purpose: "survey", Fields: []string{"rating", "comments"}},
	}}
	svc := NewService(llm, mem)

	_, err := svc.GenerateForm(context.Background(), uuid.New(), "feedback form")
	require.NoError(t, err)

	assert.Contains(t, llm.lastPrompt, "relevant user form history")
	assert.Contains(t, llm.lastPrompt, `"purpose":"survey"`)
	assert.Contains(t, llm.lastPrompt, `"rating"`)
}

func TestGenerateFormNoBackendUsesKeywordSearch(t *testing.T) {
	llm := &fakeLLM{response: validResponse}
	mem := &fakeMemory{
		available: false,
		fallback:  []memory.FormContext{{Purpose: "contact", Fields: []string{"name"}}},
	}
	svc := NewService(llm, mem)

	_, err := svc.GenerateForm(context.Background(), uuid.New(), "contact form")
	require.NoError(t, err)
	assert.Equal(t, 1, mem.fallbackCalls)
	assert.Contains(t, llm.lastPrompt, `"purpose":"contact"`)
}

func TestGenerateFormRetrievalErrorGeneratesWithoutContext(t *testing.T) {
	llm := &fakeLLM{response: validResponse}
	mem := &fakeMemory{
		available:   true,
		retrieveErr: fmt.Errorf("vector store down"),
	}
	svc := NewService(llm, mem)

	generated, err := svc.GenerateForm(context.Background(), uuid.New(), "contact form")
	require.NoError(t, err)
	assert.NotEmpty(t, generated.Schema.Fields)
	assert.NotContains(t, llm.lastPrompt, "relevant user form history")

	/* Keyword search is a startup-time decision, not an error path */
	assert.Equal(t, 0, mem.fallbackCalls)
}

func TestGenerateFormKeywordSearchErrorStillGenerates(t *testing.T) {
	llm := &fakeLLM{response: validResponse}
	mem := &fakeMemory{
		available:   false,
		fallbackErr: fmt.Errorf("db down"),
	}
	svc := NewService(llm, mem)

	generated, err := svc.GenerateForm(context.Background(), uuid.New(), "contact form")
	require.NoError(t, err)
	assert.NotEmpty(t, generated.Schema.Fields)
	assert.NotContains(t, llm.lastPrompt, "relevant user form history")
}

func TestGenerateFormLLMErrorPropagates(t *testing.T) {
	llm := &fakeLLM{err: fmt.Errorf("quota exceeded")}
	svc := NewService(llm, &fakeMemory{})

	_, err := svc.GenerateForm(context.Background(), uuid.New(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Contains(t, err.Error(), "fake-model")
}

func TestParseFormResponseStripsCodeFence(t *testing.T) {
	fenced := "Here you go:\n```json\n" + validResponse + "\n```\nEnjoy!"
	generated := parseFormResponse(fenced, "prompt")
	assert.Equal(t, "Job Application", generated.Schema.Title)
}

func TestParseFormResponseBareFence(t *testing.T) {
	fenced := "```\n" + validResponse + "\n```"
	generated := parseFormResponse(fenced, "prompt")
	assert.Equal(t, "Job Application", generated.Schema.Title)
}

func TestParseFormResponseUnparsableFallsBack(t *testing.T) {
	generated := parseFormResponse("I cannot produce JSON today.", "hiring form")

	assert.Equal(t, "Generated Form", generated.Schema.Title)
	assert.Equal(t, "hiring form", generated.Schema.Description)
	require.Len(t, generated.Schema.Fields, 2)
	assert.Equal(t, forms.FieldText, generated.Schema.Fields[0].Type)
	assert.Equal(t, forms.FieldEmail, generated.Schema.Fields[1].Type)
	assert.Equal(t, "other", generated.Purpose)
	assert.Equal(t, []string{"text", "email"}, generated.FieldTypes)
}

func TestParseFormResponseEmptyFieldsFallsBack(t *testing.T) {
	generated := parseFormResponse(`{"schema":{"title":"Empty","fields":[]}}`, "prompt")
	assert.Equal(t, "Generated Form", generated.Schema.Title)
}

func TestParseFormResponseDefaultsSummaryAndPurpose(t *testing.T) {
	resp := `{"schema":{"title":"T","fields":[{"name":"a","label":"A","type":"text"}]}}`
	generated := parseFormResponse(resp, "a very specific prompt")

	assert.Equal(t, "Form generated from: a very specific prompt", generated.Summary)
	assert.Equal(t, "other", generated.Purpose)
}

func TestParseFormResponseTruncatesLongPromptInSummary(t *testing.T) {
	long := strings.Repeat("x", 300)
	generated := parseFormResponse("not json", long)
	assert.Len(t, generated.Summary, len("Fallback form for: ")+100)
}
