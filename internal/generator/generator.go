/*-------------------------------------------------------------------------
 *
 * generator.go
 *    AI form schema generation from natural language prompts
 *
 * Converts a user prompt into a structured form schema via the LLM,
 * seeding the prompt with the user's most similar past forms from
 * semantic memory. Retrieval failures degrade to keyword search and
 * then to no context; an unparsable LLM response degrades to a basic
 * name/email form. Only the LLM call itself can fail the operation.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/generator/generator.go
 *
 *-------------------------------------------------------------------------
 */

package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/formgen/server/internal/forms"
	"github.com/formgen/server/internal/memory"
	"github.com/formgen/server/internal/metrics"
)

const (
	generationTemperature = 0.7
	generationMaxTokens   = 2048
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

/* GeneratedForm is the result of one generation pass */
type GeneratedForm struct {
	Schema     forms.FormSchema `json:"schema"`
	Summary    string           `json:"summary"`
	Purpose    string           `json:"purpose"`
	FieldTypes []string         `json:"fieldTypes"`
}

/* Memory is the retrieval surface the generator consumes */
type Memory interface {
	SemanticAvailable() bool
	RetrieveRelevantForms(ctx context.Context, userID uuid.UUID, prompt string) ([]memory.FormContext, error)
	FallbackTextSearch(ctx context.Context, userID uuid.UUID, prompt string) ([]memory.FormContext, error)
}

type Service struct {
	llm    LLM
	memory Memory
}

func NewService(llm LLM, mem Memory) *Service {
	return &Service{llm: llm, memory: mem}
}

/* GenerateForm produces a form schema for a natural language prompt */
func (s *Service) GenerateForm(ctx context.Context, userID uuid.UUID, prompt string) (*GeneratedForm, error) {
	/* Semantic retrieval degrades internally to an empty result; the
	 * keyword search covers deployments with no vector backend at all.
	 * Neither path may fail generation. */
	var relevant []memory.FormContext
	var err error
	if s.memory.SemanticAvailable() {
		relevant, err = s.memory.RetrieveRelevantForms(ctx, userID, prompt)
	} else {
		relevant, err = s.memory.FallbackTextSearch(ctx, userID, prompt)
	}
	if err != nil {
		metrics.WarnWithContext(ctx, "Context retrieval failed, generating without context", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		relevant = nil
	}

	systemPrompt := buildSystemPrompt(relevant)
	fullPrompt := fmt.Sprintf("%s\n\nUser Request: %q", systemPrompt, prompt)

	responseText, err := s.llm.GenerateText(ctx, fullPrompt, generationTemperature, generationMaxTokens)
	if err != nil {
		metrics.RecordFormGeneration("error")
		return nil, fmt.Errorf("form generation failed: user_id='%s', model='%s', error=%w",
			userID.String(), s.llm.Model(), err)
	}

	generated := parseFormResponse(responseText, prompt)
	metrics.RecordFormGeneration("success")
	return generated, nil
}

/* buildSystemPrompt assembles the generation prompt, including the
 * user's past form patterns when retrieval produced any */
func buildSystemPrompt(relevant []memory.FormContext) string {
	var contextSection string
	if len(relevant) > 0 {
		formatted := make([]string, 0, len(relevant))
		for _, fc := range relevant {
			entry, err := json.Marshal(map[string]interface{}{
				"purpose": fc.Purpose,
				"fields":  fc.Fields,
			})
			if err != nil {
				continue
			}
			formatted = append(formatted, string(entry))
		}
		contextSection = fmt.Sprintf(`
Here is relevant user form history for reference:
[
  %s
]

Use these patterns to inform field ordering, naming conventions, and validation logic where applicable.
`, strings.Join(formatted, ",\n  "))
	}

	return fmt.Sprintf(`You are an intelligent form schema generator. Your task is to convert natural language descriptions into structured JSON form schemas.
%s
IMPORTANT: Respond ONLY with valid JSON. No markdown, no explanation, just the JSON object.

The JSON schema must follow this exact structure:
{
  "schema": {
    "title": "Form Title",
    "description": "Form description",
    "fields": [
      {
        "id": "unique-field-id",
        "name": "fieldName",
        "label": "Field Label",
        "type": "text|email|number|textarea|select|checkbox|radio|date|file|image|url|phone",
        "placeholder": "Optional placeholder text",
        "required": true|false,
        "validation": {
          "min": null,
          "max": null,
          "minLength": null,
          "maxLength": null,
          "pattern": null,
          "message": "Custom error message"
        },
        "options": [{"label": "Option", "value": "option"}],
        "accept": "image/*"
      }
    ]
  },
  "summary": "A brief 1-2 sentence summary of this form's purpose",
  "purpose": "category like: job-application, survey, registration, feedback, medical, education, event, contact, order, other"
}

Field type guidelines:
- Use "email" for email addresses
- Use "phone" for phone numbers
- Use "url" for URLs, links, GitHub profiles, portfolios
- Use "image" for profile pictures, photos (set accept: "image/*")
- Use "file" for documents like resumes (set accept: "application/pdf,.doc,.docx")
- Use "select" or "radio" when there are predefined options
- Use "checkbox" for boolean yes/no or multi-select
- Use "textarea" for long text like descriptions, bio
- Use "date" for dates

Always include appropriate validation for required fields.
Generate unique IDs using short descriptive names (e.g., "field-name", "field-email").`, contextSection)
}

/* parseFormResponse extracts the generated schema from LLM output.
 * Any parse failure yields the fallback form rather than an error. */
func parseFormResponse(responseText, originalPrompt string) *GeneratedForm {
	jsonStr := responseText
	if m := codeFenceRe.FindStringSubmatch(responseText); m != nil {
		jsonStr = m[1]
	}
	jsonStr = strings.TrimSpace(jsonStr)

	var parsed GeneratedForm
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return createFallbackForm(originalPrompt)
	}
	if len(parsed.Schema.Fields) == 0 {
		return createFallbackForm(originalPrompt)
	}

	/* Backfill field IDs the model omitted */
	for i := range parsed.Schema.Fields {
		if parsed.Schema.Fields[i].ID == "" {
			parsed.Schema.Fields[i].ID = fmt.Sprintf("field-%d-%s", i, uuid.New().String()[:8])
		}
	}

	/* De-duplicated field types in first-seen order */
	seen := make(map[string]bool)
	var fieldTypes []string
	for _, field := range parsed.Schema.Fields {
		t := string(field.Type)
		if !seen[t] {
			seen[t] = true
			fieldTypes = append(fieldTypes, t)
		}
	}
	parsed.FieldTypes = fieldTypes

	if parsed.Summary == "" {
		parsed.Summary = "Form generated from: " + truncate(originalPrompt, 100)
	}
	if parsed.Purpose == "" {
		parsed.Purpose = "other"
	}
	return &parsed
}

func createFallbackForm(prompt string) *GeneratedForm {
	return &GeneratedForm{
		Schema: forms.FormSchema{
			Title:       "Generated Form",
			Description: prompt,
			Fields: []forms.FormField{
				{
					ID:          "field-name",
					Name:        "name",
					Label:       "Name",
					Type:        forms.FieldText,
					Placeholder: "Enter your name",
					Required:    true,
				},
				{
					ID:          "field-email",
					Name:        "email",
					Label:       "Email",
					Type:        forms.FieldEmail,
					Placeholder: "Enter your email",
					Required:    true,
				},
			},
		},
		Summary:    "Fallback form for: " + truncate(prompt, 100),
		Purpose:    "other",
		FieldTypes: []string{"text", "email"},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
