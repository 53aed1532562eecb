/*-------------------------------------------------------------------------
 *
 * responses.go
 *    Request and response DTOs for the FormGen API
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/api/responses.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/formgen/server/internal/db"
	"github.com/formgen/server/internal/forms"
)

/* Requests */

type GenerateFormRequest struct {
	Prompt string `json:"prompt"`
}

type UpdateFormRequest struct {
	Title              string                   `json:"title"`
	Description        string                   `json:"description"`
	Schema             *forms.FormSchema        `json:"schema"`
	IsPublic           *bool                    `json:"isPublic"`
	EmailNotifications *forms.EmailNotification `json:"emailNotifications"`
	Webhooks           *[]forms.Webhook         `json:"webhooks"`
	Theme              *forms.Theme             `json:"theme"`
	ConditionalRules   *[]forms.ConditionalRule `json:"conditionalRules"`
}

type MarkTemplateRequest struct {
	IsTemplate bool `json:"isTemplate"`
}

type UpdateWebhooksRequest struct {
	Webhooks []forms.Webhook `json:"webhooks"`
}

type TestWebhookRequest struct {
	URL    string `json:"url"`
	Secret string `json:"secret"`
}

type CreateSubmissionRequest struct {
	Responses map[string]interface{} `json:"responses"`
	ImageURLs map[string]string      `json:"imageUrls"`
	Metadata  map[string]interface{} `json:"metadata"`
}

/* Responses */

type FormResponse struct {
	ID                 uuid.UUID               `json:"id"`
	UserID             uuid.UUID               `json:"userId"`
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	Prompt             string                  `json:"prompt"`
	Schema             forms.FormSchema        `json:"schema"`
	Summary            string                  `json:"summary"`
	Purpose            string                  `json:"purpose"`
	FieldTypes         []string                `json:"fieldTypes"`
	IsPublic           bool                    `json:"isPublic"`
	SubmissionCount    int                     `json:"submissionCount"`
	IsTemplate         bool                    `json:"isTemplate"`
	SourceFormID       *uuid.UUID              `json:"sourceFormId,omitempty"`
	EmailNotifications *forms.EmailNotification `json:"emailNotifications,omitempty"`
	Webhooks           []forms.Webhook         `json:"webhooks"`
	Theme              *forms.Theme            `json:"theme,omitempty"`
	ConditionalRules   []forms.ConditionalRule `json:"conditionalRules"`
	CreatedAt          time.Time               `json:"createdAt"`
	UpdatedAt          time.Time               `json:"updatedAt"`
}

/* PublicFormResponse omits owner-only configuration (webhook secrets,
 * notification settings) for unauthenticated form rendering */
type PublicFormResponse struct {
	ID               uuid.UUID               `json:"id"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	Schema           forms.FormSchema        `json:"schema"`
	Theme            *forms.Theme            `json:"theme,omitempty"`
	ConditionalRules []forms.ConditionalRule `json:"conditionalRules"`
}

type SubmissionResponse struct {
	ID          uuid.UUID              `json:"id"`
	FormID      uuid.UUID              `json:"formId"`
	Responses   map[string]interface{} `json:"responses"`
	ImageURLs   map[string]string      `json:"imageUrls,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	SubmittedAt time.Time              `json:"submittedAt"`
}

type WebhookLogResponse struct {
	ID            uuid.UUID `json:"id"`
	WebhookID     string    `json:"webhookId"`
	FormID        uuid.UUID `json:"formId"`
	Event         string    `json:"event"`
	Status        string    `json:"status"`
	Attempts      int       `json:"attempts"`
	StatusCode    *int      `json:"statusCode,omitempty"`
	ResponseBody  *string   `json:"responseBody,omitempty"`
	Error         *string   `json:"error,omitempty"`
	LastAttemptAt time.Time `json:"lastAttemptAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

/* UpdateFormResult is a FormResponse plus an advisory warning, set when
 * the saved conditional rules contain a dependency cycle */
type UpdateFormResult struct {
	FormResponse
	Warning string `json:"warning,omitempty"`
}

type TestWebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ListResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version"`
}

/* Converters */

func toFormResponse(f *db.Form) FormResponse {
	return FormResponse{
		ID:                 f.ID,
		UserID:             f.UserID,
		Title:              f.Title,
		Description:        f.Description,
		Prompt:             f.Prompt,
		Schema:             f.Schema.FormSchema,
		Summary:            f.Summary,
		Purpose:            f.Purpose,
		FieldTypes:         []string(f.FieldTypes),
		IsPublic:           f.IsPublic,
		SubmissionCount:    f.SubmissionCount,
		IsTemplate:         f.IsTemplate,
		SourceFormID:       f.SourceFormID,
		EmailNotifications: f.EmailNotifications.V,
		Webhooks:           []forms.Webhook(f.Webhooks),
		Theme:              f.Theme.V,
		ConditionalRules:   []forms.ConditionalRule(f.ConditionalRules),
		CreatedAt:          f.CreatedAt,
		UpdatedAt:          f.UpdatedAt,
	}
}

func toPublicFormResponse(f *db.Form) PublicFormResponse {
	return PublicFormResponse{
		ID:               f.ID,
		Title:            f.Title,
		Description:      f.Description,
		Schema:           f.Schema.FormSchema,
		Theme:            f.Theme.V,
		ConditionalRules: []forms.ConditionalRule(f.ConditionalRules),
	}
}

func toSubmissionResponse(s *db.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:          s.ID,
		FormID:      s.FormID,
		Responses:   map[string]interface{}(s.Responses),
		ImageURLs:   map[string]string(s.ImageURLs),
		Metadata:    map[string]interface{}(s.Metadata),
		SubmittedAt: s.SubmittedAt,
	}
}

func toWebhookLogResponse(l *db.WebhookLog) WebhookLogResponse {
	return WebhookLogResponse{
		ID:            l.ID,
		WebhookID:     l.WebhookID,
		FormID:        l.FormID,
		Event:         l.Event,
		Status:        l.Status,
		Attempts:      l.Attempts,
		StatusCode:    l.StatusCode,
		ResponseBody:  l.ResponseBody,
		Error:         l.ErrorMessage,
		LastAttemptAt: l.LastAttemptAt,
		CreatedAt:     l.CreatedAt,
	}
}
