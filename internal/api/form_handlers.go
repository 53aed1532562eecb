/*-------------------------------------------------------------------------
 *
 * form_handlers.go
 *    Form management handlers for the FormGen API
 *
 * Provides generation, CRUD, duplication, and template operations on
 * forms. Generated forms are embedded into the vector index in the
 * background so future prompts can retrieve them as context.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/api/form_handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lib/pq"

	"github.com/formgen/server/internal/db"
	"github.com/formgen/server/internal/jobs"
	"github.com/formgen/server/internal/logic"
	"github.com/formgen/server/internal/metrics"
	"github.com/formgen/server/internal/validation"
	"github.com/formgen/server/internal/webhooks"
)

const maxBodySize = 1024 * 1024

const (
	maxPromptLength = 4000
	maxTitleLength  = 300
)

func parsePagination(r *http.Request) (page, limit, offset int) {
	page = 1
	limit = 20
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return page, limit, (page - 1) * limit
}

func (h *Handlers) formFromPath(w http.ResponseWriter, r *http.Request) (*db.Form, bool) {
	requestID := GetRequestID(r.Context())
	id, err := validation.ValidateUUIDRequired(mux.Vars(r)["id"], "form_id")
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "invalid form ID", err, requestID, r.URL.Path, r.Method, "form", "", nil))
		return nil, false
	}

	form, err := h.queries.GetFormByID(r.Context(), id)
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return nil, false
	}
	return form, true
}

/* requireOwner checks that the authenticated user owns the form */
func requireOwner(w http.ResponseWriter, r *http.Request, form *db.Form) (uuid.UUID, bool) {
	requestID := GetRequestID(r.Context())
	userID, ok := GetUserID(r.Context())
	if !ok {
		respondError(w, WrapError(ErrUnauthorized, requestID))
		return uuid.Nil, false
	}
	if form.UserID != userID {
		respondError(w, WrapError(ErrForbidden, requestID))
		return uuid.Nil, false
	}
	return userID, true
}

/* GenerateForm creates a form from a natural language prompt */
func (h *Handlers) GenerateForm(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	userID, ok := GetUserID(r.Context())
	if !ok {
		respondError(w, WrapError(ErrUnauthorized, requestID))
		return
	}

	bodyBytes, err := validation.ReadAndValidateBody(r, maxBodySize)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "request body validation failed", err, requestID, r.URL.Path, r.Method, "form", "", nil))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req GenerateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "form generation failed: request body parsing error", err, requestID, r.URL.Path, r.Method, "form", "", nil))
		return
	}
	if err := validation.ValidateRequired(req.Prompt, "prompt"); err != nil {
		respondError(w, NewError(http.StatusBadRequest, "prompt is required", err))
		return
	}
	if err := validation.ValidateMaxLength(req.Prompt, "prompt", maxPromptLength); err != nil {
		respondError(w, NewError(http.StatusBadRequest, "prompt too long", err))
		return
	}

	generated, err := h.generator.GenerateForm(r.Context(), userID, req.Prompt)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "form generation failed", err, requestID, r.URL.Path, r.Method, "form", "", map[string]interface{}{
			"prompt_length": len(req.Prompt),
		}))
		return
	}

	form := &db.Form{
		UserID:     userID,
		Title:      generated.Schema.Title,
		Prompt:     req.Prompt,
		Schema:     db.SchemaJSONB{FormSchema: generated.Schema},
		Summary:    generated.Summary,
		Purpose:    generated.Purpose,
		FieldTypes: pq.StringArray(generated.FieldTypes),
	}
	form.Description = generated.Schema.Description

	if err := h.queries.CreateForm(r.Context(), form); err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "form creation failed", err, requestID, r.URL.Path, r.Method, "form", "", nil))
		return
	}

	/* Embedding storage is best-effort and must not delay the response */
	stored := *form
	h.jobs.Submit(jobs.Task{
		Name: "store_form_embedding",
		Run: func(ctx context.Context) error {
			return h.memory.StoreFormEmbedding(ctx, &stored)
		},
	})

	metrics.InfoWithContext(r.Context(), "Form generated", map[string]interface{}{
		"form_id": form.ID.String(),
		"purpose": form.Purpose,
	})
	respondJSON(w, http.StatusCreated, toFormResponse(form))
}

func (h *Handlers) ListForms(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	userID, ok := GetUserID(r.Context())
	if !ok {
		respondError(w, WrapError(ErrUnauthorized, requestID))
		return
	}

	page, limit, offset := parsePagination(r)
	formList, err := h.queries.ListFormsByUser(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "form listing failed", err, requestID, r.URL.Path, r.Method, "form", "", nil))
		return
	}
	total, err := h.queries.CountFormsByUser(r.Context(), userID)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "form count failed", err, requestID, r.URL.Path, r.Method, "form", "", nil))
		return
	}

	items := make([]FormResponse, 0, len(formList))
	for i := range formList {
		items = append(items, toFormResponse(&formList[i]))
	}
	respondJSON(w, http.StatusOK, ListResponse{Items: items, Total: total, Page: page, Limit: limit})
}

func (h *Handlers) GetForm(w http.ResponseWriter, r *http.Request) {
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}

	/* Owners get the full form; everyone else gets the public view of
	 * public forms only. */
	if userID, authed := GetUserID(r.Context()); authed && form.UserID == userID {
		respondJSON(w, http.StatusOK, toFormResponse(form))
		return
	}
	if !form.IsPublic {
		respondError(w, WrapError(ErrNotFound, GetRequestID(r.Context())))
		return
	}
	respondJSON(w, http.StatusOK, toPublicFormResponse(form))
}

func (h *Handlers) UpdateForm(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}
	if _, ok := requireOwner(w, r, form); !ok {
		return
	}

	var req UpdateFormRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		respondError(w, NewErrorWithContext(http.StatusBadRequest, "form update failed: request body parsing error", err, requestID, r.URL.Path, r.Method, "form", "", nil))
		return
	}

	if req.Title != "" {
		if err := validation.ValidateMaxLength(req.Title, "title", maxTitleLength); err != nil {
			respondError(w, NewError(http.StatusBadRequest, "title too long", err))
			return
		}
		form.Title = req.Title
	}
	if req.Description != "" {
		form.Description = req.Description
	}
	if req.Schema != nil {
		form.Schema = db.SchemaJSONB{FormSchema: *req.Schema}
	}
	if req.IsPublic != nil {
		form.IsPublic = *req.IsPublic
	}
	if req.EmailNotifications != nil {
		form.EmailNotifications = db.EmailJSONB{V: req.EmailNotifications}
	}
	if req.Webhooks != nil {
		form.Webhooks = db.WebhookListJSONB(*req.Webhooks)
	}
	if req.Theme != nil {
		form.Theme = db.ThemeJSONB{V: req.Theme}
	}
	/* Rule cycles cannot loop at evaluation time, so they are saved and
	 * surfaced as a warning rather than rejected. */
	var ruleWarning string
	if req.ConditionalRules != nil {
		if err := logic.ValidateRules(*req.ConditionalRules); err != nil {
			ruleWarning = err.Error()
			metrics.WarnWithContext(r.Context(), "Conditional rules contain a cycle", map[string]interface{}{
				"form_id": form.ID.String(),
			})
		}
		form.ConditionalRules = db.RuleListJSONB(*req.ConditionalRules)
	}

	if err := h.queries.UpdateForm(r.Context(), form); err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "form update failed", err, requestID, r.URL.Path, r.Method, "form", "", nil))
		return
	}

	h.webhooks.Dispatch(form.ID, webhooks.EventFormUpdated, form.Webhooks, webhooks.Payload{
		Event:     webhooks.EventFormUpdated,
		FormID:    form.ID.String(),
		Timestamp: form.UpdatedAt,
		Data:      map[string]interface{}{"title": form.Title},
	})

	respondJSON(w, http.StatusOK, UpdateFormResult{
		FormResponse: toFormResponse(form),
		Warning:      ruleWarning,
	})
}

func (h *Handlers) DeleteForm(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}
	if _, ok := requireOwner(w, r, form); !ok {
		return
	}

	if err := h.queries.DeleteForm(r.Context(), form.ID); err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "form deletion failed", err, requestID, r.URL.Path, r.Method, "form", "", nil))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

/* DuplicateForm copies a form into the caller's workspace. Templates
 * may be duplicated by anyone; other forms only by their owner. */
func (h *Handlers) DuplicateForm(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	userID, authed := GetUserID(r.Context())
	if !authed {
		respondError(w, WrapError(ErrUnauthorized, requestID))
		return
	}

	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}
	if form.UserID != userID && !(form.IsTemplate && form.IsPublic) {
		respondError(w, WrapError(ErrForbidden, requestID))
		return
	}

	sourceID := form.ID
	dup := &db.Form{
		UserID:             userID,
		Title:              form.Title + " (Copy)",
		Description:        form.Description,
		Prompt:             form.Prompt,
		Schema:             form.Schema,
		Summary:            form.Summary,
		Purpose:            form.Purpose,
		FieldTypes:         form.FieldTypes,
		SourceFormID:       &sourceID,
		EmailNotifications: form.EmailNotifications,
		Theme:              form.Theme,
		ConditionalRules:   form.ConditionalRules,
	}
	/* Webhooks are deliberately not copied: their secrets and endpoints
	 * belong to the source form's owner. */

	if err := h.queries.CreateForm(r.Context(), dup); err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "form duplication failed", err, requestID, r.URL.Path, r.Method, "form", "", map[string]interface{}{
			"source_form_id": sourceID.String(),
		}))
		return
	}

	respondJSON(w, http.StatusCreated, toFormResponse(dup))
}

func (h *Handlers) MarkTemplate(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}
	if _, ok := requireOwner(w, r, form); !ok {
		return
	}

	var req MarkTemplateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		respondError(w, NewError(http.StatusBadRequest, "request body parsing error", err))
		return
	}

	flag, err := h.queries.SetTemplateFlag(r.Context(), form.ID, req.IsTemplate)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "template flag update failed", err, requestID, r.URL.Path, r.Method, "form", "", nil))
		return
	}

	form.IsTemplate = flag
	respondJSON(w, http.StatusOK, toFormResponse(form))
}

func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	page, limit, offset := parsePagination(r)

	var purpose *string
	if v := r.URL.Query().Get("purpose"); v != "" {
		purpose = &v
	}

	templates, err := h.queries.ListTemplates(r.Context(), purpose, limit, offset)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "template listing failed", err, requestID, r.URL.Path, r.Method, "form", "", nil))
		return
	}
	total, err := h.queries.CountTemplates(r.Context(), purpose)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "template count failed", err, requestID, r.URL.Path, r.Method, "form", "", nil))
		return
	}

	items := make([]PublicFormResponse, 0, len(templates))
	for i := range templates {
		items = append(items, toPublicFormResponse(&templates[i]))
	}
	respondJSON(w, http.StatusOK, ListResponse{Items: items, Total: total, Page: page, Limit: limit})
}
