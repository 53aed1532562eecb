/*-------------------------------------------------------------------------
 *
 * webhook_handlers.go
 *    Webhook configuration and audit log handlers
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/api/webhook_handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/formgen/server/internal/db"
	"github.com/formgen/server/internal/forms"
	"github.com/formgen/server/internal/validation"
)

/* UpdateWebhooks replaces a form's webhook configuration */
func (h *Handlers) UpdateWebhooks(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}
	if _, ok := requireOwner(w, r, form); !ok {
		return
	}

	var req UpdateWebhooksRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		respondError(w, NewError(http.StatusBadRequest, "request body parsing error", err))
		return
	}

	for i := range req.Webhooks {
		if err := validation.ValidateURL(req.Webhooks[i].URL, "webhook url"); err != nil {
			respondError(w, NewError(http.StatusBadRequest, "invalid webhook URL", err))
			return
		}
		if req.Webhooks[i].ID == "" {
			req.Webhooks[i].ID = uuid.New().String()
		}
	}

	form.Webhooks = db.WebhookListJSONB(req.Webhooks)
	if err := h.queries.UpdateForm(r.Context(), form); err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "webhook update failed", err, requestID, r.URL.Path, r.Method, "webhook", "", map[string]interface{}{
			"webhook_count": len(req.Webhooks),
		}))
		return
	}

	respondJSON(w, http.StatusOK, toFormResponse(form))
}

/* AddWebhook appends a single webhook to a form's configuration */
func (h *Handlers) AddWebhook(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}
	if _, ok := requireOwner(w, r, form); !ok {
		return
	}

	var hook forms.Webhook
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&hook); err != nil {
		respondError(w, NewError(http.StatusBadRequest, "request body parsing error", err))
		return
	}
	if err := validation.ValidateURL(hook.URL, "webhook url"); err != nil {
		respondError(w, NewError(http.StatusBadRequest, "invalid webhook URL", err))
		return
	}
	if hook.ID == "" {
		hook.ID = uuid.New().String()
	}

	form.Webhooks = append(form.Webhooks, hook)
	if err := h.queries.UpdateForm(r.Context(), form); err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "webhook creation failed", err, requestID, r.URL.Path, r.Method, "webhook", hook.ID, nil))
		return
	}

	respondJSON(w, http.StatusCreated, toFormResponse(form))
}

/* UpdateWebhook replaces one webhook, identified by its ID */
func (h *Handlers) UpdateWebhook(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}
	if _, ok := requireOwner(w, r, form); !ok {
		return
	}
	webhookID := mux.Vars(r)["webhookId"]

	var hook forms.Webhook
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&hook); err != nil {
		respondError(w, NewError(http.StatusBadRequest, "request body parsing error", err))
		return
	}
	if err := validation.ValidateURL(hook.URL, "webhook url"); err != nil {
		respondError(w, NewError(http.StatusBadRequest, "invalid webhook URL", err))
		return
	}

	found := false
	for i := range form.Webhooks {
		if form.Webhooks[i].ID == webhookID {
			hook.ID = webhookID
			form.Webhooks[i] = hook
			found = true
			break
		}
	}
	if !found {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	if err := h.queries.UpdateForm(r.Context(), form); err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "webhook update failed", err, requestID, r.URL.Path, r.Method, "webhook", webhookID, nil))
		return
	}

	respondJSON(w, http.StatusOK, toFormResponse(form))
}

/* DeleteWebhook removes one webhook, identified by its ID */
func (h *Handlers) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}
	if _, ok := requireOwner(w, r, form); !ok {
		return
	}
	webhookID := mux.Vars(r)["webhookId"]

	kept := form.Webhooks[:0:0]
	found := false
	for _, hook := range form.Webhooks {
		if hook.ID == webhookID {
			found = true
			continue
		}
		kept = append(kept, hook)
	}
	if !found {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}

	form.Webhooks = kept
	if err := h.queries.UpdateForm(r.Context(), form); err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "webhook deletion failed", err, requestID, r.URL.Path, r.Method, "webhook", webhookID, nil))
		return
	}

	respondJSON(w, http.StatusOK, toFormResponse(form))
}

/* TestWebhookByID exercises a configured webhook with a synthetic event */
func (h *Handlers) TestWebhookByID(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}
	if _, ok := requireOwner(w, r, form); !ok {
		return
	}
	webhookID := mux.Vars(r)["webhookId"]

	for _, hook := range form.Webhooks {
		if hook.ID == webhookID {
			success, message := h.webhooks.TestWebhook(r.Context(), hook.URL, hook.Secret)
			respondJSON(w, http.StatusOK, TestWebhookResponse{Success: success, Message: message})
			return
		}
	}
	respondError(w, WrapError(ErrNotFound, requestID))
}

/* TestWebhook sends a synthetic event to an endpoint, synchronously */
func (h *Handlers) TestWebhook(w http.ResponseWriter, r *http.Request) {
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}
	if _, ok := requireOwner(w, r, form); !ok {
		return
	}

	var req TestWebhookRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		respondError(w, NewError(http.StatusBadRequest, "request body parsing error", err))
		return
	}
	if err := validation.ValidateURL(req.URL, "url"); err != nil {
		respondError(w, NewError(http.StatusBadRequest, "invalid webhook URL", err))
		return
	}

	success, message := h.webhooks.TestWebhook(r.Context(), req.URL, req.Secret)
	respondJSON(w, http.StatusOK, TestWebhookResponse{Success: success, Message: message})
}

/* ListWebhookLogs returns the delivery audit trail for a form */
func (h *Handlers) ListWebhookLogs(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}
	if _, ok := requireOwner(w, r, form); !ok {
		return
	}

	page, limit, offset := parsePagination(r)
	logs, err := h.queries.ListWebhookLogsByForm(r.Context(), form.ID, limit, offset)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "webhook log listing failed", err, requestID, r.URL.Path, r.Method, "webhook_log", "", nil))
		return
	}
	total, err := h.queries.CountWebhookLogsByForm(r.Context(), form.ID)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "webhook log count failed", err, requestID, r.URL.Path, r.Method, "webhook_log", "", nil))
		return
	}

	items := make([]WebhookLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, toWebhookLogResponse(&logs[i]))
	}
	respondJSON(w, http.StatusOK, ListResponse{Items: items, Total: total, Page: page, Limit: limit})
}
