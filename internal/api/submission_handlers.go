/*-------------------------------------------------------------------------
 *
 * submission_handlers.go
 *    Form submission handlers for the FormGen API
 *
 * Accepts public form submissions, validates required fields against
 * the form's conditional visibility rules, and fans out webhook
 * deliveries off the request path.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/api/submission_handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/formgen/server/internal/db"
	"github.com/formgen/server/internal/forms"
	"github.com/formgen/server/internal/logic"
	"github.com/formgen/server/internal/metrics"
	"github.com/formgen/server/internal/validation"
	"github.com/formgen/server/internal/webhooks"
)

/* computeMissingFields validates required fields after applying the
 * form's conditional rules: hidden fields are never required, and a
 * file or image field is satisfied by an uploaded URL keyed by field
 * ID */
func computeMissingFields(schema *forms.FormSchema, rules []forms.ConditionalRule, responses map[string]interface{}, imageURLs map[string]string) []string {
	/* Rules reference fields by ID; submissions key responses by name */
	triggers := make(map[string]interface{}, len(responses))
	for _, field := range schema.Fields {
		if v, ok := responses[field.Name]; ok {
			triggers[field.ID] = v
		}
	}
	result := logic.Evaluate(rules, triggers, schema.FieldIDs())
	required := result.RequiredSet()

	var missing []string
	for _, field := range schema.Fields {
		if !field.Required && !required[field.ID] {
			continue
		}
		if _, hidden := result.HiddenSet()[field.ID]; hidden {
			continue
		}

		hasResponse := false
		if v, ok := responses[field.Name]; ok && v != "" && v != nil {
			hasResponse = true
		}
		hasFile := false
		if field.Type == forms.FieldFile || field.Type == forms.FieldImage {
			_, hasFile = imageURLs[field.ID]
		}

		if !hasResponse && !hasFile {
			missing = append(missing, field.Label)
		}
	}
	return missing
}

/* CreateSubmission accepts a public form submission */
func (h *Handlers) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	formID, err := validation.ValidateUUIDRequired(mux.Vars(r)["formId"], "form_id")
	if err != nil {
		respondError(w, NewError(http.StatusBadRequest, "invalid form ID", err))
		return
	}

	form, err := h.queries.GetFormByID(r.Context(), formID)
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}
	if !form.IsPublic {
		respondError(w, NewError(http.StatusForbidden, "this form is not accepting responses", nil))
		return
	}

	var req CreateSubmissionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		respondError(w, NewError(http.StatusBadRequest, "request body parsing error", err))
		return
	}
	if req.Responses == nil {
		req.Responses = map[string]interface{}{}
	}

	missing := computeMissingFields(&form.Schema.FormSchema, form.ConditionalRules, req.Responses, req.ImageURLs)
	if len(missing) > 0 {
		metrics.RecordSubmission("rejected")
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "missing required fields",
			"fields": missing,
		})
		return
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadata["userAgent"] = r.UserAgent()
	metadata["ipAddress"] = r.RemoteAddr

	sub := &db.Submission{
		FormID:    form.ID,
		UserID:    form.UserID,
		Responses: db.JSONBMap(req.Responses),
		ImageURLs: db.StringMapJSONB(req.ImageURLs),
		Metadata:  db.JSONBMap(metadata),
	}
	if err := h.queries.CreateSubmission(r.Context(), sub); err != nil {
		metrics.RecordSubmission("error")
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "submission creation failed", err, requestID, r.URL.Path, r.Method, "submission", "", map[string]interface{}{
			"form_id": form.ID.String(),
		}))
		return
	}

	if _, err := h.queries.IncrementSubmissionCount(r.Context(), form.ID); err != nil {
		metrics.WarnWithContext(r.Context(), "Submission count increment failed", map[string]interface{}{
			"form_id": form.ID.String(),
			"error":   err.Error(),
		})
	}

	h.webhooks.Dispatch(form.ID, webhooks.EventSubmissionCreated, form.Webhooks, webhooks.Payload{
		Event:        webhooks.EventSubmissionCreated,
		FormID:       form.ID.String(),
		SubmissionID: sub.ID.String(),
		Timestamp:    sub.SubmittedAt,
		Data: map[string]interface{}{
			"responses": req.Responses,
			"imageUrls": req.ImageURLs,
		},
	})

	metrics.RecordSubmission("success")
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "Form submitted successfully",
		"submissionId": sub.ID,
	})
}

/* GetSubmission returns a single submission to the form owner */
func (h *Handlers) GetSubmission(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	userID, ok := GetUserID(r.Context())
	if !ok {
		respondError(w, WrapError(ErrUnauthorized, requestID))
		return
	}

	id, err := validation.ValidateUUIDRequired(mux.Vars(r)["id"], "submission_id")
	if err != nil {
		respondError(w, NewError(http.StatusBadRequest, "invalid submission ID", err))
		return
	}

	sub, err := h.queries.GetSubmissionByID(r.Context(), id)
	if err != nil {
		respondError(w, WrapError(ErrNotFound, requestID))
		return
	}
	if sub.UserID != userID {
		respondError(w, WrapError(ErrForbidden, requestID))
		return
	}

	respondJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

/* ListSubmissions returns a form's submissions to its owner */
func (h *Handlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}
	if _, ok := requireOwner(w, r, form); !ok {
		return
	}

	page, limit, offset := parsePagination(r)
	subs, err := h.queries.ListSubmissionsByForm(r.Context(), form.ID, limit, offset)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "submission listing failed", err, requestID, r.URL.Path, r.Method, "submission", "", nil))
		return
	}
	total, err := h.queries.CountSubmissionsByForm(r.Context(), form.ID)
	if err != nil {
		respondError(w, NewErrorWithContext(http.StatusInternalServerError, "submission count failed", err, requestID, r.URL.Path, r.Method, "submission", "", nil))
		return
	}

	items := make([]SubmissionResponse, 0, len(subs))
	for i := range subs {
		items = append(items, toSubmissionResponse(&subs[i]))
	}
	respondJSON(w, http.StatusOK, ListResponse{Items: items, Total: total, Page: page, Limit: limit})
}
