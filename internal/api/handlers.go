/*-------------------------------------------------------------------------
 *
 * handlers.go
 *    API handlers and routing for the FormGen server
 *
 * Provides the router wiring and shared handler state for forms,
 * submissions, webhooks, and health endpoints.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/api/handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/formgen/server/internal/auth"
	"github.com/formgen/server/internal/db"
	"github.com/formgen/server/internal/generator"
	"github.com/formgen/server/internal/jobs"
	"github.com/formgen/server/internal/memory"
	"github.com/formgen/server/internal/metrics"
	"github.com/formgen/server/internal/webhooks"
)

const serverVersion = "1.0.0"

type Handlers struct {
	queries   *db.Queries
	database  *db.DB
	generator *generator.Service
	memory    *memory.Service
	webhooks  *webhooks.Service
	jobs      *jobs.Runner
}

func NewHandlers(queries *db.Queries, database *db.DB, gen *generator.Service, mem *memory.Service, wh *webhooks.Service, runner *jobs.Runner) *Handlers {
	return &Handlers{
		queries:   queries,
		database:  database,
		generator: gen,
		memory:    mem,
		webhooks:  wh,
		jobs:      runner,
	}
}

/* NewRouter builds the full route tree with middleware applied */
func NewRouter(h *Handlers, tokens *auth.TokenManager, rateLimiter *auth.RateLimiter, requestsPerMin int) *mux.Router {
	r := mux.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(SecurityHeadersMiddleware)
	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(AuthMiddleware(tokens, rateLimiter, requestsPerMin))

	r.HandleFunc("/health", h.Health).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	v1 := r.PathPrefix("/api/v1").Subrouter()

	/* Forms */
	v1.HandleFunc("/forms/generate", h.GenerateForm).Methods("POST")
	v1.HandleFunc("/forms/templates/list", h.ListTemplates).Methods("GET")
	v1.HandleFunc("/forms", h.ListForms).Methods("GET")
	v1.HandleFunc("/forms/{id}", h.GetForm).Methods("GET")
	v1.HandleFunc("/forms/{id}", h.UpdateForm).Methods("PUT")
	v1.HandleFunc("/forms/{id}", h.DeleteForm).Methods("DELETE")
	v1.HandleFunc("/forms/{id}/duplicate", h.DuplicateForm).Methods("POST")
	v1.HandleFunc("/forms/{id}/mark-template", h.MarkTemplate).Methods("POST")
	v1.HandleFunc("/forms/{id}/submissions", h.ListSubmissions).Methods("GET")

	/* Webhooks */
	v1.HandleFunc("/forms/{id}/webhooks", h.AddWebhook).Methods("POST")
	v1.HandleFunc("/forms/{id}/webhooks", h.UpdateWebhooks).Methods("PUT")
	v1.HandleFunc("/forms/{id}/webhooks/test", h.TestWebhook).Methods("POST")
	v1.HandleFunc("/forms/{id}/webhooks/{webhookId}", h.UpdateWebhook).Methods("PUT")
	v1.HandleFunc("/forms/{id}/webhooks/{webhookId}", h.DeleteWebhook).Methods("DELETE")
	v1.HandleFunc("/forms/{id}/webhooks/{webhookId}/test", h.TestWebhookByID).Methods("POST")
	v1.HandleFunc("/forms/{id}/webhook-logs", h.ListWebhookLogs).Methods("GET")

	/* Submissions */
	v1.HandleFunc("/submissions/{formId}", h.CreateSubmission).Methods("POST")
	v1.HandleFunc("/submissions/{id}", h.GetSubmission).Methods("GET")

	return r
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "up"
	status := "ok"
	if !h.database.Healthy(r.Context()) {
		dbStatus = "down"
		status = "degraded"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, HealthResponse{
		Status:   status,
		Database: dbStatus,
		Version:  serverVersion,
	})
}
