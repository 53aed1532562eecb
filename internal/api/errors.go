/*-------------------------------------------------------------------------
 *
 * errors.go
 *    API error types and response helpers
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/api/errors.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

/* APIError carries an HTTP status plus diagnostic context */
type APIError struct {
	Code       int
	Message    string
	Err        error
	RequestID  string
	Endpoint   string
	Method     string
	Resource   string
	ResourceID string
	Details    map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

var (
	ErrNotFound     = &APIError{Code: http.StatusNotFound, Message: "resource not found"}
	ErrUnauthorized = &APIError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	ErrForbidden    = &APIError{Code: http.StatusForbidden, Message: "forbidden"}
	ErrBadRequest   = &APIError{Code: http.StatusBadRequest, Message: "bad request"}
)

func NewError(code int, message string, err error) *APIError {
	return &APIError{Code: code, Message: message, Err: err}
}

/* NewErrorWithContext creates an error with full request context for logging */
func NewErrorWithContext(code int, message string, err error, requestID, endpoint, method, resource, resourceID string, details map[string]interface{}) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		Err:        err,
		RequestID:  requestID,
		Endpoint:   endpoint,
		Method:     method,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
	}
}

/* WrapError attaches a request ID to a sentinel error */
func WrapError(base *APIError, requestID string) *APIError {
	return &APIError{
		Code:      base.Code,
		Message:   base.Message,
		Err:       base.Err,
		RequestID: requestID,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err *APIError) {
	response := ErrorResponse{
		Error: err.Message,
		Code:  err.Code,
	}
	if err.Err != nil {
		response.Message = err.Err.Error()
	}
	if err.RequestID != "" {
		w.Header().Set("X-Request-ID", err.RequestID)
	}

	if err.Code >= 500 {
		event := log.Error().
			Int("code", err.Code).
			Str("request_id", err.RequestID).
			Str("endpoint", err.Endpoint).
			Str("method", err.Method).
			Str("resource", err.Resource).
			Str("resource_id", err.ResourceID)
		for k, v := range err.Details {
			event = event.Interface(k, v)
		}
		if err.Err != nil {
			event = event.Err(err.Err)
		}
		event.Msg(err.Message)
	}

	respondJSON(w, err.Code, response)
}
