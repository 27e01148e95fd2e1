// Package http serves the ledger as a JSON API.
//
// This file implements a small builder for JSON responses so every handler
// answers with the same envelope and headers.

package http

import (
	"encoding/json"
	"net/http"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	data       any
	headers    map[string]string
	err        *errorBody
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// NewJSONResponse creates a builder with a 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Data sets the value encoded as the body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Created is shorthand for a 201 with the new resource as body.
func (b *JSONResponseBuilder) Created(v any) *JSONResponseBuilder {
	return b.Status(http.StatusCreated).Data(v)
}

// Write sends the built response. A 204 or a nil body writes no content.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	var body any = b.data
	if b.err != nil {
		body = b.err
	}
	if body == nil || b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// ErrorResponse creates a JSON error body with a machine-readable code.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	b := NewJSONResponse().Status(statusCode)
	b.err = &errorBody{Error: message, Code: code}
	return b
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, "bad_request", message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, "validation_failed", message)
}

// UnauthorizedError creates a 401 response for requests without a user.
func UnauthorizedError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, "unauthenticated", "sign in required")
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, "not_found", message)
}

// ConflictError creates a 409 Conflict error response.
func ConflictError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusConflict, "conflict", message)
}

// InternalServerError creates a 500 response. The message is generic; the
// cause belongs in the log.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal", message)
}

// ServiceUnavailableError creates a 503 for a storage backend that failed.
func ServiceUnavailableError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, "storage_unavailable", message)
}
