// Package apierr writes the JSON error envelope shared by every HTTP surface.
package apierr

import (
	"encoding/json"
	"net/http"
)

// Codes are stable machine-readable identifiers for clients.
const (
	CodeBadRequest   = "bad_request"
	CodeValidation   = "validation"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeGeneration   = "generation_failed"
	CodeInternal     = "internal"
)

// Error is an HTTP-facing error: a status, a code and a client-safe message.
type Error struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func New(status int, code, msg string) *Error {
	return &Error{Status: status, Code: code, Message: msg}
}

func BadRequest(msg string) *Error   { return New(http.StatusBadRequest, CodeBadRequest, msg) }
func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, CodeUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(http.StatusForbidden, CodeForbidden, msg) }
func NotFound(msg string) *Error     { return New(http.StatusNotFound, CodeNotFound, msg) }

// Validation carries per-field messages keyed by JSON field name.
func Validation(fields map[string]string) *Error {
	e := New(http.StatusBadRequest, CodeValidation, "validation failed")
	e.Fields = fields
	return e
}

// Write sends e as {"error": {...}}.
func Write(w http.ResponseWriter, e *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(map[string]*Error{"error": e})
}
