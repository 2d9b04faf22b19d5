package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that carry their own HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrMissingCredential = errors.New("missing credential")
	ErrUpstream          = errors.New("upstream service failed")
)

// MissingCredentialError is returned when an action needs a key the caller has not configured.
// It is scoped to the triggering action; nothing else in the session is affected.
type MissingCredentialError struct {
	Credential string
	Message    string
}

func (e *MissingCredentialError) Error() string   { return e.Message }
func (e *MissingCredentialError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match against ErrMissingCredential
func (e *MissingCredentialError) Is(target error) bool { return target == ErrMissingCredential }

// UpstreamError wraps a failure of a remote collaborator (Drive, Gemini, the record store).
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string   { return e.Service + ": " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error   { return e.Err }
func (e *UpstreamError) StatusCode() int { return http.StatusBadGateway }

// Is allows errors.Is() to match against ErrUpstream
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string   { return e.Message }
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
