package internal

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned when an operation needs a bearer token and none is held.
var ErrNotAuthenticated = errors.New("not authenticated: run `readgye login` or `readgye guest` first")

// StorageError represents errors accessing the local key-value store
type StorageError struct {
	Path string
	Op   string // "open", "read", "write", "delete"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors parsing data
type ParseError struct {
	Source string // "store", "api", "cache"
	Key    string // storage key, endpoint or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response from the backend
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string // "detail" field of the error body, if any
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error: %s %s returned %d", e.Method, e.Path, e.StatusCode)
}

// DetailOr returns the backend detail text, or fallback when the backend sent none.
func (e *APIError) DetailOr(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// AuthError carries a user-facing message for a failed sign-in or sign-up
type AuthError struct {
	Op      string // "login", "signup"
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// UserMessage extracts the text to show a user for err.
func UserMessage(err error, fallback string) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.DetailOr(fallback)
	}
	return fallback
}
