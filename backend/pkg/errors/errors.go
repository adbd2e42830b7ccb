package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation represents rejected input, raised before any mutation
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeStore represents document store read/write errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeScan represents corpus scan errors
	ErrorTypeScan ErrorType = "scan"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeTool represents tool execution errors
	ErrorTypeTool ErrorType = "tool"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeVCS represents version control errors
	ErrorTypeVCS ErrorType = "vcs"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Validation Errors

// ErrValidationFailed is returned when caller input is rejected
type ErrValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewValidationFailed(field, reason string) *ErrValidationFailed {
	return &ErrValidationFailed{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// Store Errors

// ErrStoreReadFailed is returned when a document cannot be read
type ErrStoreReadFailed struct {
	*BaseError
	Path string
}

func NewStoreReadFailed(path string, err error) *ErrStoreReadFailed {
	return &ErrStoreReadFailed{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("failed to read document: %s", path), err),
		Path:      path,
	}
}

// ErrStoreWriteFailed is returned when a document cannot be written or removed
type ErrStoreWriteFailed struct {
	*BaseError
	Path string
}

func NewStoreWriteFailed(path string, err error) *ErrStoreWriteFailed {
	return &ErrStoreWriteFailed{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("failed to write document: %s", path), err),
		Path:      path,
	}
}

// ErrDocumentNotFound is returned when a document does not exist
type ErrDocumentNotFound struct {
	*BaseError
	Path string
}

func NewDocumentNotFound(path string) *ErrDocumentNotFound {
	return &ErrDocumentNotFound{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("document not found: %s", path), nil),
		Path:      path,
	}
}

// Scan Errors

// ErrScanFailed is returned when a full-corpus scan aborts
type ErrScanFailed struct {
	*BaseError
	Path string
}

func NewScanFailed(path string, err error) *ErrScanFailed {
	return &ErrScanFailed{
		BaseError: NewBaseError(ErrorTypeScan, fmt.Sprintf("corpus scan aborted at %s", path), err),
		Path:      path,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", query), err),
		Query:     query,
	}
}

// ErrQueryRejected is returned when a caller-supplied query fails the read-only guard
type ErrQueryRejected struct {
	*BaseError
	Reason string
}

func NewQueryRejected(reason string) *ErrQueryRejected {
	return &ErrQueryRejected{
		BaseError: NewBaseError(ErrorTypeValidation, reason, nil),
		Reason:    reason,
	}
}

// ErrConceptNotFound is returned when a concept is not in the graph
type ErrConceptNotFound struct {
	*BaseError
	Name string
}

func NewConceptNotFound(name string) *ErrConceptNotFound {
	return &ErrConceptNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("concept '%s' not found in knowledge graph", name), nil),
		Name:      name,
	}
}

// Tool Errors

// ErrToolExecutionFailed is returned when tool execution fails
type ErrToolExecutionFailed struct {
	*BaseError
	ToolName string
	Reason   string
}

func NewToolExecutionFailed(toolName, reason string, err error) *ErrToolExecutionFailed {
	return &ErrToolExecutionFailed{
		BaseError: NewBaseError(ErrorTypeTool, fmt.Sprintf("tool execution failed: %s", toolName), err),
		ToolName:  toolName,
		Reason:    reason,
	}
}

// ErrToolNotFound is returned when a requested tool is not found
type ErrToolNotFound struct {
	*BaseError
	ToolName string
}

func NewToolNotFound(toolName string) *ErrToolNotFound {
	return &ErrToolNotFound{
		BaseError: NewBaseError(ErrorTypeTool, fmt.Sprintf("tool not found: %s", toolName), nil),
		ToolName:  toolName,
	}
}

// VCS Errors

// ErrVCSCommandFailed is returned when a git command exits non-zero
type ErrVCSCommandFailed struct {
	*BaseError
	Command string
}

func NewVCSCommandFailed(command, stderr string, err error) *ErrVCSCommandFailed {
	return &ErrVCSCommandFailed{
		BaseError: NewBaseError(ErrorTypeVCS, fmt.Sprintf("git command failed: %s: %s", command, stderr), err),
		Command:   command,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

type typedError interface {
	error
	errorType() ErrorType
}

func (e *BaseError) errorType() ErrorType { return e.Type }

// IsErrorType checks if an error, or anything it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		var te typedError
		if !stderrors.As(err, &te) {
			return false
		}
		if te.errorType() == errType {
			return true
		}
		// Step past this typed error and keep looking down the chain
		u, ok := te.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// IsValidation reports whether err was raised by input validation
func IsValidation(err error) bool {
	return IsErrorType(err, ErrorTypeValidation)
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if IsErrorType(err, ErrorTypeValidation) {
		return false
	}
	var connErr *ErrGraphConnectionFailed
	if stderrors.As(err, &connErr) {
		return true
	}
	return IsErrorType(err, ErrorTypeVCS)
}
