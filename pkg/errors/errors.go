// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeUnauthorized  = 1003

	// Transcription errors (1200-1299)
	CodeTranscribeFailed  = 1200
	CodeTranscribeTimeout = 1201
	CodeAllKeysExhausted  = 1202
	CodeTranscriptEmpty   = 1203

	// Clip generation errors (1300-1399)
	CodeClipAnalysisFailed   = 1300
	CodeCandidatesUnparsable = 1301
	CodeLLMQuotaExceeded     = 1302

	// Editor errors (1400-1499)
	CodeInvalidTrimRange      = 1400
	CodeCaptionSplitInvalid   = 1401
	CodeMergeInvalidSelection = 1402
	CodeCaptionNotFound       = 1403
	CodeSessionNotFound       = 1404

	// Storage errors (1500-1599)
	CodeDBError        = 1500
	CodeFileNotFound   = 1501
	CodeFileWriteError = 1502
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "Resource not found")
	ErrUnauthorized  = New(CodeUnauthorized, "Unauthorized")

	// Transcription
	ErrTranscribeFailed = New(CodeTranscribeFailed, "Transcription failed")
	ErrAllKeysExhausted = New(CodeAllKeysExhausted, "All speech recognition keys exhausted")
	ErrTranscriptEmpty  = New(CodeTranscriptEmpty, "Transcript contains no usable segments")

	// Clip generation
	ErrClipAnalysisFailed   = New(CodeClipAnalysisFailed, "Clip analysis failed")
	ErrCandidatesUnparsable = New(CodeCandidatesUnparsable, "Generation response contained no parsable clip list")

	// Editor
	ErrInvalidTrimRange      = New(CodeInvalidTrimRange, "Invalid trim range")
	ErrCaptionSplitInvalid   = New(CodeCaptionSplitInvalid, "Caption cannot be split at that position")
	ErrMergeInvalidSelection = New(CodeMergeInvalidSelection, "Merge requires at least two captions")
	ErrCaptionNotFound       = New(CodeCaptionNotFound, "Caption not found")
	ErrSessionNotFound       = New(CodeSessionNotFound, "Editor session expired or not found")

	// Storage
	ErrDBError      = New(CodeDBError, "Database error")
	ErrFileNotFound = New(CodeFileNotFound, "File not found")
)
