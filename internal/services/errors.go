package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers classifying pipeline failures. Wrap tags errors with one of
// these so the workflow manager and queue can map a failure to the right
// lifecycle status without inspecting error strings.
var (
	ErrDownload      = errors.New("download error")
	ErrParse         = errors.New("parse error")
	ErrSlice         = errors.New("slice error")
	ErrTransfer      = errors.New("transfer error")
	ErrPrint         = errors.New("print error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

func markerKind(marker error) string {
	switch marker {
	case ErrDownload:
		return "download"
	case ErrParse:
		return "parse"
	case ErrSlice:
		return "slice"
	case ErrTransfer:
		return "transfer"
	case ErrPrint:
		return "print"
	case ErrValidation:
		return "validation"
	case ErrConfiguration:
		return "configuration"
	case ErrNotFound:
		return "not_found"
	default:
		return "transient"
	}
}

// ErrorDetails exposes the structured parts of a wrapped stage error.
type ErrorDetails struct {
	Kind      string
	Stage     string
	Operation string
	Message   string
	Cause     error
}

type stageError struct {
	marker    error
	stage     string
	operation string
	message   string
	cause     error
}

func (e *stageError) Error() string {
	detail := buildDetail(e.stage, e.operation, e.message)
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.marker.Error(), detail, e.cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.marker.Error(), detail)
}

func (e *stageError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.marker, e.cause}
	}
	return []error{e.marker}
}

// ErrorKind implements the classification contract the queue package uses to
// choose between failed and review statuses.
func (e *stageError) ErrorKind() string {
	return markerKind(e.marker)
}

// Wrap builds an error that includes stage context while tagging it with the
// provided marker for later status classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &stageError{
		marker:    marker,
		stage:     strings.TrimSpace(stage),
		operation: strings.TrimSpace(operation),
		message:   strings.TrimSpace(message),
		cause:     err,
	}
}

// Details extracts structured error context from a wrapped stage error. For
// errors not produced by Wrap, the Message falls back to the error string.
func Details(err error) ErrorDetails {
	var stageErr *stageError
	if errors.As(err, &stageErr) {
		return ErrorDetails{
			Kind:      stageErr.ErrorKind(),
			Stage:     stageErr.stage,
			Operation: stageErr.operation,
			Message:   buildDetail(stageErr.stage, stageErr.operation, stageErr.message),
			Cause:     stageErr.cause,
		}
	}
	details := ErrorDetails{Kind: "transient"}
	if err != nil {
		details.Message = err.Error()
	}
	return details
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage != "" {
		parts = append(parts, stage)
	}
	if operation != "" {
		parts = append(parts, operation)
	}
	if message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
