package submission

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrFormIncomplete blocks a submit whose title, type or difficulty is empty.
	ErrFormIncomplete = errors.New("please fill all the fields")
	// ErrBusy rejects a submit while another attempt is in flight.
	ErrBusy = errors.New("submission already in progress")
	// ErrImagesRequired is raised when no image was accepted.
	ErrImagesRequired = &AssetPresenceError{Class: AssetImage, Message: "Please upload at least one image"}
)

// RequiredFieldError reports a missing form field.
type RequiredFieldError struct {
	Field   string
	Message string
}

func (e *RequiredFieldError) Error() string {
	return e.Message
}

// ValidationError aggregates per-field failures of a form submit.
type ValidationError struct {
	Fields map[string]error
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the error attached to name, if any.
func (e *ValidationError) Field(name string) error {
	return e.Fields[name]
}

// AssetPresenceError reports a required asset class with no accepted files.
type AssetPresenceError struct {
	Class   AssetClass
	Message string
}

func (e *AssetPresenceError) Error() string {
	return e.Message
}

// UploadError reports a failed upload. Any failed file fails the whole batch.
type UploadError struct {
	File  string
	Class AssetClass
	Err   error
}

func (e *UploadError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("upload %s batch: %v", e.Class, e.Err)
	}
	return fmt.Sprintf("upload %s %q: %v", e.Class, e.File, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// SubmissionError reports a create request the backend refused.
type SubmissionError struct {
	Reason string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Reason == "" {
		return "submission failed"
	}
	return "submission failed: " + e.Reason
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
