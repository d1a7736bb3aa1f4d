package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a template, print or job does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for requests that can never succeed as sent.
	ErrInvalidInput = errors.New("invalid input")
	// ErrJobRunning is returned when a job is removed before it finished.
	ErrJobRunning = errors.New("job is still running")
)

// ParseError means an uploaded document or workbook could not be read at all.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SpreadsheetFormatError means the workbook is readable but lacks a required tab or column.
type SpreadsheetFormatError struct {
	Sheet  string
	Column string
	Reason string
}

func (e *SpreadsheetFormatError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("spreadsheet sheet %q: missing column %q", e.Sheet, e.Column)
	case e.Sheet != "":
		return fmt.Sprintf("spreadsheet sheet %q: %s", e.Sheet, e.Reason)
	}
	return "spreadsheet: " + e.Reason
}

// RenderError is a failure to produce one contract document.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render document: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ValidationError rejects user supplied metadata or files.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// IsClientError reports whether err was caused by the request rather than the server.
func IsClientError(err error) bool {
	var (
		pe *ParseError
		fe *SpreadsheetFormatError
	)
	return errors.Is(err, ErrInvalidInput) || errors.As(err, &pe) || errors.As(err, &fe)
}
