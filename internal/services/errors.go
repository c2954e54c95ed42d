package services

import (
	"errors"
	"fmt"
)

var (
	// ErrModelUnavailable is returned by every embedding call once the model failed to load.
	ErrModelUnavailable = errors.New("embedding model unavailable")

	// ErrModelInput is returned when a similarity is requested for a missing (blank text) embedding.
	ErrModelInput = errors.New("embedding requested for empty text")

	// ErrInvalidRequest is returned when neither resume text nor a resume file was supplied.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrOCRUnavailable means the OCR binaries are not installed. Callers degrade to native text.
	ErrOCRUnavailable = errors.New("ocr backend unavailable")
)

// ExtractionError reports that a document could not be turned into text.
// Empty text from a readable document is not an ExtractionError.
type ExtractionError struct {
	Path  string
	Stage string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s (%s): %v", e.Path, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// CandidateError attaches the candidate file and pipeline stage to a ranking failure.
type CandidateError struct {
	Filename string
	Stage    string
	Err      error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("candidate %s failed at %s: %v", e.Filename, e.Stage, e.Err)
}

func (e *CandidateError) Unwrap() error {
	return e.Err
}

func invalidRequest(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
}
