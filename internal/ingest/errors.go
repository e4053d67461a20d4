package ingest

import "fmt"

// IntakeError is a user-correctable problem with the upload itself.
type IntakeError struct {
	Msg string
}

func (e *IntakeError) Error() string { return e.Msg }

// ExtractionError means a file could not be turned into text.
type ExtractionError struct {
	File string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract text from %s: %v", e.File, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// CompletionError covers a failed completion call or an unusable completion
// for one batch. Batch is 1-based.
type CompletionError struct {
	Batch int
	Err   error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("batch %d: completion: %v", e.Batch, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// PersistenceError is a storage failure while saving one candidate.
type PersistenceError struct {
	Batch int
	Email string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("batch %d: persist %s: %v", e.Batch, e.Email, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// BatchError is a failure recorded under the continue policy.
type BatchError struct {
	Batch   int    `json:"batch"`
	Message string `json:"error"`
}
