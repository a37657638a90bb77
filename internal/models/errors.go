package models

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced to the HTTP layer. The pipeline never retries any
// of these; client-facing kinds fail the request before durable writes,
// storage faults surface as server errors.

// ErrProfileNotFound is returned when an upload targets a submission with no
// registered profile.
var ErrProfileNotFound = errors.New("submission profile not found")

// ErrObjectNotFound is returned by object-store reads that miss.
var ErrObjectNotFound = errors.New("object not found")

// ClientInputError marks a request the caller must fix: missing or unknown
// document type, empty payload, a document type the caller may not use, or a
// missing submission.
type ClientInputError struct {
	Reason string
	Err    error
}

func (e *ClientInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid upload request: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid upload request: %s", e.Reason)
}

func (e *ClientInputError) Unwrap() error { return e.Err }

// ClassificationError marks a payload whose content could not be sniffed.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("content classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// InvalidCredentialsError marks a page-oriented document whose password is
// missing or wrong. It is client-facing and never retried.
type InvalidCredentialsError struct {
	Err error
}

func (e *InvalidCredentialsError) Error() string {
	return "invalid document password"
}

func (e *InvalidCredentialsError) Unwrap() error { return e.Err }

// StorageError marks a failed object-store or aggregation-store call. The
// orchestrator surfaces it as-is; the caller may re-submit the whole upload.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsClientError reports whether err belongs to the client-facing side of the
// taxonomy, i.e. re-submitting the same request will fail again.
func IsClientError(err error) bool {
	var ci *ClientInputError
	var ce *ClassificationError
	var ic *InvalidCredentialsError
	return errors.As(err, &ci) || errors.As(err, &ce) || errors.As(err, &ic)
}
