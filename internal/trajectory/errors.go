package trajectory

import (
	"errors"
	"fmt"
)

// DocumentError describes why a persisted trajectory document was rejected.
//
// The codec never attempts to repair bad input: a document that fails
// syntax, schema, or ordering checks is reported and discarded. Callers
// that prefer degradation (the replay engine does) treat any DocumentError
// as "nothing to play".
type DocumentError struct {
	// Code identifies the rejection category.
	Code DocumentErrorCode

	// Path locates the offending element, e.g. "objects[2].samples[5]".
	// Empty when the error applies to the document as a whole.
	Path string

	// Message is a human-readable description.
	Message string
}

// DocumentErrorCode categorizes document rejections.
type DocumentErrorCode string

const (
	// ErrCodeSyntax indicates the bytes are not valid JSON.
	ErrCodeSyntax DocumentErrorCode = "SYNTAX"

	// ErrCodeSchema indicates the document does not match the embedded
	// CUE schema (wrong types, missing fields, negative timestamps).
	ErrCodeSchema DocumentErrorCode = "SCHEMA"

	// ErrCodeUnordered indicates a samples array whose timestamps are not
	// strictly increasing.
	ErrCodeUnordered DocumentErrorCode = "UNORDERED_SAMPLES"

	// ErrCodeDuplicateTrack indicates two entries resolve to the same
	// track name after normalization.
	ErrCodeDuplicateTrack DocumentErrorCode = "DUPLICATE_TRACK"
)

// Error implements the error interface.
func (e *DocumentError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDocumentError reports whether err is (or wraps) a DocumentError.
func IsDocumentError(err error) bool {
	var de *DocumentError
	return errors.As(err, &de)
}
