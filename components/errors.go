package components

import (
	"fmt"
)

// TransportError means the source could not be fetched or decoded.
// StatusCode is zero when no HTTP response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Body       string // leading bytes of a non-success response body
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("source %v returned HTTP %v: %v", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("source %v: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedArtifactError means an input artifact was absent, unreadable or did not have the expected shape.
// Row is the 1-based data row at fault, or zero if the problem is not row specific.
type MalformedArtifactError struct {
	Location string
	Row      int
	Err      error
}

func (e *MalformedArtifactError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("malformed artifact %v at row %v: %v", e.Location, e.Row, e.Err)
	}
	return fmt.Sprintf("malformed artifact %v: %v", e.Location, e.Err)
}

func (e *MalformedArtifactError) Unwrap() error {
	return e.Err
}

// LoadTransactionError means the destination refresh failed and was rolled back.
// Phase names the failing part of the load: connect, begin, create, truncate, insert or commit.
type LoadTransactionError struct {
	Table string
	Phase string
	Row   int
	Err   error
}

func (e *LoadTransactionError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("load of %v failed during %v at row %v: %v", e.Table, e.Phase, e.Row, e.Err)
	}
	return fmt.Sprintf("load of %v failed during %v: %v", e.Table, e.Phase, e.Err)
}

func (e *LoadTransactionError) Unwrap() error {
	return e.Err
}
