// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package ai

import "fmt"

// ModelCallError indicates the completion endpoint could not be reached
// after exhausting all retry attempts.
type ModelCallError struct {
	Attempts int
	Err      error
}

func (e *ModelCallError) Error() string {
	return fmt.Sprintf("model call failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ModelCallError) Unwrap() error { return e.Err }

// ModelResponseError indicates the endpoint answered but the body was
// malformed or missing the expected fields. Never retried.
type ModelResponseError struct {
	Reason string
	Err    error
}

func (e *ModelResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bad model response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("bad model response: %s", e.Reason)
}

func (e *ModelResponseError) Unwrap() error { return e.Err }

// transientError marks a failure as retry-eligible (network error, timeout,
// non-2xx status).
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }
