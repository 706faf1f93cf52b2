package session

import "fmt"

// SessionCreationError reports that a worker could not obtain a rendering
// session. It is attributed to the worker's current task, downgraded to an
// Unknown result at the task boundary, and never retried.
type SessionCreationError struct {
	Worker int
	Err    error
}

func (e *SessionCreationError) Error() string {
	return fmt.Sprintf("worker %d: create session: %v", e.Worker, e.Err)
}

func (e *SessionCreationError) Unwrap() error { return e.Err }

// NavigationError reports that a session could not load a target URL, or
// that the page never reached the readiness condition within the bounded
// settle timeout.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }
