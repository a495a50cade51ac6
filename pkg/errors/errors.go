package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types
var (
	// Topology errors
	ErrProxyNotFound = errors.New("proxy not found")
	ErrNotAGroup     = errors.New("not a policy group")

	// Operation errors
	ErrNoTargets = errors.New("no targets: specify --group or --node")
)

// RequestError represents a failed control-API request. It covers
// connectivity failures, non-2xx responses, timeouts, and malformed
// response bodies alike.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int // 0 when the request never produced a response
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request failed: %s %s: HTTP %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request failed: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NotAGroupError reports that a named entry exists but is a leaf node,
// not one of the selectable group kinds.
type NotAGroupError struct {
	Name string
	Type string
}

func (e *NotAGroupError) Error() string {
	return fmt.Sprintf("'%s' is not a policy group (type: %s)", e.Name, e.Type)
}

func (e *NotAGroupError) Unwrap() error {
	return ErrNotAGroup
}

// NotInGroupError reports a switch target that is absent from the
// group's current member set.
type NotInGroupError struct {
	Group   string
	Node    string
	Members []string
}

func (e *NotInGroupError) Error() string {
	return fmt.Sprintf("node '%s' is not in group '%s'. Members: %s",
		e.Node, e.Group, strings.Join(e.Members, ", "))
}
