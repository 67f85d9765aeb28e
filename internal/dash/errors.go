package dash

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCredentials is returned when a login is rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation is returned when a draft fails the required-field check.
	ErrValidation = errors.New("validation failed")
	// ErrFetch is returned when listing a collection fails.
	ErrFetch = errors.New("fetch failed")
	// ErrCreate is returned when creating a record fails.
	ErrCreate = errors.New("create failed")
	// ErrUpdate is returned when updating a record fails.
	ErrUpdate = errors.New("update failed")
	// ErrDelete is returned when deleting a record fails.
	ErrDelete = errors.New("delete failed")

	// ErrClosed is returned when a controller receives a result after Close.
	ErrClosed = errors.New("controller closed")
	// ErrNotFound is returned when an id is not present in a local collection.
	ErrNotFound = errors.New("record not found")
	// ErrPermissionDenied is returned when the identity lacks a permission.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnreadable is returned by Storage.Get when a value exists but cannot
	// be decoded, such as ciphertext sealed with another key.
	ErrUnreadable = errors.New("stored value unreadable")
)

// RequestError describes a failed resource client call.
// Kind is one of ErrFetch, ErrCreate, ErrUpdate or ErrDelete.
type RequestError struct {
	Kind       error
	Resource   string
	StatusCode int // zero for transport failures
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Resource, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ", status: %d", e.StatusCode)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ", response: %s", e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// FieldError is a single failed field check.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Recoverable reports whether err belongs to the user-facing taxonomy. Such
// errors have already been shown as a notification and the user can retry.
func Recoverable(err error) bool {
	for _, kind := range []error{ErrInvalidCredentials, ErrValidation, ErrFetch, ErrCreate, ErrUpdate, ErrDelete} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
