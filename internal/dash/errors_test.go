package dash

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRequestError_Is(t *testing.T) {
	cause := errors.New("connection refused")
	err := &RequestError{Kind: ErrCreate, Resource: "tasks", Err: cause}

	if !errors.Is(err, ErrCreate) {
		t.Error("errors.Is(err, ErrCreate) = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if errors.Is(err, ErrDelete) {
		t.Error("errors.Is(err, ErrDelete) = true, want false")
	}
}

func TestRequestError_Error(t *testing.T) {
	err := &RequestError{Kind: ErrFetch, Resource: "clients", StatusCode: 502, Body: "bad gateway"}
	want := "clients: fetch failed, status: 502, response: bad gateway"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "email", Message: "email is required"},
		{Field: "phone", Message: "phone is required"},
	}}

	if !errors.Is(err, ErrValidation) {
		t.Error("errors.Is(err, ErrValidation) = false, want true")
	}
	if !strings.Contains(err.Error(), "email is required; phone is required") {
		t.Errorf("Error() = %q, missing field messages", err.Error())
	}
}

func TestRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "invalid credentials", err: ErrInvalidCredentials, want: true},
		{name: "wrapped validation", err: fmt.Errorf("submit: %w", &ValidationError{}), want: true},
		{name: "request error", err: &RequestError{Kind: ErrUpdate, Resource: "tasks"}, want: true},
		{name: "closed controller", err: ErrClosed, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recoverable(tt.err); got != tt.want {
				t.Errorf("Recoverable() = %v, want %v", got, tt.want)
			}
		})
	}
}
