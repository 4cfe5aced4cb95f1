package apierror

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failures a remote call can end in.
type Kind string

const (
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindValidation   Kind = "VALIDATION_FAILURE"
	KindNetwork      Kind = "NETWORK_FAILURE"
)

// ErrDecodeFailure marks a bearer token whose claims could not be read.
var ErrDecodeFailure = errors.New("token decode failure")

const networkMessage = "Unable to reach the server, please try again"

type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "Session expired"
	}
	return &Error{Kind: KindUnauthorized, Message: message, Status: 401}
}

func Validation(status int, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Status: status}
}

func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: networkMessage, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.Kind, true
	}
	return "", false
}

func IsUnauthorized(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindUnauthorized
}

func IsValidation(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindValidation
}

func IsNetwork(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindNetwork
}

// Message returns the text meant for the person at the keyboard.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.Message
	}

	return err.Error()
}
