package main

import (
	"errors"

	"positions-console/internal/model"
	"positions-console/pkg/apierror"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK           = 0
	exitGeneric      = 1
	exitValidation   = 2
	exitUsage        = 3
	exitNetwork      = 4
	exitUnauthorized = 5
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// remoteError gives a failed remote call the exit code of its kind.
func remoteError(err error) error {
	if err == nil {
		return nil
	}
	switch kind, _ := apierror.KindOf(err); kind {
	case apierror.KindValidation:
		return withCode(exitValidation, err)
	case apierror.KindNetwork:
		return withCode(exitNetwork, err)
	case apierror.KindUnauthorized:
		return withCode(exitUnauthorized, err)
	}
	if errors.Is(err, model.ErrNoToken) {
		return withCode(exitUnauthorized, err)
	}
	return err
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitGeneric
}

// userMessage is what gets printed for a failed command.
func userMessage(err error) string {
	if _, ok := apierror.KindOf(err); ok {
		return apierror.Message(err)
	}
	return err.Error()
}
