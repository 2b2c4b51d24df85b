package conversation

import (
	"errors"

	"qartelbot/database"
)

// ValidationError rejects an input without touching the wizard state.
// An empty Message re-sends the prompt of the current step.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "unexpected input"
	}
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// userError carries the text shown to the user for a failed operation.
type userError struct {
	message string
	err     error
}

func (e *userError) Error() string {
	if e.err == nil {
		return e.message
	}
	return e.message + ": " + e.err.Error()
}

func (e *userError) Unwrap() error { return e.err }

func failWith(message string, err error) error {
	return &userError{message: message, err: err}
}

const genericFailure = "Произошла ошибка. Попробуйте ещё раз из главного меню."

// userMessage picks the text reported for err.
func userMessage(err error) string {
	var ue *userError
	if errors.As(err, &ue) {
		return ue.message
	}
	if errors.Is(err, database.ErrNotFound) {
		return "Запись не найдена."
	}
	return genericFailure
}

// orNotFound reports a not-found error with notFound and any other error with
// failure. An error already carrying a user message is returned as is.
func orNotFound(err error, notFound, failure string) error {
	var ue *userError
	if errors.As(err, &ue) {
		return err
	}
	if errors.Is(err, database.ErrNotFound) {
		return failWith(notFound, err)
	}
	return failWith(failure, err)
}
