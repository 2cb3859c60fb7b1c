package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TransportErrorBadInput               = "TRANSPORT_BAD_INPUT"
	TransportErrorConflictingCredentials = "TRANSPORT_CONFLICTING_CREDENTIALS"
	TransportErrorCredentialLoad         = "TRANSPORT_CREDENTIAL_LOAD_FAILED"
	TransportErrorNotImplemented         = "TRANSPORT_OPERATION_NOT_IMPLEMENTED"
	TransportErrorRetryExhausted         = "TRANSPORT_RETRY_EXHAUSTED"
	TransportErrorExternal               = "TRANSPORT_EXTERNAL_FAILURE"
	TransportErrorInternal               = "TRANSPORT_INTERNAL_ERROR"
)

var (
	ErrConflictingCredentialSources = errors.New("core: credentials and credentials_file are mutually exclusive")
	ErrCredentialLoad               = errors.New("core: credential load failed")
	ErrNotImplementedOperation      = errors.New("core: operation not implemented")
	ErrRetryExhausted               = errors.New("core: retry budget exhausted")
)

type CredentialLoadError struct {
	Source CredentialSource
	Path   string
	Cause  error
}

func (e *CredentialLoadError) Error() string {
	if e == nil {
		return ErrCredentialLoad.Error()
	}
	msg := fmt.Sprintf("core: load %s credentials", e.Source)
	if e.Path != "" {
		msg += fmt.Sprintf(" from %q", e.Path)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *CredentialLoadError) Unwrap() error { return e.Cause }

func (e *CredentialLoadError) Is(target error) bool { return target == ErrCredentialLoad }

type NotImplementedError struct {
	Operations []Operation
}

func (e *NotImplementedError) Error() string {
	if e == nil || len(e.Operations) == 0 {
		return ErrNotImplementedOperation.Error()
	}
	names := make([]string, 0, len(e.Operations))
	for _, op := range e.Operations {
		names = append(names, string(op))
	}
	return fmt.Sprintf("core: operation not implemented: %s", strings.Join(names, ", "))
}

func (e *NotImplementedError) Is(target error) bool { return target == ErrNotImplementedOperation }

type RetryExhaustedError struct {
	Operation Operation
	Attempts  int
	Last      error
}

func (e *RetryExhaustedError) Error() string {
	if e == nil {
		return ErrRetryExhausted.Error()
	}
	msg := fmt.Sprintf("core: %s failed after %d attempt(s)", e.Operation, e.Attempts)
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

func (e *RetryExhaustedError) Is(target error) bool { return target == ErrRetryExhausted }

func newConflictingCredentialsError() *goerrors.Error {
	return newTransportError(
		ErrConflictingCredentialSources,
		goerrors.CategoryBadInput,
		TransportErrorConflictingCredentials,
		nil,
	)
}

func newCredentialLoadError(source CredentialSource, path string, cause error) *goerrors.Error {
	typed := &CredentialLoadError{Source: source, Path: path, Cause: cause}
	metadata := map[string]any{"credential_source": string(source)}
	if path != "" {
		metadata["credentials_file"] = path
	}
	return newTransportError(typed, goerrors.CategoryAuth, TransportErrorCredentialLoad, metadata)
}

func newNotImplementedError(ops ...Operation) *goerrors.Error {
	typed := &NotImplementedError{Operations: append([]Operation(nil), ops...)}
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		names = append(names, string(op))
	}
	return newTransportError(
		typed,
		goerrors.CategoryOperation,
		TransportErrorNotImplemented,
		map[string]any{"operations": names},
	)
}

func newRetryExhaustedError(op Operation, attempts int, last error) *goerrors.Error {
	typed := &RetryExhaustedError{Operation: op, Attempts: attempts, Last: last}
	category := goerrors.CategoryExternal
	var coder httpStatusCoder
	if errors.As(last, &coder) && coder.HTTPStatusCode() == http.StatusTooManyRequests {
		category = goerrors.CategoryRateLimit
	}
	return newTransportError(typed, category, TransportErrorRetryExhausted, map[string]any{
		"operation": string(op),
		"attempts":  attempts,
	})
}

func newBadInputError(message string, metadata map[string]any) *goerrors.Error {
	return newTransportError(errors.New(message), goerrors.CategoryBadInput, TransportErrorBadInput, metadata)
}

// newTransportError builds the envelope manually so the typed cause stays
// reachable through errors.As; goerrors.Wrap would clone a rich cause instead.
func newTransportError(
	cause error,
	category goerrors.Category,
	textCode string,
	metadata map[string]any,
) *goerrors.Error {
	err := goerrors.New(cause.Error(), category).WithTextCode(textCode)
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	err.Source = cause
	return ensureTransportErrorEnvelope(err)
}

func transportErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureTransportErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrConflictingCredentialSources):
		return newTransportError(err, goerrors.CategoryBadInput, TransportErrorConflictingCredentials, nil)
	case errors.Is(err, ErrCredentialLoad):
		return newTransportError(err, goerrors.CategoryAuth, TransportErrorCredentialLoad, nil)
	case errors.Is(err, ErrNotImplementedOperation):
		return newTransportError(err, goerrors.CategoryOperation, TransportErrorNotImplemented, nil)
	case errors.Is(err, ErrRetryExhausted):
		return newTransportError(err, goerrors.CategoryExternal, TransportErrorRetryExhausted, nil)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	if strings.Contains(msg, "required") || strings.Contains(msg, "invalid") || strings.Contains(msg, "must") {
		return newTransportError(err, goerrors.CategoryBadInput, TransportErrorBadInput, nil)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureTransportErrorEnvelope(mapped)
}

func ensureTransportErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = transportHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTransportTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTransportTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return TransportErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return TransportErrorCredentialLoad
	case goerrors.CategoryOperation:
		return TransportErrorNotImplemented
	case goerrors.CategoryExternal, goerrors.CategoryRateLimit:
		return TransportErrorExternal
	default:
		return TransportErrorInternal
	}
}

func transportHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryOperation:
		return http.StatusNotImplemented
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
