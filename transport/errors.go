package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-backend-services/core"
	goerrors "github.com/goliatone/go-errors"
)

func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	metadata map[string]any,
) error {
	if source == nil {
		return transportError(message, category, code, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return core.TransportErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return core.TransportErrorCredentialLoad
	case goerrors.CategoryOperation:
		return core.TransportErrorNotImplemented
	case goerrors.CategoryExternal, goerrors.CategoryRateLimit:
		return core.TransportErrorExternal
	default:
		return core.TransportErrorInternal
	}
}

// APIError is a non-2xx response from the Compute REST endpoint.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Reason     string
	Body       []byte
}

func (e *APIError) Error() string {
	if e == nil {
		return "transport: api error"
	}
	msg := fmt.Sprintf("transport: compute api returned %d", e.StatusCode)
	if e.Status != "" {
		msg += " " + e.Status
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *APIError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// Category maps the response status onto the go-errors taxonomy.
func (e *APIError) Category() goerrors.Category {
	switch status := e.HTTPStatusCode(); {
	case status == http.StatusBadRequest:
		return goerrors.CategoryBadInput
	case status == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case status == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case status == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case status == http.StatusConflict || status == http.StatusPreconditionFailed:
		return goerrors.CategoryConflict
	case status == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	default:
		return goerrors.CategoryExternal
	}
}

type googleErrorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Status:     strings.ToUpper(strings.ReplaceAll(http.StatusText(statusCode), " ", "_")),
		Body:       body,
	}
	var envelope googleErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error.Status != "" {
			apiErr.Status = envelope.Error.Status
		}
		apiErr.Message = strings.TrimSpace(envelope.Error.Message)
		if len(envelope.Error.Errors) > 0 {
			apiErr.Reason = envelope.Error.Errors[0].Reason
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

func nilRequestError(op core.Operation) error {
	return transportError(
		fmt.Sprintf("transport: %s request is required", op),
		goerrors.CategoryBadInput,
		http.StatusBadRequest,
		map[string]any{"operation": string(op)},
	)
}

func invalidFieldError(op core.Operation, field string, value string) error {
	return transportError(
		fmt.Sprintf("transport: %s %s %q is not a single path segment", op, field, value),
		goerrors.CategoryBadInput,
		http.StatusBadRequest,
		map[string]any{"operation": string(op), "field": field},
	)
}

func missingFieldError(op core.Operation, field string) error {
	return transportError(
		fmt.Sprintf("transport: %s requires %s", op, field),
		goerrors.CategoryBadInput,
		http.StatusBadRequest,
		map[string]any{"operation": string(op), "field": field},
	)
}
