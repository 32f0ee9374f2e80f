package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ProxyErrorMissingParameter    = "PROXY_MISSING_PARAMETER"
	ProxyErrorConfiguration       = "PROXY_CONFIGURATION_ERROR"
	ProxyErrorUpstreamAuthFailed  = "PROXY_UPSTREAM_AUTH_FAILED"
	ProxyErrorUpstreamCallFailed  = "PROXY_UPSTREAM_CALL_FAILED"
	ProxyErrorInternal            = "PROXY_INTERNAL_ERROR"
	MissingEndpointMessage        = `The "endpoint" query parameter is required.`
	MissingCredentialsMessage     = "API credentials are not configured in environment variables."
	DefaultTokenFailureMessage    = "Failed to obtain access token"
	defaultInternalFailureMessage = "An unexpected error occurred"
)

func NewMissingParameterError(field string, message string) *goerrors.Error {
	return goerrors.NewValidation(message, goerrors.FieldError{
		Field:   field,
		Message: "is required",
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(ProxyErrorMissingParameter)
}

func NewConfigurationError(message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ProxyErrorConfiguration)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// NewUpstreamAuthError reports a token endpoint rejection. The message is the
// text shown to callers, so it carries the upstream description as-is.
func NewUpstreamAuthError(source error, message string, metadata map[string]any) *goerrors.Error {
	if strings.TrimSpace(message) == "" {
		message = DefaultTokenFailureMessage
	}
	err := goerrors.New(message, goerrors.CategoryAuth)
	err.Source = source
	err = err.WithCode(http.StatusInternalServerError).
		WithTextCode(ProxyErrorUpstreamAuthFailed)
	if len(metadata) > 0 {
		err.WithMetadata(RedactSensitiveMap(metadata))
	}
	return err
}

func NewUpstreamCallError(source error, message string, metadata map[string]any) *goerrors.Error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, goerrors.CategoryExternal)
	} else {
		err = goerrors.Wrap(source, goerrors.CategoryExternal, message)
	}
	err = err.WithCode(http.StatusBadGateway).
		WithTextCode(ProxyErrorUpstreamCallFailed)
	if len(metadata) > 0 {
		err.WithMetadata(RedactSensitiveMap(metadata))
	}
	return err
}

// MapError normalizes any error into a go-errors envelope with an HTTP code
// and text code. Rich errors keep their message and category.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureProxyErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "context deadline exceeded"), strings.Contains(msg, "timeout"):
		return NewUpstreamCallError(err, err.Error(), nil)
	case strings.Contains(msg, "context canceled"):
		return NewUpstreamCallError(err, err.Error(), nil)
	}

	if mapped := goerrors.MapHTTPErrors(err); mapped != nil {
		return ensureProxyErrorEnvelope(mapped)
	}
	mapped := goerrors.New(err.Error(), goerrors.CategoryInternal)
	mapped.Source = err
	return ensureProxyErrorEnvelope(mapped)
}

// ErrorMessage is the caller-facing message of err without the category or
// source decorations that goerrors.Error.Error adds.
func ErrorMessage(err error) string {
	mapped := MapError(err)
	if mapped == nil {
		return ""
	}
	return mapped.Message
}

func ErrorStatus(err error) int {
	mapped := MapError(err)
	if mapped == nil {
		return http.StatusOK
	}
	return mapped.Code
}

func ensureProxyErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = proxyHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultProxyTextCode(err.Category)
	}
	if strings.TrimSpace(err.Message) == "" {
		err.Message = defaultInternalFailureMessage
	}
	return err
}

func defaultProxyTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ProxyErrorMissingParameter
	case goerrors.CategoryAuth:
		return ProxyErrorUpstreamAuthFailed
	case goerrors.CategoryExternal:
		return ProxyErrorUpstreamCallFailed
	default:
		return ProxyErrorInternal
	}
}

// proxyHTTPStatus only distinguishes client input and upstream transport
// failures; everything else surfaces as 500.
func proxyHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
