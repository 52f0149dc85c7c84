package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// httpStatusError is implemented by provider SDK errors that carry an HTTP
// status code, letting ClassifyError branch without depending on any one
// SDK's concrete error type.
type httpStatusError interface {
	error
	StatusCode() int
}

// ClassifyError reduces a raw provider error into one of the stable short
// codes the tool/collector layer branches on. model is the configured model
// name, reported verbatim in model_not_found:<model> since a 404 from the
// provider doesn't otherwise say which model it couldn't find. Check order
// is significant (§4.5): timeout family is checked before auth codes so a
// combined message like "TIMEOUT: 403 PERMISSION_DENIED" classifies as
// timeout (P10).
func ClassifyError(err error, model string) string {
	if err == nil {
		return ""
	}
	msg := strings.ToUpper(err.Error())

	switch {
	case errors.Is(err, context.DeadlineExceeded),
		strings.Contains(msg, "TIMEOUT"),
		strings.Contains(msg, "TIMED OUT"),
		strings.Contains(msg, "DEADLINE_EXCEEDED"),
		hasStatus(err, http.StatusRequestTimeout),
		hasStatus(err, http.StatusGatewayTimeout):
		return classifyTimeout(msg, err)
	}

	switch {
	case hasStatus(err, http.StatusForbidden), strings.Contains(msg, "PERMISSION_DENIED"):
		return "permission_denied"
	case hasStatus(err, http.StatusUnauthorized), strings.Contains(msg, "UNAUTHENTICATED"):
		return "unauthenticated"
	}

	if hasStatus(err, http.StatusNotFound) {
		if model == "" {
			model = "unknown"
		}
		return "model_not_found:" + model
	}

	switch {
	case hasStatus(err, http.StatusTooManyRequests),
		strings.Contains(msg, "OVERLOADED"),
		strings.Contains(msg, "RATE LIMIT"):
		return "rate_limited"
	}

	switch {
	case strings.Contains(msg, "MAX_TOKENS"), strings.Contains(msg, "CONTEXT LENGTH"):
		return "max_tokens_truncated"
	}

	return "llm_error:" + typeName(err)
}

func classifyTimeout(msg string, err error) string {
	switch {
	case hasStatus(err, http.StatusGatewayTimeout):
		return "gateway_timeout"
	case strings.Contains(msg, "DEADLINE_EXCEEDED"):
		return "deadline_exceeded"
	default:
		return "timeout"
	}
}

func hasStatus(err error, code int) bool {
	var statusErr httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode() == code
	}
	return false
}

func typeName(err error) string {
	return fmt.Sprintf("%T", err)
}
