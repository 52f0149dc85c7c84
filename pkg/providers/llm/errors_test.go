package llm

import (
	"errors"
	"testing"
)

type statusErr struct {
	msg  string
	code int
}

func (e *statusErr) Error() string   { return e.msg }
func (e *statusErr) StatusCode() int { return e.code }

func TestClassifyError_TimeoutOutranksAuth(t *testing.T) {
	// P10: a combined message classifies as timeout, not permission_denied.
	err := errors.New("TIMEOUT: 403 PERMISSION_DENIED")
	if got := ClassifyError(err, ""); got != "timeout" {
		t.Errorf("ClassifyError() = %q, want timeout", got)
	}
}

func TestClassifyError_PermissionDenied(t *testing.T) {
	if got := ClassifyError(&statusErr{msg: "forbidden", code: 403}, ""); got != "permission_denied" {
		t.Errorf("ClassifyError() = %q, want permission_denied", got)
	}
}

func TestClassifyError_Unauthenticated(t *testing.T) {
	if got := ClassifyError(&statusErr{msg: "unauthenticated", code: 401}, ""); got != "unauthenticated" {
		t.Errorf("ClassifyError() = %q, want unauthenticated", got)
	}
}

func TestClassifyError_RateLimited(t *testing.T) {
	if got := ClassifyError(errors.New("model is OVERLOADED"), ""); got != "rate_limited" {
		t.Errorf("ClassifyError() = %q, want rate_limited", got)
	}
	if got := ClassifyError(&statusErr{msg: "too many requests", code: 429}, ""); got != "rate_limited" {
		t.Errorf("ClassifyError() = %q, want rate_limited", got)
	}
}

func TestClassifyError_MaxTokensTruncated(t *testing.T) {
	if got := ClassifyError(errors.New("stopped: MAX_TOKENS"), ""); got != "max_tokens_truncated" {
		t.Errorf("ClassifyError() = %q, want max_tokens_truncated", got)
	}
}

func TestClassifyError_GatewayTimeout(t *testing.T) {
	if got := ClassifyError(&statusErr{msg: "gateway timeout", code: 504}, ""); got != "gateway_timeout" {
		t.Errorf("ClassifyError() = %q, want gateway_timeout", got)
	}
}

func TestClassifyError_Fallback(t *testing.T) {
	if got := ClassifyError(errors.New("something unexpected"), ""); got != "llm_error:*errors.errorString" {
		t.Errorf("ClassifyError() = %q", got)
	}
}

func TestClassifyError_ModelNotFoundCarriesModelName(t *testing.T) {
	err := &statusErr{msg: "not found", code: 404}
	if got := ClassifyError(err, "claude-opus-4"); got != "model_not_found:claude-opus-4" {
		t.Errorf("ClassifyError() = %q, want model_not_found:claude-opus-4", got)
	}
	if got := ClassifyError(err, ""); got != "model_not_found:unknown" {
		t.Errorf("ClassifyError() = %q, want model_not_found:unknown", got)
	}
}
