package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{
			name: "full error",
			err: &OperationError{
				Operation: "fetch logs",
				Component: "victorialogs",
				Resource:  "ns1/p1",
				Cause:     fmt.Errorf("connection timeout"),
			},
			expected: "failed to fetch logs, component: victorialogs, resource: ns1/p1, cause: connection timeout",
		},
		{
			name:     "minimal error",
			err:      &OperationError{Operation: "parse config", Cause: fmt.Errorf("invalid yaml")},
			expected: "failed to parse config, cause: invalid yaml",
		},
		{
			name:     "no cause",
			err:      &OperationError{Operation: "validate alert", Component: "normalize"},
			expected: "failed to validate alert, component: normalize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := &OperationError{Operation: "test", Cause: cause}
	assert.Equal(t, cause, err.Unwrap())

	errNoCause := &OperationError{Operation: "test"}
	assert.Nil(t, errNoCause.Unwrap())
}

func TestFailedTo(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		cause    error
		expected string
	}{
		{"with cause", "connect to k8s api", fmt.Errorf("connection refused"), "failed to connect to k8s api: connection refused"},
		{"without cause", "start pipeline", nil, "failed to start pipeline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FailedTo(tt.action, tt.cause).Error())
		})
	}
}

func TestFailedToWithDetails(t *testing.T) {
	cause := fmt.Errorf("timeout")
	err := FailedToWithDetails("query pods", "k8s", "ns1/pods", cause)

	opErr, ok := err.(*OperationError)
	require.True(t, ok, "FailedToWithDetails() should return *OperationError, got %T", err)
	assert.Equal(t, "query pods", opErr.Operation)
	assert.Equal(t, "k8s", opErr.Component)
	assert.Equal(t, "ns1/pods", opErr.Resource)
	assert.Equal(t, cause, opErr.Cause)
}

func TestWrapf(t *testing.T) {
	assert.Nil(t, Wrapf(nil, "should not wrap"))

	err := Wrapf(fmt.Errorf("original error"), "additional context: %s", "test")
	assert.Equal(t, "additional context: test: original error", err.Error())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"timeout error", fmt.Errorf("request timeout"), true},
		{"connection refused", fmt.Errorf("connection refused by server"), true},
		{"service unavailable", fmt.Errorf("service unavailable"), true},
		{"permanent error", fmt.Errorf("invalid syntax"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}

func TestChain(t *testing.T) {
	tests := []struct {
		name     string
		errors   []error
		expected string
		isNil    bool
	}{
		{name: "no errors", errors: []error{nil, nil}, isNil: true},
		{name: "single error", errors: []error{fmt.Errorf("single error"), nil}, expected: "single error"},
		{
			name:     "multiple errors",
			errors:   []error{fmt.Errorf("error 1"), fmt.Errorf("error 2"), nil, fmt.Errorf("error 3")},
			expected: "multiple errors: error 1; error 2; error 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Chain(tt.errors...)
			if tt.isNil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.expected, result.Error())
		})
	}
}

func TestValidationAndConfigurationErrors(t *testing.T) {
	assert.Equal(t, "validation failed for field email: invalid format", ValidationError("email", "invalid format").Error())
	assert.Equal(t, "configuration error for setting logs.url: value is required", ConfigurationError("logs.url", "value is required").Error())
}

func TestAuthErrors(t *testing.T) {
	assert.Equal(t, "authentication failed: invalid credentials", AuthenticationError("invalid credentials").Error())
	assert.Equal(t, "authorization failed: insufficient permissions to delete pod records", AuthorizationError("delete", "pod records").Error())
}

func TestParseError(t *testing.T) {
	err := ParseError("investigation.json", "JSON", fmt.Errorf("unexpected character"))
	assert.Contains(t, err.Error(), "parse investigation.json as JSON")
}
