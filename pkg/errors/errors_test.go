package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchErrorInterface(t *testing.T) {
	tests := []struct {
		name     string
		err      FetchError
		wantCode int
		wantCat  Category
		wantSev  Severity
	}{
		{
			name:     "not found",
			err:      NotFound("https://example.com/content.xml"),
			wantCode: CodeResourceNotFound,
			wantCat:  CategoryNotFound,
			wantSev:  SeverityError,
		},
		{
			name:     "service unavailable",
			err:      ServiceUnavailable("http2", "https://example.com/", "maintenance"),
			wantCode: CodeServiceUnavailable,
			wantCat:  CategoryUnavailable,
			wantSev:  SeverityWarning,
		},
		{
			name:     "transport failure",
			err:      TransportFailure("http1", "stream", io.ErrUnexpectedEOF),
			wantCode: CodeTransportError,
			wantCat:  CategoryTransport,
			wantSev:  SeverityError,
		},
		{
			name:     "no transport available",
			err:      NoTransportAvailable([]string{"http2", "http1"}),
			wantCode: CodeProviderNotConfigured,
			wantCat:  CategoryProvider,
			wantSev:  SeverityCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Code(); got != tt.wantCode {
				t.Errorf("Code() = %v, want %v", got, tt.wantCode)
			}
			if got := tt.err.Category(); got != tt.wantCat {
				t.Errorf("Category() = %v, want %v", got, tt.wantCat)
			}
			if got := tt.err.Severity(); got != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", got, tt.wantSev)
			}
			if msg := tt.err.Error(); msg == "" {
				t.Error("Error() returned empty string")
			}
			if tt.err.Context() == nil {
				t.Error("Context() should never return nil")
			}
		})
	}
}

func TestErrorChaining(t *testing.T) {
	cause := fmt.Errorf("connection reset by peer")
	err := TransportFailure("http1", "stream", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, cause, err.Unwrap())
}

func TestWithSuppressed(t *testing.T) {
	primary := NotFound("https://primary.example.com/artifacts.xml")
	secondary := ServiceUnavailable("http1", "https://primary.example.com/artifacts.xml", "")

	combined := primary.WithSuppressed(secondary)

	require.Len(t, combined.Suppressed(), 1)
	assert.Equal(t, secondary, combined.Suppressed()[0])
	assert.Empty(t, primary.Suppressed(), "original error must not be mutated")
	assert.Equal(t, CodeResourceNotFound, combined.Code(), "primary stays authoritative")
	assert.Contains(t, combined.Error(), "suppressed")
	assert.Same(t, primary, primary.WithSuppressed(nil))

	data, err := json.Marshal(combined)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded["suppressed"], 1)
}

func TestHTTPStatusError(t *testing.T) {
	tests := []struct {
		status   int
		wantCode int
	}{
		{http.StatusNotFound, CodeResourceNotFound},
		{http.StatusGone, CodeResourceNotFound},
		{http.StatusServiceUnavailable, CodeServiceUnavailable},
		{http.StatusTooManyRequests, CodeServiceUnavailable},
		{http.StatusBadGateway, CodeServiceUnavailable},
		{http.StatusInternalServerError, CodeTransportError},
		{http.StatusForbidden, CodeTransportError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := HTTPStatusError("http2", "https://example.com/x", tt.status)
			assert.Equal(t, tt.wantCode, err.Code())
		})
	}
}

func TestErrorConversion(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"cancelled", context.Canceled, CodeOperationCancelled},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), CodeOperationTimeout},
		{"truncated", io.ErrUnexpectedEOF, CodeConnectionLost},
		{"generic", fmt.Errorf("boom"), CodeInternalError},
		{"already fetch error", NotFound("x"), CodeResourceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertStandardError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code())
		})
	}

	assert.Nil(t, ConvertStandardError(nil))
}

func TestAsFetchErrorThroughWrapping(t *testing.T) {
	inner := ServiceUnavailable("http2", "loc", "")
	wrapped := fmt.Errorf("outer: %w", inner)

	fe, ok := AsFetchError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeServiceUnavailable, fe.Code())
	assert.True(t, IsServiceUnavailable(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.False(t, IsFetchError(fmt.Errorf("plain")))
}

func TestCombineErrors(t *testing.T) {
	assert.Nil(t, CombineErrors())
	assert.Nil(t, CombineErrors(nil, nil))

	first := NotFound("a")
	second := fmt.Errorf("second")
	combined := CombineErrors(nil, first, second)
	require.NotNil(t, combined)
	assert.Equal(t, CodeResourceNotFound, combined.Code())
	require.Len(t, combined.Suppressed(), 1)
	assert.Equal(t, second, combined.Suppressed()[0])
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, IsRetryableError(NotFound("x")))
	assert.True(t, IsRetryableError(ServiceUnavailable("t", "x", "")))
	assert.True(t, IsRetryableError(TransportFailure("t", "stream", io.EOF)))
	assert.False(t, IsRetryableError(OperationCancelled("stream")))
	assert.False(t, IsRetryableError(context.Canceled))
	assert.True(t, IsRetryableError(fmt.Errorf("connection refused")))
}

func TestErrorRegistry(t *testing.T) {
	info, ok := GetErrorCodeInfo(CodeServiceUnavailable)
	require.True(t, ok)
	assert.Equal(t, "ServiceUnavailable", info.Name)
	assert.Equal(t, "UnknownError", GetErrorCodeName(1))
}

func BenchmarkErrorCreation(b *testing.B) {
	cause := io.ErrUnexpectedEOF
	for i := 0; i < b.N; i++ {
		_ = TransportFailure("http2", "stream", cause)
	}
}
