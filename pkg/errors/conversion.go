package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
)

// OperationCancelled creates an error for operations cancelled by the caller
func OperationCancelled(operation string) FetchError {
	return NewError(
		CodeOperationCancelled,
		fmt.Sprintf("Operation '%s' was cancelled", operation),
		CategoryCancelled,
		SeverityInfo,
	)
}

// OperationTimeout creates an error for operations that ran out of time
func OperationTimeout(operation string) FetchError {
	return NewError(
		CodeOperationTimeout,
		fmt.Sprintf("Operation '%s' timed out", operation),
		CategoryTimeout,
		SeverityError,
	)
}

// ConvertStandardError converts common Go errors to fetch errors
func ConvertStandardError(err error) FetchError {
	if err == nil {
		return nil
	}

	if fe, ok := AsFetchError(err); ok {
		return fe
	}

	switch {
	case stderrors.Is(err, context.Canceled):
		return OperationCancelled("stream")
	case stderrors.Is(err, context.DeadlineExceeded):
		return OperationTimeout("stream")
	case stderrors.Is(err, io.ErrUnexpectedEOF):
		return ConnectionLost("unknown", "", err)
	}

	return WrapError(err, CodeInternalError, "Internal error", CategoryInternal, SeverityError)
}

// CombineErrors combines multiple errors into a single FetchError. The first
// non-nil error is authoritative; the rest are recorded as suppressed.
func CombineErrors(errs ...error) FetchError {
	var combined FetchError
	for _, err := range errs {
		if err == nil {
			continue
		}
		if combined == nil {
			combined = ConvertStandardError(err)
			continue
		}
		combined = combined.WithSuppressed(err)
	}
	return combined
}

// IsRetryableError checks if an error is worth retrying elsewhere
func IsRetryableError(err error) bool {
	fe, ok := AsFetchError(err)
	if !ok {
		return err != nil && !stderrors.Is(err, context.Canceled)
	}

	if data, ok := fe.Data().(*TransportErrorData); ok {
		return data.Retryable
	}

	switch fe.Category() {
	case CategoryTimeout, CategoryTransport, CategoryUnavailable:
		return true
	case CategoryCancelled, CategoryValidation:
		return false
	}

	switch fe.Code() {
	case CodeConnectionFailed, CodeConnectionLost, CodeProviderUnavailable:
		return true
	}
	return false
}
