package errors

import (
	"fmt"
	"net/http"
)

// TransportErrorData contains structured data for transport-related errors
type TransportErrorData struct {
	Transport  string `json:"transport"`
	Operation  string `json:"operation,omitempty"`
	Location   string `json:"location,omitempty"`
	Retryable  bool   `json:"retryable"`
	StatusCode int    `json:"status_code,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// ProviderErrorData contains structured data for provider-related errors
type ProviderErrorData struct {
	Provider  string   `json:"provider,omitempty"`
	Tried     []string `json:"tried,omitempty"`
	Available bool     `json:"available"`
	Reason    string   `json:"reason,omitempty"`
}

// NotFound creates an error for a location with nothing behind it
func NotFound(location string) FetchError {
	return NewError(
		CodeResourceNotFound,
		fmt.Sprintf("Resource at '%s' not found", location),
		CategoryNotFound,
		SeverityError,
	).WithData(&TransportErrorData{
		Location:  location,
		Retryable: false,
	})
}

// ServiceUnavailable creates the explicit "temporarily unavailable" signal
func ServiceUnavailable(transport, location, reason string) FetchError {
	message := "Service temporarily unavailable"
	if location != "" {
		message = fmt.Sprintf("Service for '%s' temporarily unavailable", location)
	}
	if reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}

	return NewError(
		CodeServiceUnavailable,
		message,
		CategoryUnavailable,
		SeverityWarning,
	).WithData(&TransportErrorData{
		Transport: transport,
		Location:  location,
		Retryable: true,
		Reason:    reason,
	})
}

// TransportFailure wraps an I/O or unexpected runtime failure of a transport
func TransportFailure(transport, operation string, cause error) FetchError {
	message := fmt.Sprintf("%s transport error", transport)
	if operation != "" {
		message = fmt.Sprintf("%s transport error during %s", transport, operation)
	}
	reason := ""
	if cause != nil {
		reason = cause.Error()
		message = fmt.Sprintf("%s: %s", message, reason)
	}

	return WrapError(
		cause,
		CodeTransportError,
		message,
		CategoryTransport,
		SeverityError,
	).WithData(&TransportErrorData{
		Transport: transport,
		Operation: operation,
		Retryable: true,
		Reason:    reason,
	})
}

// ConnectionLost creates an error for streams that broke while being read
func ConnectionLost(transport, location string, cause error) FetchError {
	message := fmt.Sprintf("Lost connection via %s", transport)
	if location != "" {
		message = fmt.Sprintf("Lost connection to %s via %s", location, transport)
	}
	reason := ""
	if cause != nil {
		reason = cause.Error()
		message = fmt.Sprintf("%s: %s", message, reason)
	}

	return WrapError(
		cause,
		CodeConnectionLost,
		message,
		CategoryTransport,
		SeverityError,
	).WithData(&TransportErrorData{
		Transport: transport,
		Location:  location,
		Retryable: true,
		Reason:    reason,
	})
}

// ConnectionFailed creates an error for requests that never reached the remote side
func ConnectionFailed(transport, location string, cause error) FetchError {
	message := fmt.Sprintf("Failed to connect to %s via %s", location, transport)
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}

	return WrapError(
		cause,
		CodeConnectionFailed,
		message,
		CategoryTransport,
		SeverityError,
	).WithData(&TransportErrorData{
		Transport: transport,
		Operation: "connect",
		Location:  location,
		Retryable: true,
	})
}

// HTTPStatusError maps a non-2xx HTTP status to the error taxonomy
func HTTPStatusError(transport, location string, statusCode int) FetchError {
	switch statusCode {
	case http.StatusNotFound, http.StatusGone:
		return NotFound(location)
	case http.StatusServiceUnavailable, http.StatusTooManyRequests,
		http.StatusBadGateway, http.StatusGatewayTimeout:
		return ServiceUnavailable(transport, location, http.StatusText(statusCode))
	}

	return NewError(
		CodeTransportError,
		fmt.Sprintf("HTTP %d fetching %s", statusCode, location),
		CategoryTransport,
		SeverityError,
	).WithData(&TransportErrorData{
		Transport:  transport,
		Operation:  "stream",
		Location:   location,
		Retryable:  statusCode >= 500 || statusCode == http.StatusRequestTimeout,
		StatusCode: statusCode,
		Reason:     http.StatusText(statusCode),
	})
}

// InvalidLocation creates an error for locations a transport cannot handle
func InvalidLocation(location, reason string) FetchError {
	return NewError(
		CodeInvalidLocation,
		fmt.Sprintf("Invalid location '%s': %s", location, reason),
		CategoryValidation,
		SeverityError,
	).WithData(&TransportErrorData{
		Location: location,
		Reason:   reason,
	})
}

// NoTransportAvailable is the configuration error raised when no candidate
// provider can serve requests.
func NoTransportAvailable(tried []string) FetchError {
	return NewError(
		CodeProviderNotConfigured,
		fmt.Sprintf("No transport provider available (tried %v)", tried),
		CategoryProvider,
		SeverityCritical,
	).WithData(&ProviderErrorData{
		Tried:     tried,
		Available: false,
	})
}

// ProviderUnavailable creates an error for a provider that cannot serve right now
func ProviderUnavailable(name, reason string) FetchError {
	return NewError(
		CodeProviderUnavailable,
		fmt.Sprintf("Provider '%s' unavailable: %s", name, reason),
		CategoryProvider,
		SeverityWarning,
	).WithData(&ProviderErrorData{Provider: name, Available: false, Reason: reason})
}

// ProviderConflict creates an error for duplicate provider registrations
func ProviderConflict(name string) FetchError {
	return NewError(
		CodeProviderConflict,
		fmt.Sprintf("Provider '%s' already registered", name),
		CategoryValidation,
		SeverityError,
	).WithData(&ProviderErrorData{Provider: name, Available: true})
}

// IsNotFound reports whether err is a not-found failure
func IsNotFound(err error) bool {
	return IsCode(err, CodeResourceNotFound)
}

// IsServiceUnavailable reports whether err is the explicit unavailability signal
func IsServiceUnavailable(err error) bool {
	return IsCode(err, CodeServiceUnavailable)
}
