package errors

// Error codes are grouped in ranges by concern.
const (
	// Location errors (-32200 to -32299)
	CodeResourceNotFound   int = -32200 // Nothing exists at the requested location
	CodeServiceUnavailable int = -32201 // Remote side signalled temporary unavailability
	CodeInvalidLocation    int = -32202 // Location cannot be parsed or is not supported

	// Operation errors (-32300 to -32399)
	CodeOperationCancelled int = -32300 // Operation was cancelled
	CodeOperationTimeout   int = -32301 // Operation timed out
	CodeOperationFailed    int = -32302 // Operation failed

	// Transport errors (-32500 to -32599)
	CodeTransportError   int = -32500 // Generic transport error
	CodeConnectionFailed int = -32501 // Failed to establish connection
	CodeConnectionLost   int = -32502 // Connection lost while reading

	// Provider errors (-32650 to -32699)
	CodeProviderNotConfigured int = -32650 // No usable transport provider
	CodeProviderUnavailable   int = -32651 // Provider is registered but unusable
	CodeProviderConflict      int = -32652 // Provider name already registered

	// Internal errors
	CodeInternalError int = -32603
)

// ErrorCodeInfo provides human-readable information about error codes
type ErrorCodeInfo struct {
	Code        int
	Name        string
	Description string
	Category    Category
	Severity    Severity
}

var errorCodeRegistry = map[int]ErrorCodeInfo{
	CodeResourceNotFound:   {CodeResourceNotFound, "ResourceNotFound", "Resource not found", CategoryNotFound, SeverityError},
	CodeServiceUnavailable: {CodeServiceUnavailable, "ServiceUnavailable", "Service temporarily unavailable", CategoryUnavailable, SeverityWarning},
	CodeInvalidLocation:    {CodeInvalidLocation, "InvalidLocation", "Invalid location", CategoryValidation, SeverityError},

	CodeOperationCancelled: {CodeOperationCancelled, "OperationCancelled", "Operation cancelled", CategoryCancelled, SeverityInfo},
	CodeOperationTimeout:   {CodeOperationTimeout, "OperationTimeout", "Operation timed out", CategoryTimeout, SeverityError},
	CodeOperationFailed:    {CodeOperationFailed, "OperationFailed", "Operation failed", CategoryInternal, SeverityError},

	CodeTransportError:   {CodeTransportError, "TransportError", "Transport error", CategoryTransport, SeverityError},
	CodeConnectionFailed: {CodeConnectionFailed, "ConnectionFailed", "Connection failed", CategoryTransport, SeverityCritical},
	CodeConnectionLost:   {CodeConnectionLost, "ConnectionLost", "Connection lost", CategoryTransport, SeverityError},

	CodeProviderNotConfigured: {CodeProviderNotConfigured, "ProviderNotConfigured", "No transport provider available", CategoryProvider, SeverityCritical},
	CodeProviderUnavailable:   {CodeProviderUnavailable, "ProviderUnavailable", "Provider unavailable", CategoryProvider, SeverityError},
	CodeProviderConflict:      {CodeProviderConflict, "ProviderConflict", "Provider already registered", CategoryValidation, SeverityError},

	CodeInternalError: {CodeInternalError, "InternalError", "Internal error", CategoryInternal, SeverityError},
}

// GetErrorCodeInfo returns information about an error code
func GetErrorCodeInfo(code int) (ErrorCodeInfo, bool) {
	info, exists := errorCodeRegistry[code]
	return info, exists
}

// GetErrorCodeName returns the name of an error code
func GetErrorCodeName(code int) string {
	if info, exists := errorCodeRegistry[code]; exists {
		return info.Name
	}
	return "UnknownError"
}
