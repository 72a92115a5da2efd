package transport

import (
	"context"
	"io"
	"time"

	"github.com/ajitpratap0/fetch-sdk-go/pkg/logging"
)

// LoggingMiddleware logs every Stream call with its outcome and duration
type LoggingMiddleware struct {
	logger logging.Logger
}

// NewLoggingMiddleware creates a logging middleware
func NewLoggingMiddleware(logger logging.Logger) Middleware {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LoggingMiddleware{logger: logger.WithFields(logging.String("component", "transport"))}
}

// Wrap implements the Middleware interface
func (lm *LoggingMiddleware) Wrap(t Transport) Transport {
	return &loggingTransport{
		middlewareTransport: middlewareTransport{next: t},
		logger:              lm.logger,
	}
}

type loggingTransport struct {
	middlewareTransport
	logger logging.Logger
}

// Stream logs around the wrapped Stream. A request id is attached to ctx
// when the caller did not provide one.
func (lt *loggingTransport) Stream(ctx context.Context, location string, progress Progress) (io.ReadCloser, error) {
	ctx, _ = logging.EnsureRequestID(ctx)
	logger := lt.logger.WithContext(ctx).WithFields(
		logging.String("transport", Name(lt.next)),
		logging.String("location", location),
	)

	start := time.Now()
	logger.Debug("Opening stream")

	rc, err := lt.next.Stream(ctx, location, progress)
	duration := time.Since(start)

	if err != nil {
		logger.WithError(err).Debug("Stream failed", logging.Duration("duration", duration))
		return rc, err
	}

	logger.Debug("Stream opened", logging.Duration("duration", duration))
	return rc, nil
}
