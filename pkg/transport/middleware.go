package transport

import (
	"context"
	"net/http"

	"github.com/ajitpratap0/fetch-sdk-go/pkg/logging"
)

// Middleware represents a transport middleware that can wrap a transport
// to add cross-cutting behavior such as logging or metrics.
type Middleware interface {
	// Wrap wraps the given transport with middleware functionality
	Wrap(transport Transport) Transport
}

// MiddlewareFunc is an adapter to allow the use of ordinary functions as middleware
type MiddlewareFunc func(Transport) Transport

// Wrap implements the Middleware interface
func (f MiddlewareFunc) Wrap(t Transport) Transport {
	return f(t)
}

// ChainMiddleware chains multiple middleware together
func ChainMiddleware(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(transport Transport) Transport {
		// Apply middleware in reverse order so the first middleware is the outermost
		for i := len(middleware) - 1; i >= 0; i-- {
			if middleware[i] != nil {
				transport = middleware[i].Wrap(transport)
			}
		}
		return transport
	})
}

// middlewareTransport is a base type for middleware implementations
type middlewareTransport struct {
	next Transport
}

// Name reports the wrapped transport's name
func (m *middlewareTransport) Name() string {
	return Name(m.next)
}

// Unwrap returns the wrapped transport
func (m *middlewareTransport) Unwrap() Transport {
	return m.next
}

// MiddlewareBuilder builds middleware from configuration
type MiddlewareBuilder struct {
	config TransportConfig
	logger logging.Logger
	extra  []Middleware
}

// NewMiddlewareBuilder creates a new middleware builder
func NewMiddlewareBuilder(config TransportConfig, logger logging.Logger) *MiddlewareBuilder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MiddlewareBuilder{config: config, logger: logger}
}

// With appends middleware that is applied outside the built-in ones
func (mb *MiddlewareBuilder) With(middleware ...Middleware) *MiddlewareBuilder {
	mb.extra = append(mb.extra, middleware...)
	return mb
}

// Build constructs the middleware chain based on configuration
func (mb *MiddlewareBuilder) Build() []Middleware {
	var middleware []Middleware

	// Order matters - outermost middleware first
	middleware = append(middleware, mb.extra...)

	if mb.config.Features.EnableObservability {
		middleware = append(middleware, NewLoggingMiddleware(mb.logger))
	}

	return middleware
}

// Apply wraps t with the built chain
func (mb *MiddlewareBuilder) Apply(t Transport) Transport {
	return ChainMiddleware(mb.Build()...).Wrap(t)
}

type headerDecoratorKey struct{}

// HeaderDecorator adds headers to an outgoing request
type HeaderDecorator func(ctx context.Context, header http.Header)

// WithHeaderDecorator returns a context whose network requests are passed
// through decorate before they are sent. Decorators already on ctx still run.
func WithHeaderDecorator(ctx context.Context, decorate HeaderDecorator) context.Context {
	if decorate == nil {
		return ctx
	}
	if prev, ok := ctx.Value(headerDecoratorKey{}).(HeaderDecorator); ok {
		next := decorate
		decorate = func(ctx context.Context, h http.Header) {
			prev(ctx, h)
			next(ctx, h)
		}
	}
	return context.WithValue(ctx, headerDecoratorKey{}, decorate)
}

func decorateHeaders(ctx context.Context, header http.Header) {
	if decorate, ok := ctx.Value(headerDecoratorKey{}).(HeaderDecorator); ok {
		decorate(ctx, header)
	}
}
