package fetch

import (
	"context"
	"io"

	"github.com/ajitpratap0/fetch-sdk-go/pkg/logging"
	"github.com/ajitpratap0/fetch-sdk-go/pkg/transport"
)

// Version represents the current version of the SDK
const Version = "1.0.0"

// These exports provide direct access to the core SDK components
var (
	// NewSelector creates a first-available transport selector
	NewSelector = transport.NewSelector

	// NewFallbackTransport wraps a primary with a secondary
	NewFallbackTransport = transport.NewFallbackTransport

	// NewRegistry creates an empty provider registry
	NewRegistry = transport.NewRegistry

	// NewDefaultRegistry creates a registry holding the built-in providers
	NewDefaultRegistry = transport.NewDefaultRegistry

	// NewBinding keeps a fallback wrapper in step with a registry
	NewBinding = transport.NewBinding

	// LegacyRankings allocates rankings for legacy providers
	LegacyRankings = transport.LegacyRankings

	// DefaultTransportConfig returns the default transport configuration
	DefaultTransportConfig = transport.DefaultTransportConfig
)

// Built-in provider names
const (
	ProviderHTTP2 = transport.ProviderHTTP2
	ProviderHTTP1 = transport.ProviderHTTP1
	ProviderFile  = transport.ProviderFile
)

// Fallback options
var (
	WithFallbackConfig   = transport.WithFallbackConfig
	WithFallbackLogger   = transport.WithFallbackLogger
	WithFallbackObserver = transport.WithFallbackObserver
	WithCustomTrust      = transport.WithCustomTrust
)

// Stack is a ready-to-use transport: the default provider selected from the
// built-in candidates, wrapped with a registry-bound fallback and the
// configured middleware.
type Stack struct {
	Config   transport.TransportConfig
	Registry *transport.Registry
	Selector *transport.Selector
	// Binding is nil when fallback is disabled
	Binding *transport.Binding

	transport transport.Transport
}

// StackOption configures NewDefaultStack
type StackOption func(*stackOptions)

type stackOptions struct {
	logger     logging.Logger
	observer   transport.FallbackObserver
	onSelect   func(provider string)
	middleware []transport.Middleware
}

// WithLogger sets the logger used by every component of the stack
func WithLogger(logger logging.Logger) StackOption {
	return func(o *stackOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver receives fallback and trip notifications
func WithObserver(observer transport.FallbackObserver) StackOption {
	return func(o *stackOptions) {
		o.observer = observer
	}
}

// WithSelectionHook is called once when the default provider is selected
func WithSelectionHook(fn func(provider string)) StackOption {
	return func(o *stackOptions) {
		o.onSelect = fn
	}
}

// WithMiddleware adds middleware outside the built-in chain
func WithMiddleware(middleware ...transport.Middleware) StackOption {
	return func(o *stackOptions) {
		o.middleware = append(o.middleware, middleware...)
	}
}

// NewDefaultStack selects the default provider from the built-in registry,
// highest ranking first, and composes the stack around it. It fails when no built-in provider is usable.
func NewDefaultStack(ctx context.Context, cfg transport.TransportConfig, opts ...StackOption) (*Stack, error) {
	o := &stackOptions{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	registry, err := transport.NewDefaultRegistry(cfg)
	if err != nil {
		return nil, err
	}

	selectorOpts := []transport.SelectorOption{transport.WithSelectorLogger(o.logger)}
	if o.onSelect != nil {
		selectorOpts = append(selectorOpts, transport.WithSelectionHook(o.onSelect))
	}
	// Select among the registry's own instances so the selected provider
	// is the one the binding later serves from.
	entries := registry.Entries()
	factories := make([]transport.ProviderFactory, 0, len(entries))
	for _, e := range entries {
		factories = append(factories, transport.StaticFactory(e.Provider))
	}
	selector := transport.NewSelector(factories, selectorOpts...)

	base, err := selector.SelectDefault(ctx)
	if err != nil {
		return nil, err
	}

	s := &Stack{
		Config:   cfg,
		Registry: registry,
		Selector: selector,
	}

	if cfg.Features.EnableFallback {
		fallbackOpts := []transport.FallbackOption{
			transport.WithFallbackConfig(cfg.Fallback),
			transport.WithFallbackLogger(o.logger),
			transport.WithCustomTrust(cfg.Security.TLS.CustomTrust),
		}
		if o.observer != nil {
			fallbackOpts = append(fallbackOpts, transport.WithFallbackObserver(o.observer))
		}
		s.Binding = transport.NewBinding(selector.Selected().Name(), registry, o.logger, fallbackOpts...)
		base = s.Binding
	}

	s.transport = transport.NewMiddlewareBuilder(cfg, o.logger).With(o.middleware...).Apply(base)
	return s, nil
}

// Name describes the composed transport
func (s *Stack) Name() string {
	return transport.Name(s.transport)
}

// Stream implements transport.Transport
func (s *Stack) Stream(ctx context.Context, location string, progress transport.Progress) (io.ReadCloser, error) {
	return s.transport.Stream(ctx, location, progress)
}

// Close stops following registry changes
func (s *Stack) Close() {
	if s.Binding != nil {
		s.Binding.Close()
	}
}
