package transport

import (
	"context"
	"fmt"
)

// CandidateProvider wraps one concrete download engine. Its identity is its
// Name. Providers are constructed once and are immutable afterwards apart
// from private connection caching.
type CandidateProvider interface {
	// Name identifies the provider
	Name() string

	// IsAvailable reports whether the engine can be used right now.
	// It must be side-effect-free and safe to call repeatedly.
	IsAvailable(ctx context.Context) bool

	// NewTransport returns the transport backed by this provider
	NewTransport() (Transport, error)
}

// LegacyProvider is implemented by providers that must rank below every
// modern provider in a Registry.
type LegacyProvider interface {
	Legacy() bool
}

// IsLegacy reports whether p declares itself legacy
func IsLegacy(p CandidateProvider) bool {
	l, ok := p.(LegacyProvider)
	return ok && l.Legacy()
}

// DefaultFactories returns the built-in candidates, most preferred first:
// http2, http1, file.
func DefaultFactories(cfg TransportConfig) []ProviderFactory {
	return []ProviderFactory{
		{Name: ProviderHTTP2, New: func() (CandidateProvider, error) { return NewHTTP2Provider(cfg), nil }},
		{Name: ProviderHTTP1, New: func() (CandidateProvider, error) { return NewHTTP1Provider(cfg), nil }},
		{Name: ProviderFile, New: func() (CandidateProvider, error) { return NewFileProvider(cfg), nil }},
	}
}

// ProviderFactory constructs a candidate provider. Construction may fail
// when the engine's dependencies are missing or the feature is disabled.
type ProviderFactory struct {
	Name string
	New  func() (CandidateProvider, error)
}

// StaticFactory wraps an already constructed provider
func StaticFactory(p CandidateProvider) ProviderFactory {
	return ProviderFactory{
		Name: p.Name(),
		New:  func() (CandidateProvider, error) { return p, nil },
	}
}

// build runs the factory, converting panics into errors
func (f ProviderFactory) build() (p CandidateProvider, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("provider %s: construction panicked: %v", f.Name, r)
		}
	}()
	if f.New == nil {
		return nil, fmt.Errorf("provider %s: no constructor", f.Name)
	}
	p, err = f.New()
	if err == nil && p == nil {
		err = fmt.Errorf("provider %s: constructor returned nil", f.Name)
	}
	return p, err
}

// checkAvailable calls IsAvailable, treating a panic as unavailability
func checkAvailable(ctx context.Context, p CandidateProvider) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("provider %s: availability check panicked: %v", p.Name(), r)
		}
	}()
	return p.IsAvailable(ctx), nil
}

// makeTransport calls NewTransport, converting panics and nil results into errors
func makeTransport(p CandidateProvider) (t Transport, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("provider %s: transport construction panicked: %v", p.Name(), r)
		}
	}()
	t, err = p.NewTransport()
	if err == nil && t == nil {
		err = fmt.Errorf("provider %s: returned nil transport", p.Name())
	}
	return t, err
}
