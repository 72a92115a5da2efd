package transport

import (
	"context"
	"io"
	"sync"

	fetcherrors "github.com/ajitpratap0/fetch-sdk-go/pkg/errors"
	"github.com/ajitpratap0/fetch-sdk-go/pkg/logging"
)

// Selector picks the first usable candidate from an ordered list and
// memoizes it. The first successful selection wins; only Reset forces
// discovery to run again.
type Selector struct {
	factories []ProviderFactory
	logger    logging.Logger
	onSelect  func(provider string)

	mu        sync.Mutex
	selected  CandidateProvider
	transport Transport
}

// SelectorOption configures a Selector
type SelectorOption func(*Selector)

// WithSelectorLogger sets the logger used for discovery diagnostics
func WithSelectorLogger(logger logging.Logger) SelectorOption {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSelectionHook registers a callback invoked once per successful discovery
func WithSelectionHook(fn func(provider string)) SelectorOption {
	return func(s *Selector) {
		s.onSelect = fn
	}
}

// NewSelector creates a selector over factories, most preferred first
func NewSelector(factories []ProviderFactory, opts ...SelectorOption) *Selector {
	s := &Selector{
		factories: append([]ProviderFactory(nil), factories...),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithFields(logging.String("component", "selector"))
	return s
}

// SelectDefault returns the transport of the first available candidate.
// Concurrent first calls run discovery once. When no candidate is usable
// the returned error is a configuration error (CodeProviderNotConfigured).
func (s *Selector) SelectDefault(ctx context.Context) (Transport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport != nil {
		return s.transport, nil
	}

	tried := make([]string, 0, len(s.factories))
	for _, f := range s.factories {
		tried = append(tried, f.Name)

		provider, err := f.build()
		if err != nil {
			s.logger.Debug("Candidate unavailable", logging.String("provider", f.Name), logging.ErrorField(err))
			continue
		}

		ok, err := checkAvailable(ctx, provider)
		if err != nil || !ok {
			s.logger.Debug("Candidate unavailable", logging.String("provider", f.Name), logging.Any("error", err))
			continue
		}

		t, err := makeTransport(provider)
		if err != nil {
			s.logger.Debug("Candidate failed to build transport", logging.String("provider", f.Name), logging.ErrorField(err))
			continue
		}

		s.selected = provider
		s.transport = t
		s.logger.Info("Selected default transport", logging.String("provider", provider.Name()))
		if s.onSelect != nil {
			s.onSelect(provider.Name())
		}
		return t, nil
	}

	return nil, fetcherrors.NoTransportAvailable(tried)
}

// MustSelectDefault is like SelectDefault but panics when nothing is usable
func (s *Selector) MustSelectDefault(ctx context.Context) Transport {
	t, err := s.SelectDefault(ctx)
	if err != nil {
		panic(err)
	}
	return t
}

// Selected returns the memoized provider, or nil before the first selection
func (s *Selector) Selected() CandidateProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Stream implements Transport using the default transport
func (s *Selector) Stream(ctx context.Context, location string, progress Progress) (io.ReadCloser, error) {
	t, err := s.SelectDefault(ctx)
	if err != nil {
		return nil, err
	}
	return t.Stream(ctx, location, progress)
}

// Reset clears the memoized selection. Intended for test harnesses.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.transport = nil
}
