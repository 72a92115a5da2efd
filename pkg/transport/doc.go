// Package transport provides the selection, ranking, and resilience layer for
// fetching remote content as byte streams.
//
// # Key Features
//
//   - A single Stream capability implemented by every download engine
//   - Ordered discovery of the first usable engine with Selector
//   - Ranking of legacy engines below modern ones with AllocateLegacyRankings
//   - FallbackTransport, which verifies streams before handing them out and
//     permanently disables a primary that keeps failing
//   - A Registry of ranked providers and a Binding that keeps a fallback
//     pair in step with it
//
// # Built-in Providers
//
// In order of preference:
//
//   - http2: net/http with HTTP/2 negotiation
//   - http1: HTTP/1.1 only (legacy)
//   - file: a local mirror directory (legacy)
//
// # Usage
//
//	config := transport.DefaultTransportConfig()
//	selector := transport.NewSelector(transport.DefaultFactories(config))
//	primary, err := selector.SelectDefault(ctx)
//	if err != nil {
//	    return err
//	}
//
//	t := transport.NewFallbackTransport(primary, transport.NewFileTransport("/srv/mirror"))
//	body, err := t.Stream(ctx, "https://example.com/feed.xml", nil)
//	if err != nil {
//	    return err
//	}
//	defer body.Close()
//
// # Middleware System
//
// Cross-cutting behavior is added by wrapping a Transport:
//
//   - LoggingMiddleware: structured logging of every Stream call
//   - Custom middleware can be added by implementing the Middleware interface
//
// MiddlewareBuilder applies middleware based on TransportConfig.Features.
//
// # Error Classification
//
// Transports report failures as errors from pkg/errors. NotFound and
// ServiceUnavailable are distinguished from generic transport failures, but
// FallbackTransport treats all of them as reasons to try the secondary.
package transport
