// Package fetch opens byte streams for remote locations through a set of
// interchangeable download engines.
//
// The SDK picks the first usable engine from an ordered candidate list and
// wraps it with a fallback transport. When the primary engine fails, the
// request is retried once on the next best engine. A primary that fails
// most of its requests is disabled for the rest of the process. Successful
// streams are verified by reading ahead before they are handed out, so a
// connection that dies on the first byte counts as a failure.
//
// # Overview
//
// The SDK consists of several sub-packages:
//
//   - pkg/transport: candidates, selector, registry, fallback wrapper
//   - pkg/errors: structured errors with codes and categories
//   - pkg/logging: structured logger with text and JSON output
//   - pkg/observability: Prometheus metrics and OpenTelemetry tracing
//   - pkg/config: viper based configuration loading
//
// # Opening a Stream
//
//	cfg := fetch.DefaultTransportConfig()
//	cfg.File.Root = "/srv/mirror"
//
//	stack, err := fetch.NewDefaultStack(ctx, cfg)
//	if err != nil {
//	    // no engine is usable
//	}
//	defer stack.Close()
//
//	rc, err := stack.Stream(ctx, "https://example.com/archive.tar.gz", nil)
//	if err != nil {
//	    // both engines failed; errors.Is/As work on the returned FetchError
//	}
//	defer rc.Close()
//
// # Custom Trust
//
// Setting Security.TLS.CustomTrust disables the primary engine of every
// fallback wrapper built afterwards; requests go straight to the secondary.
package fetch
