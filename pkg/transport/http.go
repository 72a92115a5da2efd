package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	fetcherrors "github.com/ajitpratap0/fetch-sdk-go/pkg/errors"
)

// Provider names of the built-in candidates
const (
	ProviderHTTP2 = "http2"
	ProviderHTTP1 = "http1"
	ProviderFile  = "file"
)

// HTTPTransport streams http and https locations with a GET request
type HTTPTransport struct {
	name      string
	client    *http.Client
	userAgent string
}

// NewHTTPTransport creates an HTTP transport around client
func NewHTTPTransport(name string, client *http.Client, userAgent string) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{
		name:      name,
		client:    client,
		userAgent: userAgent,
	}
}

// Name implements Named
func (t *HTTPTransport) Name() string {
	return t.name
}

// Stream implements Transport
func (t *HTTPTransport) Stream(ctx context.Context, location string, progress Progress) (io.ReadCloser, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fetcherrors.InvalidLocation(location, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fetcherrors.InvalidLocation(location, fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fetcherrors.InvalidLocation(location, err.Error())
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	decorateHeaders(ctx, req.Header)

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fetcherrors.ConvertStandardError(ctx.Err())
		}
		return nil, fetcherrors.ConnectionFailed(t.name, location, err).
			WithContext(&fetcherrors.Context{
				Location:  location,
				Transport: t.name,
				Component: "HTTPTransport",
				Operation: "connect",
			})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, fetcherrors.HTTPStatusError(t.name, location, resp.StatusCode)
	}

	return newProgressReader(resp.Body, resp.ContentLength, progress), nil
}

// progressReader reports cumulative byte counts while a body is read
type progressReader struct {
	io.ReadCloser
	progress Progress
	total    int64
	read     int64
}

func newProgressReader(rc io.ReadCloser, total int64, progress Progress) io.ReadCloser {
	if progress == nil {
		return rc
	}
	if total < 0 {
		total = -1
	}
	return &progressReader{ReadCloser: rc, progress: progress, total: total}
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if n > 0 {
		r.read += int64(n)
		r.progress.Update(r.read, r.total)
	}
	return n, err
}

// buildTLSConfig turns the TLS settings into a crypto/tls configuration
func buildTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, // #nosec G402 -- opt-in via configuration
	}

	switch cfg.MinVersion {
	case "", "1.2":
		tlsConfig.MinVersion = tls.VersionTLS12
	case "1.3":
		tlsConfig.MinVersion = tls.VersionTLS13
	default:
		return nil, fmt.Errorf("unsupported TLS min version %q", cfg.MinVersion)
	}

	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.CAFile)
		}
		tlsConfig.RootCAs = pool
	}

	return tlsConfig, nil
}

// newHTTPClient builds a client for streaming. No overall timeout is set
// because bodies may be arbitrarily large; cancellation comes from ctx.
func newHTTPClient(cfg TransportConfig, http2 bool) (*http.Client, error) {
	tlsConfig, err := buildTLSConfig(cfg.Security.TLS)
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{
		Timeout:   cfg.Connection.Timeout,
		KeepAlive: cfg.Connection.KeepAlive,
	}
	rt := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsConfig,
		MaxIdleConns:          cfg.Connection.MaxIdleConns,
		IdleConnTimeout:       cfg.Connection.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     http2,
	}
	if !http2 {
		// A non-nil empty map disables HTTP/2 upgrades.
		rt.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	}

	return &http.Client{Transport: rt}, nil
}

// httpProvider is the candidate for the net/http engine. The client is
// built once on first use and cached.
type httpProvider struct {
	name   string
	http2  bool
	legacy bool
	config TransportConfig

	once      sync.Once
	transport Transport
	err       error
}

// NewHTTP2Provider returns the preferred candidate: net/http with HTTP/2
// negotiation. It is available when HTTP/2 is enabled and the TLS
// settings are usable.
func NewHTTP2Provider(cfg TransportConfig) CandidateProvider {
	return &httpProvider{name: ProviderHTTP2, http2: true, config: cfg}
}

// NewHTTP1Provider returns the legacy HTTP/1.1-only candidate. It is always available.
func NewHTTP1Provider(cfg TransportConfig) CandidateProvider {
	return &httpProvider{name: ProviderHTTP1, legacy: true, config: cfg}
}

func (p *httpProvider) Name() string { return p.name }

func (p *httpProvider) Legacy() bool { return p.legacy }

func (p *httpProvider) IsAvailable(ctx context.Context) bool {
	if !p.http2 {
		return true
	}
	if !p.config.Features.EnableHTTP2 {
		return false
	}
	_, err := buildTLSConfig(p.config.Security.TLS)
	return err == nil
}

func (p *httpProvider) NewTransport() (Transport, error) {
	p.once.Do(func() {
		client, err := newHTTPClient(p.config, p.http2)
		if err != nil {
			p.err = fetcherrors.ProviderUnavailable(p.name, err.Error())
			return
		}
		p.transport = NewHTTPTransport(p.name, client, p.config.UserAgent)
	})
	return p.transport, p.err
}
