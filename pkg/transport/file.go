package transport

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"

	fetcherrors "github.com/ajitpratap0/fetch-sdk-go/pkg/errors"
)

// FileTransport serves locations from a local mirror directory.
//
// file:///a/b maps to <root>/a/b. http and https locations map to
// <root>/<host>/<path>, so a mirror of remote content can stand in for the
// network.
type FileTransport struct {
	root string
}

// NewFileTransport creates a transport rooted at root
func NewFileTransport(root string) *FileTransport {
	return &FileTransport{root: root}
}

// Name implements Named
func (t *FileTransport) Name() string {
	return ProviderFile
}

// Resolve maps location to a path inside the mirror root
func (t *FileTransport) Resolve(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", fetcherrors.InvalidLocation(location, err.Error())
	}

	var rel string
	switch u.Scheme {
	case "file":
		rel = u.Path
	case "http", "https":
		rel = u.Host + "/" + u.Path
	default:
		return "", fetcherrors.InvalidLocation(location, "unsupported scheme")
	}

	// Cleaning against "/" keeps ".." from escaping the root.
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", fetcherrors.InvalidLocation(location, "empty path")
	}
	return filepath.Join(t.root, filepath.FromSlash(clean)), nil
}

// Stream implements Transport
func (t *FileTransport) Stream(ctx context.Context, location string, progress Progress) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, fetcherrors.ConvertStandardError(err)
	}

	p, err := t.Resolve(location)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fetcherrors.NotFound(location)
		}
		return nil, fetcherrors.TransportFailure(ProviderFile, "open", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fetcherrors.TransportFailure(ProviderFile, "stat", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fetcherrors.NotFound(location)
	}

	return newProgressReader(f, info.Size(), progress), nil
}

// fileProvider is the legacy local mirror candidate
type fileProvider struct {
	config TransportConfig
}

// NewFileProvider returns the local mirror candidate. It is available when
// file transport is enabled and the mirror root is an existing directory.
func NewFileProvider(cfg TransportConfig) CandidateProvider {
	return &fileProvider{config: cfg}
}

func (p *fileProvider) Name() string { return ProviderFile }

func (p *fileProvider) Legacy() bool { return true }

func (p *fileProvider) IsAvailable(ctx context.Context) bool {
	if !p.config.Features.EnableFile || p.config.File.Root == "" {
		return false
	}
	info, err := os.Stat(p.config.File.Root)
	return err == nil && info.IsDir()
}

func (p *fileProvider) NewTransport() (Transport, error) {
	if p.config.File.Root == "" {
		return nil, fetcherrors.ProviderUnavailable(ProviderFile, "no mirror root configured")
	}
	return NewFileTransport(p.config.File.Root), nil
}
