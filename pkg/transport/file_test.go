package transport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	fetcherrors "github.com/ajitpratap0/fetch-sdk-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMirrorFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

func TestFileTransportResolve(t *testing.T) {
	root := t.TempDir()
	tr := NewFileTransport(root)

	tests := []struct {
		location string
		want     string
		wantErr  bool
	}{
		{"file:///data/feed.xml", filepath.Join(root, "data", "feed.xml"), false},
		{"https://example.com/feed.xml", filepath.Join(root, "example.com", "feed.xml"), false},
		{"http://example.com/a/../b.xml", filepath.Join(root, "example.com", "b.xml"), false},
		{"file:///../../etc/passwd", filepath.Join(root, "etc", "passwd"), false},
		{"ftp://example.com/x", "", true},
		{"file:///", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			got, err := tr.Resolve(tt.location)
			if tt.wantErr {
				assert.True(t, fetcherrors.IsCode(err, fetcherrors.CodeInvalidLocation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileTransportStream(t *testing.T) {
	root := t.TempDir()
	writeMirrorFile(t, root, "example.com/feed.xml", "<feed/>")
	tr := NewFileTransport(root)

	var lastRead, lastTotal int64
	rc, err := tr.Stream(context.Background(), "https://example.com/feed.xml",
		ProgressFunc(func(read, total int64) { lastRead, lastTotal = read, total }))
	require.NoError(t, err)
	assert.Equal(t, "<feed/>", readAll(rc))
	assert.Equal(t, int64(7), lastRead)
	assert.Equal(t, int64(7), lastTotal)

	_, err = tr.Stream(context.Background(), "https://example.com/missing.xml", nil)
	assert.True(t, fetcherrors.IsNotFound(err))

	_, err = tr.Stream(context.Background(), "https://example.com/", nil)
	assert.True(t, fetcherrors.IsNotFound(err), "directories are not content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tr.Stream(ctx, "https://example.com/feed.xml", nil)
	assert.True(t, fetcherrors.IsCode(err, fetcherrors.CodeOperationCancelled))
}

func TestFileProvider(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	cfg := DefaultTransportConfig()
	assert.False(t, NewFileProvider(cfg).IsAvailable(ctx), "no root configured")

	cfg.File.Root = filepath.Join(root, "missing")
	assert.False(t, NewFileProvider(cfg).IsAvailable(ctx))

	cfg.File.Root = root
	p := NewFileProvider(cfg)
	assert.True(t, p.IsAvailable(ctx))
	assert.True(t, IsLegacy(p))
	tr, err := p.NewTransport()
	require.NoError(t, err)
	assert.Equal(t, ProviderFile, Name(tr))

	cfg.Features.EnableFile = false
	assert.False(t, NewFileProvider(cfg).IsAvailable(ctx))
}

func TestFileTransportAsFallback(t *testing.T) {
	root := t.TempDir()
	writeMirrorFile(t, root, "example.com/feed.xml", "mirrored")

	primary := newStub("http2", failing(fetcherrors.ServiceUnavailable("http2", testLocation, "")))
	f := NewFallbackTransport(primary, NewFileTransport(root))

	body, err := stream(t, f)
	require.NoError(t, err)
	assert.Equal(t, "mirrored", body)
}
