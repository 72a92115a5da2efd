package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(viper.New())
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--config", writeConfig(t)))
	err := cmd.Execute()
	return stdout.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fetch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"), 0o600))
	return path
}

func TestGetCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello from "+r.URL.Path)
	}))
	defer srv.Close()

	out, err := execute(t, "get", srv.URL+"/greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello from /greeting", out)
}

func TestGetCommandToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "saved")
	}))
	defer srv.Close()

	target := filepath.Join(t.TempDir(), "out.bin")
	_, err := execute(t, "get", srv.URL+"/x", "-o", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "saved", string(data))
}

type failingClose struct {
	bytes.Buffer
}

func (*failingClose) Close() error { return errors.New("disk full") }

func TestGetCommandReportsOutputCloseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "payload")
	}))
	defer srv.Close()

	sink := &failingClose{}
	orig := createOutput
	createOutput = func(string) (io.WriteCloser, error) { return sink, nil }
	t.Cleanup(func() { createOutput = orig })

	var stderr bytes.Buffer
	cmd := newRootCmd(viper.New())
	cmd.SetOut(io.Discard)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"get", srv.URL + "/x", "-o", "out.bin", "--config", writeConfig(t)})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "payload", sink.String())
	assert.NotContains(t, stderr.String(), "wrote")
}

func TestGetCommandFallsBackToMirror(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "mirror.invalid"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "mirror.invalid", "pkg.tgz"), []byte("mirrored"), 0o600))

	out, err := execute(t, "get", "http://mirror.invalid/pkg.tgz",
		"--http2=false", "--custom-trust", "--file-root", root)
	require.NoError(t, err)
	assert.Equal(t, "mirrored", out)
}

func TestGetCommandNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := execute(t, "get", srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "not found")
}

func TestProvidersCommand(t *testing.T) {
	root := t.TempDir()

	out, err := execute(t, "providers", "--json", "--file-root", root)
	require.NoError(t, err)

	var rows []providerRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)

	assert.Equal(t, "http2", rows[0].Name)
	assert.False(t, rows[0].Legacy)
	assert.True(t, rows[0].Available)
	for _, r := range rows[1:] {
		assert.True(t, r.Legacy, r.Name)
		assert.Less(t, r.Ranking, rows[0].Ranking)
		assert.True(t, r.Available, r.Name)
	}
}

func TestProvidersTable(t *testing.T) {
	out, err := execute(t, "providers", "--http2=false")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[1], "http2")
	assert.Contains(t, lines[1], "false")
}
