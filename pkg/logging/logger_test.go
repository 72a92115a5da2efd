package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	fetcherrors "github.com/ajitpratap0/fetch-sdk-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) Logger {
	f := NewTextFormatter()
	f.DisableColors = true
	f.DisableTimestamp = true
	return New(buf, f)
}

// TestLogger tests the basic logger functionality
func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	logger.SetLevel(DebugLevel)

	logger.Debug("Debug message", String("key", "value"))
	logger.Info("Info message", Int("count", 42))
	logger.Warn("Warning message", Bool("flag", true))
	logger.Error("Error message", ErrorField(errors.New("test error")))

	output := buf.String()
	for _, want := range []string{
		"[DEBUG] Debug message | key=value",
		"[INFO] Info message | count=42",
		"[WARN] Warning message | flag=true",
		`[ERROR] Error message | error="test error"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

// TestLogLevels tests log level filtering
func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	logger.SetLevel(WarnLevel)

	logger.Debug("Debug message")
	logger.Info("Info message")
	logger.Warn("Warning message")
	logger.Error("Error message")

	output := buf.String()
	assert.NotContains(t, output, "Debug message")
	assert.NotContains(t, output, "Info message")
	assert.Contains(t, output, "Warning message")
	assert.Contains(t, output, "Error message")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"))
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	base := newTestLogger(&buf)
	child := base.WithFields(String("component", "fallback"), String("primary", "http2"))

	child.Info("tripped")
	base.Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "fallback: tripped | primary=http2")
	assert.NotContains(t, lines[1], "primary")
}

func TestSetLevelPropagatesToChildren(t *testing.T) {
	var buf bytes.Buffer
	base := newTestLogger(&buf)
	child := base.WithFields(String("k", "v"))

	base.SetLevel(ErrorLevel)
	child.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	ctx, id := EnsureRequestID(context.Background())
	require.NotEmpty(t, id)

	again, sameID := EnsureRequestID(ctx)
	assert.Equal(t, id, sameID)
	assert.Equal(t, ctx, again)

	logger.WithContext(ctx).Info("fetching")
	assert.Contains(t, buf.String(), "["+id+"] fetching")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	err := fetcherrors.NotFound("https://example.com/a").
		WithSuppressed(errors.New("secondary down"))
	logger.WithError(err).Error("stream failed")

	output := buf.String()
	assert.Contains(t, output, "error_code=ResourceNotFound")
	assert.Contains(t, output, "error_category=not_found")
	assert.Contains(t, output, "suppressed=1")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewJSONFormatter())

	logger.Info("fallback used", String("secondary", "http1"), ErrorField(errors.New("boom")))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "fallback used", record["message"])
	assert.Equal(t, "http1", record["secondary"])
	assert.Equal(t, "boom", record["error"])
	assert.Contains(t, record, "timestamp")
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()
	logger.Error("never written")
	logger.WithFields(String("a", "b")).Info("still nothing")
}

func TestConcurrentLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.WithFields(Int("worker", i)).Info("tick")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, strings.Count(buf.String(), "tick"))
}
