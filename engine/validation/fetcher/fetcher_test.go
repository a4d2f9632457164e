package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/agentjobs/validation-gateway/engine/validation/evaluator"
	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/utils/unittest"
)

func newFetcher(config Config) *Fetcher {
	return New(unittest.Logger(), config, nil)
}

func TestFetch_DataURI(t *testing.T) {
	f := newFetcher(DefaultConfig())

	t.Run("base64", func(t *testing.T) {
		sub := unittest.SubmissionFixture(1, `{"ok":true}`,
			unittest.WithResultURI("data:application/json;base64,eyJvayI6dHJ1ZX0="))
		result := f.Fetch(context.Background(), sub)

		require.True(t, result.Available())
		assert.Equal(t, `{"ok":true}`, *result.Payload)
		assert.Equal(t, SourceDataURI, result.Source)
		assert.Equal(t, "application/json", result.ContentType)
	})

	t.Run("percent encoded", func(t *testing.T) {
		sub := unittest.SubmissionFixture(1, "hello world",
			unittest.WithResultURI("data:text/plain,hello%20world"))
		result := f.Fetch(context.Background(), sub)

		require.True(t, result.Available())
		assert.Equal(t, "hello world", *result.Payload)
		assert.Equal(t, "text/plain", result.ContentType)
	})

	t.Run("unescaped payloads", func(t *testing.T) {
		cases := []struct {
			uri         string
			payload     string
			contentType string
		}{
			{`data:application/json,{"success":true}`, `{"success":true}`, "application/json"},
			{`data:application/json,{"error":"x y"}`, `{"error":"x y"}`, "application/json"},
			{`data:application/json,{}`, `{}`, "application/json"},
			{`data:text/plain,a b`, `a b`, "text/plain"},
			{`data:application/json;charset=utf-8,{"progress":"50%"}`, `{"progress":"50%"}`, "application/json"},
		}
		for _, c := range cases {
			sub := unittest.SubmissionFixture(1, "", unittest.WithResultURI(c.uri))
			result := f.Fetch(context.Background(), sub)

			require.True(t, result.Available(), c.uri)
			assert.Equal(t, c.payload, *result.Payload, c.uri)
			assert.Equal(t, SourceDataURI, result.Source, c.uri)
			assert.Equal(t, c.contentType, result.ContentType, c.uri)
		}
	})

	t.Run("unescaped json is evaluated", func(t *testing.T) {
		payload := `{"success":true,"summary":"all checks passed"}`
		sub := unittest.SubmissionFixture(1, payload, unittest.WithResultURI("data:application/json,"+payload))
		result := f.Fetch(context.Background(), sub)

		evaluation := evaluator.Evaluate(result, sub)
		assert.True(t, evaluation.Approve)
		assert.NotContains(t, evaluation.Reasons, validation.ReasonResultUnavailable)
	})

	t.Run("malformed", func(t *testing.T) {
		sub := unittest.SubmissionFixture(1, "", unittest.WithResultURI("data:;base64,%%%"))
		result := f.Fetch(context.Background(), sub)
		assert.False(t, result.Available())
	})
}

func TestFetch_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/result":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true}`))
		case "/large":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		case "/slow":
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	config := DefaultConfig()
	config.MaxBytes = 32
	config.Timeout = 50 * time.Millisecond
	f := New(unittest.Logger(), config, server.Client())

	t.Run("success", func(t *testing.T) {
		sub := unittest.SubmissionFixture(1, "", unittest.WithResultURI(server.URL+"/result"))
		result := f.Fetch(context.Background(), sub)

		require.True(t, result.Available())
		assert.Equal(t, `{"success":true}`, *result.Payload)
		assert.Equal(t, SourceHTTP, result.Source)
		assert.Equal(t, "application/json", result.ContentType)
	})

	t.Run("non 2xx is unavailable", func(t *testing.T) {
		sub := unittest.SubmissionFixture(1, "", unittest.WithResultURI(server.URL+"/missing"))
		assert.False(t, f.Fetch(context.Background(), sub).Available())
	})

	t.Run("oversized body is unavailable", func(t *testing.T) {
		sub := unittest.SubmissionFixture(1, "", unittest.WithResultURI(server.URL+"/large"))
		assert.False(t, f.Fetch(context.Background(), sub).Available())
	})

	t.Run("timeout is unavailable", func(t *testing.T) {
		sub := unittest.SubmissionFixture(1, "", unittest.WithResultURI(server.URL+"/slow"))
		unittest.RequireReturnsBefore(t, func() {
			assert.False(t, f.Fetch(context.Background(), sub).Available())
		}, 500*time.Millisecond)
	})
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	f := newFetcher(DefaultConfig())

	for _, uri := range []string{"ipfs://bafy", "ftp://example.com/result", "", "::not a uri"} {
		sub := unittest.SubmissionFixture(1, "", unittest.WithResultURI(uri))
		assert.False(t, f.Fetch(context.Background(), sub).Available(), uri)
	}
	assert.False(t, f.Fetch(context.Background(), nil).Available())
}

// TestFetch_Cache verifies that a cached result takes precedence over the
// result URI, under any of the supported file names.
func TestFetch_Cache(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		config := DefaultConfig()
		config.CacheDir = dir
		f := newFetcher(config)

		sub := unittest.SubmissionFixture(7, "cached", unittest.WithResultURI("ipfs://unreachable"))
		names := cacheCandidates(sub)
		require.Len(t, names, 6)
		assert.Equal(t, "7", names[0])
		assert.Equal(t, "7.json", names[1])

		for _, name := range names {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte("cached"), 0600))

			result := f.Fetch(context.Background(), sub)
			require.True(t, result.Available(), name)
			assert.Equal(t, "cached", *result.Payload)
			assert.Equal(t, SourceCache, result.Source)

			require.NoError(t, os.Remove(path))
		}

		assert.False(t, f.Fetch(context.Background(), sub).Available())
	})
}

// TestFetch_Memory verifies that successful HTTP results are served from
// memory on later fetches and that failures are not remembered.
func TestFetch_Memory(t *testing.T) {
	hits, failures := atomic.NewInt32(0), atomic.NewInt32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/flaky" && failures.Inc() == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		hits.Inc()
		_, _ = w.Write([]byte("payload"))
	}))
	defer server.Close()

	f := New(unittest.Logger(), DefaultConfig(), server.Client())

	sub := unittest.SubmissionFixture(1, "", unittest.WithResultURI(server.URL+"/result"))
	first := f.Fetch(context.Background(), sub)
	second := f.Fetch(context.Background(), sub)
	require.True(t, second.Available())
	assert.Equal(t, SourceHTTP, first.Source)
	assert.Equal(t, SourceMemory, second.Source)
	assert.Equal(t, "payload", *second.Payload)
	assert.Equal(t, int32(1), hits.Load())

	flaky := unittest.SubmissionFixture(1, "", unittest.WithResultURI(server.URL+"/flaky"))
	assert.False(t, f.Fetch(context.Background(), flaky).Available())
	result := f.Fetch(context.Background(), flaky)
	require.True(t, result.Available())
	assert.Equal(t, SourceHTTP, result.Source)

	t.Run("disabled", func(t *testing.T) {
		config := DefaultConfig()
		config.MemorySize = 0
		f := New(unittest.Logger(), config, server.Client())
		sub := unittest.SubmissionFixture(1, "", unittest.WithResultURI(server.URL+"/other"))
		assert.Equal(t, SourceHTTP, f.Fetch(context.Background(), sub).Source)
		assert.Equal(t, SourceHTTP, f.Fetch(context.Background(), sub).Source)
	})
}
