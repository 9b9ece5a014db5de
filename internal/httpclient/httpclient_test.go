package httpclient_test

import (
	"bytes"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/httpclient"
)

type memoryBackend struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{m: make(map[string][]byte)}
}

func (b *memoryBackend) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, key)
}

func (b *memoryBackend) Get(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.m[key]
	return v, ok
}

func (b *memoryBackend) Set(key string, value []byte, _ time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = value
}

func TestClient(t *testing.T) {
	t.Run("should set user agent", func(t *testing.T) {
		// given
		var ua string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.Header.Get("User-Agent")
		}))
		defer srv.Close()
		c := httpclient.New(httpclient.Params{UserAgent: "TasbeehBuddy/1.0"})
		// when
		r, err := c.Get(srv.URL)
		// then
		if assert.NoError(t, err) {
			r.Body.Close()
			assert.Equal(t, "TasbeehBuddy/1.0", ua)
		}
	})
	t.Run("should retry on server errors", func(t *testing.T) {
		// given
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("ok"))
		}))
		defer srv.Close()
		c := httpclient.New(httpclient.Params{})
		// when
		r, err := c.Get(srv.URL)
		// then
		if assert.NoError(t, err) {
			r.Body.Close()
			assert.Equal(t, http.StatusOK, r.StatusCode)
			assert.EqualValues(t, 2, calls.Load())
		}
	})
	t.Run("should serve cacheable responses from cache", func(t *testing.T) {
		// given
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Cache-Control", "max-age=3600")
			w.Write([]byte("cached"))
		}))
		defer srv.Close()
		backend := newMemoryBackend()
		c := httpclient.New(httpclient.Params{
			Cache: httpclient.NewCacheAdapter(backend, "http-", time.Hour),
		})
		// when
		for range 2 {
			r, err := c.Get(srv.URL)
			require.NoError(t, err)
			_, err = io.ReadAll(r.Body)
			require.NoError(t, err)
			r.Body.Close()
		}
		// then
		assert.EqualValues(t, 1, calls.Load())
		assert.Len(t, backend.m, 1)
		for k := range backend.m {
			assert.Contains(t, k, "http-")
		}
	})
}

func TestLogResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("dummy", "alpha")
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		w.Write([]byte(`orange`))
	}))
	defer srv.Close()
	t.Run("should log response details when log level is DEBUG", func(t *testing.T) {
		// given
		var buf bytes.Buffer
		log.SetOutput(&buf)
		defer log.SetOutput(os.Stderr)
		slog.SetLogLoggerLevel(slog.LevelDebug)
		defer slog.SetLogLoggerLevel(slog.LevelInfo)
		c := httpclient.New(httpclient.Params{})
		// when
		r, err := c.Get(srv.URL)
		// then
		if assert.NoError(t, err) {
			r.Body.Close()
			assert.Contains(t, buf.String(), "DEBUG HTTP response")
			assert.Contains(t, buf.String(), "body=orange")
		}
	})
	t.Run("should not log successful responses when log level is INFO", func(t *testing.T) {
		// given
		var buf bytes.Buffer
		log.SetOutput(&buf)
		defer log.SetOutput(os.Stderr)
		slog.SetLogLoggerLevel(slog.LevelInfo)
		c := httpclient.New(httpclient.Params{})
		// when
		r, err := c.Get(srv.URL)
		// then
		if assert.NoError(t, err) {
			r.Body.Close()
			assert.NotContains(t, buf.String(), "HTTP response")
		}
	})
	t.Run("should log HTTP errors as warning", func(t *testing.T) {
		// given
		var buf bytes.Buffer
		log.SetOutput(&buf)
		defer log.SetOutput(os.Stderr)
		slog.SetLogLoggerLevel(slog.LevelInfo)
		c := httpclient.New(httpclient.Params{})
		// when
		r, err := c.Get(srv.URL + "/missing")
		// then
		if assert.NoError(t, err) {
			r.Body.Close()
			assert.Contains(t, buf.String(), "WARN HTTP response")
			assert.Contains(t, buf.String(), "status=404")
		}
	})
	t.Run("should mask coordinates in logged URLs", func(t *testing.T) {
		// given
		var buf bytes.Buffer
		log.SetOutput(&buf)
		defer log.SetOutput(os.Stderr)
		slog.SetLogLoggerLevel(slog.LevelInfo)
		c := httpclient.New(httpclient.Params{})
		// when
		r, err := c.Get(srv.URL + "/missing?latitude=21.42&longitude=39.83&method=2")
		// then
		if assert.NoError(t, err) {
			r.Body.Close()
			assert.NotContains(t, buf.String(), "21.42")
			assert.NotContains(t, buf.String(), "39.83")
			assert.Contains(t, buf.String(), "method=2")
		}
	})
}
