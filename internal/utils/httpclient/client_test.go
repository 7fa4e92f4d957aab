package httpclient

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"ReuniaSync/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"name":"ok"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(&config.SourceConfig{Timeout: 5}, quietLogger())
	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, GetJSON(context.Background(), client, srv.URL, "secret", &out))
	assert.Equal(t, "ok", out.Name)
}

func TestGetJSONNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewHTTPClient(&config.SourceConfig{Timeout: 5}, quietLogger())
	var out map[string]interface{}
	assert.Error(t, GetJSON(context.Background(), client, srv.URL, "", &out))
}

func TestGetJSONGzipResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, _ = gz.Write([]byte(`{"name":"compressed"}`))
		_ = gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	client := NewHTTPClient(&config.SourceConfig{Timeout: 5}, quietLogger())
	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, GetJSON(context.Background(), client, srv.URL, "", &out))
	assert.Equal(t, "compressed", out.Name)
}

func TestGetJSONWithRetrySucceedsAfterFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"name":"recovered"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(&config.SourceConfig{Timeout: 5}, quietLogger())
	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, GetJSONWithRetry(context.Background(), client, srv.URL, "", 3, quietLogger(), &out))
	assert.Equal(t, "recovered", out.Name)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestGetJSONWithRetryExhausted(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTPClient(&config.SourceConfig{Timeout: 5}, quietLogger())
	var out map[string]interface{}
	err := GetJSONWithRetry(context.Background(), client, srv.URL, "", 2, quietLogger(), &out)
	assert.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestGetJSONWithRetryRespectsContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewHTTPClient(&config.SourceConfig{Timeout: 5}, quietLogger())
	var out map[string]interface{}
	err := GetJSONWithRetry(ctx, client, srv.URL, "", 3, quietLogger(), &out)
	assert.Error(t, err)
}
