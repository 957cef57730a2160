package http

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fetchrErrors "github.com/NamanBalaji/fetchr/internal/errors"
	httpPkg "github.com/NamanBalaji/fetchr/pkg/http"
	"github.com/NamanBalaji/fetchr/pkg/protocol"
)

type countingTransport struct {
	calls atomic.Int32
	err   error
}

func (c *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return nil, c.err
}

func newTestAdapter(t *testing.T, opts ...ConfigOption) *Adapter {
	t.Helper()
	a, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func newRequest(t *testing.T, method, rawURL string) *protocol.Request {
	t.Helper()
	req, err := protocol.NewRequest(method, rawURL, nil)
	require.NoError(t, err)
	return req
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, 0, cfg.MaxRetries)
	assert.True(t, cfg.SSLVerify)
	assert.NotNil(t, cfg.Headers)
}

func TestWithMaxRetriesClampsNegative(t *testing.T) {
	cfg := defaultConfig()
	WithMaxRetries(-4)(cfg)
	assert.Equal(t, 0, cfg.MaxRetries)
}

func TestSendSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Agent", r.Header.Get("User-Agent"))
		w.Header().Set("X-Trace", r.Header.Get("X-Trace"))
		_, _ = io.WriteString(w, "hello")
	}))
	defer srv.Close()

	a := newTestAdapter(t, WithHeaders(map[string]string{
		"User-Agent": "fetchr/test",
		"X-Trace":    "default",
	}))

	req := newRequest(t, http.MethodGet, srv.URL+"/old")
	req.Header.Set("X-Trace", "explicit")

	resp, err := a.Send(context.Background(), req)
	require.NoError(t, err)
	defer resp.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, srv.URL+"/new", resp.URL)
	assert.Equal(t, "utf-8", resp.Encoding)
	assert.Equal(t, "fetchr/test", resp.Header.Get("X-Agent"))
	assert.Equal(t, "explicit", resp.Header.Get("X-Trace"))
	assert.Nil(t, resp.Err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestSendSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(b)
	}))
	defer srv.Close()

	a := newTestAdapter(t)
	req, err := protocol.NewRequest(http.MethodPut, srv.URL, []byte("payload"))
	require.NoError(t, err)

	resp, err := a.Send(context.Background(), req)
	require.NoError(t, err)
	defer resp.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "payload", string(body))
}

func TestSendErrorStatusIsAResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newTestAdapter(t, WithMaxRetries(3), WithRetryDelay(0))

	resp, err := a.Send(context.Background(), newRequest(t, http.MethodGet, srv.URL))
	require.NoError(t, err)
	defer resp.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.ErrorIs(t, resp.Err, httpPkg.ErrServerProblem)
}

func TestSendRetriesNetworkFailures(t *testing.T) {
	tests := []struct {
		name      string
		retries   int
		wantCalls int32
	}{
		{name: "no retries", retries: 0, wantCalls: 1},
		{name: "three retries", retries: 3, wantCalls: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, WithMaxRetries(tt.retries), WithRetryDelay(time.Millisecond))
			transport := &countingTransport{err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}
			a.client.Transport = transport

			resp, err := a.Send(context.Background(), newRequest(t, http.MethodGet, "http://127.0.0.1:1/x"))
			assert.Nil(t, resp)
			require.Error(t, err)

			var adapterErr *protocol.AdapterError
			require.ErrorAs(t, err, &adapterErr)
			assert.Equal(t, "http", adapterErr.Scheme)
			assert.ErrorIs(t, err, httpPkg.ErrNetworkProblem)
			assert.True(t, fetchrErrors.IsCategory(err, fetchrErrors.CategoryNetwork))
			assert.True(t, fetchrErrors.IsRetryable(err))

			assert.Equal(t, tt.wantCalls, transport.calls.Load())
			assert.Equal(t, tt.retries, a.MaxRetries())
			assert.Equal(t, tt.retries > 0, a.Retrying())
		})
	}
}

func TestSendDoesNotRetryPermanentFailures(t *testing.T) {
	a := newTestAdapter(t, WithMaxRetries(3), WithRetryDelay(time.Millisecond))
	transport := &countingTransport{err: errors.New("malformed response")}
	a.client.Transport = transport

	_, err := a.Send(context.Background(), newRequest(t, http.MethodGet, "https://example.com/x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, httpPkg.ErrUnknown)
	assert.False(t, fetchrErrors.IsRetryable(err))
	assert.Equal(t, int32(1), transport.calls.Load())
}

func TestSendTagsFailuresWithRequestScheme(t *testing.T) {
	for _, rawURL := range []string{"http://127.0.0.1:1/x", "https://127.0.0.1:1/x"} {
		t.Run(rawURL, func(t *testing.T) {
			a := newTestAdapter(t)
			a.client.Transport = &countingTransport{err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}

			req := newRequest(t, http.MethodGet, rawURL)
			_, err := a.Send(context.Background(), req)
			require.Error(t, err)

			var transportErr *fetchrErrors.TransportError
			require.ErrorAs(t, err, &transportErr)
			assert.Equal(t, fetchrErrors.Scheme(req.Scheme()), transportErr.Scheme)
		})
	}
}

func TestSendStopsOnCanceledContext(t *testing.T) {
	a := newTestAdapter(t, WithMaxRetries(5), WithRetryDelay(time.Hour))
	transport := &countingTransport{err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}
	a.client.Transport = transport

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := a.Send(ctx, newRequest(t, http.MethodGet, "http://127.0.0.1:1/x"))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestCharset(t *testing.T) {
	assert.Equal(t, "", charset(""))
	assert.Equal(t, "", charset("application/json"))
	assert.Equal(t, "iso-8859-1", charset("text/html; charset=iso-8859-1"))
	assert.Equal(t, "", charset(";;;"))
}
