package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/NamanBalaji/fetchr/internal/errors"
	"github.com/NamanBalaji/fetchr/internal/logger"
	"github.com/NamanBalaji/fetchr/internal/metrics"
	httpPkg "github.com/NamanBalaji/fetchr/pkg/http"
	"github.com/NamanBalaji/fetchr/pkg/protocol"
)

// Adapter serves http:// and https:// URLs over a shared client.
type Adapter struct {
	client *httpPkg.Client
	config *Config
}

// New creates a network adapter. The same instance is meant to be
// mounted on both http:// and https://.
func New(opts ...ConfigOption) (*Adapter, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := httpPkg.NewClient(
		httpPkg.WithProxies(cfg.Proxies),
		httpPkg.WithSSLVerify(cfg.SSLVerify, cfg.CABundle),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	return &Adapter{client: client, config: cfg}, nil
}

// MaxRetries returns how many times a failed connection is retried.
func (a *Adapter) MaxRetries() int {
	return a.config.MaxRetries
}

// Retrying reports whether the adapter wraps requests in a retry policy.
func (a *Adapter) Retrying() bool {
	return a.config.MaxRetries > 0
}

func (a *Adapter) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	scheme := req.Scheme()

	resp, err := a.do(ctx, req)
	if err != nil {
		logger.Errorf("%s %s failed: %v", req.Method, req.URL, err)
		retryable := httpPkg.IsRetryable(err)
		return nil, protocol.NewAdapterError(scheme, protocol.OpSend, req.URL,
			errors.NewNetworkError(err, errors.Scheme(scheme), req.URL, retryable))
	}

	logger.Debugf("%s %s: status=%d", req.Method, req.URL, resp.StatusCode)

	out := protocol.NewResponse(req, resp.StatusCode)
	out.Header = resp.Header
	out.Body = resp.Body
	out.Encoding = charset(resp.Header.Get(protocol.HeaderContentType))
	if resp.Request != nil && resp.Request.URL != nil {
		out.URL = resp.Request.URL.String()
	}
	if resp.StatusCode >= http.StatusBadRequest {
		out.Err = httpPkg.ClassifyHTTPError(resp.StatusCode)
	}

	return out, nil
}

func (a *Adapter) do(ctx context.Context, req *protocol.Request) (*http.Response, error) {
	attempt := func() (*http.Response, error) {
		hreq, err := a.newRequest(ctx, req)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := a.client.Do(hreq)
		if err != nil {
			classified, retryable := classify(err)
			wrapped := fmt.Errorf("%w: %v", classified, err)
			if !retryable {
				return nil, backoff.Permanent(wrapped)
			}
			return nil, wrapped
		}

		return resp, nil
	}

	if !a.Retrying() {
		resp, err := attempt()
		if perm, ok := err.(*backoff.PermanentError); ok {
			return nil, perm.Err
		}
		return resp, err
	}

	notify := func(err error, wait time.Duration) {
		metrics.HTTPRetriesTotal.Inc()
		logger.Warnf("Retrying %s %s in %s: %v", req.Method, req.URL, wait, err)
	}

	return backoff.RetryNotifyWithData(attempt, retryPolicy(ctx, a.config.MaxRetries, a.config.RetryDelay), notify)
}

func (a *Adapter) newRequest(ctx context.Context, req *protocol.Request) (*http.Request, error) {
	hreq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpPkg.ErrRequestCreation, err)
	}

	for key, values := range req.Header {
		for _, v := range values {
			hreq.Header.Add(key, v)
		}
	}

	for key, value := range a.config.Headers {
		if hreq.Header.Get(key) == "" {
			hreq.Header.Set(key, value)
		}
	}

	return hreq, nil
}

// Close drops idle keep-alive connections.
func (a *Adapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}
