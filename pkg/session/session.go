// Package session routes requests to the adapter mounted for their URL
// prefix and applies process-wide policy to every one of them.
package session

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/NamanBalaji/fetchr/internal/config"
	"github.com/NamanBalaji/fetchr/internal/errors"
	internalhttp "github.com/NamanBalaji/fetchr/internal/http"
	"github.com/NamanBalaji/fetchr/internal/localfs"
	"github.com/NamanBalaji/fetchr/internal/logger"
	"github.com/NamanBalaji/fetchr/internal/metrics"
	"github.com/NamanBalaji/fetchr/internal/objectstore"
	"github.com/NamanBalaji/fetchr/internal/useragent"
	"github.com/NamanBalaji/fetchr/pkg/protocol"
	"github.com/NamanBalaji/fetchr/pkg/protocol/factory"
)

// DefaultRetries is used when neither an option nor the configuration
// sets a retry count.
const DefaultRetries = 3

// Session holds the mount table and the settings shared by all requests.
// It is safe for concurrent use.
type Session struct {
	registry  factory.Registry
	cfg       *config.Config
	retries   int
	userAgent string
	objects   *objectstore.Adapter

	mu      sync.RWMutex
	headers http.Header

	closeOnce sync.Once
	closeErr  error
}

// New creates a session with http://, https://, file:// and s3:// mounted.
func New(ctx context.Context, opts ...Option) (*Session, error) {
	o := options{detectS3: true}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.cfg
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}

	retries := cfg.RetryCount(DefaultRetries)
	if o.retries != nil {
		retries = *o.retries
	}

	ua := o.userAgent
	if ua == "" {
		ua = useragent.Default()
	}

	s := &Session{
		registry:  factory.NewRegistry(factory.DefaultRegistryOptions),
		cfg:       cfg,
		retries:   retries,
		userAgent: ua,
		headers:   make(http.Header),
	}
	s.headers.Set(protocol.HeaderUserAgent, ua)

	verify := cfg.SSLVerify.Enabled || cfg.SSLVerify.IsZero()
	network, err := internalhttp.New(
		internalhttp.WithMaxRetries(retries),
		internalhttp.WithRetryDelay(cfg.RetryDelay),
		internalhttp.WithProxies(cfg.ProxyServers),
		internalhttp.WithSSLVerify(verify, cfg.SSLVerify.CABundle),
	)
	if err != nil {
		return nil, err
	}

	client := o.s3Client
	if !o.s3ClientSet && o.detectS3 {
		client, err = objectstore.Detect(ctx, cfg.S3)
		if err != nil {
			logger.Warnf("s3:// support unavailable: %v", err)
			client = nil
		}
	}

	s.objects = objectstore.New(client,
		objectstore.WithTempDir(cfg.TempDir),
		objectstore.WithLedger(o.ledger),
	)
	if o.ledger != nil {
		if n, err := s.objects.Sweep(); err != nil {
			logger.Warnf("Failed to sweep orphaned temp files: %v", err)
		} else if n > 0 {
			logger.Infof("Removed %d orphaned temp files", n)
		}
	}

	mounts := []struct {
		prefix  string
		adapter protocol.Adapter
	}{
		{protocol.Prefix(protocol.SchemeHTTP), network},
		{protocol.Prefix(protocol.SchemeHTTPS), network},
		{protocol.Prefix(protocol.SchemeFile), localfs.New()},
		{protocol.Prefix(protocol.SchemeS3), s.objects},
	}
	for _, m := range mounts {
		if err := s.registry.Mount(m.prefix, m.adapter); err != nil {
			return nil, err
		}
	}

	logger.Debugf("Session ready: retries=%d ssl_verify=%s proxies=%d s3=%t",
		retries, cfg.SSLVerify, len(cfg.ProxyServers), client != nil)

	return s, nil
}

// Mount associates prefix with adapter, replacing any adapter already
// mounted there. The longest matching prefix wins at dispatch.
func (s *Session) Mount(prefix string, adapter protocol.Adapter) error {
	return s.registry.Mount(prefix, adapter)
}

// Adapter returns the adapter mounted on exactly prefix.
func (s *Session) Adapter(prefix string) (protocol.Adapter, bool) {
	return s.registry.Lookup(prefix)
}

// Prefixes returns the mounted prefixes.
func (s *Session) Prefixes() []string {
	return s.registry.Prefixes()
}

// SetHeader sets a header sent with every request that does not carry it.
func (s *Session) SetHeader(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.headers.Set(key, value)
}

// Dispatch sends req through the adapter mounted for its URL. req itself
// is not modified. An error means no response could be produced at all;
// "not found" conditions of the non-network schemes come back as 404
// responses.
func (s *Session) Dispatch(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	out := req.Clone()

	s.mu.RLock()
	for key, values := range s.headers {
		if out.Header.Get(key) == "" {
			out.Header[key] = append([]string(nil), values...)
		}
	}
	s.mu.RUnlock()

	adapter, prefix, err := s.registry.Resolve(out.URL)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s: %w", out.URL, err)
	}

	scheme := out.Scheme()
	logger.Debugf("Dispatching %s %s via %s", out.Method, out.URL, prefix)

	start := time.Now()
	resp, err := adapter.Send(ctx, out)
	metrics.DispatchDuration.WithLabelValues(scheme).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DispatchTotal.WithLabelValues(scheme, "error").Inc()
		return nil, err
	}

	metrics.DispatchTotal.WithLabelValues(scheme, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.Request == nil {
		resp.Request = out
	}

	return out.Hooks.Dispatch(resp), nil
}

// Get dispatches a GET for rawURL.
func (s *Session) Get(ctx context.Context, rawURL string) (*protocol.Response, error) {
	req, err := protocol.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	return s.Dispatch(ctx, req)
}

func (s *Session) UserAgent() string {
	return s.userAgent
}

// Retries returns the retry count installed on http:// and https://.
func (s *Session) Retries() int {
	return s.retries
}

func (s *Session) Proxies() map[string]string {
	return maps.Clone(s.cfg.ProxyServers)
}

func (s *Session) SSLVerify() config.SSLVerify {
	return s.cfg.SSLVerify
}

// ObjectStoreAvailable reports whether s3:// requests can reach a store.
func (s *Session) ObjectStoreAvailable() bool {
	return s.objects.Available()
}

// Close closes every mounted adapter once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		for _, a := range s.registry.Adapters() {
			if err := a.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		s.closeErr = errors.Join(errs...)
	})

	return s.closeErr
}
