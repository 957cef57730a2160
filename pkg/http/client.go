package http

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"golang.org/x/net/http/httpproxy"

	"github.com/NamanBalaji/fetchr/internal/logger"
)

const (
	defaultConnectTimeout = 30 * time.Second
	defaultIdleTimeout    = 90 * time.Second
	keepAlivePeriod       = 30 * time.Second
	maxIdleConns          = 100
	tlsHandshakeTimeout   = 10 * time.Second
	expectContinueTimeout = 1 * time.Second
	maxConnsPerHost       = 16

	defaultDownloadName = "download"
)

type Client struct {
	*http.Client
}

type clientOptions struct {
	proxies  map[string]string
	verify   bool
	caBundle string
}

type Option func(*clientOptions)

// WithProxies routes requests through the given proxies, keyed by scheme
// ("http", "https", "all") plus an optional "no_proxy" list. An empty map
// falls back to the environment.
func WithProxies(proxies map[string]string) Option {
	return func(o *clientOptions) {
		o.proxies = proxies
	}
}

// WithSSLVerify controls certificate verification. A non-empty caBundle
// replaces the system roots.
func WithSSLVerify(verify bool, caBundle string) Option {
	return func(o *clientOptions) {
		o.verify = verify
		o.caBundle = caBundle
	}
}

// NewClient creates a new HTTP client with custom transport settings.
func NewClient(opts ...Option) (*Client, error) {
	o := clientOptions{verify: true}
	for _, opt := range opts {
		opt(&o)
	}

	tlsConfig, err := buildTLSConfig(o.verify, o.caBundle)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy: proxyFunc(o.proxies),
		DialContext: (&net.Dialer{
			Timeout:   defaultConnectTimeout,
			KeepAlive: keepAlivePeriod,
		}).DialContext,
		TLSClientConfig:       tlsConfig,
		MaxIdleConns:          maxIdleConns,
		IdleConnTimeout:       defaultIdleTimeout,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ExpectContinueTimeout: expectContinueTimeout,
		MaxConnsPerHost:       maxConnsPerHost,
		ForceAttemptHTTP2:     true,
	}

	return &Client{
		&http.Client{
			Transport: transport,
		},
	}, nil
}

func proxyFunc(proxies map[string]string) func(*http.Request) (*url.URL, error) {
	if len(proxies) == 0 {
		return http.ProxyFromEnvironment
	}

	cfg := httpproxy.Config{
		HTTPProxy:  firstNonEmpty(proxies["http"], proxies["all"]),
		HTTPSProxy: firstNonEmpty(proxies["https"], proxies["all"]),
		NoProxy:    proxies["no_proxy"],
	}
	logger.Debugf("Using configured proxies: http=%q https=%q no_proxy=%q", cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)

	fn := cfg.ProxyFunc()

	return func(req *http.Request) (*url.URL, error) {
		return fn(req.URL)
	}
}

func buildTLSConfig(verify bool, caBundle string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if !verify {
		logger.Warnf("TLS certificate verification is disabled")
		cfg.InsecureSkipVerify = true //nolint:gosec // explicitly configured by the user
		return cfg, nil
	}

	if caBundle == "" {
		return cfg, nil
	}

	pem, err := os.ReadFile(caBundle)
	if err != nil {
		return nil, fmt.Errorf("read CA bundle %s: %w", caBundle, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCABundle, caBundle)
	}
	cfg.RootCAs = pool

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

// Filename picks a local file name for a fetched resource: the
// Content-Disposition header first, then a "filename" query parameter,
// then the last path segment of rawURL.
func Filename(rawURL string, header http.Header) string {
	if header != nil {
		if name, ok := getFileNameFromContentDisposition(header.Get("Content-Disposition")); ok {
			return path.Base(name)
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultDownloadName
	}

	if qname := u.Query().Get("filename"); qname != "" {
		return path.Base(qname)
	}

	base := path.Base(u.Path)
	if base != "" && base != "/" && base != "." {
		return base
	}

	return defaultDownloadName
}

func getFileNameFromContentDisposition(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	if _, params, err := mime.ParseMediaType(header); err == nil {
		if fName, ok := params["filename"]; ok && fName != "" {
			return fName, true
		}
	}

	return "", false
}

// ParseLastModified parses a Last-Modified header, returning the zero
// time when it is absent or malformed.
func ParseLastModified(header string) time.Time {
	if header == "" {
		return time.Time{}
	}

	t, err := http.ParseTime(header)
	if err != nil {
		logger.Debugf("Failed to parse Last-Modified header: %s, error: %v", header, err)
		return time.Time{}
	}

	return t
}
