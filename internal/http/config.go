package http

import (
	"time"
)

type ConfigOption func(*Config)

type Config struct {
	Headers    map[string]string `json:"headers,omitempty"`
	MaxRetries int               `json:"maxRetries"`
	RetryDelay time.Duration     `json:"retryDelay,omitempty"`
	Proxies    map[string]string `json:"proxies,omitempty"`
	SSLVerify  bool              `json:"sslVerify"`
	CABundle   string            `json:"caBundle,omitempty"`
}

func defaultConfig() *Config {
	return &Config{
		Headers:    make(map[string]string),
		MaxRetries: 0,
		RetryDelay: 500 * time.Millisecond,
		SSLVerify:  true,
	}
}

// WithHeaders sets headers sent with every request unless the request
// already carries them.
func WithHeaders(headers map[string]string) ConfigOption {
	return func(cfg *Config) {
		cfg.Headers = headers
	}
}

// WithMaxRetries sets how many times a failed connection attempt is
// repeated. Zero disables retrying.
func WithMaxRetries(maxRetries int) ConfigOption {
	return func(cfg *Config) {
		if maxRetries < 0 {
			maxRetries = 0
		}

		cfg.MaxRetries = maxRetries
	}
}

func WithRetryDelay(retryDelay time.Duration) ConfigOption {
	return func(cfg *Config) {
		cfg.RetryDelay = retryDelay
	}
}

func WithProxies(proxies map[string]string) ConfigOption {
	return func(cfg *Config) {
		cfg.Proxies = proxies
	}
}

func WithSSLVerify(verify bool, caBundle string) ConfigOption {
	return func(cfg *Config) {
		cfg.SSLVerify = verify
		cfg.CABundle = caBundle
	}
}
