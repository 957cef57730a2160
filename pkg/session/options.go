package session

import (
	"github.com/NamanBalaji/fetchr/internal/config"
	"github.com/NamanBalaji/fetchr/internal/objectstore"
)

type options struct {
	retries     *int
	cfg         *config.Config
	userAgent   string
	s3Client    objectstore.Client
	s3ClientSet bool
	detectS3    bool
	ledger      objectstore.Ledger
}

type Option func(*options)

// WithRetries sets how often a failed network connection is retried on
// http:// and https://. Zero installs no retry policy. It takes
// precedence over the configured remote_max_retries.
func WithRetries(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.retries = &n
	}
}

// WithConfig supplies the process-wide configuration. Without it the
// defaults are used.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithUserAgent replaces the probed identification string.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithObjectStoreClient uses client for s3:// instead of detecting one.
// A nil client disables object-store support.
func WithObjectStoreClient(client objectstore.Client) Option {
	return func(o *options) {
		o.s3Client = client
		o.s3ClientSet = true
	}
}

// WithoutObjectStoreDetection mounts s3:// without a client.
func WithoutObjectStoreDetection() Option {
	return func(o *options) {
		o.detectS3 = false
	}
}

// WithLedger records object-store temp files so orphans can be swept.
func WithLedger(l objectstore.Ledger) Option {
	return func(o *options) {
		o.ledger = l
	}
}
