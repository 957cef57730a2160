package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const configFileName = "fetchr"

var ErrInvalidSSLVerify = errors.New("ssl_verify must be a boolean or a CA bundle path")

// Config holds the process-wide transport settings.
type Config struct {
	ProxyServers map[string]string `yaml:"proxy_servers,omitempty"`
	SSLVerify    SSLVerify         `yaml:"ssl_verify,omitempty"`
	Retries      *int              `yaml:"remote_max_retries,omitempty"`
	RetryDelay   time.Duration     `yaml:"retry_delay,omitempty"`
	TempDir      string            `yaml:"temp_dir,omitempty"`
	LedgerPath   string            `yaml:"ledger_path,omitempty"`
	S3           *S3Config         `yaml:"s3,omitempty"`
}

// S3Config holds configuration options for s3:// URLs.
type S3Config struct {
	Enabled   *bool  `yaml:"enabled,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Profile   string `yaml:"profile,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

// IsEnabled reports whether s3 support should be attempted. Unset means yes.
func (s *S3Config) IsEnabled() bool {
	if s == nil || s.Enabled == nil {
		return true
	}

	return *s.Enabled
}

// SSLVerify is either a boolean or the path of a CA bundle, like the
// ssl_verify key of conda-style rc files.
type SSLVerify struct {
	Enabled  bool
	CABundle string

	// set distinguishes an explicit "false" from an absent key.
	set bool
}

func (v SSLVerify) IsZero() bool {
	return !v.set && !v.Enabled && v.CABundle == ""
}

func (v SSLVerify) String() string {
	if v.CABundle != "" {
		return v.CABundle
	}

	return strconv.FormatBool(v.Enabled)
}

func (v *SSLVerify) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return ErrInvalidSSLVerify
	}

	var b bool
	if node.Tag == "!!bool" {
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = SSLVerify{Enabled: b, set: true}
		return nil
	}

	if node.Value == "" {
		return ErrInvalidSSLVerify
	}

	*v = SSLVerify{Enabled: true, CABundle: node.Value, set: true}
	return nil
}

func (v SSLVerify) MarshalYAML() (interface{}, error) {
	if v.CABundle != "" {
		return v.CABundle, nil
	}

	return v.Enabled, nil
}

// RetryCount returns the configured retry count, or def when unset.
func (c *Config) RetryCount(def int) int {
	if c == nil || c.Retries == nil {
		return def
	}

	return *c.Retries
}

// GetConfig reads the configuration file and returns a Config struct.
// If the configuration file does not exist, it returns the default configuration.
func GetConfig() (*Config, error) {
	return LoadFile(filepath.Join(xdg.ConfigHome, configFileName))
}

// LoadFile reads the configuration at path, merged over DefaultConfig.
func LoadFile(path string) (*Config, error) {
	defaults := DefaultConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &defaults, nil
		}

		return nil, err
	}

	if len(b) == 0 {
		return &defaults, nil
	}

	var cfg Config

	err = yaml.Unmarshal(b, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	s3Cfg := zeroOr(cfg.S3, defaults.S3)

	return &Config{
		ProxyServers: cfg.ProxyServers,
		SSLVerify:    zeroOr(cfg.SSLVerify, defaults.SSLVerify),
		Retries:      zeroOr(cfg.Retries, defaults.Retries),
		RetryDelay:   zeroOr(cfg.RetryDelay, defaults.RetryDelay),
		TempDir:      zeroOr(cfg.TempDir, defaults.TempDir),
		LedgerPath:   zeroOr(cfg.LedgerPath, defaults.LedgerPath),
		S3: &S3Config{
			Enabled:   zeroOr(s3Cfg.Enabled, defaults.S3.Enabled),
			Region:    zeroOr(s3Cfg.Region, defaults.S3.Region),
			Profile:   s3Cfg.Profile,
			Endpoint:  s3Cfg.Endpoint,
			PathStyle: s3Cfg.PathStyle,
		},
	}, nil
}

func DefaultConfig() Config {
	retries := maxRetries

	return Config{
		SSLVerify:  SSLVerify{Enabled: sslVerify},
		Retries:    &retries,
		RetryDelay: retryDelay,
		TempDir:    tempDir,
		LedgerPath: ledgerPath,
		S3: &S3Config{
			Region: s3Region,
		},
	}
}

// zeroOr returns def if v is the zero value for its type.
func zeroOr[T any](v, def T) T {
	if reflect.ValueOf(v).IsZero() {
		return def
	}

	return v
}
