// Package urlutil translates between URLs and the locators the non-network
// adapters work with: local paths for file:// and bucket/key pairs for s3://.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	ErrNotFileURL = errors.New("not a file:// URL")
	ErrNotS3URL   = errors.New("not an s3:// URL")
	ErrNoBucket   = errors.New("s3 URL has no bucket")
)

// URLToPath converts a file:// URL into a local filesystem path.
// "file://localhost/x" and "file:///x" both map to "/x"; on Windows
// "file:///C:/x" maps to "C:\x".
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", rawURL, err)
	}

	if !strings.EqualFold(u.Scheme, "file") {
		return "", fmt.Errorf("%w: %s", ErrNotFileURL, rawURL)
	}

	p := u.Path
	if u.Host != "" && !strings.EqualFold(u.Host, "localhost") {
		// UNC share: file://server/share/x
		p = "//" + u.Host + p
	}

	if runtime.GOOS == "windows" && len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}

	return filepath.FromSlash(p), nil
}

// PathToURL converts a local path into a file:// URL.
func PathToURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	u := url.URL{Scheme: "file", Path: p}
	return u.String(), nil
}

// S3Info splits an s3://bucket/key URL into bucket and key.
func S3Info(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parse %q: %w", rawURL, err)
	}

	if !strings.EqualFold(u.Scheme, "s3") {
		return "", "", fmt.Errorf("%w: %s", ErrNotS3URL, rawURL)
	}

	if u.Host == "" {
		return "", "", fmt.Errorf("%w: %s", ErrNoBucket, rawURL)
	}

	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// S3URL builds the s3:// URL for bucket and key.
func S3URL(bucket, key string) string {
	u := url.URL{Scheme: "s3", Host: bucket, Path: "/" + strings.TrimPrefix(key, "/")}
	return u.String()
}
