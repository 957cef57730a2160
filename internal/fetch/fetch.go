// Package fetch implements the command-line workflow: dispatch a list of
// URLs through a session and store or print each body.
package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NamanBalaji/fetchr/internal/errors"
	"github.com/NamanBalaji/fetchr/internal/filesystem"
	"github.com/NamanBalaji/fetchr/internal/logger"
	httpPkg "github.com/NamanBalaji/fetchr/pkg/http"
	"github.com/NamanBalaji/fetchr/pkg/protocol"
)

const defaultParallel = 4

// ErrLengthMismatch reports a saved body whose size differs from its
// Content-Length header.
var ErrLengthMismatch = errors.New("body length does not match Content-Length")

// Getter is the part of a session the fetcher needs.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*protocol.Response, error)
}

// StatusError reports a response that was received but is not a success.
type StatusError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Result describes one completed fetch.
type Result struct {
	URL   string
	Path  string
	Bytes int64
}

type Fetcher struct {
	getter   Getter
	out      io.Writer
	outDir   string
	parallel int
	fs       filesystem.FileSystem

	outMu sync.Mutex
}

type Option func(*Fetcher)

// WithOutputDir stores each body in dir instead of writing it to the
// output stream.
func WithOutputDir(dir string) Option {
	return func(f *Fetcher) {
		f.outDir = dir
	}
}

func WithParallel(n int) Option {
	return func(f *Fetcher) {
		if n <= 0 {
			n = defaultParallel
		}
		f.parallel = n
	}
}

func WithFileSystem(fs filesystem.FileSystem) Option {
	return func(f *Fetcher) {
		f.fs = fs
	}
}

// New creates a fetcher writing bodies to out unless an output dir is set.
func New(getter Getter, out io.Writer, opts ...Option) *Fetcher {
	f := &Fetcher{
		getter:   getter,
		out:      out,
		parallel: defaultParallel,
		fs:       filesystem.NewOSFileSystem(),
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Run fetches every URL, at most parallel at a time. It returns the
// successful results in input order and the joined errors of the rest.
func (f *Fetcher) Run(ctx context.Context, urls []string) ([]Result, error) {
	results := make([]*Result, len(urls))
	errs := make([]error, len(urls))

	g := new(errgroup.Group)
	g.SetLimit(f.parallel)

	for i, rawURL := range urls {
		g.Go(func() error {
			res, err := f.fetchOne(ctx, rawURL)
			if err != nil {
				logger.Errorf("%v", err)
				errs[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var done []Result
	for _, r := range results {
		if r != nil {
			done = append(done, *r)
		}
	}

	return done, errors.Join(errs...)
}

func (f *Fetcher) fetchOne(ctx context.Context, rawURL string) (*Result, error) {
	resp, err := f.getter.Get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer func() {
		if err := resp.Close(); err != nil {
			logger.Warnf("Failed to close response for %s: %v", rawURL, err)
		}
	}()

	if !resp.OK() {
		cause := resp.Err
		if cause == nil {
			cause = httpPkg.ClassifyHTTPError(resp.StatusCode)
		}
		if cause == nil {
			cause = errors.New("unexpected status")
		}
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Err: cause}
	}

	if resp.Body == nil {
		return &Result{URL: rawURL}, nil
	}

	if f.outDir == "" {
		f.outMu.Lock()
		n, err := io.Copy(f.out, resp.Body)
		f.outMu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", rawURL, err)
		}
		return &Result{URL: rawURL, Bytes: n}, nil
	}

	return f.save(rawURL, resp)
}

func (f *Fetcher) save(rawURL string, resp *protocol.Response) (*Result, error) {
	name := httpPkg.Filename(resp.URL, resp.Header)
	path := filepath.Join(f.outDir, name)

	w, err := f.fs.CreateFile(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	n, err := io.Copy(w, resp.Body)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = f.fs.RemoveFile(path)
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	if expected := resp.ContentLength(); expected >= 0 && expected != n {
		_ = f.fs.RemoveFile(path)
		return nil, fmt.Errorf("write %s: %w: expected %d bytes, got %d", path, ErrLengthMismatch, expected, n)
	}

	if mtime := httpPkg.ParseLastModified(resp.Header.Get(protocol.HeaderLastModified)); !mtime.IsZero() {
		if err := os.Chtimes(path, time.Now(), mtime); err != nil {
			logger.Debugf("Failed to set modification time of %s: %v", path, err)
		}
	}

	logger.Infof("Saved %s to %s (%d bytes)", rawURL, path, n)

	return &Result{URL: rawURL, Path: path, Bytes: n}, nil
}
