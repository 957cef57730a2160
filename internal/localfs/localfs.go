// Package localfs serves file:// URLs from the local filesystem.
package localfs

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/NamanBalaji/fetchr/internal/errors"
	"github.com/NamanBalaji/fetchr/internal/filesystem"
	"github.com/NamanBalaji/fetchr/internal/logger"
	"github.com/NamanBalaji/fetchr/internal/urlutil"
	"github.com/NamanBalaji/fetchr/pkg/protocol"
)

type Adapter struct {
	fs filesystem.FileSystem
}

type Option func(*Adapter)

// WithFileSystem replaces the OS filesystem.
func WithFileSystem(fs filesystem.FileSystem) Option {
	return func(a *Adapter) {
		a.fs = fs
	}
}

func New(opts ...Option) *Adapter {
	a := &Adapter{fs: filesystem.NewOSFileSystem()}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Send stats the target and, when it is a readable regular file, returns
// it as the body of a 200 response. Anything else is a 404 whose Err
// holds the cause.
func (a *Adapter) Send(_ context.Context, req *protocol.Request) (*protocol.Response, error) {
	path, err := urlutil.URLToPath(req.URL)
	if err != nil {
		return a.notFound(req, errors.NewResourceError(err, errors.SchemeFile, req.URL, http.StatusNotFound)), nil
	}

	info, err := a.fs.Stat(path)
	if err != nil {
		return a.notFound(req, errors.NewIOError(err, errors.SchemeFile, path, http.StatusNotFound)), nil
	}

	if info.IsDir() {
		cause := fmt.Errorf("%w: %s", errors.ErrIsDirectory, path)
		return a.notFound(req, errors.NewResourceError(cause, errors.SchemeFile, path, http.StatusNotFound)), nil
	}

	body, err := a.fs.Open(path)
	if err != nil {
		return a.notFound(req, errors.NewIOError(err, errors.SchemeFile, path, http.StatusNotFound)), nil
	}

	resp := protocol.NewResponse(req, http.StatusOK)
	resp.Header.Set(protocol.HeaderContentType, contentType(path))
	resp.Header.Set(protocol.HeaderContentLength, strconv.FormatInt(info.Size(), 10))
	resp.Header.Set(protocol.HeaderLastModified, info.ModTime().UTC().Format(http.TimeFormat))
	resp.Body = body

	logger.Debugf("Serving %s (%d bytes)", path, info.Size())

	return resp, nil
}

func (a *Adapter) notFound(req *protocol.Request, cause error) *protocol.Response {
	logger.Debugf("No local file for %s: %v", req.URL, cause)
	return protocol.NotFound(req, cause)
}

// Close is a no-op; each response owns its file handle.
func (a *Adapter) Close() error {
	return nil
}

// contentType guesses the bare media type of path; parameters such as
// charset are dropped.
func contentType(path string) string {
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		return protocol.DefaultContentType
	}

	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return protocol.DefaultContentType
	}

	return mediaType
}
