// Package objectstore serves s3:// URLs by copying each object into a
// temporary file that lives exactly as long as the response reading it.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/NamanBalaji/fetchr/internal/errors"
	"github.com/NamanBalaji/fetchr/internal/filesystem"
	"github.com/NamanBalaji/fetchr/internal/logger"
	"github.com/NamanBalaji/fetchr/internal/metrics"
	"github.com/NamanBalaji/fetchr/internal/repository"
	"github.com/NamanBalaji/fetchr/internal/urlutil"
	"github.com/NamanBalaji/fetchr/pkg/protocol"
)

const tempPattern = "fetchr-s3-*"

// Ledger persists the temporary files held by open responses.
type Ledger interface {
	Save(record *repository.Record) error
	FindAll() ([]*repository.Record, error)
	Delete(id uuid.UUID) error
}

type Adapter struct {
	client  Client
	fs      filesystem.FileSystem
	tempDir string
	ledger  Ledger

	mu       sync.Mutex
	inflight map[uuid.UUID]*tempFile
}

// tempFile is a response body backed by a temporary file. Close may be
// called by both the response and the adapter.
type tempFile struct {
	*os.File

	once     sync.Once
	closeErr error
}

func (f *tempFile) Close() error {
	f.once.Do(func() {
		f.closeErr = f.File.Close()
	})

	return f.closeErr
}

type Option func(*Adapter)

func WithTempDir(dir string) Option {
	return func(a *Adapter) {
		a.tempDir = dir
	}
}

func WithLedger(l Ledger) Option {
	return func(a *Adapter) {
		a.ledger = l
	}
}

func WithFileSystem(fs filesystem.FileSystem) Option {
	return func(a *Adapter) {
		a.fs = fs
	}
}

// New creates an object-store adapter. A nil client is allowed: every
// request is then answered with 404 and a hint on how to enable support.
func New(client Client, opts ...Option) *Adapter {
	a := &Adapter{
		client:   client,
		fs:       filesystem.NewOSFileSystem(),
		inflight: make(map[uuid.UUID]*tempFile),
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Available reports whether a client is configured.
func (a *Adapter) Available() bool {
	return a.client != nil
}

// Send looks the object up and, when it exists, downloads it into a new
// temporary file which becomes the response body. Closing the response
// removes the file.
func (a *Adapter) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	if a.client == nil {
		logger.Warnf("Cannot fetch %s: %v. Configure AWS credentials and a region "+
			"(environment, ~/.aws/config or the s3 section of the fetchr config) to enable s3:// URLs.",
			req.URL, ErrObjectStoreUnavailable)
		return protocol.NotFound(req, errors.NewDependencyError(ErrObjectStoreUnavailable,
			errors.SchemeS3, req.URL, http.StatusNotFound)), nil
	}

	bucket, key, err := urlutil.S3Info(req.URL)
	if err != nil {
		return protocol.NotFound(req, errors.NewResourceError(err, errors.SchemeS3, req.URL, http.StatusNotFound)), nil
	}

	head, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logger.Debugf("HeadObject %s failed: %v", req.URL, err)
		return protocol.NotFound(req, classify(err, req.URL)), nil
	}

	id, tmp, err := a.acquire(req.URL)
	if err != nil {
		return protocol.NotFound(req, errors.NewIOError(err, errors.SchemeS3, req.URL, http.StatusNotFound)), nil
	}

	written, err := a.download(ctx, bucket, key, tmp)
	if err != nil {
		if relErr := a.release(id); relErr != nil {
			logger.Warnf("Failed to remove temp file for %s: %v", req.URL, relErr)
		}
		return protocol.NotFound(req, classify(err, req.URL)), nil
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		_ = a.release(id)
		return protocol.NotFound(req, errors.NewIOError(err, errors.SchemeS3, req.URL, http.StatusNotFound)), nil
	}

	resp := protocol.NewResponse(req, http.StatusOK)
	resp.Header.Set(protocol.HeaderContentType, aws.ToString(head.ContentType))
	if resp.Header.Get(protocol.HeaderContentType) == "" {
		resp.Header.Set(protocol.HeaderContentType, protocol.DefaultContentType)
	}
	resp.Header.Set(protocol.HeaderContentLength, strconv.FormatInt(written, 10))
	if head.LastModified != nil {
		resp.Header.Set(protocol.HeaderLastModified, head.LastModified.UTC().Format(http.TimeFormat))
	}
	if size := aws.ToInt64(head.ContentLength); head.ContentLength != nil && size != written {
		logger.Warnf("Object %s changed during fetch: expected %d bytes, got %d", req.URL, size, written)
	}

	resp.Body = tmp
	resp.OnClose(func() error { return a.release(id) })

	return resp, nil
}

func (a *Adapter) download(ctx context.Context, bucket, key string, dst io.Writer) (int64, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, err
	}
	defer out.Body.Close()

	n, err := io.Copy(dst, out.Body)
	if err != nil {
		return n, fmt.Errorf("copy object body: %w", err)
	}

	return n, nil
}

// acquire creates a temporary file and registers it as in flight.
func (a *Adapter) acquire(rawURL string) (uuid.UUID, *tempFile, error) {
	f, err := a.fs.CreateTemp(a.tempDir, tempPattern)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("create temp file: %w", err)
	}

	id := uuid.New()
	tmp := &tempFile{File: f}

	a.mu.Lock()
	a.inflight[id] = tmp
	a.mu.Unlock()
	metrics.TempFilesActive.Inc()

	if a.ledger != nil {
		rec := &repository.Record{
			ID:        id,
			Path:      tmp.Name(),
			URL:       rawURL,
			Owner:     os.Getpid(),
			CreatedAt: time.Now().UTC(),
		}
		if err := a.ledger.Save(rec); err != nil {
			logger.Warnf("Failed to record temp file %s: %v", tmp.Name(), err)
		}
	}

	logger.Debugf("Created temp file %s for %s", tmp.Name(), rawURL)

	return id, tmp, nil
}

// release closes and removes the temporary file registered under id.
// Releasing an id twice is a no-op.
func (a *Adapter) release(id uuid.UUID) error {
	a.mu.Lock()
	tmp, ok := a.inflight[id]
	delete(a.inflight, id)
	a.mu.Unlock()

	if !ok {
		return nil
	}

	metrics.TempFilesActive.Dec()

	var errs []error
	if err := tmp.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		errs = append(errs, err)
	}

	if a.ledger != nil {
		if err := a.ledger.Delete(id); err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
			logger.Warnf("Failed to drop temp file record %s: %v", id, err)
		}
	}

	logger.Debugf("Removing temp file %s", tmp.Name())

	if err := a.fs.RemoveFile(tmp.Name()); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// InFlight returns the number of temporary files currently held.
func (a *Adapter) InFlight() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.inflight)
}

// Sweep removes temporary files recorded in the ledger whose owning
// process is gone, e.g. left behind by a crash. Files owned by a live
// process, including other adapters sharing the ledger, are kept.
func (a *Adapter) Sweep() (int, error) {
	if a.ledger == nil {
		return 0, nil
	}

	records, err := a.ledger.FindAll()
	if err != nil {
		return 0, fmt.Errorf("list temp file records: %w", err)
	}

	removed := 0
	var errs []error
	for _, rec := range records {
		a.mu.Lock()
		_, owned := a.inflight[rec.ID]
		a.mu.Unlock()
		if owned || (rec.Owner != 0 && processAlive(rec.Owner)) {
			continue
		}

		if err := a.fs.RemoveFile(rec.Path); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := a.ledger.Delete(rec.ID); err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
			errs = append(errs, err)
			continue
		}

		logger.Infof("Removed orphaned temp file %s (%s)", rec.Path, rec.URL)
		removed++
	}

	return removed, errors.Join(errs...)
}

// Close closes and removes every temporary file still held by an open
// response. Reading such a response afterwards fails.
func (a *Adapter) Close() error {
	a.mu.Lock()
	ids := make([]uuid.UUID, 0, len(a.inflight))
	for id := range a.inflight {
		ids = append(ids, id)
	}
	a.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := a.release(id); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// classify maps a store error to the cause carried by a 404 response.
func classify(err error, resource string) error {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
		return errors.NewResourceError(fmt.Errorf("%w: %v", errors.ErrResourceNotFound, err), errors.SchemeS3, resource, http.StatusNotFound)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return errors.NewResourceError(fmt.Errorf("%w: %v", errors.ErrResourceNotFound, err), errors.SchemeS3, resource, http.StatusNotFound)
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return errors.NewSecurityError(fmt.Errorf("%w: %v", errors.ErrAccessDenied, err), errors.SchemeS3, resource, http.StatusNotFound)
		}
	}

	te := errors.NewNetworkError(err, errors.SchemeS3, resource, false)
	te.StatusCode = http.StatusNotFound

	return te
}
