package errors_test

import (
	stdErrors "errors"
	"fmt"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/NamanBalaji/fetchr/internal/errors"
)

func TestTransportErrorError(t *testing.T) {
	baseErr := stdErrors.New("underlying error")
	te := &errors.TransportError{
		Err:       baseErr,
		Category:  errors.CategoryIO,
		Scheme:    errors.SchemeGeneric,
		Timestamp: time.Now(),
		Resource:  "file.txt",
	}
	expected := "[IO] file.txt: underlying error"
	if te.Error() != expected {
		t.Errorf("expected %q, got %q", expected, te.Error())
	}

	te2 := &errors.TransportError{
		Err:        stdErrors.New("no such key"),
		Category:   errors.CategoryResource,
		Scheme:     errors.SchemeS3,
		Timestamp:  time.Now(),
		Resource:   "s3://bucket/key",
		StatusCode: 404,
	}
	expected2 := "[s3:RESOURCE] s3://bucket/key (status: 404): no such key"
	if te2.Error() != expected2 {
		t.Errorf("expected %q, got %q", expected2, te2.Error())
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	baseErr := stdErrors.New("base error")
	te := errors.NewNetworkError(baseErr, errors.SchemeHTTP, "http://example.com", true)
	if !errors.Is(te, baseErr) {
		t.Errorf("expected %v to wrap %v", te, baseErr)
	}

	wrapped := fmt.Errorf("dispatch: %w", te)
	if !errors.IsRetryable(wrapped) {
		t.Error("expected wrapped network error to stay retryable")
	}
}

func TestNewIOErrorClassification(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here")

	tests := []struct {
		name string
		err  error
		want errors.ErrorCategory
	}{
		{name: "not exist", err: statErr, want: errors.CategoryResource},
		{name: "permission", err: &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}, want: errors.CategorySecurity},
		{name: "other", err: stdErrors.New("disk on fire"), want: errors.CategoryIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := errors.NewIOError(tt.err, errors.SchemeFile, "/x", 404)
			if te.Category != tt.want {
				t.Errorf("expected category %s, got %s", tt.want, te.Category)
			}
			if te.Retryable {
				t.Error("IO errors must not be retryable")
			}
			if te.StatusCode != 404 {
				t.Errorf("expected status 404, got %d", te.StatusCode)
			}
		})
	}

	if !errors.Is(errors.NewIOError(statErr, errors.SchemeFile, "/x", 404), fs.ErrNotExist) {
		t.Error("expected fs.ErrNotExist to survive classification")
	}
}

func TestConstructorsSetCategory(t *testing.T) {
	base := stdErrors.New("boom")

	if errors.CategoryOf(errors.NewResourceError(base, errors.SchemeS3, "r", 404)) != errors.CategoryResource {
		t.Error("NewResourceError did not set RESOURCE")
	}
	if errors.CategoryOf(errors.NewSecurityError(base, errors.SchemeS3, "r", 404)) != errors.CategorySecurity {
		t.Error("NewSecurityError did not set SECURITY")
	}
	if !errors.IsCategory(errors.NewDependencyError(base, errors.SchemeS3, "r", 404), errors.CategoryDependency) {
		t.Error("NewDependencyError did not set DEPENDENCY")
	}
}

func TestCategoryOfPlainError(t *testing.T) {
	if got := errors.CategoryOf(stdErrors.New("plain")); got != errors.CategoryUnknown {
		t.Errorf("expected UNKNOWN, got %s", got)
	}
	if errors.IsCategory(nil, errors.CategoryUnknown) {
		t.Error("nil error must not match any category")
	}
}

func TestIsRetryable(t *testing.T) {
	if errors.IsRetryable(nil) {
		t.Error("nil must not be retryable")
	}
	if errors.IsRetryable(stdErrors.New("plain")) {
		t.Error("plain errors must not be retryable")
	}
	if errors.IsRetryable(errors.NewNetworkError(stdErrors.New("x"), errors.SchemeHTTP, "r", false)) {
		t.Error("expected non-retryable network error")
	}
}

func TestGetStatusCode(t *testing.T) {
	code, ok := errors.GetStatusCode(errors.NewResourceError(stdErrors.New("x"), errors.SchemeFile, "r", 404))
	if !ok || code != 404 {
		t.Errorf("expected (404, true), got (%d, %v)", code, ok)
	}

	_, ok = errors.GetStatusCode(stdErrors.New("plain"))
	if ok {
		t.Error("expected no status code for plain error")
	}
}
