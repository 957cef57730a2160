package protocol

import (
	"errors"
	"fmt"
)

const (
	OpSend  = "send"
	OpClose = "close"
	OpBuild = "build"
)

var (
	ErrInvalidURL     = errors.New("invalid URL")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidStatus  = errors.New("invalid status line")
	ErrNoFilePart     = errors.New("multipart body has no file part")
	ErrNoBoundary     = errors.New("multipart content type has no boundary")
)

// AdapterError reports a failure to obtain any response from an adapter.
type AdapterError struct {
	Scheme    string
	Operation string
	URL       string
	Err       error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s adapter error during %s for %s: %v",
		e.Scheme, e.Operation, e.URL, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

func NewAdapterError(scheme, operation, url string, err error) error {
	if err == nil {
		return nil
	}
	return &AdapterError{
		Scheme:    scheme,
		Operation: operation,
		URL:       url,
		Err:       err,
	}
}
