package protocol

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
)

// Response is the uniform result of a dispatch, whatever the scheme.
//
// A successful response has a Body the caller must close through Close.
// A synthetic failure (404) has a nil Body and keeps the cause in Err for
// diagnostics.
type Response struct {
	StatusCode int
	URL        string
	Header     http.Header
	Body       io.ReadCloser
	Err        error
	Encoding   string
	Request    *Request

	closeOnce sync.Once
	closeErr  error
	mu        sync.Mutex
	cleanups  []func() error
}

// NewResponse returns an empty response for req with the given status.
func NewResponse(req *Request, status int) *Response {
	resp := &Response{
		StatusCode: status,
		Header:     make(http.Header),
		Request:    req,
	}

	if req != nil {
		resp.URL = req.URL
	}

	return resp
}

// NotFound returns a 404 response for req with no body and cause as Err.
func NotFound(req *Request, cause error) *Response {
	resp := NewResponse(req, http.StatusNotFound)
	resp.Err = cause

	return resp
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentLength parses the Content-Length header, or returns -1.
func (r *Response) ContentLength() int64 {
	v := r.Header.Get(HeaderContentLength)
	if v == "" {
		return -1
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return -1
	}

	return n
}

// OnClose registers fn to run when the response is closed, after the body.
// Cleanups run in reverse registration order.
func (r *Response) OnClose(fn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cleanups = append(r.cleanups, fn)
}

// Close releases the body and every resource the response owns. It is
// safe to call more than once.
func (r *Response) Close() error {
	r.closeOnce.Do(func() {
		var errs []error

		if r.Body != nil {
			if err := r.Body.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		r.mu.Lock()
		cleanups := r.cleanups
		r.cleanups = nil
		r.mu.Unlock()

		for i := len(cleanups) - 1; i >= 0; i-- {
			if err := cleanups[i](); err != nil {
				errs = append(errs, err)
			}
		}

		r.closeErr = errors.Join(errs...)
	})

	return r.closeErr
}
