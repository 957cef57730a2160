package http

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
)

var (
	ErrInvalidCABundle = errors.New("CA bundle contains no certificates")

	ErrTimeout         = errors.New("operation timed out")
	ErrNetworkProblem  = errors.New("network-related error")
	ErrRequestCreation = errors.New("failed to create request")

	ErrServerProblem       = errors.New("server error (5xx)")
	ErrTooManyRequests     = errors.New("too many requests (429)")
	ErrResourceNotFound    = errors.New("resource not found (404)")
	ErrAccessDenied        = errors.New("access denied (403)")
	ErrAuthentication      = errors.New("authentication required (401)")
	ErrGone                = errors.New("resource gone (410)")
	ErrMethodNotAllowed    = errors.New("method not allowed (405)")
	ErrRangeNotSatisfiable = errors.New("range not satisfiable (416)")
	ErrClientRequest       = errors.New("client error (4xx)")

	ErrUnknown       = errors.New("unknown error")
	ErrUnexpectedEOF = errors.New("unexpected EOF")
)

// ClassifyHTTPError converts an HTTP status code into an appropriate error.
func ClassifyHTTPError(statusCode int) error {
	switch statusCode {
	case http.StatusNotFound:
		return ErrResourceNotFound
	case http.StatusForbidden:
		return ErrAccessDenied
	case http.StatusUnauthorized:
		return ErrAuthentication
	case http.StatusGone:
		return ErrGone
	case http.StatusMethodNotAllowed:
		return ErrMethodNotAllowed
	case http.StatusRequestedRangeNotSatisfiable:
		return ErrRangeNotSatisfiable
	case http.StatusTooManyRequests:
		return ErrTooManyRequests
	default:
		switch {
		case statusCode >= http.StatusInternalServerError:
			return ErrServerProblem
		case statusCode >= http.StatusBadRequest:
			return ErrClientRequest
		default:
			return nil
		}
	}
}

// ClassifyError categorizes a general error into a sentinel error.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEOF
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkProblem
	}

	return ErrUnknown
}

// IsRetryable reports whether a transport error may succeed on a fresh
// connection attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetworkProblem) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnexpectedEOF)
}
