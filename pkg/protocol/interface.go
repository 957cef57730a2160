package protocol

import (
	"context"
)

// Adapter serves requests for one URL scheme.
type Adapter interface {
	// Send performs the scheme-specific I/O and returns once the status
	// and headers are known; the body may still be streamed afterwards.
	// Conditions the adapter can describe as "not found" (missing file,
	// missing object, denied access, unavailable backend) are returned as
	// a 404 Response carrying the cause in Err, never as an error. A
	// non-nil error is reserved for failures to obtain any response, such
	// as a network exchange that exhausted its retries.
	Send(ctx context.Context, req *Request) (*Response, error)

	// Close releases any resources the adapter allocated, including
	// temporary files owned by responses that were never closed.
	Close() error
}
