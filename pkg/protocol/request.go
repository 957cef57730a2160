package protocol

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ResponseHook may inspect or replace a response before it reaches the
// caller. Returning nil keeps the current response.
type ResponseHook func(*Response) *Response

// Hooks are run by the session after an adapter produced a response.
type Hooks struct {
	Response []ResponseHook
}

// Dispatch runs the response hooks in order.
func (h Hooks) Dispatch(resp *Response) *Response {
	for _, hook := range h.Response {
		if hook == nil {
			continue
		}
		if replaced := hook(resp); replaced != nil {
			resp = replaced
		}
	}

	return resp
}

// Request describes one exchange. The session dispatches a clone, so a
// Request handed to Dispatch is never modified.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
	Hooks  Hooks
}

// NewRequest validates rawURL and builds a Request. An empty method means GET.
func NewRequest(method, rawURL string, body []byte) (*Request, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	if method == "" {
		method = http.MethodGet
	}

	return &Request{
		Method: strings.ToUpper(method),
		URL:    rawURL,
		Header: make(http.Header),
		Body:   body,
	}, nil
}

// Scheme returns the lower-cased scheme of the request URL.
func (r *Request) Scheme() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}

	return strings.ToLower(u.Scheme)
}

// Validate checks that the request can be routed.
func (r *Request) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}

	return validateURL(r.URL)
}

// Clone returns a deep copy of r.
func (r *Request) Clone() *Request {
	c := &Request{
		Method: r.Method,
		URL:    r.URL,
		Header: r.Header.Clone(),
		Hooks:  Hooks{Response: append([]ResponseHook(nil), r.Hooks.Response...)},
	}

	if c.Header == nil {
		c.Header = make(http.Header)
	}

	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}

	return c
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme == "" {
		return fmt.Errorf("%w: missing scheme in %q", ErrInvalidURL, rawURL)
	}

	return nil
}
