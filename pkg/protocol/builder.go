package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strconv"
	"strings"
)

// Helpers for protocols that do not speak HTTP themselves (FTP-style
// transfers that collect data into a buffer and report a status line).

// DataCallback returns a sink that appends each received chunk to w.
func DataCallback(w io.Writer) func([]byte) error {
	return func(data []byte) error {
		_, err := w.Write(data)
		return err
	}
}

// BuildTextResponse builds a response for textual data.
func BuildTextResponse(req *Request, data io.ReadSeeker, code string) (*Response, error) {
	return buildResponse(req, data, code, TextEncoding)
}

// BuildBinaryResponse builds a response for data whose encoding is unknown.
func BuildBinaryResponse(req *Request, data io.ReadSeeker, code string) (*Response, error) {
	return buildResponse(req, data, code, "")
}

func buildResponse(req *Request, data io.ReadSeeker, code, encoding string) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}

	status, err := parseStatusLine(code)
	if err != nil {
		return nil, err
	}

	if _, err := data.Seek(0, io.SeekStart); err != nil {
		return nil, NewAdapterError(req.Scheme(), OpBuild, req.URL, err)
	}

	resp := NewResponse(req, status)
	resp.Encoding = encoding
	resp.Body = readSeekCloser(data)

	return req.Hooks.Dispatch(resp), nil
}

// parseStatusLine takes the first whitespace-delimited token as the code,
// e.g. "226 Transfer complete" → 226.
func parseStatusLine(code string) (int, error) {
	fields := strings.Fields(code)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, code)
	}

	status, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, code)
	}

	return status, nil
}

func readSeekCloser(data io.ReadSeeker) io.ReadCloser {
	if rc, ok := data.(io.ReadCloser); ok {
		return rc
	}

	return io.NopCloser(data)
}

// ParseMultipartFiles returns the payload of the first file part of a
// multipart/form-data request body.
func ParseMultipartFiles(req *Request) (*bytes.Buffer, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}

	_, params, err := mime.ParseMediaType(req.Header.Get(HeaderContentType))
	if err != nil {
		return nil, fmt.Errorf("parse content type: %w", err)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, ErrNoBoundary
	}

	mr := multipart.NewReader(bytes.NewReader(req.Body), boundary)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoFilePart
		}
		if err != nil {
			return nil, fmt.Errorf("read multipart body: %w", err)
		}

		if part.FileName() == "" {
			part.Close()
			continue
		}

		buf := new(bytes.Buffer)
		_, err = io.Copy(buf, part)
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("read file part %q: %w", part.FormName(), err)
		}

		return buf, nil
	}
}
