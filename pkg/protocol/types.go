package protocol

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeFile  = "file"
	SchemeS3    = "s3"
)

// Well-known response headers produced by the non-network adapters.
const (
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderLastModified  = "Last-Modified"
	HeaderUserAgent     = "User-Agent"
)

const (
	DefaultContentType = "text/plain"
	TextEncoding       = "ascii"
)

// Prefix returns the mount prefix for a scheme, e.g. "s3://".
func Prefix(scheme string) string {
	return scheme + "://"
}
