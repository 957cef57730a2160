//go:build !unix

package useragent

func kernelRelease() string {
	return ""
}
