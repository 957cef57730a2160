//go:build !unix

package objectstore

import "os"

// processAlive only recognises the current process on platforms without
// signal 0.
func processAlive(pid int) bool {
	return pid == os.Getpid()
}
