// Package useragent builds the User-Agent string sent with every request.
package useragent

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"unicode"
)

const (
	Product = "fetchr"
	NetLib  = "go-http"
)

// Version is the product version. Release builds set it with
// -ldflags "-X github.com/NamanBalaji/fetchr/internal/useragent.Version=...".
var Version = "dev"

// Probe reports facts about the host. Values that cannot be determined
// are returned empty.
type Probe interface {
	OSFamily() string
	KernelRelease() string
	Distribution() (name, version string)
	LibCVersion() string
}

// Info holds every component of the identification string.
type Info struct {
	Product        string
	Version        string
	NetLib         string
	NetLibVersion  string
	Runtime        string
	RuntimeVersion string
	OSFamily       string
	Kernel         string
	Distro         string
	DistroVersion  string
	LibC           string
}

// String renders
// "<product>/<version> <netlib>/<version> <runtime>/<version> <os>/<kernel> <distro>/<version>[ libc/<version>]".
func (i Info) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s/%s %s/%s %s/%s %s/%s %s/%s",
		i.Product, i.Version,
		i.NetLib, i.NetLibVersion,
		i.Runtime, i.RuntimeVersion,
		i.OSFamily, i.Kernel,
		i.Distro, i.DistroVersion)

	if i.LibC != "" {
		fmt.Fprintf(&b, " libc/%s", i.LibC)
	}

	return b.String()
}

// Build collects Info from p.
func Build(p Probe) Info {
	goVersion := strings.TrimPrefix(runtime.Version(), "go")
	distro, distroVersion := p.Distribution()

	return Info{
		Product:        Product,
		Version:        productVersion(),
		NetLib:         NetLib,
		NetLibVersion:  goVersion,
		Runtime:        runtime.Compiler,
		RuntimeVersion: goVersion,
		OSFamily:       token(p.OSFamily()),
		Kernel:         token(p.KernelRelease()),
		Distro:         token(distro),
		DistroVersion:  token(distroVersion),
		LibC:           token(p.LibCVersion()),
	}
}

// token makes s safe for a "<name>/<version>" segment: runs of whitespace
// and slashes become a single "-".
func token(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || unicode.IsSpace(r)
	}), "-")
}

// Default returns the identification string of this host. Probing runs
// once per process.
var Default = sync.OnceValue(func() string {
	return Build(SystemProbe()).String()
})

func productVersion() string {
	if Version != "dev" {
		return Version
	}

	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return strings.TrimPrefix(bi.Main.Version, "v")
	}

	return Version
}

func osFamily(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	case "openbsd":
		return "OpenBSD"
	case "netbsd":
		return "NetBSD"
	default:
		if goos == "" {
			return ""
		}
		return strings.ToUpper(goos[:1]) + goos[1:]
	}
}
