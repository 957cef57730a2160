package useragent

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/NamanBalaji/fetchr/internal/logger"
)

var osReleasePaths = []string{"/etc/os-release", "/usr/lib/os-release"}

type linuxProbe struct {
	osReleasePaths []string
	libc           func() string
}

// SystemProbe returns the probe for the running host.
func SystemProbe() Probe {
	return linuxProbe{osReleasePaths: osReleasePaths, libc: getconfLibC}
}

func (linuxProbe) OSFamily() string { return osFamily(runtime.GOOS) }

func (linuxProbe) KernelRelease() string { return kernelRelease() }

// Distribution reads ID (falling back to NAME) and VERSION_ID from the
// first os-release file that exists.
func (p linuxProbe) Distribution() (string, string) {
	for _, path := range p.osReleasePaths {
		vars, err := godotenv.Read(path)
		if err != nil {
			logger.Debugf("Cannot read %s: %v", path, err)
			continue
		}

		name := vars["ID"]
		if name == "" {
			name = vars["NAME"]
		}

		return token(name), token(vars["VERSION_ID"])
	}

	return "", ""
}

func (p linuxProbe) LibCVersion() string {
	if p.libc == nil {
		return ""
	}

	return p.libc()
}

// getconfLibC asks getconf for the glibc version. Other C libraries
// (musl) do not answer and yield "".
func getconfLibC() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "getconf", "GNU_LIBC_VERSION").Output()
	if err != nil {
		return ""
	}

	return parseLibC(string(out))
}

// parseLibC extracts the version from output like "glibc 2.35".
func parseLibC(out string) string {
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return ""
	}

	return fields[1]
}
