package useragent

import (
	"runtime"

	"golang.org/x/sys/unix"
)

type darwinProbe struct{}

// SystemProbe returns the probe for the running host.
func SystemProbe() Probe {
	return darwinProbe{}
}

func (darwinProbe) OSFamily() string { return osFamily(runtime.GOOS) }

func (darwinProbe) KernelRelease() string { return kernelRelease() }

func (darwinProbe) Distribution() (string, string) {
	v, err := unix.Sysctl("kern.osproductversion")
	if err != nil {
		return "OSX", ""
	}

	return "OSX", v
}

func (darwinProbe) LibCVersion() string { return "" }
