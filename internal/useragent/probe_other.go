//go:build !linux && !darwin

package useragent

import "runtime"

type genericProbe struct{}

// SystemProbe returns the probe for the running host.
func SystemProbe() Probe {
	return genericProbe{}
}

func (genericProbe) OSFamily() string { return osFamily(runtime.GOOS) }

func (genericProbe) KernelRelease() string { return kernelRelease() }

func (genericProbe) Distribution() (string, string) {
	return osFamily(runtime.GOOS), kernelRelease()
}

func (genericProbe) LibCVersion() string { return "" }
