// Package platform detects the runtime identifier of the running machine.
//
// Detection is deliberately kept out of the resolution engine: the engine
// consumes a [rid.Detector] value, and this package supplies the concrete
// implementations. Tests and the HTTP API use [Static]; the CLI uses [Host].
package platform

import (
	"path/filepath"
	"runtime"

	"github.com/matzehuels/ridasset/pkg/rid"
)

// Static reports a fixed RID.
type Static rid.RID

// Detect returns the fixed RID.
func (s Static) Detect() rid.RID { return rid.RID(s) }

// Host maps an operating system and architecture pair, in Go's GOOS/GOARCH
// vocabulary, to a portable RID such as "linux-x64" or "osx-arm64".
type Host struct {
	GOOS   string
	GOARCH string
	Musl   bool // linux only: libc is musl rather than glibc
}

// Current returns a Host describing the running process.
func Current() Host {
	return Host{GOOS: runtime.GOOS, GOARCH: runtime.GOARCH, Musl: runtime.GOOS == "linux" && hasMusl()}
}

var osNames = map[string]string{
	"linux":   "linux",
	"darwin":  "osx",
	"windows": "win",
	"freebsd": "freebsd",
}

var archNames = map[string]string{
	"amd64": "x64",
	"386":   "x86",
	"arm64": "arm64",
	"arm":   "arm",
}

// Detect returns the portable RID for h, or [rid.Agnostic] when either the
// OS or the architecture has no RID spelling.
func (h Host) Detect() rid.RID {
	osName, ok := osNames[h.GOOS]
	if !ok {
		return rid.Agnostic
	}
	arch, ok := archNames[h.GOARCH]
	if !ok {
		return rid.Agnostic
	}
	if osName == "linux" && h.Musl {
		osName = "linux-musl"
	}
	return rid.RID(osName + "-" + arch)
}

func hasMusl() bool {
	matches, err := filepath.Glob("/lib/ld-musl-*")
	return err == nil && len(matches) > 0
}

var (
	_ rid.Detector = Static("")
	_ rid.Detector = Host{}
)
